package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"flamecompanion/internal/domain"
	"flamecompanion/internal/pkg/storyurl"
)

// siteBrandTitle is the generic brand string the site serves as a page title
// when the story title failed to render. Never accepted as a story title.
const siteBrandTitle = "fyctia"

// maxChapterEntries caps chapter discovery per story. Guards against
// pagination loops and hostile markup.
const maxChapterEntries = 200

// FieldKind selects the acceptance threshold applied to a probed value
type FieldKind int

const (
	FieldTitle FieldKind = iota
	FieldAuthor
	FieldDescription
	FieldChapterTitle
	FieldImageURL
)

// SelectorRule is one candidate extraction rule for a field. When Attr is
// empty the element's text content is read, otherwise the named attribute.
type SelectorRule struct {
	Selector string
	Attr     string
}

// Candidate selector lists, ordered by empirically observed reliability.
// First match wins; append new rules at the position their reliability
// warrants, never reorder casually.
var (
	titleRules = []SelectorRule{
		{Selector: "h1.story-title"},
		{Selector: "[data-story-title]"},
		{Selector: "article header h1"},
		{Selector: "h1"},
		{Selector: `meta[property="og:title"]`, Attr: "content"},
	}

	authorRules = []SelectorRule{
		{Selector: ".story-author a"},
		{Selector: "[data-author-name]"},
		{Selector: `a[href^="/user/"]`},
		{Selector: `meta[name="author"]`, Attr: "content"},
	}

	descriptionRules = []SelectorRule{
		{Selector: ".story-summary"},
		{Selector: "[data-story-summary]"},
		{Selector: "article .description"},
		{Selector: `meta[property="og:description"]`, Attr: "content"},
		{Selector: `meta[name="description"]`, Attr: "content"},
	}

	coverRules = []SelectorRule{
		{Selector: ".story-cover img", Attr: "src"},
		{Selector: `meta[property="og:image"]`, Attr: "content"},
	}

	// Chapter containers: table-of-contents wrappers first, then generic
	// list-item anchors, then attribute-tagged containers.
	chapterContainerSelectors = []string{
		".table-of-contents a[href]",
		".chapter-list a[href]",
		"[data-chapter-list] a[href]",
		"ul.chapters li a[href]",
		"li[data-chapter] a[href]",
		`a[href*="/chapter"]`,
	}
)

// ProbeField evaluates candidate rules in order against a parsed document
// and returns the first value passing the field kind's minimum threshold.
// This is deliberately first-match-wins, not best-match: rule ordering
// encodes observed reliability.
func ProbeField(doc *goquery.Document, rules []SelectorRule, kind FieldKind) (string, SelectorRule, bool) {
	for _, rule := range rules {
		sel := doc.Find(rule.Selector).First()
		if sel.Length() == 0 {
			continue
		}

		var value string
		if rule.Attr != "" {
			value, _ = sel.Attr(rule.Attr)
		} else {
			value = sel.Text()
		}
		value = collapseWhitespace(value)

		if acceptable(kind, value) {
			return value, rule, true
		}
	}
	return "", SelectorRule{}, false
}

// ProbeChapters probes container selectors in order and, for the first one
// yielding at least one anchor, returns every anchor's visible text and
// href as raw chapter candidates, capped at maxChapterEntries. Hrefs are
// resolved against the page URL. Extractors never assign numbers; ordering
// is the site's positional order.
func ProbeChapters(doc *goquery.Document, pageURL string) []domain.RawChapterEntry {
	for _, selector := range chapterContainerSelectors {
		anchors := doc.Find(selector)
		if anchors.Length() == 0 {
			continue
		}

		var entries []domain.RawChapterEntry
		anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if len(entries) >= maxChapterEntries {
				return false
			}
			title := collapseWhitespace(a.Text())
			href, _ := a.Attr("href")
			if href != "" {
				href = storyurl.Resolve(pageURL, href)
			}
			entries = append(entries, domain.RawChapterEntry{
				Title: title,
				URL:   href,
			})
			return true
		})

		if len(entries) > 0 {
			return entries
		}
	}
	return nil
}

// acceptable applies the per-field minimum thresholds
func acceptable(kind FieldKind, value string) bool {
	value = strings.TrimSpace(value)
	switch kind {
	case FieldTitle:
		return len(value) > 3 && !strings.EqualFold(value, siteBrandTitle)
	case FieldAuthor:
		return value != ""
	case FieldDescription:
		return len(value) > 10
	case FieldChapterTitle:
		return value != ""
	case FieldImageURL:
		return value != ""
	default:
		return false
	}
}

// resultFromDocument runs the field and chapter probes over a parsed page
// and applies the shared result policy: title found is a full success with
// fullTag; no title but at least one chapter is a partial success with
// partialTag and the sentinel title; anything else is no result.
func resultFromDocument(doc *goquery.Document, pageURL, fullTag, partialTag string) (*domain.ExtractionResult, error) {
	title, _, titleFound := ProbeField(doc, titleRules, FieldTitle)
	author, _, _ := ProbeField(doc, authorRules, FieldAuthor)
	description, _, _ := ProbeField(doc, descriptionRules, FieldDescription)
	cover, _, coverFound := ProbeField(doc, coverRules, FieldImageURL)
	chapters := ProbeChapters(doc, pageURL)

	if coverFound {
		cover = storyurl.Resolve(pageURL, cover)
	}

	switch {
	case titleFound:
		return &domain.ExtractionResult{
			Title:             title,
			Author:            author,
			Description:       description,
			CoverImageURL:     cover,
			RawChapterEntries: chapters,
			StrategyUsed:      fullTag,
			Confidence:        domain.ConfidenceFull,
		}, nil
	case len(chapters) > 0:
		return &domain.ExtractionResult{
			Title:             domain.TitlePending,
			Author:            author,
			Description:       description,
			CoverImageURL:     cover,
			RawChapterEntries: chapters,
			StrategyUsed:      partialTag,
			Confidence:        domain.ConfidencePartial,
		}, nil
	default:
		return nil, ErrNoResult
	}
}

// collapseWhitespace trims and normalizes runs of whitespace to single spaces
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
