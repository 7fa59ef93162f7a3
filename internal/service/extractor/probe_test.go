package extractor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"flamecompanion/internal/domain"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test HTML: %v", err)
	}
	return doc
}

func TestProbeFieldFirstMatchWins(t *testing.T) {
	doc := docFromHTML(t, `
		<html><head><meta property="og:title" content="Meta Title"></head>
		<body>
			<h1 class="story-title">La Flamme Imaginaire</h1>
			<h1>Generic Heading</h1>
		</body></html>`)

	value, rule, ok := ProbeField(doc, titleRules, FieldTitle)
	if !ok {
		t.Fatal("expected a title match")
	}
	if value != "La Flamme Imaginaire" {
		t.Errorf("value = %q, want the first rule's match", value)
	}
	if rule.Selector != "h1.story-title" {
		t.Errorf("matched rule = %q, want h1.story-title", rule.Selector)
	}
}

func TestProbeFieldFallsThroughToMeta(t *testing.T) {
	doc := docFromHTML(t, `
		<html><head><meta property="og:title" content="Meta Title"></head>
		<body><p>no headings here</p></body></html>`)

	value, _, ok := ProbeField(doc, titleRules, FieldTitle)
	if !ok {
		t.Fatal("expected the meta rule to match")
	}
	if value != "Meta Title" {
		t.Errorf("value = %q, want %q", value, "Meta Title")
	}
}

func TestProbeFieldRejectsBrandAndShortTitles(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "Brand string is not a title",
			html: `<html><body><h1>Fyctia</h1></body></html>`,
		},
		{
			name: "Too-short title",
			html: `<html><body><h1>abc</h1></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docFromHTML(t, tt.html)
			if value, _, ok := ProbeField(doc, titleRules, FieldTitle); ok {
				t.Errorf("expected no match, got %q", value)
			}
		})
	}
}

func TestProbeFieldDescriptionThreshold(t *testing.T) {
	doc := docFromHTML(t, `<html><body><div class="story-summary">short</div></body></html>`)
	if value, _, ok := ProbeField(doc, descriptionRules, FieldDescription); ok {
		t.Errorf("descriptions of 10 chars or less must be rejected, got %q", value)
	}
}

func TestProbeChaptersFirstContainerWins(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
			<div class="table-of-contents">
				<a href="/story/1-x/chapter/1">Chapitre 1</a>
				<a href="/story/1-x/chapter/2">Chapitre 2</a>
			</div>
			<ul class="chapters"><li><a href="/other">Ignored</a></li></ul>
		</body></html>`)

	entries := ProbeChapters(doc, "https://www.fyctia.com/story/1-x")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Title != "Chapitre 1" {
		t.Errorf("first title = %q", entries[0].Title)
	}
	if entries[0].URL != "https://www.fyctia.com/story/1-x/chapter/1" {
		t.Errorf("href not resolved: %q", entries[0].URL)
	}
}

func TestProbeChaptersCapsEntries(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="chapter-list">`)
	for i := 0; i < maxChapterEntries+50; i++ {
		fmt.Fprintf(&sb, `<a href="/story/1-x/chapter/%d">Chapitre %d</a>`, i, i)
	}
	sb.WriteString(`</div></body></html>`)

	entries := ProbeChapters(docFromHTML(t, sb.String()), "https://www.fyctia.com/story/1-x")
	if len(entries) != maxChapterEntries {
		t.Errorf("got %d entries, want cap of %d", len(entries), maxChapterEntries)
	}
}

func TestResultFromDocumentFullSuccess(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
			<h1 class="story-title">La Flamme Imaginaire</h1>
			<div class="story-author"><a href="/user/imaginaryflame">ImaginaryFlame</a></div>
			<div class="story-summary">Une héroïne découvre une flamme ancienne.</div>
			<div class="table-of-contents"><a href="/c/1">Chapitre 1</a></div>
		</body></html>`)

	result, err := resultFromDocument(doc, "https://www.fyctia.com/story/1-x", domain.StrategyDynamic, domain.StrategyPartialDynamic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StrategyUsed != domain.StrategyDynamic {
		t.Errorf("StrategyUsed = %q, want full tag", result.StrategyUsed)
	}
	if !result.IsFullSuccess() {
		t.Error("expected full success")
	}
	if result.Author != "ImaginaryFlame" {
		t.Errorf("Author = %q", result.Author)
	}
}

func TestResultFromDocumentPartialWhenOnlyChapters(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
			<div class="table-of-contents"><a href="/c/1">Chapitre 1</a></div>
		</body></html>`)

	result, err := resultFromDocument(doc, "https://www.fyctia.com/story/1-x", domain.StrategyStatic, domain.StrategyPartialStatic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StrategyUsed != domain.StrategyPartialStatic {
		t.Errorf("StrategyUsed = %q, want partial tag", result.StrategyUsed)
	}
	if result.Title != domain.TitlePending {
		t.Errorf("Title = %q, want sentinel", result.Title)
	}
	if result.IsFullSuccess() {
		t.Error("partial result must not be a full success")
	}
}

func TestResultFromDocumentNoResult(t *testing.T) {
	doc := docFromHTML(t, `<html><body><p>nothing useful</p></body></html>`)

	_, err := resultFromDocument(doc, "https://www.fyctia.com/story/1-x", domain.StrategyStatic, domain.StrategyPartialStatic)
	if err == nil {
		t.Fatal("expected ErrNoResult")
	}
}
