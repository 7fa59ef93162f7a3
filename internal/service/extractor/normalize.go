package extractor

import (
	"regexp"
	"strings"

	"flamecompanion/internal/domain"
)

// minChapterTitleLen discards leftovers too short to be chapter titles
// after date stripping and trimming.
const minChapterTitleLen = 5

// Trailing calendar dates the site appends to chapter entries, in English
// ("Jan 5, 2024") and French ("5 janvier 2024") month-name formats,
// anchored to the end of the title.
var (
	englishDateRe = regexp.MustCompile(`(?i)[\s\-–—·|,]*\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\s*$`)
	frenchDateRe  = regexp.MustCompile(`(?i)[\s\-–—·|,]*\b\d{1,2}(?:er)?\s+(?:janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[ûu]t|septembre|octobre|novembre|d[ée]cembre)\s+\d{4}\s*$`)
)

// Site-chrome phrases that mark an anchor as navigation, not a chapter.
// Matched case-insensitively as substrings of the date-stripped title.
var navigationPhrases = []string{
	"try premium",
	"premium gratuit",
	"get the app",
	"sign up",
	"log in",
	"se connecter",
	"s'inscrire",
	"privacy",
	"confidentialité",
	"terms of",
	"conditions générales",
	"mentions légales",
	"cookie",
	"contactez",
	"à propos",
	"accueil",
	"app store",
	"google play",
	"nous suivre",
	"partager",
}

// NormalizedChapter is one cleaned table-of-contents entry with its final
// sequential number assigned.
type NormalizedChapter struct {
	Number int
	Title  string
	URL    string
}

// NormalizeChapters turns raw chapter candidates from whichever strategy
// succeeded into a clean sequential list: trailing dates stripped,
// navigation links and too-short titles dropped, URLs deduplicated keeping
// the first occurrence, and numbers assigned over the survivors in order.
// Output order is a pure function of input order; an empty result is a
// valid state, not an error.
func NormalizeChapters(entries []domain.RawChapterEntry) []NormalizedChapter {
	seenURLs := make(map[string]bool)
	normalized := make([]NormalizedChapter, 0, len(entries))

	for _, entry := range entries {
		title := StripTrailingDate(entry.Title)
		title = strings.TrimSpace(title)

		if len(title) < minChapterTitleLen {
			continue
		}
		if isNavigationTitle(title) {
			continue
		}

		if entry.URL != "" {
			if seenURLs[entry.URL] {
				continue
			}
			seenURLs[entry.URL] = true
		}

		normalized = append(normalized, NormalizedChapter{
			Number: len(normalized) + 1,
			Title:  title,
			URL:    entry.URL,
		})
	}

	return normalized
}

// StripTrailingDate removes one trailing English or French month-name date
// from a chapter title.
func StripTrailingDate(title string) string {
	if loc := englishDateRe.FindStringIndex(title); loc != nil {
		return title[:loc[0]]
	}
	if loc := frenchDateRe.FindStringIndex(title); loc != nil {
		return title[:loc[0]]
	}
	return title
}

func isNavigationTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, phrase := range navigationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
