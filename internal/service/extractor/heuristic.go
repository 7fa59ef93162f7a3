package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode"

	"flamecompanion/internal/domain"
	"flamecompanion/internal/pkg/storyurl"
)

// PlaceholderAuthor marks a story identity derived from the URL alone
const PlaceholderAuthor = "Auteur inconnu"

// KnownStory is a previously confirmed title/author pair for a story
// identifier, used when both extractors fail.
type KnownStory struct {
	Title  string
	Author string
}

// HeuristicFallback derives a best-effort story identity from the URL's
// numeric identifier and slug. It never fails and always returns a result
// with the lowest confidence, and it explicitly refuses to invent chapter
// titles: the chapter list is always empty.
type HeuristicFallback struct {
	logger *slog.Logger
	known  map[int64]KnownStory
}

// NewHeuristicFallback creates the terminal fallback strategy. The known
// table is supplied by the caller rather than inlined so it stays
// replaceable data, not code.
func NewHeuristicFallback(logger *slog.Logger, known map[int64]KnownStory) *HeuristicFallback {
	if known == nil {
		known = map[int64]KnownStory{}
	}
	return &HeuristicFallback{
		logger: logger,
		known:  known,
	}
}

// Name identifies the strategy in logs
func (e *HeuristicFallback) Name() string {
	return domain.StrategyHeuristic
}

// Extract returns the confirmed identity for a known story identifier, or
// a title-cased rendition of the URL slug with placeholder metadata.
func (e *HeuristicFallback) Extract(ctx context.Context, rawURL string) (*domain.ExtractionResult, error) {
	ref, err := storyurl.ParseStory(rawURL)
	if err != nil {
		// Only reachable with a URL that slipped past validation
		return nil, domain.ExtractionError("url is not parseable as a story", err)
	}

	if confirmed, ok := e.known[ref.ID]; ok {
		e.logger.Info("Heuristic fallback hit the known-story table",
			"url", rawURL,
			"story_id", ref.ID,
			"title", confirmed.Title,
		)
		return &domain.ExtractionResult{
			Title:        confirmed.Title,
			Author:       confirmed.Author,
			StrategyUsed: domain.StrategyHeuristic,
			Confidence:   domain.ConfidenceLowest,
		}, nil
	}

	title := titleFromSlug(ref.Slug)
	if title == "" {
		title = domain.TitlePending
	}

	e.logger.Info("Heuristic fallback derived identity from slug",
		"url", rawURL,
		"story_id", ref.ID,
		"title", title,
	)

	return &domain.ExtractionResult{
		Title:        title,
		Author:       PlaceholderAuthor,
		StrategyUsed: domain.StrategyHeuristic,
		Confidence:   domain.ConfidenceLowest,
	}, nil
}

// titleFromSlug turns "sample-tale" into "Sample Tale". Percent-encoded
// accented characters are decoded before casing.
func titleFromSlug(slug string) string {
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}

	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)

	words := strings.Fields(slug)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
