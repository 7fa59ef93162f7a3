package extractor

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"flamecompanion/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHeuristicFallbackDerivesTitleFromSlug(t *testing.T) {
	fallback := NewHeuristicFallback(discardLogger(), nil)

	result, err := fallback.Extract(context.Background(), "https://www.fyctia.com/story/1000-sample-tale")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Title != "Sample Tale" {
		t.Errorf("Title = %q, want %q", result.Title, "Sample Tale")
	}
	if result.Author != PlaceholderAuthor {
		t.Errorf("Author = %q, want placeholder %q", result.Author, PlaceholderAuthor)
	}
	if len(result.RawChapterEntries) != 0 {
		t.Errorf("chapters = %d, want 0 (never fabricated)", len(result.RawChapterEntries))
	}
	if result.StrategyUsed != domain.StrategyHeuristic {
		t.Errorf("StrategyUsed = %q, want %q", result.StrategyUsed, domain.StrategyHeuristic)
	}
	if result.Confidence != domain.ConfidenceLowest {
		t.Errorf("Confidence = %d, want lowest", result.Confidence)
	}
}

func TestHeuristicFallbackDecodesPercentEncodedSlug(t *testing.T) {
	fallback := NewHeuristicFallback(discardLogger(), nil)

	result, err := fallback.Extract(context.Background(), "https://www.fyctia.com/story/12-l%C3%A9gende-oubli%C3%A9e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Title != "Légende Oubliée" {
		t.Errorf("Title = %q, want %q", result.Title, "Légende Oubliée")
	}
}

func TestHeuristicFallbackUsesKnownStoryTable(t *testing.T) {
	known := map[int64]KnownStory{
		42: {Title: "La Flamme Imaginaire", Author: "ImaginaryFlame"},
	}
	fallback := NewHeuristicFallback(discardLogger(), known)

	result, err := fallback.Extract(context.Background(), "https://www.fyctia.com/story/42-whatever-slug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Title != "La Flamme Imaginaire" {
		t.Errorf("Title = %q, want confirmed title", result.Title)
	}
	if result.Author != "ImaginaryFlame" {
		t.Errorf("Author = %q, want confirmed author", result.Author)
	}
	if len(result.RawChapterEntries) != 0 {
		t.Errorf("chapters = %d, want 0", len(result.RawChapterEntries))
	}
}

func TestHeuristicFallbackSentinelForEmptySlug(t *testing.T) {
	fallback := NewHeuristicFallback(discardLogger(), nil)

	result, err := fallback.Extract(context.Background(), "https://www.fyctia.com/story/77")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Title != domain.TitlePending {
		t.Errorf("Title = %q, want sentinel", result.Title)
	}
}
