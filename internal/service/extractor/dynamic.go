package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"flamecompanion/internal/domain"
)

// Dynamic extraction timing. Navigation settles or gives up after
// dynamicNavTimeout; dynamicSettleDelay then covers deferred client
// rendering before the DOM is read.
const (
	dynamicNavTimeout  = 15 * time.Second
	dynamicSettleDelay = 2500 * time.Millisecond
)

// renderFunc obtains fully rendered HTML for a URL. Swappable in tests.
type renderFunc func(ctx context.Context, url string, navTimeout, settleDelay time.Duration) (string, error)

// DynamicExtractor drives a headless browser to load a story page and runs
// selector probes against the client-rendered document. The most reliable
// strategy and the most expensive one; it is tried first.
type DynamicExtractor struct {
	logger *slog.Logger
	render renderFunc
}

// NewDynamicExtractor creates a browser-backed extractor. Every Extract
// call acquires and releases its own browser session.
func NewDynamicExtractor(logger *slog.Logger) *DynamicExtractor {
	return &DynamicExtractor{
		logger: logger,
		render: fetchRenderedHTML,
	}
}

// Name identifies the strategy in logs
func (e *DynamicExtractor) Name() string {
	return domain.StrategyDynamic
}

// Extract renders the page and probes it. Browser launch failures,
// navigation timeouts and selector misses all map to ErrNoResult; the
// orchestrator decides what happens next.
func (e *DynamicExtractor) Extract(ctx context.Context, storyURL string) (*domain.ExtractionResult, error) {
	html, err := e.render(ctx, storyURL, dynamicNavTimeout, dynamicSettleDelay)
	if err != nil {
		e.logger.Warn("Dynamic rendering failed",
			"url", storyURL,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrNoResult, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn("Failed to parse rendered HTML",
			"url", storyURL,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrNoResult, err)
	}

	result, err := resultFromDocument(doc, storyURL, domain.StrategyDynamic, domain.StrategyPartialDynamic)
	if err != nil {
		e.logger.Info("Dynamic probes found nothing usable", "url", storyURL)
		return nil, err
	}

	e.logger.Info("Dynamic extraction produced a result",
		"url", storyURL,
		"strategy", result.StrategyUsed,
		"title", result.Title,
		"chapter_candidates", len(result.RawChapterEntries),
	)
	return result, nil
}
