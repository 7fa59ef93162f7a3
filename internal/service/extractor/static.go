package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"flamecompanion/internal/domain"
)

// staticFetchTimeout bounds the plain HTTP fetch. No retry at this layer;
// retries belong to the orchestrator's strategy chain.
const staticFetchTimeout = 10 * time.Second

// staticBodyLimit caps how much HTML is read per fetch
const staticBodyLimit = 4 * 1024 * 1024

// StaticExtractor fetches raw HTML over HTTP and runs the same selector
// probes as the dynamic extractor against a static document tree. No
// script execution, so client-rendered content is invisible to it.
type StaticExtractor struct {
	logger *slog.Logger
	client *http.Client
}

// NewStaticExtractor creates an HTTP-backed extractor
func NewStaticExtractor(logger *slog.Logger) *StaticExtractor {
	return &StaticExtractor{
		logger: logger,
		client: &http.Client{
			Timeout: staticFetchTimeout,
		},
	}
}

// Name identifies the strategy in logs
func (e *StaticExtractor) Name() string {
	return domain.StrategyStatic
}

// Extract fetches and probes the page. Network errors, HTTP errors and
// selector misses all map to ErrNoResult.
func (e *StaticExtractor) Extract(ctx context.Context, storyURL string) (*domain.ExtractionResult, error) {
	doc, err := fetchStaticDocument(ctx, e.client, storyURL)
	if err != nil {
		e.logger.Warn("Static fetch failed",
			"url", storyURL,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrNoResult, err)
	}

	result, err := resultFromDocument(doc, storyURL, domain.StrategyStatic, domain.StrategyPartialStatic)
	if err != nil {
		e.logger.Info("Static probes found nothing usable", "url", storyURL)
		return nil, err
	}

	e.logger.Info("Static extraction produced a result",
		"url", storyURL,
		"strategy", result.StrategyUsed,
		"title", result.Title,
		"chapter_candidates", len(result.RawChapterEntries),
	)
	return result, nil
}

// fetchStaticDocument GETs a page with a browser-like User-Agent and parses
// it into a document tree. Shared with the profile crawler's static path.
func fetchStaticDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, staticBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
