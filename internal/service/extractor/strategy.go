package extractor

import (
	"context"
	"errors"

	"flamecompanion/internal/domain"
)

// browserUserAgent is sent on static fetches so the site serves the same
// markup it would serve a real browser.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// ErrNoResult is the typed "no result" outcome of a single strategy. It is
// recovered inside the orchestrator and never surfaced to callers.
var ErrNoResult = errors.New("strategy produced no result")

// Strategy is one self-contained extraction method with a uniform contract.
// Implementations return ErrNoResult (possibly wrapped) when they cannot
// produce a usable result; any other error is treated the same way by the
// orchestrator but logged at a higher level.
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string

	// Extract attempts to produce an extraction result for a story URL
	Extract(ctx context.Context, storyURL string) (*domain.ExtractionResult, error)
}
