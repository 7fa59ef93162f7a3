package extractor

import (
	"context"
	"errors"
	"log/slog"

	"flamecompanion/internal/domain"
)

// Orchestrator runs an ordered chain of extraction strategies against a
// story URL, short-circuiting on the first full success. Adding or
// reordering strategies is a data change to the slice, not a control-flow
// change.
type Orchestrator struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewOrchestrator builds the chain. The conventional order is dynamic,
// static, heuristic; the terminal strategy is expected to always return a
// result.
func NewOrchestrator(logger *slog.Logger, strategies ...Strategy) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		logger:     logger,
	}
}

// Run attempts each strategy in order. A strategy's soft failure
// (ErrNoResult or any other error) falls through to the next one; a
// partial result is retained as the running best candidate while later
// strategies are tried. The first result meeting the full-success
// threshold is returned immediately; otherwise the best-confidence result
// across all attempts is returned. With the heuristic fallback in terminal
// position a nil result is logically impossible, so reaching the end with
// nothing is reported as an extraction error for this request only.
func (o *Orchestrator) Run(ctx context.Context, storyURL string) (*domain.ExtractionResult, error) {
	var best *domain.ExtractionResult

	for _, strategy := range o.strategies {
		result, err := strategy.Extract(ctx, storyURL)
		if err != nil {
			if !errors.Is(err, ErrNoResult) {
				o.logger.Warn("Strategy failed unexpectedly",
					"strategy", strategy.Name(),
					"url", storyURL,
					"error", err,
				)
			}
			continue
		}
		if result == nil {
			continue
		}

		if result.IsFullSuccess() {
			o.logger.Info("Strategy met the success threshold",
				"strategy", strategy.Name(),
				"url", storyURL,
				"tag", result.StrategyUsed,
			)
			return result, nil
		}

		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}

	if best == nil {
		return nil, domain.ExtractionError("no strategy produced a result", nil)
	}

	o.logger.Info("Returning best partial result",
		"url", storyURL,
		"tag", best.StrategyUsed,
		"confidence", best.Confidence,
	)
	return best, nil
}
