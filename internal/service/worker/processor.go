package worker

import (
	"context"
	"fmt"
	"log/slog"

	"flamecompanion/internal/service/extractor"
	"flamecompanion/internal/service/stats"
)

// JobProcessor handles the different types of background jobs
type JobProcessor struct {
	logger     *slog.Logger
	extraction *extractor.Service
	stats      *stats.Syncer
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(
	logger *slog.Logger,
	extraction *extractor.Service,
	statsSyncer *stats.Syncer,
) *JobProcessor {
	return &JobProcessor{
		logger:     logger,
		extraction: extraction,
		stats:      statsSyncer,
	}
}

// ProcessChapterCheck re-runs extraction for a known story in
// verification mode, picking up chapters published since the last run
// without touching story metadata.
func (p *JobProcessor) ProcessChapterCheck(ctx context.Context, payload map[string]interface{}, logger *slog.Logger) error {
	sourceURL, ok := payload["source_url"].(string)
	if !ok || sourceURL == "" {
		return fmt.Errorf("missing or invalid source_url in payload")
	}

	logger.Info("Checking story for new chapters", "source_url", sourceURL)

	outcome, err := p.extraction.ExtractStory(ctx, sourceURL, true)
	if err != nil {
		return fmt.Errorf("chapter check failed: %w", err)
	}

	logger.Info("Chapter check completed",
		"source_url", sourceURL,
		"story_id", outcome.Story.ID,
		"chapters_total", outcome.ChaptersTotal,
		"chapters_new", outcome.ChaptersNew,
	)
	return nil
}

// ProcessChannelSync pulls fresh statistics for all tracked creator
// channels from the configured metrics APIs.
func (p *JobProcessor) ProcessChannelSync(ctx context.Context, payload map[string]interface{}, logger *slog.Logger) error {
	if p.stats == nil {
		return fmt.Errorf("channel sync requested but no stats syncer configured")
	}

	report, err := p.stats.SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("channel sync failed: %w", err)
	}

	logger.Info("Channel sync completed",
		"synced", report.Synced,
		"created", report.Created,
		"failed", report.Failed,
	)
	return nil
}
