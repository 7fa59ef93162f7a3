package extractor

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"flamecompanion/internal/domain"
	"flamecompanion/internal/pkg/storyurl"
)

// Service is the single-story extraction pipeline: validate, orchestrate,
// normalize, upsert. The profile crawler and the worker both go through it.
type Service struct {
	orchestrator *Orchestrator
	upserter     *Upserter
	stories      domain.StoryRepository
	logger       *slog.Logger
}

// NewService wires the pipeline
func NewService(
	orchestrator *Orchestrator,
	upserter *Upserter,
	stories domain.StoryRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		orchestrator: orchestrator,
		upserter:     upserter,
		stories:      stories,
		logger:       logger,
	}
}

// Outcome is the caller-facing result of a single-story extraction
type Outcome struct {
	Story         *domain.Story
	StoryCreated  bool
	ChaptersTotal int
	ChaptersNew   int
	StrategyUsed  string
}

// ExtractStory runs the full pipeline for one story URL.
//
// In verification mode the stored story's metadata is reused unchanged and
// only chapter discovery runs, which is how newly published chapters are
// detected without re-scraping static metadata. The chapter path is
// identical in both modes: normalize, then upsert.
func (s *Service) ExtractStory(ctx context.Context, rawURL string, verificationMode bool) (*Outcome, error) {
	if _, err := storyurl.ParseStory(rawURL); err != nil {
		return nil, domain.ValidationError("url does not match the site's story shape: %v", err)
	}

	if verificationMode {
		return s.verifyStory(ctx, rawURL)
	}

	result, err := s.orchestrator.Run(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeChapters(result.RawChapterEntries)

	story, storyCreated, err := s.upserter.UpsertStory(ctx, rawURL, result)
	if err != nil {
		return nil, err
	}

	created, _, err := s.upserter.UpsertChapters(ctx, story.ID, normalized)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Story extraction completed",
		"source_url", rawURL,
		"story_id", story.ID,
		"strategy", result.StrategyUsed,
		"chapters_total", len(normalized),
		"chapters_new", created,
	)

	return &Outcome{
		Story:         story,
		StoryCreated:  storyCreated,
		ChaptersTotal: len(normalized),
		ChaptersNew:   created,
		StrategyUsed:  result.StrategyUsed,
	}, nil
}

// verifyStory re-runs chapter discovery for an already persisted story,
// leaving its metadata untouched.
func (s *Service) verifyStory(ctx context.Context, rawURL string) (*Outcome, error) {
	story, err := s.stories.GetBySourceURL(ctx, rawURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ValidationError("story %s is not persisted; run a full extraction first", rawURL)
		}
		return nil, domain.PersistenceError("failed to look up story", err)
	}

	// The strategies still run, but only their chapter candidates are
	// consumed; the heuristic terminal refuses to fabricate chapters, so a
	// total miss verifies as zero discovered entries.
	result, err := s.orchestrator.Run(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeChapters(result.RawChapterEntries)

	created, _, err := s.upserter.UpsertChapters(ctx, story.ID, normalized)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Chapter verification completed",
		"source_url", rawURL,
		"story_id", story.ID,
		"chapters_total", len(normalized),
		"chapters_new", created,
	)

	return &Outcome{
		Story:         story,
		ChaptersTotal: len(normalized),
		ChaptersNew:   created,
		StrategyUsed:  domain.StrategyVerification,
	}, nil
}
