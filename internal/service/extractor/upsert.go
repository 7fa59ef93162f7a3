package extractor

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"flamecompanion/internal/domain"
)

// Upserter reconciles an extraction result against stored state. It is the
// only component in the core that mutates persistent state; everything
// upstream is pure transformation over in-memory values.
type Upserter struct {
	stories  domain.StoryRepository
	chapters domain.ChapterRepository
	logger   *slog.Logger
}

// NewUpserter creates an upsert layer over the story and chapter repositories
func NewUpserter(stories domain.StoryRepository, chapters domain.ChapterRepository, logger *slog.Logger) *Upserter {
	return &Upserter{
		stories:  stories,
		chapters: chapters,
		logger:   logger,
	}
}

// UpsertStory creates the story for a source URL or updates its mutable
// fields in place. SourceURL and ID never change once created. Empty or
// sentinel extracted values never overwrite existing fields, so manual
// edits survive partial re-extractions. The returned bool is true when the
// story was created.
func (u *Upserter) UpsertStory(ctx context.Context, sourceURL string, result *domain.ExtractionResult) (*domain.Story, bool, error) {
	existing, err := u.stories.GetBySourceURL(ctx, sourceURL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, domain.PersistenceError("failed to look up story", err)
	}

	if existing == nil {
		story := &domain.Story{
			ID:          uuid.New(),
			SourceURL:   sourceURL,
			Title:       result.Title,
			Author:      result.Author,
			Description: result.Description,
			Source:      domain.SourceFyctia,
			CreatedAt:   time.Now(),
		}
		if result.CoverImageURL != "" {
			story.CoverImageURL = &result.CoverImageURL
		}
		if err := u.stories.Create(ctx, story); err != nil {
			return nil, false, domain.PersistenceError("failed to create story", err)
		}
		u.logger.Info("Story created",
			"story_id", story.ID,
			"source_url", sourceURL,
			"title", story.Title,
		)
		return story, true, nil
	}

	if result.Title != "" && result.Title != domain.TitlePending {
		existing.Title = result.Title
	}
	if result.Author != "" && result.Author != PlaceholderAuthor {
		existing.Author = result.Author
	}
	if result.Description != "" {
		existing.Description = result.Description
	}
	if result.CoverImageURL != "" {
		existing.CoverImageURL = &result.CoverImageURL
	}

	if err := u.stories.Update(ctx, existing); err != nil {
		return nil, false, domain.PersistenceError("failed to update story", err)
	}
	u.logger.Info("Story updated",
		"story_id", existing.ID,
		"source_url", sourceURL,
		"title", existing.Title,
	)
	return existing, false, nil
}

// UpsertChapters reconciles normalized entries against stored chapters
// keyed by (story, number): existing numbers are updated in place, absent
// ones created. Chapters are never deleted here; extraction is additive
// and corrective, not authoritative for removal.
func (u *Upserter) UpsertChapters(ctx context.Context, storyID uuid.UUID, entries []NormalizedChapter) (created, updated int, err error) {
	for _, entry := range entries {
		existing, err := u.chapters.GetByStoryAndNumber(ctx, storyID, entry.Number)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return created, updated, domain.PersistenceError("failed to look up chapter", err)
		}

		if existing == nil {
			chapter := &domain.Chapter{
				ID:        uuid.New(),
				StoryID:   storyID,
				Number:    entry.Number,
				Title:     entry.Title,
				CreatedAt: time.Now(),
			}
			if entry.URL != "" {
				chapter.ChapterURL = &entry.URL
			}
			if err := u.chapters.Create(ctx, chapter); err != nil {
				return created, updated, domain.PersistenceError("failed to create chapter", err)
			}
			created++
			continue
		}

		existing.Title = entry.Title
		if entry.URL != "" {
			url := entry.URL
			existing.ChapterURL = &url
		}
		if err := u.chapters.Update(ctx, existing); err != nil {
			return created, updated, domain.PersistenceError("failed to update chapter", err)
		}
		updated++
	}

	u.logger.Info("Chapters upserted",
		"story_id", storyID,
		"created", created,
		"updated", updated,
	)
	return created, updated, nil
}
