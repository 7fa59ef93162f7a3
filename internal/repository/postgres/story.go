package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"flamecompanion/internal/domain"
)

// StoryRepository implements the domain.StoryRepository interface using PostgreSQL
type StoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStoryRepository creates a new PostgreSQL story repository
func NewStoryRepository(db *sql.DB, logger *slog.Logger) *StoryRepository {
	return &StoryRepository{
		db:     db,
		logger: logger,
	}
}

const storySelectFields = `
	SELECT id, source_url, title, author, description, cover_image_url, source,
	       created_at, updated_at
	FROM stories
`

// GetByID retrieves a story by its UUID
func (r *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	row := r.db.QueryRowContext(ctx, storySelectFields+"WHERE id = $1", id)

	story, err := r.scanStory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Debug("Story not found", "story_id", id)
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to query story",
			"error", err,
			"story_id", id,
		)
		return nil, fmt.Errorf("failed to query story: %w", err)
	}
	return story, nil
}

// GetBySourceURL retrieves a story by its unique source URL
func (r *StoryRepository) GetBySourceURL(ctx context.Context, sourceURL string) (*domain.Story, error) {
	row := r.db.QueryRowContext(ctx, storySelectFields+"WHERE source_url = $1", sourceURL)

	story, err := r.scanStory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Debug("Story not found by source URL", "source_url", sourceURL)
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to query story by source URL",
			"error", err,
			"source_url", sourceURL,
		)
		return nil, fmt.Errorf("failed to query story by source URL: %w", err)
	}
	return story, nil
}

// List retrieves stories with pagination, most recently created first
func (r *StoryRepository) List(ctx context.Context, offset, limit int) ([]*domain.Story, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stories").Scan(&total); err != nil {
		r.logger.Error("Failed to count stories", "error", err)
		return nil, 0, fmt.Errorf("failed to count stories: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		storySelectFields+"ORDER BY created_at DESC OFFSET $1 LIMIT $2",
		offset, limit)
	if err != nil {
		r.logger.Error("Failed to list stories", "error", err)
		return nil, 0, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	var stories []*domain.Story
	for rows.Next() {
		story, err := r.scanStory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan story: %w", err)
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate stories: %w", err)
	}

	return stories, total, nil
}

// Create inserts a new story
func (r *StoryRepository) Create(ctx context.Context, story *domain.Story) error {
	query := `
		INSERT INTO stories (
			id, source_url, title, author, description, cover_image_url, source, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	var coverImageURL interface{}
	if story.CoverImageURL != nil {
		coverImageURL = *story.CoverImageURL
	}

	_, err := r.db.ExecContext(ctx, query,
		story.ID,
		story.SourceURL,
		story.Title,
		story.Author,
		story.Description,
		coverImageURL,
		story.Source,
		story.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create story",
			"error", err,
			"story_id", story.ID,
			"source_url", story.SourceURL,
		)
		return fmt.Errorf("failed to create story: %w", err)
	}

	r.logger.Info("Story created successfully",
		"story_id", story.ID,
		"source_url", story.SourceURL,
		"title", story.Title,
	)
	return nil
}

// Update modifies an existing story's mutable fields. The source URL and
// ID never change.
func (r *StoryRepository) Update(ctx context.Context, story *domain.Story) error {
	query := `
		UPDATE stories SET
			title = $2,
			author = $3,
			description = $4,
			cover_image_url = $5,
			updated_at = $6
		WHERE id = $1`

	var coverImageURL interface{}
	if story.CoverImageURL != nil {
		coverImageURL = *story.CoverImageURL
	}

	now := time.Now()
	story.UpdatedAt = &now

	result, err := r.db.ExecContext(ctx, query,
		story.ID,
		story.Title,
		story.Author,
		story.Description,
		coverImageURL,
		story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update story",
			"error", err,
			"story_id", story.ID,
		)
		return fmt.Errorf("failed to update story: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("No story found for update", "story_id", story.ID)
		return sql.ErrNoRows
	}

	r.logger.Info("Story updated successfully",
		"story_id", story.ID,
		"title", story.Title,
	)
	return nil
}

// scanner abstracts over sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *StoryRepository) scanStory(row scanner) (*domain.Story, error) {
	story := &domain.Story{}
	var coverImageURL sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&story.ID,
		&story.SourceURL,
		&story.Title,
		&story.Author,
		&story.Description,
		&coverImageURL,
		&story.Source,
		&story.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if coverImageURL.Valid {
		story.CoverImageURL = &coverImageURL.String
	}
	if updatedAt.Valid {
		story.UpdatedAt = &updatedAt.Time
	}
	return story, nil
}
