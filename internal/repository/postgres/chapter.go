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

// ChapterRepository implements the domain.ChapterRepository interface using PostgreSQL
type ChapterRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewChapterRepository creates a new PostgreSQL chapter repository
func NewChapterRepository(db *sql.DB, logger *slog.Logger) *ChapterRepository {
	return &ChapterRepository{
		db:     db,
		logger: logger,
	}
}

const chapterSelectFields = `
	SELECT id, story_id, number, title, chapter_url, created_at, updated_at
	FROM chapters
`

// GetByStoryAndNumber retrieves a chapter by its (story, number) natural key
func (r *ChapterRepository) GetByStoryAndNumber(ctx context.Context, storyID uuid.UUID, number int) (*domain.Chapter, error) {
	row := r.db.QueryRowContext(ctx,
		chapterSelectFields+"WHERE story_id = $1 AND number = $2",
		storyID, number)

	chapter, err := r.scanChapter(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to query chapter",
			"error", err,
			"story_id", storyID,
			"number", number,
		)
		return nil, fmt.Errorf("failed to query chapter: %w", err)
	}
	return chapter, nil
}

// ListByStory retrieves all chapters of a story ordered by number
func (r *ChapterRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]*domain.Chapter, error) {
	rows, err := r.db.QueryContext(ctx,
		chapterSelectFields+"WHERE story_id = $1 ORDER BY number",
		storyID)
	if err != nil {
		r.logger.Error("Failed to list chapters",
			"error", err,
			"story_id", storyID,
		)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*domain.Chapter
	for rows.Next() {
		chapter, err := r.scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chapters: %w", err)
	}
	return chapters, nil
}

// CountByStory returns the number of chapters for a story
func (r *ChapterRepository) CountByStory(ctx context.Context, storyID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chapters WHERE story_id = $1", storyID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count chapters",
			"error", err,
			"story_id", storyID,
		)
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return count, nil
}

// Create inserts a new chapter
func (r *ChapterRepository) Create(ctx context.Context, chapter *domain.Chapter) error {
	query := `
		INSERT INTO chapters (
			id, story_id, number, title, chapter_url, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	var chapterURL interface{}
	if chapter.ChapterURL != nil {
		chapterURL = *chapter.ChapterURL
	}

	_, err := r.db.ExecContext(ctx, query,
		chapter.ID,
		chapter.StoryID,
		chapter.Number,
		chapter.Title,
		chapterURL,
		chapter.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create chapter",
			"error", err,
			"story_id", chapter.StoryID,
			"number", chapter.Number,
		)
		return fmt.Errorf("failed to create chapter: %w", err)
	}

	r.logger.Debug("Chapter created",
		"chapter_id", chapter.ID,
		"story_id", chapter.StoryID,
		"number", chapter.Number,
	)
	return nil
}

// Update modifies an existing chapter's title and URL in place. The
// (story, number) key never changes.
func (r *ChapterRepository) Update(ctx context.Context, chapter *domain.Chapter) error {
	query := `
		UPDATE chapters SET
			title = $2,
			chapter_url = $3,
			updated_at = $4
		WHERE id = $1`

	var chapterURL interface{}
	if chapter.ChapterURL != nil {
		chapterURL = *chapter.ChapterURL
	}

	now := time.Now()
	chapter.UpdatedAt = &now

	result, err := r.db.ExecContext(ctx, query,
		chapter.ID,
		chapter.Title,
		chapterURL,
		chapter.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update chapter",
			"error", err,
			"chapter_id", chapter.ID,
		)
		return fmt.Errorf("failed to update chapter: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("No chapter found for update", "chapter_id", chapter.ID)
		return sql.ErrNoRows
	}

	return nil
}

func (r *ChapterRepository) scanChapter(row scanner) (*domain.Chapter, error) {
	chapter := &domain.Chapter{}
	var chapterURL sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&chapter.ID,
		&chapter.StoryID,
		&chapter.Number,
		&chapter.Title,
		&chapterURL,
		&chapter.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if chapterURL.Valid {
		chapter.ChapterURL = &chapterURL.String
	}
	if updatedAt.Valid {
		chapter.UpdatedAt = &updatedAt.Time
	}
	return chapter, nil
}
