package domain

import (
	"context"

	"github.com/google/uuid"
)

// StoryRepository defines the interface for story data operations
type StoryRepository interface {
	// GetByID retrieves a story by its UUID
	GetByID(ctx context.Context, id uuid.UUID) (*Story, error)

	// GetBySourceURL retrieves a story by its unique source URL
	GetBySourceURL(ctx context.Context, sourceURL string) (*Story, error)

	// List retrieves stories with pagination
	List(ctx context.Context, offset, limit int) ([]*Story, int, error)

	// Create inserts a new story
	Create(ctx context.Context, story *Story) error

	// Update modifies an existing story's mutable fields
	Update(ctx context.Context, story *Story) error
}

// ChapterRepository defines the interface for chapter data operations
type ChapterRepository interface {
	// GetByStoryAndNumber retrieves a chapter by its (story, number) key
	GetByStoryAndNumber(ctx context.Context, storyID uuid.UUID, number int) (*Chapter, error)

	// ListByStory retrieves all chapters of a story ordered by number
	ListByStory(ctx context.Context, storyID uuid.UUID) ([]*Chapter, error)

	// CountByStory returns the number of chapters for a story
	CountByStory(ctx context.Context, storyID uuid.UUID) (int, error)

	// Create inserts a new chapter
	Create(ctx context.Context, chapter *Chapter) error

	// Update modifies an existing chapter's title and URL
	Update(ctx context.Context, chapter *Chapter) error
}

// ChannelRepository defines the interface for tracked channel operations
type ChannelRepository interface {
	// GetByPlatformID retrieves a channel by its platform-native identifier
	GetByPlatformID(ctx context.Context, platform, channelID string) (*Channel, error)

	// List retrieves all tracked channels
	List(ctx context.Context) ([]*Channel, error)

	// Create inserts a new tracked channel
	Create(ctx context.Context, channel *Channel) error

	// UpdateStats writes the latest synced statistics for a channel
	UpdateStats(ctx context.Context, id uuid.UUID, stats ChannelStats) error
}

// QueueRepository defines the interface for job queue operations
type QueueRepository interface {
	// Enqueue adds a new job to the queue
	Enqueue(ctx context.Context, jobType string, payload interface{}) error

	// Dequeue retrieves the next job from the queue
	Dequeue(ctx context.Context, jobType string) (*QueueJob, error)

	// Complete marks a job as completed
	Complete(ctx context.Context, jobID string) error

	// Fail marks a job as failed with error details
	Fail(ctx context.Context, jobID string, errorMsg string) error

	// GetPendingCount returns the number of pending jobs
	GetPendingCount(ctx context.Context, jobType string) (int, error)
}

// QueueJob represents a job in the processing queue
type QueueJob struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Status    string                 `json:"status"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt *string                `json:"updated_at"`
}

// Job types
const (
	JobTypeCheckChapters = "check_chapters"
	JobTypeSyncChannels  = "sync_channels"
)

// Job statuses
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)
