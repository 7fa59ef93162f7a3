package handlers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"flamecompanion/internal/domain"
	"flamecompanion/internal/service/extractor"
)

// In-memory repositories mirroring the postgres implementations' contract,
// including sql.ErrNoRows on misses.

type memStoryRepo struct {
	mu      sync.Mutex
	stories []*domain.Story
}

func (r *memStoryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stories {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memStoryRepo) GetBySourceURL(_ context.Context, sourceURL string) (*domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stories {
		if s.SourceURL == sourceURL {
			copied := *s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memStoryRepo) List(_ context.Context, offset, limit int) ([]*domain.Story, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := len(r.stories)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*domain.Story, 0, end-offset)
	for _, s := range r.stories[offset:end] {
		copied := *s
		out = append(out, &copied)
	}
	return out, total, nil
}

func (r *memStoryRepo) Create(_ context.Context, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *story
	r.stories = append(r.stories, &copied)
	return nil
}

func (r *memStoryRepo) Update(_ context.Context, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.stories {
		if s.ID == story.ID {
			copied := *story
			r.stories[i] = &copied
			return nil
		}
	}
	return sql.ErrNoRows
}

type memChapterRepo struct {
	mu       sync.Mutex
	chapters []*domain.Chapter
}

func (r *memChapterRepo) GetByStoryAndNumber(_ context.Context, storyID uuid.UUID, number int) (*domain.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chapters {
		if c.StoryID == storyID && c.Number == number {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memChapterRepo) ListByStory(_ context.Context, storyID uuid.UUID) ([]*domain.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Chapter
	for _, c := range r.chapters {
		if c.StoryID == storyID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *memChapterRepo) CountByStory(_ context.Context, storyID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.chapters {
		if c.StoryID == storyID {
			count++
		}
	}
	return count, nil
}

func (r *memChapterRepo) Create(_ context.Context, chapter *domain.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *chapter
	r.chapters = append(r.chapters, &copied)
	return nil
}

func (r *memChapterRepo) Update(_ context.Context, chapter *domain.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.chapters {
		if c.StoryID == chapter.StoryID && c.Number == chapter.Number {
			copied := *chapter
			r.chapters[i] = &copied
			return nil
		}
	}
	return sql.ErrNoRows
}

type memChannelRepo struct {
	mu       sync.Mutex
	channels []*domain.Channel
}

func (r *memChannelRepo) GetByPlatformID(_ context.Context, platform, channelID string) (*domain.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.channels {
		if c.Platform == platform && c.ChannelID == channelID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memChannelRepo) List(_ context.Context) ([]*domain.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Channel, 0, len(r.channels))
	for _, c := range r.channels {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memChannelRepo) Create(_ context.Context, channel *domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *channel
	r.channels = append(r.channels, &copied)
	return nil
}

func (r *memChannelRepo) UpdateStats(_ context.Context, id uuid.UUID, stats domain.ChannelStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.channels {
		if c.ID == id {
			c.Subscribers = stats.Subscribers
			c.TotalViews = stats.TotalViews
			c.VideoCount = stats.VideoCount
			now := time.Now()
			c.LastSyncAt = &now
			return nil
		}
	}
	return sql.ErrNoRows
}

// memQueue records enqueued jobs without processing them
type memQueue struct {
	mu       sync.Mutex
	enqueued []enqueuedJob
}

type enqueuedJob struct {
	jobType string
	payload interface{}
}

func (q *memQueue) Enqueue(_ context.Context, jobType string, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, enqueuedJob{jobType: jobType, payload: payload})
	return nil
}

func (q *memQueue) Dequeue(_ context.Context, _ string) (*domain.QueueJob, error) { return nil, nil }
func (q *memQueue) Complete(_ context.Context, _ string) error                    { return nil }
func (q *memQueue) Fail(_ context.Context, _ string, _ string) error              { return nil }
func (q *memQueue) GetPendingCount(_ context.Context, jobType string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	count := 0
	for _, j := range q.enqueued {
		if j.jobType == jobType {
			count++
		}
	}
	return count, nil
}

// stubStrategy is a fixed-result extraction strategy
type stubStrategy struct {
	result *domain.ExtractionResult
	err    error
}

func (s *stubStrategy) Name() string { return "stub" }
func (s *stubStrategy) Extract(_ context.Context, _ string) (*domain.ExtractionResult, error) {
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Title:       "La Flamme Imaginaire",
		Author:      "Imaginary Flame",
		Description: "Une héroïne découvre un pouvoir ancien.",
		RawChapterEntries: []domain.RawChapterEntry{
			{Title: "Chapitre premier", URL: "https://www.fyctia.com/story/12/chapter/1"},
			{Title: "Chapitre second", URL: "https://www.fyctia.com/story/12/chapter/2"},
		},
		StrategyUsed: domain.StrategyDynamic,
		Confidence:   domain.ConfidenceFull,
	}
}

// newExtractionFixture builds a real extraction pipeline over in-memory
// repositories with a stub strategy chain.
func newExtractionFixture(strategies ...extractor.Strategy) (*extractor.Service, *extractor.ProfileCrawler, *memStoryRepo, *memChapterRepo) {
	logger := discardLogger()
	stories := &memStoryRepo{}
	chapters := &memChapterRepo{}

	orchestrator := extractor.NewOrchestrator(logger, strategies...)
	upserter := extractor.NewUpserter(stories, chapters, logger)
	service := extractor.NewService(orchestrator, upserter, stories, logger)
	crawler := extractor.NewProfileCrawler(service, logger, nil)

	return service, crawler, stories, chapters
}
