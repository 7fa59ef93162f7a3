package extractor

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"flamecompanion/internal/domain"
)

// In-memory repositories backing the service-level tests. They mirror the
// postgres implementations' contract, including sql.ErrNoRows on misses.

type memStoryRepo struct {
	mu      sync.Mutex
	stories map[uuid.UUID]*domain.Story
}

func newMemStoryRepo() *memStoryRepo {
	return &memStoryRepo{stories: make(map[uuid.UUID]*domain.Story)}
}

func (r *memStoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stories[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memStoryRepo) GetBySourceURL(ctx context.Context, sourceURL string) (*domain.Story, error) {
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

func (r *memStoryRepo) List(ctx context.Context, offset, limit int) ([]*domain.Story, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Story, 0, len(r.stories))
	for _, s := range r.stories {
		copied := *s
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *memStoryRepo) Create(ctx context.Context, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *story
	r.stories[story.ID] = &copied
	return nil
}

func (r *memStoryRepo) Update(ctx context.Context, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[story.ID]; !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	story.UpdatedAt = &now
	copied := *story
	r.stories[story.ID] = &copied
	return nil
}

type chapterKey struct {
	storyID uuid.UUID
	number  int
}

type memChapterRepo struct {
	mu       sync.Mutex
	chapters map[chapterKey]*domain.Chapter
}

func newMemChapterRepo() *memChapterRepo {
	return &memChapterRepo{chapters: make(map[chapterKey]*domain.Chapter)}
}

func (r *memChapterRepo) GetByStoryAndNumber(ctx context.Context, storyID uuid.UUID, number int) (*domain.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chapters[chapterKey{storyID, number}]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memChapterRepo) ListByStory(ctx context.Context, storyID uuid.UUID) ([]*domain.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Chapter
	for k, c := range r.chapters {
		if k.storyID == storyID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memChapterRepo) CountByStory(ctx context.Context, storyID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for k := range r.chapters {
		if k.storyID == storyID {
			count++
		}
	}
	return count, nil
}

func (r *memChapterRepo) Create(ctx context.Context, chapter *domain.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *chapter
	r.chapters[chapterKey{chapter.StoryID, chapter.Number}] = &copied
	return nil
}

func (r *memChapterRepo) Update(ctx context.Context, chapter *domain.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := chapterKey{chapter.StoryID, chapter.Number}
	if _, ok := r.chapters[key]; !ok {
		return sql.ErrNoRows
	}
	copied := *chapter
	r.chapters[key] = &copied
	return nil
}
