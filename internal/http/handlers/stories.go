package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"flamecompanion/internal/domain"
)

const (
	DefaultPaginationLimit = 25
	MaxPaginationLimit     = 100
)

type StoriesHandler struct {
	logger   *slog.Logger
	stories  domain.StoryRepository
	chapters domain.ChapterRepository
}

func NewStoriesHandler(logger *slog.Logger, stories domain.StoryRepository, chapters domain.ChapterRepository) *StoriesHandler {
	return &StoriesHandler{
		logger:   logger,
		stories:  stories,
		chapters: chapters,
	}
}

// StoriesResponse is the paginated story listing
type StoriesResponse struct {
	Stories []*StoryDto `json:"stories"`
	Total   int         `json:"total"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
}

type StoryDto struct {
	ID            string  `json:"id"`
	SourceURL     string  `json:"source_url"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Description   string  `json:"description"`
	CoverImageURL *string `json:"cover_image_url,omitempty"`
	Source        string  `json:"source"`
	ChapterCount  int     `json:"chapter_count"`
}

type ChapterDto struct {
	Number     int     `json:"number"`
	Title      string  `json:"title"`
	ChapterURL *string `json:"chapter_url,omitempty"`
}

// ChaptersResponse lists a story's table of contents in reading order
type ChaptersResponse struct {
	StoryID  string        `json:"story_id"`
	Title    string        `json:"title"`
	Chapters []*ChapterDto `json:"chapters"`
}

// GetStories handles GET /api/v1/stories
func (h *StoriesHandler) GetStories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	limit := DefaultPaginationLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= MaxPaginationLimit {
			limit = parsed
		}
	}

	stories, total, err := h.stories.List(ctx, offset, limit)
	if err != nil {
		h.logger.Error("Failed to list stories", "error", err)
		writeError(w, h.logger, domain.PersistenceError("failed to list stories", err))
		return
	}

	dtos := make([]*StoryDto, 0, len(stories))
	for _, story := range stories {
		count, err := h.chapters.CountByStory(ctx, story.ID)
		if err != nil {
			h.logger.Warn("Failed to count chapters for listing",
				"error", err,
				"story_id", story.ID,
			)
		}
		dtos = append(dtos, &StoryDto{
			ID:            story.ID.String(),
			SourceURL:     story.SourceURL,
			Title:         story.Title,
			Author:        story.Author,
			Description:   story.Description,
			CoverImageURL: story.CoverImageURL,
			Source:        story.Source,
			ChapterCount:  count,
		})
	}

	h.logger.Info("Listed stories", "count", len(dtos), "total", total)
	writeJSON(w, h.logger, http.StatusOK, &StoriesResponse{
		Stories: dtos,
		Total:   total,
		Offset:  offset,
		Limit:   limit,
	})
}

// GetStoryChapters handles GET /api/v1/stories/{id}/chapters
func (h *StoriesHandler) GetStoryChapters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, domain.ValidationError("invalid story id: %v", err))
		return
	}

	story, err := h.stories.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Story not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get story", "error", err, "story_id", storyID)
		writeError(w, h.logger, domain.PersistenceError("failed to get story", err))
		return
	}

	chapters, err := h.chapters.ListByStory(ctx, storyID)
	if err != nil {
		h.logger.Error("Failed to list chapters", "error", err, "story_id", storyID)
		writeError(w, h.logger, domain.PersistenceError("failed to list chapters", err))
		return
	}

	dtos := make([]*ChapterDto, 0, len(chapters))
	for _, chapter := range chapters {
		dtos = append(dtos, &ChapterDto{
			Number:     chapter.Number,
			Title:      chapter.Title,
			ChapterURL: chapter.ChapterURL,
		})
	}

	writeJSON(w, h.logger, http.StatusOK, &ChaptersResponse{
		StoryID:  story.ID.String(),
		Title:    story.Title,
		Chapters: dtos,
	})
}
