package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"flamecompanion/internal/domain"
	"flamecompanion/internal/pkg/storyurl"
	"flamecompanion/internal/service/extractor"
)

// ExtractionHandler exposes the admin extraction surface: single-story
// extraction, profile crawls and queued chapter checks.
type ExtractionHandler struct {
	logger  *slog.Logger
	service *extractor.Service
	crawler *extractor.ProfileCrawler
	stories domain.StoryRepository
	queue   domain.QueueRepository
}

func NewExtractionHandler(
	logger *slog.Logger,
	service *extractor.Service,
	crawler *extractor.ProfileCrawler,
	stories domain.StoryRepository,
	queue domain.QueueRepository,
) *ExtractionHandler {
	return &ExtractionHandler{
		logger:  logger,
		service: service,
		crawler: crawler,
		stories: stories,
		queue:   queue,
	}
}

// ExtractRequest is the body for POST /api/admin/extract. With
// verification_mode set, stored story metadata is left untouched and
// only chapter discovery runs.
type ExtractRequest struct {
	URL              string `json:"url"`
	VerificationMode bool   `json:"verification_mode"`
}

// ExtractResponse reports the outcome of a synchronous extraction
type ExtractResponse struct {
	Story         *StoryDto `json:"story"`
	StoryCreated  bool      `json:"story_created"`
	ChaptersTotal int       `json:"chapters_total"`
	ChaptersNew   int       `json:"chapters_new"`
	Strategy      string    `json:"strategy"`
}

// ExtractProfileRequest accepts either a full profile URL or a bare
// username, which is expanded to the canonical profile URL.
type ExtractProfileRequest struct {
	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
}

// Extract handles POST /api/admin/extract
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.ValidationError("invalid request body: %v", err))
		return
	}
	if req.URL == "" {
		writeError(w, h.logger, domain.ValidationError("url is required"))
		return
	}

	h.logger.Info("Admin extraction requested",
		"url", req.URL,
		"verification_mode", req.VerificationMode,
	)

	outcome, err := h.service.ExtractStory(ctx, req.URL, req.VerificationMode)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if outcome.StoryCreated {
		status = http.StatusCreated
	}

	writeJSON(w, h.logger, status, &ExtractResponse{
		Story: &StoryDto{
			ID:            outcome.Story.ID.String(),
			SourceURL:     outcome.Story.SourceURL,
			Title:         outcome.Story.Title,
			Author:        outcome.Story.Author,
			Description:   outcome.Story.Description,
			CoverImageURL: outcome.Story.CoverImageURL,
			Source:        outcome.Story.Source,
			ChapterCount:  outcome.ChaptersTotal,
		},
		StoryCreated:  outcome.StoryCreated,
		ChaptersTotal: outcome.ChaptersTotal,
		ChaptersNew:   outcome.ChaptersNew,
		Strategy:      outcome.StrategyUsed,
	})
}

// ExtractProfile handles POST /api/admin/extract/profile
func (h *ExtractionHandler) ExtractProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExtractProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.ValidationError("invalid request body: %v", err))
		return
	}

	profileURL := req.URL
	if profileURL == "" {
		if req.Username == "" {
			writeError(w, h.logger, domain.ValidationError("either url or username is required"))
			return
		}
		profileURL = storyurl.ProfileURL(req.Username)
	}

	h.logger.Info("Admin profile crawl requested", "profile_url", profileURL)

	report, err := h.crawler.Crawl(ctx, profileURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, report)
}

// enqueuedResponse acknowledges an async job submission
type enqueuedResponse struct {
	Status  string `json:"status"`
	JobType string `json:"job_type"`
}

// CheckStory handles POST /api/admin/stories/{id}/check. The check runs
// asynchronously on the worker.
func (h *ExtractionHandler) CheckStory(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, h.logger, domain.PersistenceError("failed to get story", err))
		return
	}

	payload := map[string]interface{}{
		"story_id":   story.ID.String(),
		"source_url": story.SourceURL,
	}
	if err := h.queue.Enqueue(ctx, domain.JobTypeCheckChapters, payload); err != nil {
		writeError(w, h.logger, domain.PersistenceError("failed to enqueue chapter check", err))
		return
	}

	h.logger.Info("Chapter check enqueued",
		"story_id", story.ID,
		"source_url", story.SourceURL,
	)
	writeJSON(w, h.logger, http.StatusAccepted, &enqueuedResponse{
		Status:  "enqueued",
		JobType: domain.JobTypeCheckChapters,
	})
}
