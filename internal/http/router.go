package http

import (
	"log/slog"
	"net/http"

	"flamecompanion/internal/http/handlers"
	"flamecompanion/internal/http/middleware"
)

type Router struct {
	mux               *http.ServeMux
	adminAuth         *middleware.AdminAuth
	healthHandler     *handlers.HealthHandler
	storiesHandler    *handlers.StoriesHandler
	channelsHandler   *handlers.ChannelsHandler
	extractionHandler *handlers.ExtractionHandler
}

func NewRouter(
	logger *slog.Logger,
	adminAPIKey string,
	healthHandler *handlers.HealthHandler,
	storiesHandler *handlers.StoriesHandler,
	channelsHandler *handlers.ChannelsHandler,
	extractionHandler *handlers.ExtractionHandler,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		adminAuth:         middleware.NewAdminAuth(adminAPIKey, logger),
		healthHandler:     healthHandler,
		storiesHandler:    storiesHandler,
		channelsHandler:   channelsHandler,
		extractionHandler: extractionHandler,
	}
}

func (r *Router) SetupRoutes() http.Handler {
	// Health check
	r.mux.HandleFunc("GET /health", r.healthHandler.HandleHealth)

	// API v1 routes - read-only catalog
	r.mux.HandleFunc("GET /api/v1/stories", r.storiesHandler.GetStories)
	r.mux.HandleFunc("GET /api/v1/stories/{id}/chapters", r.storiesHandler.GetStoryChapters)
	r.mux.HandleFunc("GET /api/v1/channels", r.channelsHandler.GetChannels)

	// Admin routes - extraction and sync, API-key protected
	r.admin("POST /api/admin/extract", r.extractionHandler.Extract)
	r.admin("POST /api/admin/extract/profile", r.extractionHandler.ExtractProfile)
	r.admin("POST /api/admin/stories/{id}/check", r.extractionHandler.CheckStory)
	r.admin("POST /api/admin/channels/sync", r.channelsHandler.SyncChannels)

	return middleware.CORS(r.mux)
}

func (r *Router) admin(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, r.adminAuth.Middleware(handler))
}
