package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client
}

// NewHealthHandler creates a health handler. Either dependency may be
// nil; its check is skipped.
func NewHealthHandler(logger *slog.Logger, db *sql.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("Database health check failed", "error", err)
			resp.Checks["database"] = "unreachable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["database"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.Error("Redis health check failed", "error", err)
			resp.Checks["redis"] = "unreachable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["redis"] = "ok"
		}
	}

	writeJSON(w, h.logger, status, resp)
}
