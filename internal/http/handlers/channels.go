package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"flamecompanion/internal/domain"
)

type ChannelsHandler struct {
	logger   *slog.Logger
	channels domain.ChannelRepository
	queue    domain.QueueRepository
}

func NewChannelsHandler(logger *slog.Logger, channels domain.ChannelRepository, queue domain.QueueRepository) *ChannelsHandler {
	return &ChannelsHandler{
		logger:   logger,
		channels: channels,
		queue:    queue,
	}
}

type ChannelDto struct {
	ID          string  `json:"id"`
	Platform    string  `json:"platform"`
	ChannelID   string  `json:"channel_id"`
	Name        string  `json:"name"`
	Subscribers int64   `json:"subscribers"`
	TotalViews  int64   `json:"total_views"`
	VideoCount  int64   `json:"video_count"`
	LastSyncAt  *string `json:"last_sync_at,omitempty"`
}

type ChannelsResponse struct {
	Channels []*ChannelDto `json:"channels"`
}

// GetChannels handles GET /api/v1/channels
func (h *ChannelsHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channels, err := h.channels.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list channels", "error", err)
		writeError(w, h.logger, domain.PersistenceError("failed to list channels", err))
		return
	}

	dtos := make([]*ChannelDto, 0, len(channels))
	for _, channel := range channels {
		dto := &ChannelDto{
			ID:          channel.ID.String(),
			Platform:    channel.Platform,
			ChannelID:   channel.ChannelID,
			Name:        channel.Name,
			Subscribers: channel.Subscribers,
			TotalViews:  channel.TotalViews,
			VideoCount:  channel.VideoCount,
		}
		if channel.LastSyncAt != nil {
			formatted := channel.LastSyncAt.Format(time.RFC3339)
			dto.LastSyncAt = &formatted
		}
		dtos = append(dtos, dto)
	}

	writeJSON(w, h.logger, http.StatusOK, &ChannelsResponse{Channels: dtos})
}

// SyncChannels handles POST /api/admin/channels/sync. The sync runs
// asynchronously on the worker.
func (h *ChannelsHandler) SyncChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.queue.Enqueue(ctx, domain.JobTypeSyncChannels, map[string]interface{}{
		"requested_at": time.Now().Format(time.RFC3339),
	}); err != nil {
		writeError(w, h.logger, domain.PersistenceError("failed to enqueue channel sync", err))
		return
	}

	h.logger.Info("Channel sync enqueued")
	writeJSON(w, h.logger, http.StatusAccepted, &enqueuedResponse{
		Status:  "enqueued",
		JobType: domain.JobTypeSyncChannels,
	})
}
