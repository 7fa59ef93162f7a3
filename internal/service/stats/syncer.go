package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"flamecompanion/internal/domain"
)

const (
	fetchTimeout  = 10 * time.Second
	bodyLimit     = 1024 * 1024 // 1MB
	syncUserAgent = "FlameCompanion/1.0"
)

// Endpoint describes one third-party metrics API
type Endpoint struct {
	URL    string
	APIKey string
}

// Syncer pulls creator-channel statistics from external metrics APIs
// and upserts them into the channel repository.
type Syncer struct {
	channels  domain.ChannelRepository
	logger    *slog.Logger
	client    *http.Client
	endpoints map[string]Endpoint // keyed by platform
}

// NewSyncer creates a stats syncer. Platforms without a configured
// endpoint URL are skipped during sync.
func NewSyncer(channels domain.ChannelRepository, logger *slog.Logger, endpoints map[string]Endpoint) *Syncer {
	return &Syncer{
		channels:  channels,
		logger:    logger,
		client:    &http.Client{Timeout: fetchTimeout},
		endpoints: endpoints,
	}
}

// SyncReport summarizes one sync run
type SyncReport struct {
	Synced  int `json:"synced"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// channelPayload is the wire shape both metrics APIs share
type channelPayload struct {
	ChannelID   string `json:"channel_id"`
	Name        string `json:"name"`
	Subscribers int64  `json:"subscribers"`
	TotalViews  int64  `json:"total_views"`
	VideoCount  int64  `json:"video_count"`
}

// SyncAll fetches statistics from every configured endpoint. A platform
// failing wholesale is logged and counted but does not abort the others.
func (s *Syncer) SyncAll(ctx context.Context) (*SyncReport, error) {
	report := &SyncReport{}

	configured := 0
	for _, platform := range []string{domain.PlatformVideo, domain.PlatformLive} {
		endpoint, ok := s.endpoints[platform]
		if !ok || endpoint.URL == "" {
			s.logger.Debug("Skipping platform without configured endpoint", "platform", platform)
			continue
		}
		configured++

		if err := s.syncPlatform(ctx, platform, endpoint, report); err != nil {
			s.logger.Error("Platform sync failed",
				"error", err,
				"platform", platform,
			)
			report.Failed++
		}
	}

	if configured == 0 {
		return nil, fmt.Errorf("no metrics endpoints configured")
	}

	s.logger.Info("Channel stats sync finished",
		"synced", report.Synced,
		"created", report.Created,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *Syncer) syncPlatform(ctx context.Context, platform string, endpoint Endpoint, report *SyncReport) error {
	payloads, err := s.fetchChannels(ctx, endpoint)
	if err != nil {
		return err
	}

	s.logger.Info("Fetched channel stats",
		"platform", platform,
		"count", len(payloads),
	)

	for _, payload := range payloads {
		if payload.ChannelID == "" {
			s.logger.Warn("Skipping channel entry without an ID", "platform", platform)
			report.Failed++
			continue
		}

		created, err := s.upsertChannel(ctx, platform, payload)
		if err != nil {
			s.logger.Error("Failed to upsert channel",
				"error", err,
				"platform", platform,
				"channel_id", payload.ChannelID,
			)
			report.Failed++
			continue
		}
		if created {
			report.Created++
		}
		report.Synced++
	}
	return nil
}

func (s *Syncer) fetchChannels(ctx context.Context, endpoint Endpoint) ([]channelPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", syncUserAgent)
	req.Header.Set("Accept", "application/json")
	if endpoint.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+endpoint.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payloads []channelPayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("failed to decode stats payload: %w", err)
	}
	return payloads, nil
}

func (s *Syncer) upsertChannel(ctx context.Context, platform string, payload channelPayload) (bool, error) {
	stats := domain.ChannelStats{
		Subscribers: payload.Subscribers,
		TotalViews:  payload.TotalViews,
		VideoCount:  payload.VideoCount,
	}

	created := false
	channel, err := s.channels.GetByPlatformID(ctx, platform, payload.ChannelID)
	if err != nil {
		if err != sql.ErrNoRows {
			return false, fmt.Errorf("failed to look up channel: %w", err)
		}

		channel = &domain.Channel{
			ID:        uuid.New(),
			Platform:  platform,
			ChannelID: payload.ChannelID,
			Name:      payload.Name,
			CreatedAt: time.Now(),
		}
		if err := s.channels.Create(ctx, channel); err != nil {
			return false, fmt.Errorf("failed to create channel: %w", err)
		}
		created = true
	}

	if err := s.channels.UpdateStats(ctx, channel.ID, stats); err != nil {
		return created, err
	}
	return created, nil
}
