package domain

import (
	"time"

	"github.com/google/uuid"
)

// Channel is a tracked creator channel on a third-party metrics platform
type Channel struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Platform  string    `json:"platform" db:"platform"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	Name      string    `json:"name" db:"name"`

	// Latest synced statistics
	Subscribers int64      `json:"subscribers" db:"subscribers"`
	TotalViews  int64      `json:"total_views" db:"total_views"`
	VideoCount  int64      `json:"video_count" db:"video_count"`
	LastSyncAt  *time.Time `json:"last_sync_at" db:"last_sync_at"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// Metrics platform constants
const (
	PlatformVideo = "video"
	PlatformLive  = "live"
)

// IsValidPlatform checks if the metrics platform is supported
func (c *Channel) IsValidPlatform() bool {
	return c.Platform == PlatformVideo || c.Platform == PlatformLive
}

// ChannelStats carries one snapshot fetched from a metrics API
type ChannelStats struct {
	Subscribers int64
	TotalViews  int64
	VideoCount  int64
}
