package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"flamecompanion/internal/domain"
)

// ChannelRepository implements the domain.ChannelRepository interface using PostgreSQL
type ChannelRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewChannelRepository creates a new PostgreSQL channel repository
func NewChannelRepository(db *sql.DB, logger *slog.Logger) *ChannelRepository {
	return &ChannelRepository{
		db:     db,
		logger: logger,
	}
}

const channelSelectFields = `
	SELECT id, platform, channel_id, name, subscribers, total_views, video_count,
	       last_sync_at, created_at, updated_at
	FROM channels
`

// GetByPlatformID retrieves a channel by its platform-native identifier
func (r *ChannelRepository) GetByPlatformID(ctx context.Context, platform, channelID string) (*domain.Channel, error) {
	row := r.db.QueryRowContext(ctx,
		channelSelectFields+"WHERE platform = $1 AND channel_id = $2",
		platform, channelID)

	channel, err := r.scanChannel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to query channel",
			"error", err,
			"platform", platform,
			"channel_id", channelID,
		)
		return nil, fmt.Errorf("failed to query channel: %w", err)
	}
	return channel, nil
}

// List retrieves all tracked channels
func (r *ChannelRepository) List(ctx context.Context) ([]*domain.Channel, error) {
	rows, err := r.db.QueryContext(ctx, channelSelectFields+"ORDER BY platform, name")
	if err != nil {
		r.logger.Error("Failed to list channels", "error", err)
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*domain.Channel
	for rows.Next() {
		channel, err := r.scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channels: %w", err)
	}
	return channels, nil
}

// Create inserts a new tracked channel
func (r *ChannelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	query := `
		INSERT INTO channels (
			id, platform, channel_id, name, subscribers, total_views, video_count, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := r.db.ExecContext(ctx, query,
		channel.ID,
		channel.Platform,
		channel.ChannelID,
		channel.Name,
		channel.Subscribers,
		channel.TotalViews,
		channel.VideoCount,
		channel.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create channel",
			"error", err,
			"platform", channel.Platform,
			"channel_id", channel.ChannelID,
		)
		return fmt.Errorf("failed to create channel: %w", err)
	}

	r.logger.Info("Channel created successfully",
		"id", channel.ID,
		"platform", channel.Platform,
		"name", channel.Name,
	)
	return nil
}

// UpdateStats writes the latest synced statistics for a channel
func (r *ChannelRepository) UpdateStats(ctx context.Context, id uuid.UUID, stats domain.ChannelStats) error {
	query := `
		UPDATE channels SET
			subscribers = $2,
			total_views = $3,
			video_count = $4,
			last_sync_at = $5,
			updated_at = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		id,
		stats.Subscribers,
		stats.TotalViews,
		stats.VideoCount,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to update channel stats",
			"error", err,
			"id", id,
		)
		return fmt.Errorf("failed to update channel stats: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("No channel found for stats update", "id", id)
		return fmt.Errorf("channel not found: %s", id)
	}

	r.logger.Debug("Channel stats updated",
		"id", id,
		"subscribers", stats.Subscribers,
	)
	return nil
}

func (r *ChannelRepository) scanChannel(row scanner) (*domain.Channel, error) {
	channel := &domain.Channel{}
	var lastSyncAt, updatedAt sql.NullTime

	err := row.Scan(
		&channel.ID,
		&channel.Platform,
		&channel.ChannelID,
		&channel.Name,
		&channel.Subscribers,
		&channel.TotalViews,
		&channel.VideoCount,
		&lastSyncAt,
		&channel.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastSyncAt.Valid {
		channel.LastSyncAt = &lastSyncAt.Time
	}
	if updatedAt.Valid {
		channel.UpdatedAt = &updatedAt.Time
	}
	return channel, nil
}
