package stats

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flamecompanion/internal/domain"
)

type memChannelRepo struct {
	mu       sync.Mutex
	channels map[uuid.UUID]*domain.Channel
}

func newMemChannelRepo() *memChannelRepo {
	return &memChannelRepo{channels: make(map[uuid.UUID]*domain.Channel)}
}

func (r *memChannelRepo) GetByPlatformID(_ context.Context, platform, channelID string) (*domain.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.channels {
		if c.Platform == platform && c.ChannelID == channelID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memChannelRepo) List(_ context.Context) ([]*domain.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Channel, 0, len(r.channels))
	for _, c := range r.channels {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memChannelRepo) Create(_ context.Context, channel *domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *channel
	r.channels[channel.ID] = &clone
	return nil
}

func (r *memChannelRepo) UpdateStats(_ context.Context, id uuid.UUID, stats domain.ChannelStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.channels[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Subscribers = stats.Subscribers
	c.TotalViews = stats.TotalViews
	c.VideoCount = stats.VideoCount
	now := time.Now()
	c.LastSyncAt = &now
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyncAllCreatesAndUpdatesChannels(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"channel_id":"vid-1","name":"Flame Readings","subscribers":1200,"total_views":54000,"video_count":37},
			{"channel_id":"vid-2","name":"Story Hour","subscribers":80,"total_views":900,"video_count":4}
		]`)
	}))
	defer server.Close()

	repo := newMemChannelRepo()
	syncer := NewSyncer(repo, discardLogger(), map[string]Endpoint{
		domain.PlatformVideo: {URL: server.URL, APIKey: "secret-key"},
	})

	report, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Failed)

	channel, err := repo.GetByPlatformID(context.Background(), domain.PlatformVideo, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "Flame Readings", channel.Name)
	assert.Equal(t, int64(1200), channel.Subscribers)
	require.NotNil(t, channel.LastSyncAt)

	// Second run updates in place rather than creating duplicates
	report, err = syncer.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 0, report.Created)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSyncAllSkipsUnconfiguredPlatforms(t *testing.T) {
	syncer := NewSyncer(newMemChannelRepo(), discardLogger(), map[string]Endpoint{})

	_, err := syncer.SyncAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no metrics endpoints configured")
}

func TestSyncAllSurvivesOneFailingPlatform(t *testing.T) {
	videoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"channel_id":"vid-1","name":"Flame Readings","subscribers":10,"total_views":20,"video_count":3}]`)
	}))
	defer videoServer.Close()

	liveServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer liveServer.Close()

	repo := newMemChannelRepo()
	syncer := NewSyncer(repo, discardLogger(), map[string]Endpoint{
		domain.PlatformVideo: {URL: videoServer.URL},
		domain.PlatformLive:  {URL: liveServer.URL},
	})

	report, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.Failed)
}

func TestSyncAllSkipsEntriesWithoutChannelID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"name":"anonymous","subscribers":5}]`)
	}))
	defer server.Close()

	repo := newMemChannelRepo()
	syncer := NewSyncer(repo, discardLogger(), map[string]Endpoint{
		domain.PlatformLive: {URL: server.URL},
	})

	report, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	assert.Equal(t, 1, report.Failed)
}
