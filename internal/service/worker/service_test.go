package worker

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flamecompanion/internal/config"
	"flamecompanion/internal/domain"
	"flamecompanion/internal/service/stats"
)

type stubQueue struct {
	jobs      []*domain.QueueJob
	completed []string
	failed    []string
	retries   int
}

func (q *stubQueue) Enqueue(_ context.Context, jobType string, _ interface{}) error {
	q.jobs = append(q.jobs, &domain.QueueJob{ID: uuid.New().String(), Type: jobType})
	return nil
}

func (q *stubQueue) Dequeue(_ context.Context, jobType string) (*domain.QueueJob, error) {
	for i, job := range q.jobs {
		if job.Type == jobType {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			return job, nil
		}
	}
	return nil, nil
}

func (q *stubQueue) Complete(_ context.Context, jobID string) error {
	q.completed = append(q.completed, jobID)
	return nil
}

func (q *stubQueue) Fail(_ context.Context, jobID string, _ string) error {
	q.failed = append(q.failed, jobID)
	return nil
}

func (q *stubQueue) GetPendingCount(_ context.Context, jobType string) (int, error) {
	count := 0
	for _, job := range q.jobs {
		if job.Type == jobType {
			count++
		}
	}
	return count, nil
}

func (q *stubQueue) ProcessRetryJobs(_ context.Context, _ string) error {
	q.retries++
	return nil
}

type stubChannelRepo struct {
	channels map[uuid.UUID]*domain.Channel
}

func newStubChannelRepo() *stubChannelRepo {
	return &stubChannelRepo{channels: make(map[uuid.UUID]*domain.Channel)}
}

func (r *stubChannelRepo) GetByPlatformID(_ context.Context, platform, channelID string) (*domain.Channel, error) {
	for _, c := range r.channels {
		if c.Platform == platform && c.ChannelID == channelID {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *stubChannelRepo) List(_ context.Context) ([]*domain.Channel, error) {
	out := make([]*domain.Channel, 0, len(r.channels))
	for _, c := range r.channels {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubChannelRepo) Create(_ context.Context, channel *domain.Channel) error {
	r.channels[channel.ID] = channel
	return nil
}

func (r *stubChannelRepo) UpdateStats(_ context.Context, id uuid.UUID, s domain.ChannelStats) error {
	c, ok := r.channels[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Subscribers = s.Subscribers
	c.TotalViews = s.TotalViews
	c.VideoCount = s.VideoCount
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessChapterCheckRejectsBadPayload(t *testing.T) {
	processor := NewJobProcessor(testLogger(), nil, nil)

	err := processor.ProcessChapterCheck(context.Background(), map[string]interface{}{}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_url")

	err = processor.ProcessChapterCheck(context.Background(), map[string]interface{}{"source_url": 42}, testLogger())
	require.Error(t, err)
}

func TestProcessChannelSyncRequiresSyncer(t *testing.T) {
	processor := NewJobProcessor(testLogger(), nil, nil)

	err := processor.ProcessChannelSync(context.Background(), nil, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stats syncer configured")
}

func TestProcessJobCompletesSuccessfulSync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"channel_id":"vid-1","name":"Flame Readings","subscribers":5,"total_views":10,"video_count":2}]`)
	}))
	defer server.Close()

	syncer := stats.NewSyncer(newStubChannelRepo(), testLogger(), map[string]stats.Endpoint{
		domain.PlatformVideo: {URL: server.URL},
	})
	processor := NewJobProcessor(testLogger(), nil, syncer)

	queue := &stubQueue{}
	service := New(&config.Config{}, testLogger(), queue, processor)
	defer service.Stop()

	job := &domain.QueueJob{ID: "job-1", Type: domain.JobTypeSyncChannels}
	service.processJob(job)

	assert.Equal(t, []string{"job-1"}, queue.completed)
	assert.Empty(t, queue.failed)
	assert.Equal(t, int64(1), service.stats.JobsSucceeded)
}

func TestProcessJobFailsUnknownType(t *testing.T) {
	queue := &stubQueue{}
	service := New(&config.Config{}, testLogger(), queue, NewJobProcessor(testLogger(), nil, nil))
	defer service.Stop()

	job := &domain.QueueJob{ID: "job-2", Type: "mystery"}
	service.processJob(job)

	assert.Equal(t, []string{"job-2"}, queue.failed)
	assert.Empty(t, queue.completed)
	assert.Equal(t, int64(1), service.stats.JobsFailed)
}

func TestProcessPendingJobsPromotesRetries(t *testing.T) {
	queue := &stubQueue{}
	service := New(&config.Config{}, testLogger(), queue, NewJobProcessor(testLogger(), nil, nil))
	defer service.Stop()

	service.processPendingJobs()

	// One retry promotion per job type per cycle
	assert.Equal(t, 2, queue.retries)
}
