package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"flamecompanion/internal/domain"
)

// QueueRepository implements the domain.QueueRepository interface using Redis
type QueueRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewQueueRepository creates a new Redis queue repository
func NewQueueRepository(client *redis.Client, logger *slog.Logger) *QueueRepository {
	return &QueueRepository{
		client: client,
		logger: logger,
	}
}

// Redis key patterns
const (
	queueKeyPrefix   = "queue:"      // queue:job_type
	jobKeyPrefix     = "job:"        // job:job_id
	processingPrefix = "processing:" // processing:job_type
	retryKeyPrefix   = "retry:"      // retry:job_type
	deadLetterPrefix = "dead:"       // dead:job_type
	statsKeyPrefix   = "stats:"      // stats:job_type
)

// Job retry configuration
const (
	maxRetries        = 3
	initialBackoffSec = 2
	maxBackoffSec     = 600       // 10 minutes; chapter checks hit a slow origin
	jobTTLSec         = 3600 * 24 // 24 hours
)

// jobRecord is the Redis-side representation of a queued job
type jobRecord struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	Status     string                 `json:"status"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  *time.Time             `json:"updated_at,omitempty"`
	RetryCount int                    `json:"retry_count"`
	MaxRetries int                    `json:"max_retries"`
	NextRetry  *time.Time             `json:"next_retry,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Enqueue adds a new job to the queue
func (r *QueueRepository) Enqueue(ctx context.Context, jobType string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var payloadMap map[string]interface{}
	if err := json.Unmarshal(payloadBytes, &payloadMap); err != nil {
		return fmt.Errorf("failed to unmarshal payload to map: %w", err)
	}

	job := &jobRecord{
		ID:         uuid.New().String(),
		Type:       jobType,
		Payload:    payloadMap,
		Status:     domain.JobStatusPending,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: maxRetries,
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := r.client.TxPipeline()

	// Store job metadata in hash
	jobKey := jobKeyPrefix + job.ID
	pipe.HMSet(ctx, jobKey, map[string]interface{}{
		"data":        string(jobData),
		"status":      job.Status,
		"type":        job.Type,
		"created_at":  job.CreatedAt.Unix(),
		"retry_count": job.RetryCount,
	})
	pipe.Expire(ctx, jobKey, time.Duration(jobTTLSec)*time.Second)

	// Add job ID to queue
	queueKey := queueKeyPrefix + jobType
	pipe.LPush(ctx, queueKey, job.ID)

	// Update stats
	statsKey := statsKeyPrefix + jobType
	pipe.HIncrBy(ctx, statsKey, "total_enqueued", 1)
	pipe.HIncrBy(ctx, statsKey, "pending", 1)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	r.logger.Info("Job enqueued",
		"job_id", job.ID,
		"job_type", jobType,
	)

	return nil
}

// Dequeue retrieves the next job from the queue with blocking
func (r *QueueRepository) Dequeue(ctx context.Context, jobType string) (*domain.QueueJob, error) {
	queueKey := queueKeyPrefix + jobType
	processingKey := processingPrefix + jobType

	// Atomic move from queue to processing list so jobs survive a
	// worker crash mid-flight
	result, err := r.client.BRPopLPush(ctx, queueKey, processingKey, 30*time.Second).Result()
	if err != nil {
		if err == redis.Nil {
			// No jobs available (timeout)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	jobID := result

	jobKey := jobKeyPrefix + jobID
	jobData, err := r.client.HGet(ctx, jobKey, "data").Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Warn("Job data not found, removing from processing", "job_id", jobID)
			r.client.LRem(ctx, processingKey, 1, jobID)
			return nil, fmt.Errorf("job data not found: %s", jobID)
		}
		return nil, fmt.Errorf("failed to get job data: %w", err)
	}

	var record jobRecord
	if err := json.Unmarshal([]byte(jobData), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	now := time.Now()
	record.Status = domain.JobStatusProcessing
	record.UpdatedAt = &now

	updatedData, _ := json.Marshal(record)
	pipe := r.client.TxPipeline()
	pipe.HMSet(ctx, jobKey, map[string]interface{}{
		"data":       string(updatedData),
		"status":     record.Status,
		"updated_at": now.Unix(),
	})

	statsKey := statsKeyPrefix + jobType
	pipe.HIncrBy(ctx, statsKey, "pending", -1)
	pipe.HIncrBy(ctx, statsKey, "processing", 1)

	_, err = pipe.Exec(ctx)
	if err != nil {
		r.logger.Error("Failed to update job status", "error", err, "job_id", jobID)
	}

	domainJob := &domain.QueueJob{
		ID:        record.ID,
		Type:      record.Type,
		Payload:   record.Payload,
		Status:    record.Status,
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
	}
	if record.UpdatedAt != nil {
		updatedAtStr := record.UpdatedAt.Format(time.RFC3339)
		domainJob.UpdatedAt = &updatedAtStr
	}

	r.logger.Info("Job dequeued",
		"job_id", record.ID,
		"job_type", jobType,
		"retry_count", record.RetryCount,
	)

	return domainJob, nil
}

// Complete marks a job as completed and removes it from processing
func (r *QueueRepository) Complete(ctx context.Context, jobID string) error {
	jobKey := jobKeyPrefix + jobID

	jobData, err := r.client.HGet(ctx, jobKey, "data").Result()
	if err != nil {
		return fmt.Errorf("failed to get job for completion: %w", err)
	}

	var record jobRecord
	if err := json.Unmarshal([]byte(jobData), &record); err != nil {
		return fmt.Errorf("failed to unmarshal job for completion: %w", err)
	}

	processingKey := processingPrefix + record.Type
	now := time.Now()

	record.Status = domain.JobStatusCompleted
	record.UpdatedAt = &now

	updatedData, _ := json.Marshal(record)

	pipe := r.client.TxPipeline()
	pipe.HMSet(ctx, jobKey, map[string]interface{}{
		"data":       string(updatedData),
		"status":     record.Status,
		"updated_at": now.Unix(),
	})
	pipe.LRem(ctx, processingKey, 1, jobID)

	statsKey := statsKeyPrefix + record.Type
	pipe.HIncrBy(ctx, statsKey, "processing", -1)
	pipe.HIncrBy(ctx, statsKey, "completed", 1)

	// Completed jobs only need to stick around briefly for inspection
	pipe.Expire(ctx, jobKey, time.Hour*6)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	r.logger.Info("Job completed", "job_id", jobID, "job_type", record.Type)
	return nil
}

// Fail marks a job as failed and handles retry logic
func (r *QueueRepository) Fail(ctx context.Context, jobID string, errorMsg string) error {
	jobKey := jobKeyPrefix + jobID

	jobData, err := r.client.HGet(ctx, jobKey, "data").Result()
	if err != nil {
		return fmt.Errorf("failed to get job for failure: %w", err)
	}

	var record jobRecord
	if err := json.Unmarshal([]byte(jobData), &record); err != nil {
		return fmt.Errorf("failed to unmarshal job for failure: %w", err)
	}

	processingKey := processingPrefix + record.Type
	now := time.Now()

	record.Error = errorMsg
	record.UpdatedAt = &now
	record.RetryCount++

	pipe := r.client.TxPipeline()

	if record.RetryCount <= record.MaxRetries {
		// Exponential backoff before the next attempt
		backoffSec := int(math.Min(
			float64(initialBackoffSec)*math.Pow(2, float64(record.RetryCount-1)),
			float64(maxBackoffSec),
		))
		nextRetry := now.Add(time.Duration(backoffSec) * time.Second)
		record.NextRetry = &nextRetry
		record.Status = domain.JobStatusPending

		retryKey := retryKeyPrefix + record.Type
		pipe.ZAdd(ctx, retryKey, redis.Z{
			Score:  float64(nextRetry.Unix()),
			Member: jobID,
		})

		r.logger.Info("Job scheduled for retry",
			"job_id", jobID,
			"job_type", record.Type,
			"retry_count", record.RetryCount,
			"next_retry", nextRetry,
			"error", errorMsg,
		)
	} else {
		// Max retries exceeded, move to dead letter queue
		record.Status = domain.JobStatusFailed
		deadKey := deadLetterPrefix + record.Type
		pipe.LPush(ctx, deadKey, jobID)

		statsKey := statsKeyPrefix + record.Type
		pipe.HIncrBy(ctx, statsKey, "failed", 1)

		r.logger.Error("Job failed permanently",
			"job_id", jobID,
			"job_type", record.Type,
			"retry_count", record.RetryCount,
			"error", errorMsg,
		)
	}

	updatedData, _ := json.Marshal(record)
	pipe.HMSet(ctx, jobKey, map[string]interface{}{
		"data":        string(updatedData),
		"status":      record.Status,
		"updated_at":  now.Unix(),
		"retry_count": record.RetryCount,
		"error":       errorMsg,
	})
	pipe.LRem(ctx, processingKey, 1, jobID)

	statsKey := statsKeyPrefix + record.Type
	pipe.HIncrBy(ctx, statsKey, "processing", -1)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to handle job failure: %w", err)
	}

	return nil
}

// GetPendingCount returns the number of pending jobs for a job type
func (r *QueueRepository) GetPendingCount(ctx context.Context, jobType string) (int, error) {
	queueKey := queueKeyPrefix + jobType
	count, err := r.client.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return int(count), nil
}

// ProcessRetryJobs moves jobs from retry queue back to main queue when ready
func (r *QueueRepository) ProcessRetryJobs(ctx context.Context, jobType string) error {
	retryKey := retryKeyPrefix + jobType
	queueKey := queueKeyPrefix + jobType
	now := time.Now()

	jobs, err := r.client.ZRangeByScoreWithScores(ctx, retryKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get retry jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()

	for _, job := range jobs {
		jobID := job.Member.(string)

		pipe.ZRem(ctx, retryKey, jobID)
		pipe.LPush(ctx, queueKey, jobID)

		statsKey := statsKeyPrefix + jobType
		pipe.HIncrBy(ctx, statsKey, "pending", 1)
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to process retry jobs: %w", err)
	}

	r.logger.Info("Processed retry jobs",
		"job_type", jobType,
		"count", len(jobs),
	)

	return nil
}

// GetQueueStats returns statistics for a job type
func (r *QueueRepository) GetQueueStats(ctx context.Context, jobType string) (map[string]int64, error) {
	statsKey := statsKeyPrefix + jobType
	stats, err := r.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	result := make(map[string]int64)
	for key, value := range stats {
		if val, err := strconv.ParseInt(value, 10, 64); err == nil {
			result[key] = val
		}
	}

	queueKey := queueKeyPrefix + jobType
	processingKey := processingPrefix + jobType
	retryKey := retryKeyPrefix + jobType
	deadKey := deadLetterPrefix + jobType

	if pending, err := r.client.LLen(ctx, queueKey).Result(); err == nil {
		result["current_pending"] = pending
	}
	if processing, err := r.client.LLen(ctx, processingKey).Result(); err == nil {
		result["current_processing"] = processing
	}
	if retrying, err := r.client.ZCard(ctx, retryKey).Result(); err == nil {
		result["current_retrying"] = retrying
	}
	if dead, err := r.client.LLen(ctx, deadKey).Result(); err == nil {
		result["current_dead"] = dead
	}

	return result, nil
}
