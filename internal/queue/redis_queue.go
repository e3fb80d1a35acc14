package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	jobsKey    = "arvo:jobs"
	delayedKey = "arvo:jobs:delayed"
	detailKey  = "arvo:job:"
)

// RedisQueue is a Redis-backed job queue. Jobs are mirrored to Postgres so
// failures survive a Redis flush.
type RedisQueue struct {
	client   *redis.Client
	db       *gorm.DB
	ctx      context.Context
	handlers map[JobType]JobHandler
	mu       sync.RWMutex
}

// NewRedisQueue creates a new Redis queue
func NewRedisQueue(client *redis.Client, db *gorm.DB) *RedisQueue {
	return &RedisQueue{
		client:   client,
		db:       db,
		ctx:      context.Background(),
		handlers: make(map[JobType]JobHandler),
	}
}

// RegisterHandler registers a handler for a job type
func (q *RedisQueue) RegisterHandler(jobType JobType, handler JobHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

// handler returns the registered handler for a job type
func (q *RedisQueue) handler(jobType JobType) (JobHandler, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	h, ok := q.handlers[jobType]
	return h, ok
}

// Enqueue adds a job to the queue
func (q *RedisQueue) Enqueue(job *Job) error {
	return q.push(job, 0)
}

// EnqueueIn adds a job to the queue that becomes runnable after a delay
func (q *RedisQueue) EnqueueIn(job *Job, delay time.Duration) error {
	return q.push(job, delay)
}

func (q *RedisQueue) push(job *Job, delay time.Duration) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = DefaultMaxRetries
	}
	job.Status = JobStatusPending
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to persist job: %w", err)
	}

	if delay > 0 {
		runAt := time.Now().Add(delay)
		if err := q.client.ZAdd(q.ctx, delayedKey, &redis.Z{
			Score:  float64(runAt.Unix()),
			Member: jobBytes,
		}).Err(); err != nil {
			return fmt.Errorf("failed to add job to delayed queue: %w", err)
		}
	} else {
		if err := q.client.LPush(q.ctx, jobsKey, jobBytes).Err(); err != nil {
			return fmt.Errorf("failed to push job to queue: %w", err)
		}
	}

	if err := q.client.Set(q.ctx, detailKey+job.ID.String(), jobBytes, jobTTL).Err(); err != nil {
		log.Printf("Warning: failed to store job details for %s: %v", job.ID, err)
	}

	return nil
}

// Dequeue pops the next runnable job, or returns nil when none is available
func (q *RedisQueue) Dequeue() (*Job, error) {
	q.moveReadyDelayedJobs()

	result := q.client.BRPop(q.ctx, 1*time.Second, jobsKey)
	if result.Err() != nil {
		if result.Err() == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop job from queue: %w", result.Err())
	}

	vals := result.Val()
	if len(vals) < 2 {
		return nil, fmt.Errorf("unexpected result format from BRPOP")
	}

	var job Job
	if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	q.updateStatus(&job, JobStatusProcessing, nil, nil)
	return &job, nil
}

// moveReadyDelayedJobs promotes delayed jobs whose run time has arrived
func (q *RedisQueue) moveReadyDelayedJobs() {
	now := fmt.Sprintf("%d", time.Now().Unix())

	jobs, err := q.client.ZRangeByScore(q.ctx, delayedKey, &redis.ZRangeBy{
		Min: "0",
		Max: now,
	}).Result()
	if err != nil {
		log.Printf("Error getting ready delayed jobs: %v", err)
		return
	}

	for _, jobStr := range jobs {
		if err := q.client.LPush(q.ctx, jobsKey, jobStr).Err(); err != nil {
			log.Printf("Error moving delayed job to main queue: %v", err)
			continue
		}
		q.client.ZRem(q.ctx, delayedKey, jobStr)
	}
}

// Complete marks a job as completed
func (q *RedisQueue) Complete(job *Job, result interface{}) {
	q.updateStatus(job, JobStatusCompleted, result, nil)
}

// Fail marks a job as failed and schedules a retry while attempts remain
func (q *RedisQueue) Fail(job *Job, jobErr error) {
	if job.RetryCount < job.MaxRetries {
		job.RetryCount++
		delay := time.Duration(job.RetryCount) * 5 * time.Second
		nextRetry := time.Now().Add(delay)
		job.NextRetry = &nextRetry
		q.updateStatus(job, JobStatusPending, nil, jobErr)

		jobBytes, err := json.Marshal(job)
		if err != nil {
			log.Printf("Error marshaling job %s for retry: %v", job.ID, err)
			return
		}
		if err := q.client.ZAdd(q.ctx, delayedKey, &redis.Z{
			Score:  float64(nextRetry.Unix()),
			Member: jobBytes,
		}).Err(); err != nil {
			log.Printf("Error scheduling retry of job %s: %v", job.ID, err)
		}
		return
	}

	q.updateStatus(job, JobStatusFailed, nil, jobErr)
}

// updateStatus syncs a job's state to Postgres and the Redis detail key
func (q *RedisQueue) updateStatus(job *Job, status JobStatus, result interface{}, jobErr error) {
	job.Status = status
	job.UpdatedAt = time.Now()
	if jobErr != nil {
		job.Error = jobErr.Error()
	}
	if result != nil {
		if resultBytes, err := json.Marshal(result); err == nil {
			job.Result = resultBytes
		}
	}

	updates := map[string]interface{}{
		"status":      job.Status,
		"retry_count": job.RetryCount,
		"next_retry":  job.NextRetry,
		"error":       job.Error,
		"result":      job.Result,
		"updated_at":  job.UpdatedAt,
	}
	if err := q.db.Model(&Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		log.Printf("Warning: failed to update job %s status: %v", job.ID, err)
	}

	if jobBytes, err := json.Marshal(job); err == nil {
		if err := q.client.Set(q.ctx, detailKey+job.ID.String(), jobBytes, jobTTL).Err(); err != nil {
			log.Printf("Warning: failed to update job details for %s: %v", job.ID, err)
		}
	}
}
