package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNoHandler is returned when a dequeued job has no registered handler
var ErrNoHandler = errors.New("no handler registered for job type")

// JobType defines the type of job
type JobType string

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

const (
	// DefaultMaxRetries is applied when a job does not set its own limit
	DefaultMaxRetries = 3

	// jobTTL bounds how long finished job metadata lives in Redis
	jobTTL = 24 * time.Hour
)

// Job represents a background job. Rows are persisted for audit; the live
// copy travels through Redis.
type Job struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status"`
	RetryCount int             `json:"retry_count" gorm:"default:0"`
	MaxRetries int             `json:"max_retries" gorm:"default:3"`
	NextRetry  *time.Time      `json:"next_retry,omitempty"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the application generates the row id.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// JobHandler is a function that processes a job
type JobHandler func(ctx context.Context, job Job) (interface{}, error)

// QueueInterface defines the operations job producers and the worker pool use
type QueueInterface interface {
	RegisterHandler(jobType JobType, handler JobHandler)
	Enqueue(job *Job) error
	EnqueueIn(job *Job, delay time.Duration) error
}
