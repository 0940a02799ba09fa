// Package jobs defines the asynchronous cleaning job model: publish a file
// to be cleaned, let a worker pick it up, track its lifecycle.
package jobs

import (
	"context"
	"time"
)

// JobType identifies what kind of work a job carries.
type JobType string

const (
	// JobTypeCleanFile is a request to run the cleaning pipeline over one file.
	JobTypeCleanFile JobType = "clean_file"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// CleanFileJob asks a worker to clean one input file.
type CleanFileJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// InputPath is the file to clean, a local path or a gs:// URI.
	InputPath string `json:"input_path"`

	// OutputPath is where the cleaned file goes. Empty lets the worker
	// derive it from the input name.
	OutputPath string `json:"output_path,omitempty"`

	// LookupPath overrides the state lookup table for this job.
	LookupPath string `json:"lookup_path,omitempty"`

	// RunID is the cleaning run the job produced, once it has one.
	RunID string `json:"run_id,omitempty"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the last failure message.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the generic view the queue machinery works with.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *CleanFileJob) GetID() string        { return j.JobID }
func (j *CleanFileJob) GetType() JobType     { return JobTypeCleanFile }
func (j *CleanFileJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues cleaning jobs. The abstraction keeps the door open for
// Cloud Tasks or Pub/Sub behind the same call sites.
type Publisher interface {
	PublishCleanFile(ctx context.Context, job *CleanFileJob) error
	Close() error
}

// Consumer pulls jobs and hands them to a handler.
type Consumer interface {
	// Start begins consuming. The handler is called for each job; a
	// returned error means the job failed and may be retried.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs.
	Stop(ctx context.Context) error
}

// JobHandler processes one job.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so it can be inspected after the fact.
type JobStore interface {
	SaveJob(ctx context.Context, job *CleanFileJob) error
	GetJob(ctx context.Context, jobID string) (*CleanFileJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*CleanFileJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	InputPath string
	Status    JobStatus
	Limit     int
	Offset    int
}
