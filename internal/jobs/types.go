package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeIngestExport represents a purchase export ingestion job.
	JobTypeIngestExport JobType = "ingest_export"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// IngestExportJob asks a worker to run the normalization pipeline over one
// stored CSV export.
type IngestExportJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// SourceURI locates the raw export, e.g. "gs://bucket/achats.csv".
	SourceURI string `json:"source_uri"`

	// Latin1 marks exports that need Windows-1252 decoding.
	Latin1 bool `json:"latin1,omitempty"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface over queued work.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *IngestExportJob) GetID() string        { return j.JobID }
func (j *IngestExportJob) GetType() JobType     { return JobTypeIngestExport }
func (j *IngestExportJob) GetStatus() JobStatus { return j.Status }

// Publisher publishes jobs to a queue. The in-memory queue serves a single
// instance; a broker-backed implementation can replace it without touching
// callers.
type Publisher interface {
	PublishIngestExport(ctx context.Context, job *IngestExportJob) error
	Close() error
}

// Consumer consumes jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs; the handler is called for each one.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error triggers a retry until
// MaxRetries is exhausted.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *IngestExportJob) error
	GetJob(ctx context.Context, jobID string) (*IngestExportJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*IngestExportJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	SourceURI string
	Status    JobStatus
	Limit     int
	Offset    int
}
