package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of a job execution
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobExecution tracks the execution history of background jobs
type JobExecution struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	JobName     string     `gorm:"size:100;not null;index:idx_job_started,priority:1" json:"job_name"`
	InstanceID  string     `gorm:"size:100;not null" json:"instance_id"`
	Status      JobStatus  `gorm:"size:20;not null;default:running" json:"status"`
	StartedAt   time.Time  `gorm:"not null;index:idx_job_started,priority:2" json:"started_at"`
	CompletedAt *time.Time `gorm:"" json:"completed_at"`
	DurationMs  int64      `gorm:"default:0" json:"duration_ms"`
	Result      string     `gorm:"type:json" json:"result,omitempty"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
}

// TableName returns the table name for JobExecution
func (JobExecution) TableName() string {
	return "job_executions"
}

// JobHandler is the function signature for job handlers. The returned value
// is serialized as JSON into the execution record.
type JobHandler func(ctx context.Context) (interface{}, error)

// JobDefinition defines a scheduled job
type JobDefinition struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Schedule    string        `json:"schedule"`
	Timeout     time.Duration `json:"-"`
	Enabled     bool          `json:"enabled"`
	Handler     JobHandler    `json:"-"`
}

// JobInfo is the API view of a registered job
type JobInfo struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Schedule      string        `json:"schedule"`
	Enabled       bool          `json:"enabled"`
	IsRunning     bool          `json:"is_running"`
	LastExecution *JobExecution `json:"last_execution,omitempty"`
}
