package model

import (
	"time"
)

//go:generate go run github.com/dmarkham/enumer -type JobStatus -trimprefix JobStatus -transform lower -json -output job_status.gen.go

// JobStatus is the lifecycle state of a Job. Terminal states are absorbing.
type JobStatus int

const (
	JobStatusPreparing JobStatus = iota
	JobStatusProcessing
	JobStatusDone
	JobStatusError
	JobStatusTimeout
	JobStatusCanceled
)

// IsTerminal reports whether the status is final.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusDone, JobStatusError, JobStatusTimeout, JobStatusCanceled:
		return true
	}
	return false
}

//go:generate go run github.com/dmarkham/enumer -type JobOperation -trimprefix JobOperation -transform lower -json -output job_operation.gen.go

// JobOperation is the kind of mutation a Job performs.
type JobOperation int

const (
	JobOperationCreate JobOperation = iota
	JobOperationEdit
	JobOperationDelete
	JobOperationCopy
	JobOperationExport
)

// Job represents one asynchronous mutation against a target object.
//
// DependentJobID points at the most recent not-yet-expired job against the
// same (target, operation); the job must not start until that one finishes.
// Jobs without a target (bulk export) never carry a dependency.
type Job struct {
	ID             uint         `gorm:"column:id;primaryKey;autoIncrement"`
	Handle         string       `gorm:"column:handle;not null;uniqueIndex"`
	UserID         uint         `gorm:"column:user_id;not null"`
	TargetKind     ObjectKind   `gorm:"column:target_kind"`
	TargetID       *uint        `gorm:"column:target_id"`
	Operation      JobOperation `gorm:"column:operation;not null"`
	Status         JobStatus    `gorm:"column:status;not null;default:0"`
	DependentJobID *uint        `gorm:"column:dependent_job_id"`
	Text           string       `gorm:"column:text"`
	Params         string       `gorm:"column:params;not null"`
	CreatedAt      time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Job) TableName() string { return "jobs" }

// IsFinished reports whether the job no longer blocks dependents. A job whose
// updated_at is older than timeout counts as finished regardless of recorded
// status, so a stuck worker cannot block its dependents forever.
func (j *Job) IsFinished(now time.Time, timeout time.Duration) bool {
	if j.Status.IsTerminal() {
		return true
	}
	return now.Sub(j.UpdatedAt) > timeout
}

// IsReadyToProcess reports whether a worker may pick the job up. Canceled
// jobs must never be picked up, even while still recorded as Preparing.
func (j *Job) IsReadyToProcess() bool {
	return j.Status == JobStatusPreparing
}
