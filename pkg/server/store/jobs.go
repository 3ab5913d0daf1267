package store

import (
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// JobsStore abstracts job read operations
type JobsStore interface {
	// ListJobs returns a user's most recent jobs, newest first
	ListJobs(userID uint, limit int) ([]model.Job, error)

	// FetchJob retrieves a job by handle
	FetchJob(handle string) (*model.Job, error)
}
