package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/server/store"
)

// Ensure JobsStore implements store.JobsStore
var _ store.JobsStore = (*JobsStore)(nil)

// JobsStore implements store.JobsStore using GORM
type JobsStore struct {
	db *gorm.DB
}

// NewJobsStore creates a new JobsStore
func NewJobsStore(db *gorm.DB) *JobsStore {
	return &JobsStore{db: db}
}

// ListJobs returns a user's most recent jobs, newest first
func (s *JobsStore) ListJobs(userID uint, limit int) ([]model.Job, error) {
	query := s.db.Where("user_id = ?", userID).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []model.Job
	err := query.Find(&jobs).Error
	return jobs, err
}

// FetchJob retrieves a job by handle
func (s *JobsStore) FetchJob(handle string) (*model.Job, error) {
	var j model.Job
	tx := s.db.Where("handle = ?", handle).First(&j)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &j, nil
}
