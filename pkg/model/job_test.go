package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusIsTerminal(t *testing.T) {
	assert.False(t, JobStatusPreparing.IsTerminal())
	assert.False(t, JobStatusProcessing.IsTerminal())
	assert.True(t, JobStatusDone.IsTerminal())
	assert.True(t, JobStatusError.IsTerminal())
	assert.True(t, JobStatusTimeout.IsTerminal())
	assert.True(t, JobStatusCanceled.IsTerminal())
}

func TestJobIsFinished(t *testing.T) {
	now := time.Now()
	timeout := 5 * time.Minute

	t.Run("terminal status is finished regardless of age", func(t *testing.T) {
		j := &Job{Status: JobStatusDone, UpdatedAt: now}
		assert.True(t, j.IsFinished(now, timeout))
	})

	t.Run("fresh running job is not finished", func(t *testing.T) {
		j := &Job{Status: JobStatusProcessing, UpdatedAt: now.Add(-time.Minute)}
		assert.False(t, j.IsFinished(now, timeout))
	})

	t.Run("stale running job counts as finished", func(t *testing.T) {
		j := &Job{Status: JobStatusProcessing, UpdatedAt: now.Add(-6 * time.Minute)}
		assert.True(t, j.IsFinished(now, timeout))
	})

	t.Run("stale preparing job counts as finished", func(t *testing.T) {
		j := &Job{Status: JobStatusPreparing, UpdatedAt: now.Add(-6 * time.Minute)}
		assert.True(t, j.IsFinished(now, timeout))
	})
}

func TestJobIsReadyToProcess(t *testing.T) {
	assert.True(t, (&Job{Status: JobStatusPreparing}).IsReadyToProcess())
	assert.False(t, (&Job{Status: JobStatusProcessing}).IsReadyToProcess())
	// Canceled jobs must never be picked up.
	assert.False(t, (&Job{Status: JobStatusCanceled}).IsReadyToProcess())
}
