package job

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// newMockDB wraps sqlmock in a gorm connection for unit tests.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 db,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

func TestCanonicalParams(t *testing.T) {
	t.Run("key order is stable", func(t *testing.T) {
		a, err := CanonicalParams(map[string]interface{}{"b": 2, "a": 1, "c": 3})
		require.NoError(t, err)
		b, err := CanonicalParams(map[string]interface{}{"c": 3, "a": 1, "b": 2})
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, `{"a":1,"b":2,"c":3}`, a)
	})

	t.Run("nil params serialize as empty object", func(t *testing.T) {
		got, err := CanonicalParams(nil)
		require.NoError(t, err)
		assert.Equal(t, "{}", got)
	})
}

func TestClaim(t *testing.T) {
	t.Run("preparing job is claimed", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewScheduler(db, time.Minute, time.Millisecond, nil)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "jobs"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		j := &model.Job{ID: 7, Status: model.JobStatusPreparing}
		require.NoError(t, s.Claim(j))
		assert.Equal(t, model.JobStatusProcessing, j.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race returns conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewScheduler(db, time.Minute, time.Millisecond, nil)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "jobs"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		j := &model.Job{ID: 7, Status: model.JobStatusPreparing}
		assert.ErrorIs(t, s.Claim(j), ErrJobConflict)
		// The in-memory copy is left untouched.
		assert.Equal(t, model.JobStatusPreparing, j.Status)
	})
}

func TestFinishRequiresTerminalStatus(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewScheduler(db, time.Minute, time.Millisecond, nil)

	j := &model.Job{ID: 7, Status: model.JobStatusProcessing}
	assert.Error(t, s.Finish(j, model.JobStatusProcessing))
	assert.Error(t, s.Finish(j, model.JobStatusPreparing))
}

func TestFinishIsAbsorbing(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewScheduler(db, time.Minute, time.Millisecond, nil)

	// The guard matches no rows for an already-terminal job.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "jobs"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	j := &model.Job{ID: 7, Status: model.JobStatusDone}
	require.NoError(t, s.Finish(j, model.JobStatusTimeout))
	assert.Equal(t, model.JobStatusDone, j.Status)
}

func TestSchedulerDefaults(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewScheduler(db, 0, 0, nil)
	assert.Equal(t, DefaultTimeout, s.Timeout())
}
