package gorm

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

func TestCheckConnectivity(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewHealthStore(db)

	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, s.CheckConnectivity())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckMigrations(t *testing.T) {
	t.Run("clean ledger", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewHealthStore(db)

		mock.ExpectQuery("SELECT dirty FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"dirty"}).AddRow(false))
		assert.NoError(t, s.CheckMigrations())
	})

	t.Run("dirty ledger", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewHealthStore(db)

		mock.ExpectQuery("SELECT dirty FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"dirty"}).AddRow(true))
		assert.Error(t, s.CheckMigrations())
	})

	t.Run("missing ledger", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewHealthStore(db)

		mock.ExpectQuery("SELECT dirty FROM schema_migrations").
			WillReturnError(assert.AnError)
		assert.Error(t, s.CheckMigrations())
	})
}
