package audit

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewStoreWithDB(db)
	err = store.Save(AuthenticateEvent{Username: "alice", ClientIP: "10.0.0.1", Success: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveNilDB(t *testing.T) {
	store := NewStoreWithDB(nil)
	assert.NoError(t, store.Save(AuthenticateEvent{Username: "alice"}))
}

func TestNewStoreDisabled(t *testing.T) {
	t.Setenv("CMDB_AUDIT_DATABASE_URL", "")
	store, err := NewStore()
	require.NoError(t, err)
	assert.Nil(t, store)
}
