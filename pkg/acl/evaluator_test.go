package acl

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cmdbkit/cmdbkit/pkg/model"
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

func lockedEntity(id uint) *model.Entity {
	return &model.Entity{ACLObject: model.ACLObject{
		ID:                id,
		Name:              "server",
		DefaultPermission: model.LevelNothing,
	}}
}

func TestHasPermissionShortcuts(t *testing.T) {
	// No expectations registered: these paths must not touch the database.
	db, mock := newMockDB(t)
	e := NewEvaluator(db)

	t.Run("public object", func(t *testing.T) {
		obj := &model.Entity{ACLObject: model.ACLObject{ID: 1, IsPublic: true}}
		assert.True(t, e.HasPermission(&Principal{UserID: 2}, obj, model.LevelFull))
	})

	t.Run("superuser", func(t *testing.T) {
		p := &Principal{UserID: 2, IsSuperuser: true}
		assert.True(t, e.HasPermission(p, lockedEntity(1), model.LevelFull))
	})

	t.Run("default level", func(t *testing.T) {
		obj := &model.Entity{ACLObject: model.ACLObject{
			ID:                1,
			DefaultPermission: model.LevelWritable,
		}}
		p := &Principal{UserID: 2}
		assert.True(t, e.HasPermission(p, obj, model.LevelReadable))
		assert.True(t, e.HasPermission(p, obj, model.LevelWritable))
	})

	t.Run("malformed inputs deny", func(t *testing.T) {
		assert.False(t, e.HasPermission(nil, lockedEntity(1), model.LevelReadable))
		assert.False(t, e.HasPermission(&Principal{UserID: 2}, nil, model.LevelReadable))
		assert.False(t, e.HasPermission(&Principal{UserID: 2}, lockedEntity(1), model.PermissionLevel(3)))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPermissionUserGrant(t *testing.T) {
	db, mock := newMockDB(t)
	e := NewEvaluator(db)

	mock.ExpectQuery(`SELECT "level" FROM "permissions"`).
		WithArgs(model.PrincipalUser, 2, model.KindEntity, 1).
		WillReturnRows(sqlmock.NewRows([]string{"level"}).AddRow(int(model.LevelWritable)))

	p := &Principal{UserID: 2}
	assert.True(t, e.HasPermission(p, lockedEntity(1), model.LevelWritable))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPermissionGroupGrant(t *testing.T) {
	db, mock := newMockDB(t)
	e := NewEvaluator(db)

	// No direct user grant.
	mock.ExpectQuery(`SELECT "level" FROM "permissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"level"}))
	// One of the groups holds full control.
	mock.ExpectQuery(`SELECT "level" FROM "permissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"level"}).
			AddRow(int(model.LevelReadable)).
			AddRow(int(model.LevelFull)))

	p := &Principal{UserID: 2, GroupIDs: []uint{5, 6}}
	assert.True(t, e.HasPermission(p, lockedEntity(1), model.LevelFull))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPermissionDenied(t *testing.T) {
	db, mock := newMockDB(t)
	e := NewEvaluator(db)

	t.Run("insufficient grant", func(t *testing.T) {
		mock.ExpectQuery(`SELECT "level" FROM "permissions"`).
			WillReturnRows(sqlmock.NewRows([]string{"level"}).AddRow(int(model.LevelReadable)))

		p := &Principal{UserID: 2}
		assert.False(t, e.HasPermission(p, lockedEntity(1), model.LevelWritable))
	})

	t.Run("no grant at all", func(t *testing.T) {
		mock.ExpectQuery(`SELECT "level" FROM "permissions"`).
			WillReturnRows(sqlmock.NewRows([]string{"level"}))

		p := &Principal{UserID: 2}
		assert.False(t, e.HasPermission(p, lockedEntity(1), model.LevelReadable))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
