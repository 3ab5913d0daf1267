package eav

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/schema"
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

// fakeRegistry serves a fixed attribute definition.
type fakeRegistry struct {
	def *schema.AttributeDef
}

func (f *fakeRegistry) GetAttributeDef(attrID uint) (*schema.AttributeDef, error) {
	return f.def, nil
}

func (f *fakeRegistry) ListActiveAttributes(entityID uint) ([]uint, error) {
	return nil, nil
}

func latestValueRows(id uint, t model.AttrType) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "value", "data_type", "is_latest", "parent_attr_id"}).
		AddRow(id, "web-01", int(t), true, 7)
}

func TestGetLatestMatchingType(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db, &fakeRegistry{def: &schema.AttributeDef{ID: 3, Type: model.TypeString}}, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "attribute_values"`).
		WillReturnRows(latestValueRows(10, model.TypeString))

	latest, err := s.GetLatest(1, &model.Attribute{SchemaID: 3, ParentEntryID: 5})
	require.NoError(t, err)
	assert.Equal(t, uint(10), latest.ID)
	assert.Equal(t, "web-01", latest.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLatestAfterSchemaTypeChange(t *testing.T) {
	db, mock := newMockDB(t)
	// The schema now says text, but the stored latest was written as string.
	s := NewStore(db, &fakeRegistry{def: &schema.AttributeDef{ID: 3, Type: model.TypeText}}, nil, nil)

	attr := &model.Attribute{SchemaID: 3, ParentEntryID: 5}
	attr.ID = 7

	mock.ExpectQuery(`SELECT \* FROM "attribute_values"`).
		WillReturnRows(latestValueRows(10, model.TypeString))

	// The stale row loses its latest flag and a blank value of the current
	// type is persisted in the same transaction.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "attribute_values"`).
		WithArgs(false, 7, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "attribute_values"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	latest, err := s.GetLatest(1, attr)
	require.NoError(t, err)
	assert.Equal(t, uint(11), latest.ID)
	assert.Equal(t, model.TypeText, latest.DataType)
	assert.True(t, latest.IsLatest)
	assert.Empty(t, latest.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLatestSynthesizesWhenAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db, &fakeRegistry{def: &schema.AttributeDef{ID: 3, Type: model.TypeArrayString}}, nil, nil)

	attr := &model.Attribute{SchemaID: 3, ParentEntryID: 5}
	attr.ID = 7

	mock.ExpectQuery(`SELECT \* FROM "attribute_values"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "attribute_values"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "attribute_values"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	latest, err := s.GetLatest(1, attr)
	require.NoError(t, err)
	assert.Equal(t, model.TypeArrayString, latest.DataType)
	// An empty array value is a bare container.
	assert.True(t, latest.IsArrayParent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
