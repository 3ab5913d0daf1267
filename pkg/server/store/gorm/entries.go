package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/server/store"
)

// Ensure EntriesStore implements store.EntriesStore
var _ store.EntriesStore = (*EntriesStore)(nil)

// EntriesStore implements store.EntriesStore using GORM
type EntriesStore struct {
	db *gorm.DB
}

// NewEntriesStore creates a new EntriesStore
func NewEntriesStore(db *gorm.DB) *EntriesStore {
	return &EntriesStore{db: db}
}

// ListEntries returns active entries of an entity with optional name filtering
func (s *EntriesStore) ListEntries(entityID uint, search string, limit, offset int) ([]model.Entry, error) {
	query := s.db.Where("schema_id = ? AND is_active = ?", entityID, true)
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	query = query.Order("name, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []model.Entry
	err := query.Find(&entries).Error
	return entries, err
}

// CountEntries returns the count of active entries matching the filter
func (s *EntriesStore) CountEntries(entityID uint, search string) (int64, error) {
	query := s.db.Model(&model.Entry{}).Where("schema_id = ? AND is_active = ?", entityID, true)
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// FetchEntry retrieves a single active entry by ID
func (s *EntriesStore) FetchEntry(id uint) (*model.Entry, error) {
	var entry model.Entry
	tx := s.db.Where("id = ? AND is_active = ?", id, true).First(&entry)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrEntryNotFound
		}
		return nil, tx.Error
	}
	return &entry, nil
}

// FetchEntryByName retrieves an active entry of an entity by name
func (s *EntriesStore) FetchEntryByName(entityID uint, name string) (*model.Entry, error) {
	var entry model.Entry
	tx := s.db.Where("schema_id = ? AND name = ? AND is_active = ?", entityID, name, true).First(&entry)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrEntryNotFound
		}
		return nil, tx.Error
	}
	return &entry, nil
}

// ListAttributes returns the active attribute instances of an entry
func (s *EntriesStore) ListAttributes(entryID uint) ([]model.Attribute, error) {
	var attrs []model.Attribute
	err := s.db.Where("parent_entry_id = ? AND is_active = ?", entryID, true).
		Order("id").Find(&attrs).Error
	return attrs, err
}
