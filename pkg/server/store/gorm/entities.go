package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/server/store"
)

// Ensure EntitiesStore implements store.EntitiesStore
var _ store.EntitiesStore = (*EntitiesStore)(nil)

// EntitiesStore implements store.EntitiesStore using GORM
type EntitiesStore struct {
	db *gorm.DB
}

// NewEntitiesStore creates a new EntitiesStore
func NewEntitiesStore(db *gorm.DB) *EntitiesStore {
	return &EntitiesStore{db: db}
}

// ListEntities returns active entities with optional name filtering
func (s *EntitiesStore) ListEntities(search string, limit, offset int) ([]model.Entity, error) {
	query := s.db.Where("is_active = ?", true)
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

	var entities []model.Entity
	err := query.Find(&entities).Error
	return entities, err
}

// CountEntities returns the count of active entities matching the filter
func (s *EntitiesStore) CountEntities(search string) (int64, error) {
	query := s.db.Model(&model.Entity{}).Where("is_active = ?", true)
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// FetchEntity retrieves a single active entity by ID
func (s *EntitiesStore) FetchEntity(id uint) (*model.Entity, error) {
	var entity model.Entity
	tx := s.db.Where("id = ? AND is_active = ?", id, true).First(&entity)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &entity, nil
}

// ListEntityAttrs returns the active attribute definitions of an entity,
// ordered by display index
func (s *EntitiesStore) ListEntityAttrs(entityID uint) ([]model.EntityAttr, error) {
	var attrs []model.EntityAttr
	err := s.db.Where("parent_entity_id = ? AND is_active = ?", entityID, true).
		Order("index, id").Find(&attrs).Error
	return attrs, err
}

// ListReferralEntityIDs returns the entity IDs an object attribute may refer to
func (s *EntitiesStore) ListReferralEntityIDs(entityAttrID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&model.EntityAttrReferral{}).
		Where("entity_attr_id = ?", entityAttrID).
		Order("entity_id").Pluck("entity_id", &ids).Error
	return ids, err
}
