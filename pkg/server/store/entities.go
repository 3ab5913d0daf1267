package store

import (
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// EntitiesStore abstracts entity schema read operations
type EntitiesStore interface {
	// ListEntities returns active entities with optional name filtering
	ListEntities(search string, limit, offset int) ([]model.Entity, error)

	// CountEntities returns the count of active entities matching the filter
	CountEntities(search string) (int64, error)

	// FetchEntity retrieves a single active entity by ID
	FetchEntity(id uint) (*model.Entity, error)

	// ListEntityAttrs returns the active attribute definitions of an entity,
	// ordered by display index
	ListEntityAttrs(entityID uint) ([]model.EntityAttr, error)

	// ListReferralEntityIDs returns the entity IDs an object attribute may
	// refer to
	ListReferralEntityIDs(entityAttrID uint) ([]uint, error)
}
