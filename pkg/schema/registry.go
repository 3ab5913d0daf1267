package schema

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ErrAttributeDefNotFound is returned when an attribute definition doesn't exist
var ErrAttributeDefNotFound = errors.New("attribute definition not found")

// AttributeDef is the schema view of one attribute definition.
type AttributeDef struct {
	ID                 uint
	Name               string
	Type               model.AttrType
	IsMandatory        bool
	IsPublic           bool
	DefaultPermission  model.PermissionLevel
	Index              int
	ParentEntityID     uint
	AllowedReferralIDs []uint
}

// Registry abstracts read access to the entity/attribute schema.
type Registry interface {
	// GetAttributeDef retrieves one attribute definition by id.
	// Returns ErrAttributeDefNotFound if it doesn't exist or is inactive.
	GetAttributeDef(attrID uint) (*AttributeDef, error)

	// ListActiveAttributes returns the ids of the active attribute
	// definitions of an entity type, in schema index order.
	ListActiveAttributes(entityID uint) ([]uint, error)
}

// Ensure GormRegistry implements Registry
var _ Registry = (*GormRegistry)(nil)

// GormRegistry implements Registry using GORM
type GormRegistry struct {
	db *gorm.DB
}

// NewGormRegistry creates a new GormRegistry
func NewGormRegistry(db *gorm.DB) *GormRegistry {
	return &GormRegistry{db: db}
}

func (r *GormRegistry) GetAttributeDef(attrID uint) (*AttributeDef, error) {
	var attr model.EntityAttr
	tx := r.db.Where("id = ? AND is_active = ?", attrID, true).First(&attr)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeDefNotFound
		}
		return nil, tx.Error
	}

	def := &AttributeDef{
		ID:                attr.ID,
		Name:              attr.Name,
		Type:              attr.Type,
		IsMandatory:       attr.IsMandatory,
		IsPublic:          attr.IsPublic,
		DefaultPermission: attr.DefaultPermission,
		Index:             attr.Index,
		ParentEntityID:    attr.ParentEntityID,
	}

	if attr.Type.IsObject() {
		var referrals []model.EntityAttrReferral
		if err := r.db.Where("entity_attr_id = ?", attr.ID).Find(&referrals).Error; err != nil {
			return nil, err
		}
		for _, ref := range referrals {
			def.AllowedReferralIDs = append(def.AllowedReferralIDs, ref.EntityID)
		}
	}

	return def, nil
}

func (r *GormRegistry) ListActiveAttributes(entityID uint) ([]uint, error) {
	var ids []uint
	tx := r.db.Model(&model.EntityAttr{}).
		Where("parent_entity_id = ? AND is_active = ?", entityID, true).
		Order("index, id").
		Pluck("id", &ids)
	return ids, tx.Error
}
