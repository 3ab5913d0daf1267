package eav

import (
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ComplementAttrs materializes Attribute rows for schema attributes that were
// added after the entry was created. Each new Attribute seeds its public flag
// and default permission from the schema node, and the principal's grants on
// the schema node are copied onto it. Schema attributes the principal cannot
// read are skipped.
func (s *Store) ComplementAttrs(p *acl.Principal, entry *model.Entry) error {
	schemaAttrIDs, err := s.registry.ListActiveAttributes(entry.SchemaID)
	if err != nil {
		return err
	}

	var existing []uint
	err = s.db.Model(&model.Attribute{}).
		Where("parent_entry_id = ?", entry.ID).
		Pluck("schema_id", &existing).Error
	if err != nil {
		return err
	}

	present := make(map[uint]bool, len(existing))
	for _, id := range existing {
		present[id] = true
	}

	for _, schemaID := range schemaAttrIDs {
		if present[schemaID] {
			continue
		}

		var entityAttr model.EntityAttr
		if err := s.db.Where("id = ?", schemaID).First(&entityAttr).Error; err != nil {
			return err
		}

		if !s.acl.HasPermission(p, entityAttr, model.LevelReadable) {
			continue
		}

		if err := s.materializeAttr(p, entry, &entityAttr); err != nil {
			return err
		}
	}
	return nil
}

// materializeAttr creates one Attribute from its schema node, inherits the
// principal's schema-level grants, and for array types writes the initial
// empty container so editing always starts from a latest value.
func (s *Store) materializeAttr(p *acl.Principal, entry *model.Entry, entityAttr *model.EntityAttr) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		attr := &model.Attribute{
			ACLObject: model.ACLObject{
				Name:              entityAttr.Name,
				IsPublic:          entityAttr.IsPublic,
				DefaultPermission: entityAttr.DefaultPermission,
				IsActive:          true,
				CreatedByID:       p.UserID,
			},
			SchemaID:      entityAttr.ID,
			ParentEntryID: entry.ID,
		}
		if err := tx.Create(attr).Error; err != nil {
			return err
		}

		from := model.Ref{Kind: model.KindEntityAttr, ID: entityAttr.ID}
		to := model.Ref{Kind: model.KindAttribute, ID: attr.ID}
		if err := acl.CopyGrants(tx, p, from, to); err != nil {
			return err
		}

		if entityAttr.Type.IsArray() {
			_, err := s.createEmptyValue(tx, p.UserID, attr, entityAttr.Type)
			return err
		}
		return nil
	})
}
