package acl

import (
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// CopyGrants copies the grants a principal holds on a schema object onto a
// freshly created instance object, at the same level, for the creating user
// and every group the user belongs to.
//
// This is a one-time inheritance performed at instance creation. Changing a
// schema-level grant afterwards does not touch instances that already exist.
func CopyGrants(tx *gorm.DB, p *Principal, from, to model.Ref) error {
	if err := copyPrincipalGrants(tx, model.PrincipalUser, []uint{p.UserID}, from, to); err != nil {
		return err
	}
	if len(p.GroupIDs) > 0 {
		return copyPrincipalGrants(tx, model.PrincipalGroup, p.GroupIDs, from, to)
	}
	return nil
}

func copyPrincipalGrants(tx *gorm.DB, kind model.PrincipalKind, principalIDs []uint, from, to model.Ref) error {
	var grants []model.Permission
	err := tx.Where("principal_kind = ? AND principal_id IN ? AND object_kind = ? AND object_id = ?",
		kind, principalIDs, from.Kind, from.ID).
		Find(&grants).Error
	if err != nil {
		return err
	}

	for _, grant := range grants {
		err := tx.Create(&model.Permission{
			PrincipalKind: grant.PrincipalKind,
			PrincipalID:   grant.PrincipalID,
			ObjectKind:    to.Kind,
			ObjectID:      to.ID,
			Level:         grant.Level,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
