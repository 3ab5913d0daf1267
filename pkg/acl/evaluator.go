package acl

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ErrPermissionDenied is surfaced by callers when a required level is not
// granted. The evaluator itself only reports booleans.
var ErrPermissionDenied = errors.New("permission denied")

// Principal is a user together with its resolved group memberships.
type Principal struct {
	UserID      uint
	IsSuperuser bool
	GroupIDs    []uint
}

// Evaluator answers permission checks against the grants table.
type Evaluator struct {
	db *gorm.DB
}

// NewEvaluator creates a new Evaluator
func NewEvaluator(db *gorm.DB) *Evaluator {
	return &Evaluator{db: db}
}

// LoadPrincipal resolves a user id into a Principal with group memberships.
func (e *Evaluator) LoadPrincipal(userID uint) (*Principal, error) {
	var user model.User
	tx := e.db.Where("id = ? AND is_active = ?", userID, true).First(&user)
	if tx.Error != nil {
		return nil, tx.Error
	}

	var groupIDs []uint
	err := e.db.Model(&model.GroupMembership{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &groupIDs).Error
	if err != nil {
		return nil, err
	}

	return &Principal{
		UserID:      user.ID,
		IsSuperuser: user.IsSuperuser,
		GroupIDs:    groupIDs,
	}, nil
}

// HasPermission reports whether the principal holds at least the required
// level on the object. It never fails: malformed levels and lookup errors
// are denies.
func (e *Evaluator) HasPermission(p *Principal, obj model.Checkable, required model.PermissionLevel) bool {
	if p == nil || obj == nil || !required.Valid() {
		return false
	}

	if obj.Public() || p.IsSuperuser {
		return true
	}

	if obj.DefaultLevel().Satisfies(required) {
		return true
	}

	if level, ok := e.grantLevel(model.PrincipalUser, []uint{p.UserID}, obj); ok && level.Satisfies(required) {
		return true
	}

	if len(p.GroupIDs) > 0 {
		if level, ok := e.grantLevel(model.PrincipalGroup, p.GroupIDs, obj); ok && level.Satisfies(required) {
			return true
		}
	}

	return false
}

// grantLevel returns the strongest grant any of the given principals holds on
// the object.
func (e *Evaluator) grantLevel(kind model.PrincipalKind, principalIDs []uint, obj model.Checkable) (model.PermissionLevel, bool) {
	var levels []model.PermissionLevel
	err := e.db.Model(&model.Permission{}).
		Where("principal_kind = ? AND principal_id IN ? AND object_kind = ? AND object_id = ?",
			kind, principalIDs, obj.ObjectKind(), obj.ObjectID()).
		Pluck("level", &levels).Error
	if err != nil || len(levels) == 0 {
		return model.LevelNothing, false
	}

	best := levels[0]
	for _, l := range levels[1:] {
		if l > best {
			best = l
		}
	}
	return best, true
}

// SetPermission replaces the principal's grant on an object. At most one
// active grant exists per (principal, object).
func (e *Evaluator) SetPermission(kind model.PrincipalKind, principalID uint, obj model.Ref, level model.PermissionLevel) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("principal_kind = ? AND principal_id = ? AND object_kind = ? AND object_id = ?",
			kind, principalID, obj.Kind, obj.ID).
			Delete(&model.Permission{}).Error
		if err != nil {
			return err
		}
		return tx.Create(&model.Permission{
			PrincipalKind: kind,
			PrincipalID:   principalID,
			ObjectKind:    obj.Kind,
			ObjectID:      obj.ID,
			Level:         level,
		}).Error
	})
}
