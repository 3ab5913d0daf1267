package model

import "time"

// ObjectKind tags the four permission-checkable object kinds. The kind is an
// explicit tag carried by every ACL object row, so permission checks never
// need runtime type dispatch.
type ObjectKind int

const (
	KindEntity ObjectKind = iota + 1
	KindEntityAttr
	KindEntry
	KindAttribute
)

func (k ObjectKind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindEntityAttr:
		return "entity_attr"
	case KindEntry:
		return "entry"
	case KindAttribute:
		return "attribute"
	}
	return "unknown"
}

// ACLObject carries the fields shared by every permission-checkable object.
// It is embedded by Entity, EntityAttr, Entry and Attribute.
type ACLObject struct {
	ID                uint            `gorm:"column:id;primaryKey;autoIncrement"`
	Name              string          `gorm:"column:name;not null"`
	IsPublic          bool            `gorm:"column:is_public;not null;default:false"`
	DefaultPermission PermissionLevel `gorm:"column:default_permission;not null;default:1"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	CreatedByID       uint            `gorm:"column:created_by_id;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Ref identifies an ACL object without loading it.
type Ref struct {
	Kind ObjectKind
	ID   uint
}

// Checkable is the view of an object the ACL evaluator needs.
type Checkable interface {
	ObjectKind() ObjectKind
	ObjectID() uint
	Public() bool
	DefaultLevel() PermissionLevel
}

// ACLObject satisfies everything in Checkable except the kind, which each
// embedding model supplies itself.

func (o ACLObject) ObjectID() uint                { return o.ID }
func (o ACLObject) Public() bool                  { return o.IsPublic }
func (o ACLObject) DefaultLevel() PermissionLevel { return o.DefaultPermission }
