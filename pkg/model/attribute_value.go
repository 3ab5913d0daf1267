package model

import "time"

// MaxValueSize caps the payload of a single scalar value.
const MaxValueSize = 1 << 16

// AttributeValue is one version of an Attribute's value. Versions are
// append-only; at most one row per attribute carries is_latest=true.
//
// DataType records the attribute's schema type at creation time. The schema
// type may change later, so the frozen copy is the only way to interpret old
// versions correctly.
//
// Array-typed attributes store a container row (is_array_parent=true) whose
// children point back at it through parent_value_id. A container never uses
// its own value/referral columns; only its leaf children do.
type AttributeValue struct {
	ID            uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Value         string     `gorm:"column:value"`
	ReferralID    *uint      `gorm:"column:referral_id"`
	Boolean       bool       `gorm:"column:boolean;not null;default:false"`
	Date          *time.Time `gorm:"column:date"`
	DataType      AttrType   `gorm:"column:data_type;not null"`
	IsLatest      bool       `gorm:"column:is_latest;not null;default:false"`
	IsArrayParent bool       `gorm:"column:is_array_parent;not null;default:false"`
	ParentAttrID  uint       `gorm:"column:parent_attr_id;not null"`
	ParentValueID *uint      `gorm:"column:parent_value_id"`
	CreatedByID   uint       `gorm:"column:created_by_id;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (AttributeValue) TableName() string { return "attribute_values" }

// IsLeaf reports whether the row carries a payload directly.
func (v AttributeValue) IsLeaf() bool { return !v.IsArrayParent }
