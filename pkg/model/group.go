package model

import "time"

// Group is a principal users can belong to; grants held by a group apply to
// all of its members.
type Group struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Group) TableName() string { return "groups" }

// GroupMembership links a user to a group.
type GroupMembership struct {
	GroupID uint `gorm:"column:group_id;primaryKey"`
	UserID  uint `gorm:"column:user_id;primaryKey"`
}

func (GroupMembership) TableName() string { return "group_memberships" }
