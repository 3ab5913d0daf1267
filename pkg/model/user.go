package model

import "time"

// User is a human or API principal.
type User struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Username    string    `gorm:"column:username;not null;uniqueIndex"`
	APIKey      string    `gorm:"column:api_key;not null"`
	IsSuperuser bool      `gorm:"column:is_superuser;not null;default:false"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }
