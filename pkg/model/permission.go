package model

// PrincipalKind distinguishes the two grant holders.
type PrincipalKind int

const (
	PrincipalUser PrincipalKind = iota + 1
	PrincipalGroup
)

func (k PrincipalKind) String() string {
	switch k {
	case PrincipalUser:
		return "user"
	case PrincipalGroup:
		return "group"
	}
	return "unknown"
}

// Permission is an access grant. At most one active grant exists per
// (principal, object) pair; a new grant replaces the old one.
type Permission struct {
	PrincipalKind PrincipalKind   `gorm:"column:principal_kind;primaryKey"`
	PrincipalID   uint            `gorm:"column:principal_id;primaryKey"`
	ObjectKind    ObjectKind      `gorm:"column:object_kind;primaryKey"`
	ObjectID      uint            `gorm:"column:object_id;primaryKey"`
	Level         PermissionLevel `gorm:"column:level;not null"`
}

func (Permission) TableName() string { return "permissions" }
