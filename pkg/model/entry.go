package model

// Entry is an instance of an Entity.
type Entry struct {
	ACLObject
	SchemaID uint `gorm:"column:schema_id;not null"`
}

func (Entry) TableName() string { return "entries" }

func (Entry) ObjectKind() ObjectKind { return KindEntry }

// Attribute is an instance of an EntityAttr, owned by exactly one Entry. It
// is created lazily the first time a value is needed, so an Entry may briefly
// lack Attribute rows for late-added schema attributes.
type Attribute struct {
	ACLObject
	SchemaID      uint `gorm:"column:schema_id;not null"`
	ParentEntryID uint `gorm:"column:parent_entry_id;not null"`
}

func (Attribute) TableName() string { return "attributes" }

func (Attribute) ObjectKind() ObjectKind { return KindAttribute }
