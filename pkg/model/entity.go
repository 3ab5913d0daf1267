package model

// Entity is an entity type: the schema node instances (entries) are created
// from.
type Entity struct {
	ACLObject
	Note string `gorm:"column:note"`
}

func (Entity) TableName() string { return "entities" }

func (Entity) ObjectKind() ObjectKind { return KindEntity }

// EntityAttr is an attribute definition on an Entity. Its Type is the type
// in effect for new values; already-written values keep the type they were
// created with.
type EntityAttr struct {
	ACLObject
	Type           AttrType `gorm:"column:type;not null"`
	IsMandatory    bool     `gorm:"column:is_mandatory;not null;default:false"`
	Index          int      `gorm:"column:index;not null;default:0"`
	ParentEntityID uint     `gorm:"column:parent_entity_id;not null"`
}

func (EntityAttr) TableName() string { return "entity_attrs" }

func (EntityAttr) ObjectKind() ObjectKind { return KindEntityAttr }

// EntityAttrReferral whitelists the entity types an object-typed attribute may
// refer to.
type EntityAttrReferral struct {
	EntityAttrID uint `gorm:"column:entity_attr_id;primaryKey"`
	EntityID     uint `gorm:"column:entity_id;primaryKey"`
}

func (EntityAttrReferral) TableName() string { return "entity_attr_referrals" }
