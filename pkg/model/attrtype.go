package model

// AttrType is the bitmask type tag of an attribute definition. Composite
// types combine a base flag with modifier flags, e.g. an array of named
// object references is TypeArray|TypeNamed|TypeObject.
type AttrType int

const (
	TypeObject  AttrType = 1 << 0
	TypeString  AttrType = 1 << 1
	TypeText    AttrType = 1 << 2
	TypeNamed   AttrType = 1 << 3
	TypeBoolean AttrType = 1 << 4
	TypeGroup   AttrType = 1 << 5
	TypeDate    AttrType = 1 << 6
	TypeArray   AttrType = 1 << 10

	TypeNamedObject      = TypeNamed | TypeObject
	TypeArrayString      = TypeArray | TypeString
	TypeArrayObject      = TypeArray | TypeObject
	TypeArrayNamedObject = TypeArray | TypeNamed | TypeObject
)

// attrTypeNames covers the concrete types an EntityAttr may declare.
var attrTypeNames = map[AttrType]string{
	TypeObject:           "object",
	TypeString:           "string",
	TypeText:             "text",
	TypeBoolean:          "boolean",
	TypeGroup:            "group",
	TypeDate:             "date",
	TypeNamedObject:      "named_object",
	TypeArrayString:      "array_string",
	TypeArrayObject:      "array_object",
	TypeArrayNamedObject: "array_named_object",
}

func (t AttrType) String() string {
	if name, ok := attrTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether t is a declarable attribute type.
func (t AttrType) Valid() bool {
	_, ok := attrTypeNames[t]
	return ok
}

func (t AttrType) IsArray() bool  { return t&TypeArray != 0 }
func (t AttrType) IsNamed() bool  { return t&TypeNamed != 0 }
func (t AttrType) IsObject() bool { return t&TypeObject != 0 }

// IsStringLike reports whether values of this type carry their payload in the
// text column (string, text and group types all do).
func (t AttrType) IsStringLike() bool {
	return t&(TypeString|TypeText|TypeGroup) != 0
}

func (t AttrType) IsBoolean() bool { return t&TypeBoolean != 0 }
func (t AttrType) IsDate() bool    { return t&TypeDate != 0 }

// Element returns the leaf type of an array type. For non-array types it
// returns t unchanged.
func (t AttrType) Element() AttrType {
	return t &^ TypeArray
}
