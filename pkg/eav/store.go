package eav

import (
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/schema"
)

// Store owns attribute value history. All writes go through AddValue; reads
// go through GetLatest and GetHistory.
type Store struct {
	db       *gorm.DB
	registry schema.Registry
	acl      *acl.Evaluator
	log      *zap.Logger
}

// NewStore creates a new Store
func NewStore(db *gorm.DB, registry schema.Registry, evaluator *acl.Evaluator, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, registry: registry, acl: evaluator, log: log}
}

// AddValue validates raw against the attribute's declared type and appends a
// new version flagged latest. Prior latest rows are cleared first, in the
// same transaction.
func (s *Store) AddValue(userID uint, attr *model.Attribute, raw Value) (*model.AttributeValue, error) {
	def, err := s.registry.GetAttributeDef(attr.SchemaID)
	if err != nil {
		if errors.Is(err, schema.ErrAttributeDefNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}

	value, err := coerce(def.Type, raw)
	if err != nil {
		return nil, err
	}

	var created *model.AttributeValue
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := clearLatest(tx, attr.ID); err != nil {
			return err
		}

		created, err = s.createValue(tx, userID, attr, def.Type, value)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("attribute value added",
		zap.Uint("attr_id", attr.ID),
		zap.Uint("value_id", created.ID),
		zap.String("type", def.Type.String()))

	return created, nil
}

// GetLatest returns the value flagged latest. When there is none, or its
// frozen data_type no longer matches the current schema type, a new empty
// value of the current type is persisted and returned. Callers therefore
// always observe a value consistent with the current schema.
func (s *Store) GetLatest(userID uint, attr *model.Attribute) (*model.AttributeValue, error) {
	def, err := s.registry.GetAttributeDef(attr.SchemaID)
	if err != nil {
		if errors.Is(err, schema.ErrAttributeDefNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}

	var latest model.AttributeValue
	tx := s.db.Where("parent_attr_id = ? AND is_latest = ? AND parent_value_id IS NULL", attr.ID, true).
		Order("id desc").First(&latest)
	if tx.Error == nil && latest.DataType == def.Type {
		return &latest, nil
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, tx.Error
	}

	// No latest value, or the schema type changed since it was written.
	// Synthesize an empty value of the current type.
	var created *model.AttributeValue
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := clearLatest(tx, attr.ID); err != nil {
			return err
		}
		created, err = s.createEmptyValue(tx, userID, attr, def.Type)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("synthesized empty value",
		zap.Uint("attr_id", attr.ID),
		zap.String("type", def.Type.String()))

	return created, nil
}

// GetChildren returns the leaf values of an array container, in insertion
// order.
func (s *Store) GetChildren(parent *model.AttributeValue) ([]model.AttributeValue, error) {
	var children []model.AttributeValue
	err := s.db.Where("parent_value_id = ?", parent.ID).Order("id").Find(&children).Error
	return children, err
}

// Decode converts a stored value (and its children, for containers) back into
// the Value form AddValue accepts.
func (s *Store) Decode(v *model.AttributeValue) (Value, error) {
	if v.IsArrayParent {
		children, err := s.GetChildren(v)
		if err != nil {
			return nil, err
		}
		arr := make(Array, 0, len(children))
		for i := range children {
			arr = append(arr, decodeLeaf(&children[i]))
		}
		return arr, nil
	}
	return decodeLeaf(v), nil
}

func decodeLeaf(v *model.AttributeValue) Value {
	t := v.DataType.Element()
	switch {
	case t.IsNamed():
		named := Named{Name: v.Value}
		if v.ReferralID != nil {
			named.Ref = *v.ReferralID
		}
		return named
	case t&model.TypeGroup != 0:
		id, _ := strconv.ParseUint(v.Value, 10, 64)
		return GroupRef(id)
	case t.IsObject():
		if v.ReferralID != nil {
			return Ref(*v.ReferralID)
		}
		return Ref(0)
	case t.IsBoolean():
		return Bool(v.Boolean)
	case t.IsDate():
		if v.Date != nil {
			return Date(*v.Date)
		}
		return Date{}
	}
	return String(v.Value)
}

// clearLatest clears is_latest on every prior version of the attribute,
// containers and array children alike. Clearing before writing the new row
// keeps the no-two-latest invariant across a crash in between; the transient
// zero-latest window is repaired by GetLatest's synthesis.
func clearLatest(tx *gorm.DB, attrID uint) error {
	return tx.Model(&model.AttributeValue{}).
		Where("parent_attr_id = ? AND is_latest = ?", attrID, true).
		Update("is_latest", false).Error
}

func (s *Store) createValue(tx *gorm.DB, userID uint, attr *model.Attribute, t model.AttrType, value Value) (*model.AttributeValue, error) {
	if t.IsArray() {
		return s.createArrayValue(tx, userID, attr, t, value.(Array))
	}

	leaf := newLeaf(tx, userID, attr.ID, t, value)
	leaf.IsLatest = true
	if err := tx.Create(leaf).Error; err != nil {
		return nil, err
	}
	return leaf, nil
}

func (s *Store) createArrayValue(tx *gorm.DB, userID uint, attr *model.Attribute, t model.AttrType, elements Array) (*model.AttributeValue, error) {
	parent := &model.AttributeValue{
		DataType:      t,
		IsArrayParent: true,
		ParentAttrID:  attr.ID,
		CreatedByID:   userID,
	}
	if err := tx.Create(parent).Error; err != nil {
		return nil, err
	}

	for _, el := range elements {
		leaf := newLeaf(tx, userID, attr.ID, t, el)
		leaf.ParentValueID = &parent.ID
		leaf.IsLatest = true
		if err := tx.Create(leaf).Error; err != nil {
			return nil, err
		}
	}

	parent.IsLatest = true
	if err := tx.Model(parent).Update("is_latest", true).Error; err != nil {
		return nil, err
	}
	return parent, nil
}

func (s *Store) createEmptyValue(tx *gorm.DB, userID uint, attr *model.Attribute, t model.AttrType) (*model.AttributeValue, error) {
	empty := &model.AttributeValue{
		DataType:      t,
		IsArrayParent: t.IsArray(),
		IsLatest:      true,
		ParentAttrID:  attr.ID,
		CreatedByID:   userID,
	}
	if err := tx.Create(empty).Error; err != nil {
		return nil, err
	}
	return empty, nil
}

// newLeaf maps a coerced scalar value onto a row. The data_type column is
// stamped with the attribute's full current type, array bit included, so old
// versions stay interpretable after schema type changes.
func newLeaf(tx *gorm.DB, userID uint, attrID uint, t model.AttrType, value Value) *model.AttributeValue {
	leaf := &model.AttributeValue{
		DataType:     t,
		ParentAttrID: attrID,
		CreatedByID:  userID,
	}

	switch val := value.(type) {
	case String:
		leaf.Value = string(val)
	case GroupRef:
		leaf.Value = strconv.FormatUint(uint64(val), 10)
	case Bool:
		leaf.Boolean = bool(val)
	case Date:
		d := time.Time(val)
		leaf.Date = &d
	case Ref:
		leaf.ReferralID = lookupEntryID(tx, uint(val))
	case Named:
		leaf.Value = val.Name
		leaf.ReferralID = lookupEntryID(tx, val.Ref)
	}

	return leaf
}

// lookupEntryID resolves a referral. Referrals are weak: an id that doesn't
// name an active entry is stored as no referral rather than failing the
// write.
func lookupEntryID(tx *gorm.DB, id uint) *uint {
	if id == 0 {
		return nil
	}
	var count int64
	tx.Model(&model.Entry{}).Where("id = ? AND is_active = ?", id, true).Count(&count)
	if count == 0 {
		return nil
	}
	return &id
}
