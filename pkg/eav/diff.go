package eav

import (
	"errors"
	"sort"
	"strconv"

	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/schema"
)

// IsUpdated reports whether writing raw would change the attribute's current
// value. Callers use it to suppress no-op history growth.
func (s *Store) IsUpdated(attr *model.Attribute, raw Value) (bool, error) {
	def, err := s.registry.GetAttributeDef(attr.SchemaID)
	if err != nil {
		if errors.Is(err, schema.ErrAttributeDefNotFound) {
			return false, ErrTargetNotFound
		}
		return false, err
	}

	value, err := coerce(def.Type, raw)
	if err != nil {
		return false, err
	}

	var latest model.AttributeValue
	tx := s.db.Where("parent_attr_id = ? AND is_latest = ? AND parent_value_id IS NULL", attr.ID, true).
		Order("id desc").First(&latest)
	if tx.Error != nil {
		if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return false, tx.Error
		}
		// Nothing written yet. An empty incoming value is a no-op; for
		// booleans specifically, false is equivalent to "never set".
		return !isEmpty(value), nil
	}

	if latest.DataType != def.Type {
		// The schema type changed since the last write, so any write is
		// an update.
		return true, nil
	}

	current, err := s.Decode(&latest)
	if err != nil {
		return false, err
	}

	return !equalValues(def.Type, current, value), nil
}

func equalValues(t model.AttrType, current, incoming Value) bool {
	if t.IsArray() {
		return equalArrays(t, asArray(current), asArray(incoming))
	}

	switch {
	case t.IsNamed():
		a, okA := current.(Named)
		b, okB := incoming.(Named)
		return okA && okB && a.Name == b.Name && a.Ref == b.Ref
	case t.IsBoolean():
		a, okA := current.(Bool)
		b, okB := incoming.(Bool)
		return okA && okB && a == b
	case t.IsDate():
		a, okA := current.(Date)
		b, okB := incoming.(Date)
		return okA && okB && a.String() == b.String()
	case t&model.TypeGroup != 0:
		a, okA := current.(GroupRef)
		b, okB := incoming.(GroupRef)
		return okA && okB && a == b
	case t.IsObject():
		a, okA := current.(Ref)
		b, okB := incoming.(Ref)
		return okA && okB && a == b
	}

	a, okA := current.(String)
	b, okB := incoming.(String)
	return okA && okB && a == b
}

// equalArrays compares as multisets: element order never matters. For named
// arrays the labels and the referral targets are compared as independent
// multisets, matching how updates were detected historically.
func equalArrays(t model.AttrType, current, incoming Array) bool {
	if len(current) != len(incoming) {
		return false
	}

	if t.IsNamed() {
		return equalStringSets(namedLabels(current), namedLabels(incoming)) &&
			equalUintSets(namedRefs(current), namedRefs(incoming))
	}

	return equalStringSets(leafKeys(current), leafKeys(incoming))
}

func leafKeys(arr Array) []string {
	keys := make([]string, 0, len(arr))
	for _, el := range arr {
		switch val := el.(type) {
		case String:
			keys = append(keys, "s:"+string(val))
		case Ref:
			keys = append(keys, "r:"+strconv.FormatUint(uint64(val), 10))
		}
	}
	return keys
}

func namedLabels(arr Array) []string {
	labels := make([]string, 0, len(arr))
	for _, el := range arr {
		if named, ok := el.(Named); ok && named.Name != "" {
			labels = append(labels, named.Name)
		}
	}
	return labels
}

func namedRefs(arr Array) []uint {
	refs := make([]uint, 0, len(arr))
	for _, el := range arr {
		if named, ok := el.(Named); ok && named.Ref != 0 {
			refs = append(refs, named.Ref)
		}
	}
	return refs
}

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalUintSets(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func asArray(v Value) Array {
	if arr, ok := v.(Array); ok {
		return arr
	}
	return nil
}
