package eav

import (
	"time"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// DateLayout is the canonical wire form of date values.
const DateLayout = "2006-01-02"

// Value is the tagged union of the payloads AddValue accepts. Exactly one
// concrete type matches each attribute type; arrays take an Array of the
// matching element values.
type Value interface {
	isValue()
}

// String carries string, text and (as the decimal group id) group payloads.
type String string

// Bool carries boolean payloads.
type Bool bool

// Date carries date payloads.
type Date time.Time

// Ref carries a referral to another entry by id. Zero clears the referral.
type Ref uint

// GroupRef carries a group reference by id.
type GroupRef uint

// Named pairs a label with an optional referral target.
type Named struct {
	Name string
	Ref  uint
}

// Array carries the elements of an array-typed value.
type Array []Value

func (String) isValue()   {}
func (Bool) isValue()     {}
func (Date) isValue()     {}
func (Ref) isValue()      {}
func (GroupRef) isValue() {}
func (Named) isValue()    {}
func (Array) isValue()    {}

// ParseDate parses the canonical YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date(t), nil
}

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) String() string { return time.Time(d).Format(DateLayout) }

// isEmpty reports whether the value carries no payload. A false Bool counts
// as empty: for boolean attributes, "no existing value" and false are
// interchangeable in no-op detection.
func isEmpty(v Value) bool {
	switch val := v.(type) {
	case nil:
		return true
	case String:
		return val == ""
	case Bool:
		return !bool(val)
	case Date:
		return time.Time(val).IsZero()
	case Ref:
		return val == 0
	case GroupRef:
		return val == 0
	case Named:
		return val.Name == "" && val.Ref == 0
	case Array:
		return len(val) == 0
	}
	return false
}

// coerce validates the shape of raw against the declared type and returns the
// canonical form (date strings become Date values). It enforces the scalar
// size cap.
func coerce(t model.AttrType, raw Value) (Value, error) {
	if raw == nil {
		return nil, invalidValue(t, "no value given")
	}

	if t.IsArray() {
		arr, ok := raw.(Array)
		if !ok {
			return nil, invalidValue(t, "expected a list, got %T", raw)
		}
		out := make(Array, 0, len(arr))
		for _, el := range arr {
			if _, nested := el.(Array); nested {
				return nil, invalidValue(t, "nested lists are not allowed")
			}
			leaf, err := coerce(t.Element(), el)
			if err != nil {
				return nil, err
			}
			out = append(out, leaf)
		}
		return out, nil
	}

	switch {
	case t.IsNamed():
		named, ok := raw.(Named)
		if !ok {
			return nil, invalidValue(t, "expected a {name, id} pair, got %T", raw)
		}
		if err := checkSize(len(named.Name)); err != nil {
			return nil, err
		}
		return named, nil

	case t&(model.TypeString|model.TypeText) != 0:
		str, ok := raw.(String)
		if !ok {
			return nil, invalidValue(t, "expected a string, got %T", raw)
		}
		if err := checkSize(len(str)); err != nil {
			return nil, err
		}
		return str, nil

	case t.IsObject():
		ref, ok := raw.(Ref)
		if !ok {
			return nil, invalidValue(t, "expected an entry reference, got %T", raw)
		}
		return ref, nil

	case t.IsBoolean():
		b, ok := raw.(Bool)
		if !ok {
			return nil, invalidValue(t, "expected a boolean, got %T", raw)
		}
		return b, nil

	case t&model.TypeGroup != 0:
		group, ok := raw.(GroupRef)
		if !ok {
			return nil, invalidValue(t, "expected a group reference, got %T", raw)
		}
		return group, nil

	case t.IsDate():
		switch val := raw.(type) {
		case Date:
			return val, nil
		case String:
			date, err := ParseDate(string(val))
			if err != nil {
				return nil, invalidValue(t, "%q is not a %s date", val, DateLayout)
			}
			return date, nil
		}
		return nil, invalidValue(t, "expected a date, got %T", raw)
	}

	return nil, invalidValue(t, "type is not writable")
}

func checkSize(size int) error {
	if size > model.MaxValueSize {
		return &ValueTooLargeError{Size: size, Limit: model.MaxValueSize}
	}
	return nil
}
