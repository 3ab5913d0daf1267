package endpoints

import (
	"fmt"

	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// renderValue converts a decoded value into its JSON shape.
func renderValue(v eav.Value) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case eav.String:
		return string(val)
	case eav.Bool:
		return bool(val)
	case eav.Date:
		if val.Time().IsZero() {
			return nil
		}
		return val.String()
	case eav.Ref:
		if val == 0 {
			return nil
		}
		return map[string]interface{}{"id": uint(val)}
	case eav.GroupRef:
		if val == 0 {
			return nil
		}
		return map[string]interface{}{"group_id": uint(val)}
	case eav.Named:
		out := map[string]interface{}{"name": val.Name}
		if val.Ref != 0 {
			out["id"] = val.Ref
		}
		return out
	case eav.Array:
		elements := make([]interface{}, 0, len(val))
		for _, el := range val {
			elements = append(elements, renderValue(el))
		}
		return elements
	}
	return nil
}

// decodeJSONValue converts a JSON request payload into the Value form the
// attribute type expects. Validation beyond shape happens in the value store.
func decodeJSONValue(t model.AttrType, raw interface{}) (eav.Value, error) {
	if raw == nil {
		return nil, fmt.Errorf("no value given")
	}

	if t.IsArray() {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected a list for type %s", t)
		}
		arr := make(eav.Array, 0, len(list))
		for _, el := range list {
			leaf, err := decodeJSONValue(t.Element(), el)
			if err != nil {
				return nil, err
			}
			arr = append(arr, leaf)
		}
		return arr, nil
	}

	switch {
	case t.IsNamed():
		pair, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected a {name, id} object for type %s", t)
		}
		named := eav.Named{}
		if name, ok := pair["name"].(string); ok {
			named.Name = name
		}
		if id, ok := pair["id"].(float64); ok {
			named.Ref = uint(id)
		}
		return named, nil

	case t.IsObject():
		id, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("expected an entry id for type %s", t)
		}
		return eav.Ref(uint(id)), nil

	case t.IsBoolean():
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean for type %s", t)
		}
		return eav.Bool(b), nil

	case t&model.TypeGroup != 0:
		id, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("expected a group id for type %s", t)
		}
		return eav.GroupRef(uint(id)), nil
	}

	// String, text and date all arrive as strings; the store parses dates.
	str, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string for type %s", t)
	}
	return eav.String(str), nil
}
