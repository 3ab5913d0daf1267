package entry

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ImportResult summarizes what an import changed.
type ImportResult struct {
	Created int
	Updated int
	Skipped int
}

// Import applies a YAML document in the Export format: entries named in the
// document are created under their entity if missing, and their attribute
// values are written through the value store. Entities and attribute
// definitions must already exist; unknown names fail the import.
//
// Unchanged values are skipped, so importing a fresh export is a no-op.
func (s *Service) Import(p *acl.Principal, doc []byte) (*ImportResult, error) {
	var entities []ExportedEntity
	if err := yaml.Unmarshal(doc, &entities); err != nil {
		return nil, fmt.Errorf("malformed import document: %w", err)
	}

	result := &ImportResult{}
	for _, exported := range entities {
		if err := s.importEntity(p, exported, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Service) importEntity(p *acl.Principal, exported ExportedEntity, result *ImportResult) error {
	var entity model.Entity
	tx := s.db.Where("name = ? AND is_active = ?", exported.Entity, true).First(&entity)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("unknown entity %q", exported.Entity)
		}
		return tx.Error
	}

	var defs []model.EntityAttr
	err := s.db.Where("parent_entity_id = ? AND is_active = ?", entity.ID, true).Find(&defs).Error
	if err != nil {
		return err
	}
	defByName := make(map[string]*model.EntityAttr, len(defs))
	for i := range defs {
		defByName[defs[i].Name] = &defs[i]
	}

	for _, item := range exported.Entries {
		entry, created, err := s.findOrCreateEntry(p, &entity, item.Name)
		if err != nil {
			return err
		}
		if created {
			result.Created++
		}

		var attrs []model.Attribute
		err = s.db.Where("parent_entry_id = ? AND is_active = ?", entry.ID, true).Find(&attrs).Error
		if err != nil {
			return err
		}
		attrByName := make(map[string]*model.Attribute, len(attrs))
		for i := range attrs {
			attrByName[attrs[i].Name] = &attrs[i]
		}

		for name, raw := range item.Attrs {
			def, ok := defByName[name]
			if !ok {
				return fmt.Errorf("unknown attribute %q on entity %q", name, exported.Entity)
			}
			if raw == nil {
				result.Skipped++
				continue
			}
			attr, ok := attrByName[name]
			if !ok {
				result.Skipped++
				continue
			}

			value, err := coerceImportValue(def.Type, raw)
			if err != nil {
				return fmt.Errorf("attribute %q of entry %q: %w", name, item.Name, err)
			}

			updated, err := s.values.IsUpdated(attr, value)
			if err != nil {
				return err
			}
			if !updated {
				result.Skipped++
				continue
			}
			if _, err := s.values.AddValue(p.UserID, attr, value); err != nil {
				return err
			}
			result.Updated++
		}

		if err := s.indexer.RegisterEntry(p.UserID, entry.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) findOrCreateEntry(p *acl.Principal, entity *model.Entity, name string) (*model.Entry, bool, error) {
	var entry model.Entry
	tx := s.db.Where("schema_id = ? AND name = ? AND is_active = ?", entity.ID, name, true).First(&entry)
	if tx.Error == nil {
		if err := s.values.ComplementAttrs(p, &entry); err != nil {
			return nil, false, err
		}
		return &entry, false, nil
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, false, tx.Error
	}

	created, err := s.Create(p, entity.ID, name)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// coerceImportValue maps a YAML scalar onto the attribute's schema type. The
// shapes mirror what plainValue emits on export.
func coerceImportValue(t model.AttrType, raw interface{}) (eav.Value, error) {
	if raw == nil {
		return nil, fmt.Errorf("expected a value")
	}

	if t.IsArray() {
		items, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected a list for array type")
		}
		arr := make(eav.Array, 0, len(items))
		for _, item := range items {
			el, err := coerceImportValue(t.Element(), item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, el)
		}
		return arr, nil
	}

	switch {
	case t.Element() == model.TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean")
		}
		return eav.Bool(b), nil
	case t.Element() == model.TypeObject:
		n, ok := yamlUint(raw)
		if !ok {
			return nil, fmt.Errorf("expected an entry id")
		}
		return eav.Ref(n), nil
	case t.Element() == model.TypeGroup:
		n, ok := yamlUint(raw)
		if !ok {
			return nil, fmt.Errorf("expected a group id")
		}
		return eav.GroupRef(n), nil
	case t.Element() == model.TypeNamedObject:
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected a name/id pair")
		}
		named := eav.Named{}
		named.Name, _ = m["name"].(string)
		if id, ok := yamlUint(m["id"]); ok {
			named.Ref = id
		}
		return named, nil
	default:
		s, ok := raw.(string)
		if !ok {
			s = fmt.Sprintf("%v", raw)
		}
		return eav.String(s), nil
	}
}

// yamlUint accepts the integer shapes yaml.v3 produces.
func yamlUint(raw interface{}) (uint, bool) {
	switch n := raw.(type) {
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}
