package entry

import (
	"gopkg.in/yaml.v3"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/audit"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ExportedEntry is one entry in an export document.
type ExportedEntry struct {
	Name  string                 `yaml:"name"`
	Attrs map[string]interface{} `yaml:"attrs"`
}

// ExportedEntity groups the exported entries of one entity.
type ExportedEntity struct {
	Entity  string          `yaml:"entity"`
	Entries []ExportedEntry `yaml:"entries"`
}

// Export renders the active entries of the given entities as a YAML
// document. Entries and attributes the principal cannot read are omitted.
// An empty entityIDs exports every active entity.
func (s *Service) Export(p *acl.Principal, entityIDs []uint) (string, error) {
	query := s.db.Where("is_active = ?", true).Order("name, id")
	if len(entityIDs) > 0 {
		query = query.Where("id IN ?", entityIDs)
	}

	var entities []model.Entity
	if err := query.Find(&entities).Error; err != nil {
		return "", err
	}

	doc := make([]ExportedEntity, 0, len(entities))
	for i := range entities {
		if !s.acl.HasPermission(p, entities[i], model.LevelReadable) {
			continue
		}

		exported, err := s.exportEntity(p, &entities[i])
		if err != nil {
			return "", err
		}
		doc = append(doc, exported)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}

	audit.Log(audit.ExportEvent{UserID: p.UserID, EntityCount: len(doc), Success: true})
	return string(out), nil
}

func (s *Service) exportEntity(p *acl.Principal, entity *model.Entity) (ExportedEntity, error) {
	exported := ExportedEntity{Entity: entity.Name}

	var entries []model.Entry
	err := s.db.Where("schema_id = ? AND is_active = ?", entity.ID, true).
		Order("name, id").Find(&entries).Error
	if err != nil {
		return exported, err
	}

	for i := range entries {
		if !s.acl.HasPermission(p, entries[i], model.LevelReadable) {
			continue
		}

		item := ExportedEntry{Name: entries[i].Name, Attrs: map[string]interface{}{}}

		var attrs []model.Attribute
		err := s.db.Where("parent_entry_id = ? AND is_active = ?", entries[i].ID, true).
			Order("id").Find(&attrs).Error
		if err != nil {
			return exported, err
		}

		for j := range attrs {
			if !s.acl.HasPermission(p, attrs[j], model.LevelReadable) {
				continue
			}

			latest, err := s.values.GetLatest(p.UserID, &attrs[j])
			if err != nil {
				return exported, err
			}
			value, err := s.values.Decode(latest)
			if err != nil {
				return exported, err
			}
			item.Attrs[attrs[j].Name] = plainValue(value)
		}

		exported.Entries = append(exported.Entries, item)
	}

	return exported, nil
}

// plainValue flattens a decoded value into YAML-friendly scalars and maps.
func plainValue(v eav.Value) interface{} {
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
		return uint(val)
	case eav.GroupRef:
		if val == 0 {
			return nil
		}
		return uint(val)
	case eav.Named:
		return map[string]interface{}{"name": val.Name, "id": val.Ref}
	case eav.Array:
		elements := make([]interface{}, 0, len(val))
		for _, el := range val {
			elements = append(elements, plainValue(el))
		}
		return elements
	}
	return nil
}
