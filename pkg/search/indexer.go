package search

import (
	"errors"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
)

// Indexer keeps the external index in step with the value store. Register
// failures are hard errors so callers can retry the refresh; the read side
// tolerates a missing backend instead.
type Indexer struct {
	db    *gorm.DB
	store *eav.Store
	idx   index.Index
	log   *zap.Logger
}

// NewIndexer creates a new Indexer
func NewIndexer(db *gorm.DB, store *eav.Store, idx index.Index, log *zap.Logger) *Indexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Indexer{db: db, store: store, idx: idx, log: log}
}

// RegisterEntry rebuilds and upserts the document for one entry.
func (ix *Indexer) RegisterEntry(userID, entryID uint) error {
	var entry model.Entry
	tx := ix.db.Where("id = ? AND is_active = ?", entryID, true).First(&entry)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return eav.ErrTargetNotFound
		}
		return tx.Error
	}

	doc, err := ix.buildDocument(userID, &entry)
	if err != nil {
		return err
	}

	if err := ix.idx.Register(entry.ID, doc); err != nil {
		return err
	}

	ix.log.Debug("entry indexed", zap.Uint("entry_id", entry.ID), zap.Int("attrs", len(doc.Attrs)))
	return nil
}

// DeleteEntry removes an entry's document.
func (ix *Indexer) DeleteEntry(entryID uint) error {
	return ix.idx.Delete(entryID)
}

// RebuildAll reindexes every active entry. Used after an index loss or a
// mapping change.
func (ix *Indexer) RebuildAll(userID uint) (int, error) {
	var entryIDs []uint
	err := ix.db.Model(&model.Entry{}).Where("is_active = ?", true).Order("id").Pluck("id", &entryIDs).Error
	if err != nil {
		return 0, err
	}

	for _, id := range entryIDs {
		if err := ix.RegisterEntry(userID, id); err != nil {
			return 0, err
		}
	}
	return len(entryIDs), nil
}

func (ix *Indexer) buildDocument(userID uint, entry *model.Entry) (*index.Document, error) {
	var entity model.Entity
	if err := ix.db.Where("id = ?", entry.SchemaID).First(&entity).Error; err != nil {
		return nil, err
	}

	doc := &index.Document{
		Entity: index.DocumentEntity{ID: entity.ID, Name: entity.Name},
		Name:   entry.Name,
	}

	var attrs []model.Attribute
	err := ix.db.Where("parent_entry_id = ? AND is_active = ?", entry.ID, true).Order("id").Find(&attrs).Error
	if err != nil {
		return nil, err
	}

	for i := range attrs {
		elements, err := ix.attrElements(userID, &attrs[i])
		if err != nil {
			return nil, err
		}
		doc.Attrs = append(doc.Attrs, elements...)
	}

	return doc, nil
}

// attrElements renders one attribute into document elements: one element per
// leaf value for arrays, one element for scalars. A blank attribute still
// emits one blank element so its existence is searchable.
func (ix *Indexer) attrElements(userID uint, attr *model.Attribute) ([]index.DocumentAttr, error) {
	latest, err := ix.store.GetLatest(userID, attr)
	if err != nil {
		return nil, err
	}

	if latest.IsArrayParent {
		children, err := ix.store.GetChildren(latest)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return []index.DocumentAttr{{Name: attr.Name, Type: latest.DataType}}, nil
		}
		elements := make([]index.DocumentAttr, 0, len(children))
		for i := range children {
			elements = append(elements, ix.leafElement(attr.Name, &children[i]))
		}
		return elements, nil
	}

	return []index.DocumentAttr{ix.leafElement(attr.Name, latest)}, nil
}

func (ix *Indexer) leafElement(attrName string, v *model.AttributeValue) index.DocumentAttr {
	element := index.DocumentAttr{Name: attrName, Type: v.DataType}
	t := v.DataType.Element()

	switch {
	case t.IsNamed():
		element.Key = v.Value
		if v.ReferralID != nil {
			element.ReferralID = v.ReferralID
			element.Value = ix.entryName(*v.ReferralID)
		}
	case t&model.TypeGroup != 0:
		element.Value = ix.groupName(v.Value)
	case t.IsObject():
		if v.ReferralID != nil {
			element.ReferralID = v.ReferralID
			element.Value = ix.entryName(*v.ReferralID)
		}
	case t.IsBoolean():
		element.Value = strconv.FormatBool(v.Boolean)
	case t.IsDate():
		if v.Date != nil {
			day := v.Date.Format(eav.DateLayout)
			element.Value = day
			element.DateValue = &day
		}
	default:
		element.Value = v.Value
	}

	return element
}

func (ix *Indexer) entryName(id uint) string {
	var name string
	ix.db.Model(&model.Entry{}).Where("id = ?", id).Pluck("name", &name)
	return name
}

func (ix *Indexer) groupName(rawID string) string {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return ""
	}
	var name string
	ix.db.Model(&model.Group{}).Where("id = ?", id).Pluck("name", &name)
	return name
}
