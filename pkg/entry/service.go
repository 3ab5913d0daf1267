package entry

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/audit"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/search"
)

// ErrEntryNotFound is returned when a target entry does not exist or is
// inactive.
var ErrEntryNotFound = errors.New("entry not found")

// ErrNameTaken is returned when an entity already has an active entry with
// the requested name.
var ErrNameTaken = errors.New("entry name already taken")

// Service executes entry lifecycle mutations.
type Service struct {
	db      *gorm.DB
	values  *eav.Store
	acl     *acl.Evaluator
	indexer *search.Indexer
	log     *zap.Logger
}

// NewService creates a new Service
func NewService(db *gorm.DB, values *eav.Store, evaluator *acl.Evaluator, indexer *search.Indexer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, values: values, acl: evaluator, indexer: indexer, log: log}
}

// Create makes a new entry of an entity, materializes its attributes from the
// schema, and indexes it. The creator's grants on the entity are copied onto
// the entry.
func (s *Service) Create(p *acl.Principal, entityID uint, name string) (*model.Entry, error) {
	var entity model.Entity
	tx := s.db.Where("id = ? AND is_active = ?", entityID, true).First(&entity)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, tx.Error
	}

	if !s.acl.HasPermission(p, entity, model.LevelWritable) {
		return nil, acl.ErrPermissionDenied
	}

	var count int64
	err := s.db.Model(&model.Entry{}).
		Where("schema_id = ? AND name = ? AND is_active = ?", entityID, name, true).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrNameTaken
	}

	entry := &model.Entry{
		ACLObject: model.ACLObject{
			Name:              name,
			IsPublic:          entity.IsPublic,
			DefaultPermission: entity.DefaultPermission,
			IsActive:          true,
			CreatedByID:       p.UserID,
		},
		SchemaID: entityID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		from := model.Ref{Kind: model.KindEntity, ID: entity.ID}
		to := model.Ref{Kind: model.KindEntry, ID: entry.ID}
		return acl.CopyGrants(tx, p, from, to)
	})
	if err != nil {
		return nil, err
	}

	if err := s.values.ComplementAttrs(p, entry); err != nil {
		return nil, err
	}

	// The write is not done until the entry is findable. An index outage
	// fails the create so the caller can retry.
	if err := s.indexer.RegisterEntry(p.UserID, entry.ID); err != nil {
		return nil, err
	}

	audit.Log(audit.EntryEvent{
		UserID:    p.UserID,
		Operation: "create",
		EntryID:   entry.ID,
		EntryName: name,
		Success:   true,
	})
	s.log.Info("entry created", zap.Uint("entry_id", entry.ID), zap.String("name", name))
	return entry, nil
}

// Delete deactivates an entry and its attributes and drops its search
// document.
func (s *Service) Delete(p *acl.Principal, entryID uint) error {
	var entry model.Entry
	tx := s.db.Where("id = ? AND is_active = ?", entryID, true).First(&entry)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return tx.Error
	}

	if !s.acl.HasPermission(p, entry, model.LevelFull) {
		return acl.ErrPermissionDenied
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Attribute{}).
			Where("parent_entry_id = ?", entry.ID).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.Entry{}).
			Where("id = ?", entry.ID).
			Update("is_active", false).Error
	})
	if err != nil {
		return err
	}

	if err := s.indexer.DeleteEntry(entry.ID); err != nil {
		s.log.Warn("index deletion failed", zap.Uint("entry_id", entry.ID), zap.Error(err))
	}

	audit.Log(audit.EntryEvent{
		UserID:    p.UserID,
		Operation: "delete",
		EntryID:   entry.ID,
		EntryName: entry.Name,
		Success:   true,
	})
	s.log.Info("entry deleted", zap.Uint("entry_id", entry.ID))
	return nil
}

// Copy creates a new entry with the source entry's latest values. Array and
// scalar values are decoded from the source and re-added under the copy, so
// the copy starts its own version history.
func (s *Service) Copy(p *acl.Principal, sourceID uint, name string) (*model.Entry, error) {
	var source model.Entry
	tx := s.db.Where("id = ? AND is_active = ?", sourceID, true).First(&source)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, tx.Error
	}

	if !s.acl.HasPermission(p, source, model.LevelReadable) {
		return nil, acl.ErrPermissionDenied
	}

	copied, err := s.Create(p, source.SchemaID, name)
	if err != nil {
		return nil, err
	}

	var sourceAttrs []model.Attribute
	err = s.db.Where("parent_entry_id = ? AND is_active = ?", source.ID, true).Find(&sourceAttrs).Error
	if err != nil {
		return nil, err
	}

	var copiedAttrs []model.Attribute
	err = s.db.Where("parent_entry_id = ? AND is_active = ?", copied.ID, true).Find(&copiedAttrs).Error
	if err != nil {
		return nil, err
	}
	bySchema := make(map[uint]*model.Attribute, len(copiedAttrs))
	for i := range copiedAttrs {
		bySchema[copiedAttrs[i].SchemaID] = &copiedAttrs[i]
	}

	for i := range sourceAttrs {
		if !s.acl.HasPermission(p, sourceAttrs[i], model.LevelReadable) {
			continue
		}
		target, ok := bySchema[sourceAttrs[i].SchemaID]
		if !ok {
			continue
		}

		latest, err := s.values.GetLatest(p.UserID, &sourceAttrs[i])
		if err != nil {
			return nil, err
		}
		value, err := s.values.Decode(latest)
		if err != nil {
			return nil, err
		}

		updated, err := s.values.IsUpdated(target, value)
		if err != nil || !updated {
			continue
		}
		if _, err := s.values.AddValue(p.UserID, target, value); err != nil {
			return nil, err
		}
	}

	if err := s.indexer.RegisterEntry(p.UserID, copied.ID); err != nil {
		return nil, err
	}

	audit.Log(audit.EntryEvent{
		UserID:    p.UserID,
		Operation: "copy",
		EntryID:   copied.ID,
		EntryName: name,
		Success:   true,
	})
	return copied, nil
}
