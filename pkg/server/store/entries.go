package store

import (
	"errors"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ErrEntryNotFound is returned when an entry does not exist or is inactive
var ErrEntryNotFound = errors.New("entry not found")

// EntriesStore abstracts entry read operations
type EntriesStore interface {
	// ListEntries returns active entries of an entity with optional name
	// filtering
	ListEntries(entityID uint, search string, limit, offset int) ([]model.Entry, error)

	// CountEntries returns the count of active entries matching the filter
	CountEntries(entityID uint, search string) (int64, error)

	// FetchEntry retrieves a single active entry by ID
	FetchEntry(id uint) (*model.Entry, error)

	// FetchEntryByName retrieves an active entry of an entity by name
	FetchEntryByName(entityID uint, name string) (*model.Entry, error)

	// ListAttributes returns the active attribute instances of an entry
	ListAttributes(entryID uint) ([]model.Attribute, error)
}
