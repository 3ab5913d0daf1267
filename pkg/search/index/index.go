package index

import (
	"errors"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ErrIndexUnavailable is returned when the search backend is unreachable.
// Read paths treat it as "no results"; the write-refresh path surfaces it so
// callers can retry.
var ErrIndexUnavailable = errors.New("search index unavailable")

// Document is the indexed form of one entry. Array attributes emit one
// element per child leaf value; a present-but-blank attribute still emits one
// element with blank value and no referral, so "attribute exists but blank"
// stays distinguishable from "attribute absent".
type Document struct {
	Entity DocumentEntity `json:"entity"`
	Name   string         `json:"name"`
	Attrs  []DocumentAttr `json:"attr"`
}

// DocumentEntity identifies the entity type of the indexed entry.
type DocumentEntity struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// DocumentAttr is one indexed attribute element. Key carries the label of
// named values; Value carries the textual payload or the referred entry's
// name.
type DocumentAttr struct {
	Name       string         `json:"name"`
	Type       model.AttrType `json:"type"`
	Key        string         `json:"key"`
	Value      string         `json:"value"`
	DateValue  *string        `json:"date_value,omitempty"`
	ReferralID *uint          `json:"referral_id,omitempty"`
}

// Hit is one matching document.
type Hit struct {
	EntryID uint
	Doc     Document
}

// Result is an executed query's outcome, ordered by entry name ascending with
// insertion order breaking ties.
type Result struct {
	Hits  []Hit
	Total int
}

// Index abstracts the external search index. Register makes the document
// immediately searchable (the refresh is part of the write).
type Index interface {
	// Register upserts the document for an entry and refreshes the index.
	Register(entryID uint, doc *Document) error

	// Delete removes an entry's document. Deleting an absent document is
	// not an error.
	Delete(entryID uint) error

	// Search executes a compiled query. A missing index is an empty
	// result, not an error.
	Search(q *Query) (*Result, error)
}
