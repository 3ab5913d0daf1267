package index

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Ensure Memory implements Index
var _ Index = (*Memory)(nil)

// Memory is an in-process Index. It is the reference for matching semantics:
// the Elasticsearch backend compiles the same Query to the same outcomes.
type Memory struct {
	mu   sync.RWMutex
	docs map[uint]memoryDoc
	seq  int
}

type memoryDoc struct {
	doc Document
	seq int
}

// NewMemory creates a new Memory index
func NewMemory() *Memory {
	return &Memory{docs: make(map[uint]memoryDoc)}
}

func (m *Memory) Register(entryID uint, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq := m.seq
	if prev, ok := m.docs[entryID]; ok {
		seq = prev.seq
	} else {
		m.seq++
	}
	m.docs[entryID] = memoryDoc{doc: *doc, seq: seq}
	return nil
}

func (m *Memory) Delete(entryID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, entryID)
	return nil
}

func (m *Memory) Search(q *Query) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []struct {
		hit Hit
		seq int
	}
	for entryID, stored := range m.docs {
		if matches(q, &stored.doc) {
			hits = append(hits, struct {
				hit Hit
				seq int
			}{Hit{EntryID: entryID, Doc: stored.doc}, stored.seq})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].hit.Doc.Name != hits[j].hit.Doc.Name {
			return hits[i].hit.Doc.Name < hits[j].hit.Doc.Name
		}
		return hits[i].seq < hits[j].seq
	})

	result := &Result{Total: len(hits)}
	for _, h := range hits {
		result.Hits = append(result.Hits, h.hit)
	}
	return result, nil
}

func matches(q *Query, doc *Document) bool {
	if !containsUint(q.EntityIDs, doc.Entity.ID) {
		return false
	}

	if len(q.Name) > 0 && !nameMatches(q.Name, doc.Name) {
		return false
	}

	if len(q.Attrs) == 0 {
		return true
	}

	switch q.link() {
	case LinkAnd:
		for _, filter := range q.Attrs {
			if !attrMatches(&filter, doc) {
				return false
			}
		}
		return true
	default:
		for _, filter := range q.Attrs {
			if attrMatches(&filter, doc) {
				return true
			}
		}
		return false
	}
}

// attrMatches requires at least one element of the named attribute to satisfy
// a full AND group. Terms inside a group must hold on the same element, the
// way a nested index query scopes them.
func attrMatches(filter *AttrFilter, doc *Document) bool {
	for i := range doc.Attrs {
		attr := &doc.Attrs[i]
		if attr.Name != filter.Name {
			continue
		}
		for _, group := range filter.Alternatives {
			if groupMatches(group, attr) {
				return true
			}
		}
	}
	return false
}

func groupMatches(group []Term, attr *DocumentAttr) bool {
	for _, term := range group {
		if !termMatches(term, attr) {
			return false
		}
	}
	return len(group) > 0
}

func termMatches(term Term, attr *DocumentAttr) bool {
	switch term.Kind {
	case TermEmpty:
		return attr.Value == "" && attr.ReferralID == nil
	case TermDateOn, TermDateBefore, TermDateAfter:
		if attr.DateValue == nil {
			return false
		}
		date, err := time.Parse("2006-01-02", *attr.DateValue)
		if err != nil {
			return false
		}
		switch term.Kind {
		case TermDateBefore:
			return date.Before(term.Date)
		case TermDateAfter:
			return date.After(term.Date)
		default:
			return !date.Before(term.Date) && date.Before(term.Date.AddDate(0, 0, 1))
		}
	}
	return strings.Contains(strings.ToLower(attr.Value), strings.ToLower(term.Text))
}

func nameMatches(alternatives [][]Term, name string) bool {
	pseudo := DocumentAttr{Value: name}
	for _, group := range alternatives {
		if groupMatches(group, &pseudo) {
			return true
		}
	}
	return false
}

func containsUint(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
