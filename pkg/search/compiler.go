package search

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
)

// Hint names an attribute to search on and report back. An empty keyword
// selects the attribute for output without filtering.
type Hint struct {
	Name    string
	Keyword string
}

// Options tunes one search.
type Options struct {
	// EntryName optionally filters on the entry name, with the same
	// keyword sub-grammar as attribute hints.
	EntryName string
	// HintReferral, when set, keeps only entries matching a referral
	// condition: the blank sentinel keeps entries nothing refers to; any
	// other string keeps entries referred to by at least one entry whose
	// name contains it.
	HintReferral *string
	// Link combines hints across attributes. Zero value is or.
	Link index.Link
	// Limit truncates the returned rows after reconciliation.
	Limit int
}

// Referral is one entry referring to a result row's entry.
type Referral struct {
	ID   uint
	Name string
}

// Row is one reconciled search result.
type Row struct {
	EntryID   uint
	EntryName string
	Entity    index.DocumentEntity
	// Attrs maps hinted attribute names to their indexed elements.
	// Attributes the principal cannot read are omitted, not blanked.
	Attrs     map[string][]index.DocumentAttr
	Referrals []Referral
}

// Result is a finished search. TotalCount counts rows that survived
// reconciliation, before the limit truncation.
type Result struct {
	TotalCount int
	Rows       []Row
}

// Compiler turns hints into index queries and index hits into rows.
type Compiler struct {
	db    *gorm.DB
	store *eav.Store
	acl   *acl.Evaluator
	idx   index.Index
	log   *zap.Logger
}

// NewCompiler creates a new Compiler
func NewCompiler(db *gorm.DB, store *eav.Store, evaluator *acl.Evaluator, idx index.Index, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{db: db, store: store, acl: evaluator, idx: idx, log: log}
}

// Search runs the full pipeline: compile, execute, reconcile, truncate.
func (c *Compiler) Search(p *acl.Principal, entityIDs []uint, hints []Hint, opts Options) (*Result, error) {
	query := Compile(entityIDs, hints, opts)

	res, err := c.idx.Search(query)
	if err != nil {
		if errors.Is(err, index.ErrIndexUnavailable) {
			c.log.Warn("search index unavailable, returning no results", zap.Error(err))
			return &Result{}, nil
		}
		return nil, err
	}

	return c.reconcile(p, res, hints, opts)
}

// Compile builds the structured query. Hints whose keyword compiles to no
// terms add no filter; they only pick attributes for the output rows.
func Compile(entityIDs []uint, hints []Hint, opts Options) *index.Query {
	query := &index.Query{
		EntityIDs: entityIDs,
		Link:      opts.Link,
		Name:      parseKeyword(opts.EntryName),
	}

	for _, hint := range hints {
		alternatives := parseKeyword(hint.Keyword)
		if len(alternatives) == 0 {
			continue
		}
		query.Attrs = append(query.Attrs, index.AttrFilter{
			Name:         hint.Name,
			Alternatives: alternatives,
		})
	}
	return query
}

// reconcile re-attaches hits to live state: entries deleted since indexing
// are dropped, the referral filter is applied, and attributes outside the
// principal's readable set are omitted from the row.
func (c *Compiler) reconcile(p *acl.Principal, res *index.Result, hints []Hint, opts Options) (*Result, error) {
	hinted := make(map[string]bool, len(hints))
	for _, hint := range hints {
		hinted[hint.Name] = true
	}

	var rows []Row
	for _, hit := range res.Hits {
		var entry model.Entry
		tx := c.db.Where("id = ? AND is_active = ?", hit.EntryID, true).First(&entry)
		if tx.Error != nil {
			if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, tx.Error
		}

		if !c.acl.HasPermission(p, entry, model.LevelReadable) {
			continue
		}

		row := Row{
			EntryID:   entry.ID,
			EntryName: entry.Name,
			Entity:    hit.Doc.Entity,
			Attrs:     make(map[string][]index.DocumentAttr),
		}

		if opts.HintReferral != nil {
			keep, referrals, err := c.applyReferralFilter(entry.ID, *opts.HintReferral)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
			row.Referrals = referrals
		}

		readable, err := c.readableAttrNames(p, entry.ID)
		if err != nil {
			return nil, err
		}
		for _, attr := range hit.Doc.Attrs {
			if !hinted[attr.Name] || !readable[attr.Name] {
				continue
			}
			row.Attrs[attr.Name] = append(row.Attrs[attr.Name], attr)
		}

		rows = append(rows, row)
	}

	result := &Result{TotalCount: len(rows), Rows: rows}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		result.Rows = rows[:opts.Limit]
	}
	return result, nil
}

func (c *Compiler) applyReferralFilter(entryID uint, hintReferral string) (bool, []Referral, error) {
	referring, _, err := c.store.ReferredEntries(entryID, 0)
	if err != nil {
		return false, nil, err
	}

	if hintReferral == EmptySearchCharacter {
		return len(referring) == 0, nil, nil
	}

	var referrals []Referral
	matched := false
	needle := strings.ToLower(hintReferral)
	for _, ref := range referring {
		referrals = append(referrals, Referral{ID: ref.ID, Name: ref.Name})
		if strings.Contains(strings.ToLower(ref.Name), needle) {
			matched = true
		}
	}
	return matched, referrals, nil
}

func (c *Compiler) readableAttrNames(p *acl.Principal, entryID uint) (map[string]bool, error) {
	var attrs []model.Attribute
	err := c.db.Where("parent_entry_id = ? AND is_active = ?", entryID, true).Find(&attrs).Error
	if err != nil {
		return nil, err
	}

	readable := make(map[string]bool, len(attrs))
	for i := range attrs {
		if c.acl.HasPermission(p, attrs[i], model.LevelReadable) {
			readable[attrs[i].Name] = true
		}
	}
	return readable, nil
}
