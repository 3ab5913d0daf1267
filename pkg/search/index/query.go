package index

import "time"

// Link combines per-attribute filters.
type Link string

const (
	LinkAnd Link = "and"
	LinkOr  Link = "or"
)

// TermKind discriminates the predicate a Term applies.
type TermKind int

const (
	// TermSubstring matches when the attribute value contains the term
	// text, case-insensitively.
	TermSubstring TermKind = iota
	// TermEmpty matches when the attribute exists but its value is blank.
	TermEmpty
	// TermDateOn matches date values within the term's day.
	TermDateOn
	// TermDateBefore matches date values strictly before the term's day.
	TermDateBefore
	// TermDateAfter matches date values strictly after the term's day.
	TermDateAfter
)

// Term is one leaf predicate. Text is kept unescaped; backends that compile
// to a pattern language escape it themselves.
type Term struct {
	Kind TermKind
	Text string
	Date time.Time
}

// AttrFilter matches one attribute by name. Alternatives are combined with
// should-disjunction; the terms inside one alternative with
// filter-conjunction.
type AttrFilter struct {
	Name         string
	Alternatives [][]Term
}

// Query is the structured query the compiler hands to an Index.
type Query struct {
	// EntityIDs is the mandatory entity filter.
	EntityIDs []uint
	// Name optionally filters on the entry name, same sub-grammar as
	// attribute keywords.
	Name [][]Term
	// Attrs are the per-attribute filters, combined according to Link.
	Attrs []AttrFilter
	// Link is how filters on different attributes combine. Zero value
	// means LinkOr.
	Link Link
}

func (q *Query) link() Link {
	if q.Link == LinkAnd {
		return LinkAnd
	}
	return LinkOr
}
