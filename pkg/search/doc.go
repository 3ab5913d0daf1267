// Package search compiles per-attribute keyword hints into a structured
// index query, executes it, and reconciles the hits against live referential
// state and permissions.
//
// The keyword sub-grammar: alternatives split on an OR delimiter, terms
// inside an alternative on an AND delimiter. A term is a date-range
// predicate when it parses strictly as [<|>]?YYYY[-/]MM[-/]DD, the blank
// sentinel when it equals EmptySearchCharacter, and a case-insensitive
// literal substring otherwise. A malformed date-looking term degrades to a
// substring match rather than failing the query.
package search
