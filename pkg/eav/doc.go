// Package eav owns the versioned attribute-value history.
//
// Every write appends a version; the version flagged is_latest is the
// current value. The flag is maintained clear-then-set: all prior latest
// rows are cleared before the new row is written, so a crash in between
// leaves a window with no latest value, which GetLatest repairs by
// synthesizing an empty value of the current schema type. The same
// synthesis path reconciles attributes added to a schema after entries
// already exist and attribute type changes, without a migration step.
package eav
