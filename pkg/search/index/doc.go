// Package index defines the external search index contract: the per-entry
// document shape, the structured query the compiler produces, and the Index
// interface with an Elasticsearch-backed implementation and an in-memory one
// with identical matching semantics for tests and single-node setups.
package index
