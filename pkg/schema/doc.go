// Package schema exposes the attribute-definition registry consumed by the
// value store, the search compiler and the job handlers.
//
// The registry is read-only here. Creating and editing entity types and
// attribute definitions is handled by the schema CRUD surface, which only
// needs to write the entities/entity_attrs tables this package reads.
package schema
