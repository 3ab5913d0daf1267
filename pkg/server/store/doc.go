// Package store provides storage abstractions for the CMDB server.
//
// This package defines interfaces for the read-side database operations the
// HTTP endpoints need, decoupling them from the specific database
// implementation. This enables easier testing with mocks.
//
// # Available Stores
//
//   - EntitiesStore: Entity and entity attribute listing
//   - EntriesStore: Entry listing and lookup
//   - JobsStore: Job listing for the jobs API
//   - UsersStore: User lookup for authentication
//   - HealthStore: Connectivity and migration readiness for the status endpoint
//
// Mutations go through the domain packages (eav, job, acl) rather than
// through these stores.
package store
