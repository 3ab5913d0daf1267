// Package main provides cmdbctl, the CLI for the CMDB server and worker.
//
// The CMDB stores versioned configuration items (entries) instantiated from
// user-defined schemas (entities), enforces bitwise access control on every
// object, mirrors entries into an external search index, and serializes
// conflicting mutations through an asynchronous job queue.
//
// # Architecture
//
// The server is organized into several packages:
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/model: Database models
//   - pkg/schema: Attribute definition registry
//   - pkg/acl: Permission evaluation
//   - pkg/eav: Versioned attribute value store
//   - pkg/search: Query compilation and index reconciliation
//   - pkg/job: Job scheduling and the worker runner
//   - pkg/entry: Entry lifecycle mutations
//   - pkg/db: Database connection utilities
//   - pkg/config: Configuration management
//
// # Quick Start
//
//	# Run database migrations
//	cmdbctl db migrate
//
//	# Create a user
//	cmdbctl user create admin --superuser
//
//	# Start the server and, separately, the worker
//	cmdbctl server
//	cmdbctl worker
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - CMDB_ES_URL: Search index base URL
//   - CMDB_TOKEN_SIGNING_KEY: API token signing key
//   - CMDB_LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 8080)
package main
