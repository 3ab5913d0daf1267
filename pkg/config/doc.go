// Package config provides configuration management for the CMDB server and
// worker.
//
// # Configuration Sources
//
// Values are resolved in order, later sources winning:
//
//   - Built-in defaults
//   - Configuration file (/etc/cmdb/cmdb.yml by default)
//   - Environment variables with the CMDB_ prefix
//
// Each attribute remembers which source supplied it, so `cmdbctl
// configuration show` can report where a value came from.
//
// # Key Configuration Options
//
//   - CMDB_CONFIG_PATH: Directory holding cmdb.yml
//   - DATABASE_URL: Database connection
//   - CMDB_ES_URL / CMDB_ES_INDEX: Search index backend
//   - CMDB_TOKEN_SIGNING_KEY: API token signing key
//   - CMDB_LOG_LEVEL: Logging verbosity
//   - PORT: Server listen port
package config
