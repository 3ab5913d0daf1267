package store

// HealthStore answers readiness probes.
type HealthStore interface {
	// CheckConnectivity verifies database connectivity
	CheckConnectivity() error

	// CheckMigrations verifies the schema migration ledger is clean
	CheckMigrations() error
}
