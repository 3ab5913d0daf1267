package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/server/store"
)

// Ensure HealthStore implements store.HealthStore
var _ store.HealthStore = (*HealthStore)(nil)

// HealthStore answers readiness probes against the CMDB database. A server
// whose schema migration ledger is dirty reports unhealthy even when the
// connection works, since reads against a half-migrated schema misbehave.
type HealthStore struct {
	db *gorm.DB
}

// NewHealthStore creates a new HealthStore
func NewHealthStore(db *gorm.DB) *HealthStore {
	return &HealthStore{db: db}
}

// CheckConnectivity verifies database connectivity
func (s *HealthStore) CheckConnectivity() error {
	return s.db.Exec("SELECT 1").Error
}

// CheckMigrations verifies the migration ledger exists and the last run
// completed.
func (s *HealthStore) CheckMigrations() error {
	var dirty bool
	err := s.db.Raw("SELECT dirty FROM schema_migrations LIMIT 1").Scan(&dirty).Error
	if err != nil {
		return err
	}
	if dirty {
		return errors.New("schema migration ledger is dirty")
	}
	return nil
}
