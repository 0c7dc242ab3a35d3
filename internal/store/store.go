package store

import (
	"context"
	"fmt"

	"github.com/rpattn/leadflow/internal/config"
	"github.com/rpattn/leadflow/internal/db"
	"github.com/rpattn/leadflow/internal/repository"

	"go.uber.org/zap"
)

// Store bundles the repositories of one backend together with its teardown.
type Store struct {
	Leads  repository.LeadRepository
	Audits repository.ImportAuditRepository

	closeFn func()
}

// Open connects to the backend selected by cfg.Store.Driver. Postgres is migrated
// before the pool is handed out; SQLite creates its schema on open.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if err := db.RunMigrations(cfg.Database); err != nil {
			return nil, err
		}
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres",
			zap.String("host", cfg.Database.Host),
			zap.String("dbname", cfg.Database.DBName),
		)
		return &Store{
			Leads:   repository.NewLeadRepository(conn.Pool),
			Audits:  repository.NewImportAuditRepository(conn.Pool),
			closeFn: conn.Close,
		}, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite store", zap.String("path", cfg.Store.SQLitePath))
		return &Store{
			Leads:   repository.NewSQLiteLeadRepository(conn),
			Audits:  repository.NewSQLiteImportAuditRepository(conn),
			closeFn: func() { _ = conn.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (s *Store) Close() {
	if s != nil && s.closeFn != nil {
		s.closeFn()
	}
}
