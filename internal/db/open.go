package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/gridwalk/internal/world"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is a GeographyStore holding an open connection.
type Store interface {
	GeographyStore
	Close() error
}

type postgresStore struct {
	*PostgresGeographyRepository
	db *DB
}

func (s *postgresStore) Close() error {
	s.db.Close()
	return nil
}

// OpenStore connects to the store selected by driver and applies
// migrations. dsn is used by postgres, path by sqlite.
func OpenStore(ctx context.Context, driver, dsn, path string) (Store, error) {
	switch driver {
	case DriverPostgres:
		database, err := New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, dsn); err != nil {
			database.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database connected", "driver", driver)
		return &postgresStore{PostgresGeographyRepository: database.Geography(), db: database}, nil

	case DriverSQLite:
		store, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		slog.Info("database connected", "driver", driver, "path", path)
		return store, nil
	}
	return nil, fmt.Errorf("opening store: unknown driver %q", driver)
}

// GeographyLoader returns a loader reading the stored overview. When the
// store is empty and fallback is non-nil the fallback index is used.
func GeographyLoader(ctx context.Context, store GeographyStore, fallback *world.GeographyIndex) world.GeographyLoader {
	return func() (*world.GeographyIndex, error) {
		idx, err := store.LoadGeography(ctx)
		if errors.Is(err, ErrNoGeography) && fallback != nil {
			slog.Warn("no geography stored, using dataset overview")
			return fallback, nil
		}
		return idx, err
	}
}
