package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/udisondev/gridwalk/internal/db/migrations"
	"github.com/udisondev/gridwalk/internal/world"
)

// SQLiteStore implements GeographyStore on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("opening sqlite: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating sqlite directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := migrate(ctx, sqlDB, "sqlite3", migrations.SQLiteDir); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLiteStore{db: sqlDB}, nil
}

func initPragmas(ctx context.Context, sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("applying %q: %w", p, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadGeography implements GeographyStore.
func (s *SQLiteStore) LoadGeography(ctx context.Context) (*world.GeographyIndex, error) {
	var width, height int32
	err := s.db.QueryRowContext(ctx,
		`SELECT width, height FROM geography_overview WHERE id = 1`,
	).Scan(&width, &height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoGeography
		}
		return nil, fmt.Errorf("querying geography overview: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT x, y, map_id, through FROM geography_markers ORDER BY y, x`)
	if err != nil {
		return nil, fmt.Errorf("querying geography markers: %w", err)
	}
	defer rows.Close()

	var markers []world.Marker
	for rows.Next() {
		var m world.Marker
		if err := rows.Scan(&m.X, &m.Y, &m.MapID, &m.Through); err != nil {
			return nil, fmt.Errorf("scanning geography marker: %w", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating geography markers: %w", err)
	}

	return world.BuildGeography(width, height, markers)
}

// SaveGeography implements GeographyStore.
func (s *SQLiteStore) SaveGeography(ctx context.Context, idx *world.GeographyIndex, src Import) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning geography transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO geography_overview (id, width, height) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET width = excluded.width, height = excluded.height`,
		idx.Width(), idx.Height(),
	); err != nil {
		return fmt.Errorf("upserting geography overview: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM geography_markers`); err != nil {
		return fmt.Errorf("clearing geography markers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO geography_markers (x, y, map_id, through) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing marker insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range idx.Markers() {
		if _, err := stmt.ExecContext(ctx, m.X, m.Y, m.MapID, m.Through); err != nil {
			return fmt.Errorf("inserting marker (%d,%d): %w", m.X, m.Y, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO geography_import (id, name, digest, imported_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, digest = excluded.digest, imported_at = CURRENT_TIMESTAMP`,
		src.Name, src.Digest,
	); err != nil {
		return fmt.Errorf("recording geography import: %w", err)
	}

	if src.Name != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dataset_digests (name, digest, imported_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (name) DO UPDATE SET digest = excluded.digest, imported_at = CURRENT_TIMESTAMP`,
			src.Name, src.Digest,
		); err != nil {
			return fmt.Errorf("saving dataset digest %q: %w", src.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing geography: %w", err)
	}
	return nil
}

// CurrentImport implements GeographyStore.
func (s *SQLiteStore) CurrentImport(ctx context.Context) (Import, error) {
	var src Import
	err := s.db.QueryRowContext(ctx,
		`SELECT name, digest FROM geography_import WHERE id = 1`,
	).Scan(&src.Name, &src.Digest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Import{}, nil
		}
		return Import{}, fmt.Errorf("querying geography import: %w", err)
	}
	return src, nil
}

// DatasetDigest implements GeographyStore.
func (s *SQLiteStore) DatasetDigest(ctx context.Context, name string) (string, error) {
	var digest string
	err := s.db.QueryRowContext(ctx,
		`SELECT digest FROM dataset_digests WHERE name = ?`, name,
	).Scan(&digest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("querying dataset digest %q: %w", name, err)
	}
	return digest, nil
}
