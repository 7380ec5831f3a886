package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/gridwalk/internal/world"
)

// PostgresGeographyRepository реализует GeographyStore для PostgreSQL.
type PostgresGeographyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresGeographyRepository создаёт новый PostgreSQL repository.
func NewPostgresGeographyRepository(pool *pgxpool.Pool) *PostgresGeographyRepository {
	return &PostgresGeographyRepository{pool: pool}
}

// LoadGeography читает overview и все маркеры.
func (r *PostgresGeographyRepository) LoadGeography(ctx context.Context) (*world.GeographyIndex, error) {
	var width, height int32
	err := r.pool.QueryRow(ctx,
		`SELECT width, height FROM geography_overview WHERE id = 1`,
	).Scan(&width, &height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoGeography
		}
		return nil, fmt.Errorf("querying geography overview: %w", err)
	}

	rows, err := r.pool.Query(ctx,
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

// SaveGeography заменяет overview, маркеры и запись об импорте в одной транзакции.
func (r *PostgresGeographyRepository) SaveGeography(ctx context.Context, idx *world.GeographyIndex, src Import) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning geography transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx,
		`INSERT INTO geography_overview (id, width, height) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET width = EXCLUDED.width, height = EXCLUDED.height`,
		idx.Width(), idx.Height(),
	); err != nil {
		return fmt.Errorf("upserting geography overview: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM geography_markers`); err != nil {
		return fmt.Errorf("clearing geography markers: %w", err)
	}

	markers := idx.Markers()
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"geography_markers"},
		[]string{"x", "y", "map_id", "through"},
		pgx.CopyFromSlice(len(markers), func(i int) ([]any, error) {
			m := markers[i]
			return []any{m.X, m.Y, m.MapID, m.Through}, nil
		}),
	); err != nil {
		return fmt.Errorf("copying geography markers: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO geography_import (id, name, digest, imported_at) VALUES (1, $1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, digest = EXCLUDED.digest, imported_at = now()`,
		src.Name, src.Digest,
	); err != nil {
		return fmt.Errorf("recording geography import: %w", err)
	}

	if src.Name != "" {
		if _, err := tx.Exec(ctx,
			`INSERT INTO dataset_digests (name, digest, imported_at) VALUES ($1, $2, now())
			 ON CONFLICT (name) DO UPDATE SET digest = EXCLUDED.digest, imported_at = now()`,
			src.Name, src.Digest,
		); err != nil {
			return fmt.Errorf("saving dataset digest %q: %w", src.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing geography: %w", err)
	}
	return nil
}

// CurrentImport возвращает импорт, из которого пришёл текущий overview.
func (r *PostgresGeographyRepository) CurrentImport(ctx context.Context) (Import, error) {
	var src Import
	err := r.pool.QueryRow(ctx,
		`SELECT name, digest FROM geography_import WHERE id = 1`,
	).Scan(&src.Name, &src.Digest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Import{}, nil
		}
		return Import{}, fmt.Errorf("querying geography import: %w", err)
	}
	return src, nil
}

// DatasetDigest возвращает digest последнего импорта name или "".
func (r *PostgresGeographyRepository) DatasetDigest(ctx context.Context, name string) (string, error) {
	var digest string
	err := r.pool.QueryRow(ctx,
		`SELECT digest FROM dataset_digests WHERE name = $1`, name,
	).Scan(&digest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("querying dataset digest %q: %w", name, err)
	}
	return digest, nil
}
