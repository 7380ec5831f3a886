package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/gridwalk/internal/world"
)

// ErrNoGeography is returned by LoadGeography when nothing was imported yet.
var ErrNoGeography = errors.New("no geography stored")

// Import identifies the dataset an overview was imported from.
type Import struct {
	Name   string
	Digest string
}

// GeographyStore persists one overview geography together with the import
// it came from.
type GeographyStore interface {
	// LoadGeography returns the stored overview; ErrNoGeography when empty.
	LoadGeography(ctx context.Context) (*world.GeographyIndex, error)
	// SaveGeography replaces the stored overview and records src as the
	// current import in the same transaction.
	SaveGeography(ctx context.Context, idx *world.GeographyIndex, src Import) error
	// CurrentImport returns the import the stored overview came from, zero
	// when nothing was imported.
	CurrentImport(ctx context.Context) (Import, error)
	// DatasetDigest returns the digest last imported under name, "" if none.
	DatasetDigest(ctx context.Context, name string) (string, error)
}

// ImportGeography stores idx unless the stored overview already came from
// the same dataset name and digest. Reports whether anything was written.
func ImportGeography(ctx context.Context, store GeographyStore, name, digest string, idx *world.GeographyIndex) (bool, error) {
	src := Import{Name: name, Digest: digest}

	current, err := store.CurrentImport(ctx)
	if err != nil {
		return false, fmt.Errorf("importing geography %s: %w", name, err)
	}
	if current == src {
		slog.Info("geography up to date, skipping import", "dataset", name, "digest", digest)
		return false, nil
	}

	if err := store.SaveGeography(ctx, idx, src); err != nil {
		return false, fmt.Errorf("importing geography %s: %w", name, err)
	}

	slog.Info("geography imported",
		"dataset", name,
		"digest", digest,
		"replaced", current.Name,
		"markers", len(idx.Markers()))
	return true, nil
}
