package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridwalk/internal/data"
	"github.com/udisondev/gridwalk/internal/db"
)

func TestDatasetName(t *testing.T) {
	tests := map[string]string{
		"data/world.yaml":     "world",
		"data/world.yaml.zst": "world",
		"/tmp/coast.yml":      "coast",
		"plain":               "plain",
	}
	for in, want := range tests {
		assert.Equal(t, want, datasetName(in), in)
	}
}

func TestRun_SQLiteWithCompression(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		dataset:  "../../internal/data/testdata/world.yaml",
		driver:   db.DriverSQLite,
		dbPath:   filepath.Join(dir, "geo.db"),
		compress: filepath.Join(dir, "world.yaml.zst"),
	}
	ctx := context.Background()

	require.NoError(t, run(ctx, opts))
	// Second run hits the digest and skips.
	require.NoError(t, run(ctx, opts))

	store, err := db.OpenSQLite(ctx, opts.dbPath)
	require.NoError(t, err)
	defer store.Close()

	idx, err := store.LoadGeography(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(6), idx.Width())
	assert.Len(t, idx.Markers(), 8)

	digest, err := store.DatasetDigest(ctx, "world")
	require.NoError(t, err)
	assert.NotEmpty(t, digest)

	current, err := store.CurrentImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, db.Import{Name: "world", Digest: digest}, current)

	// Compressed copy decodes to the same dataset.
	_, err = os.Stat(opts.compress)
	require.NoError(t, err)
	ds, err := data.LoadDataset(opts.compress)
	require.NoError(t, err)
	assert.Equal(t, digest, ds.Digest)
}
