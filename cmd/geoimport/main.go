// geoimport stores the overview geography of a dataset in PostgreSQL or
// SQLite so gridsim can load it from there.
//
// Usage:
//
//	go run ./cmd/geoimport -dataset data/world.yaml -driver sqlite -db data/geography.db
//	go run ./cmd/geoimport -dataset data/world.yaml -driver postgres -dsn postgres://...
//	go run ./cmd/geoimport -dataset data/world.yaml -compress data/world.yaml.zst
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/udisondev/gridwalk/internal/config"
	"github.com/udisondev/gridwalk/internal/data"
	"github.com/udisondev/gridwalk/internal/db"
)

type options struct {
	dataset  string
	name     string
	driver   string
	dsn      string
	dbPath   string
	compress string
}

func main() {
	defaults := config.DefaultSimulator()

	var opts options
	flag.StringVar(&opts.dataset, "dataset", defaults.Dataset, "dataset file (.yaml or .yaml.zst)")
	flag.StringVar(&opts.name, "name", "", "dataset name for digest tracking (default: file name)")
	flag.StringVar(&opts.driver, "driver", db.DriverSQLite, "storage driver: sqlite or postgres")
	flag.StringVar(&opts.dsn, "dsn", defaults.Database.DSN(), "PostgreSQL DSN")
	flag.StringVar(&opts.dbPath, "db", defaults.Database.Path, "SQLite file")
	flag.StringVar(&opts.compress, "compress", "", "also write the dataset zstd-compressed to this path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	raw, err := data.ReadDatasetFile(opts.dataset)
	if err != nil {
		return err
	}
	ds, err := data.ParseDataset(raw)
	if err != nil {
		return fmt.Errorf("parsing dataset %s: %w", opts.dataset, err)
	}
	if !ds.HasGeography() {
		return fmt.Errorf("dataset %s has no overview to import", opts.dataset)
	}
	idx, err := ds.Geography()
	if err != nil {
		return fmt.Errorf("building geography: %w", err)
	}

	if opts.compress != "" {
		packed, err := data.Compress(raw)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.compress, packed, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.compress, err)
		}
		slog.Info("compressed dataset written",
			"path", opts.compress,
			"raw_bytes", len(raw),
			"packed_bytes", len(packed))
	}

	store, err := db.OpenStore(ctx, opts.driver, opts.dsn, opts.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	name := opts.name
	if name == "" {
		name = datasetName(opts.dataset)
	}
	imported, err := db.ImportGeography(ctx, store, name, ds.Digest, idx)
	if err != nil {
		return err
	}

	slog.Info("geoimport done",
		"dataset", name,
		"driver", opts.driver,
		"imported", imported,
		"overview", fmt.Sprintf("%dx%d", idx.Width(), idx.Height()))
	return nil
}

// datasetName strips directories and dataset extensions: data/world.yaml.zst → world.
func datasetName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, data.ZstdExt)
	name = strings.TrimSuffix(name, ".yaml")
	return strings.TrimSuffix(name, ".yml")
}
