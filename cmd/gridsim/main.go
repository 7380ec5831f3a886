package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gridwalk/internal/ai"
	"github.com/udisondev/gridwalk/internal/config"
	"github.com/udisondev/gridwalk/internal/data"
	"github.com/udisondev/gridwalk/internal/db"
	"github.com/udisondev/gridwalk/internal/observer"
	"github.com/udisondev/gridwalk/internal/sim"
	"github.com/udisondev/gridwalk/internal/world"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.Path()
	cfg, err := config.LoadSimulator(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("gridsim starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"tick_interval", cfg.TickInterval)

	ds, err := data.LoadDataset(cfg.Dataset)
	if err != nil {
		return err
	}

	geography, closeStore, err := openGeography(ctx, cfg, ds)
	if err != nil {
		return err
	}
	defer closeStore()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	slog.Info("random seed", "seed", seed)

	opts := sim.Options{
		Interval:    cfg.TickInterval,
		Budget:      cfg.Search.Budget,
		ChaseRange:  cfg.Search.ChaseRange,
		Passthrough: cfg.Debug.Passthrough,
		MaxTicks:    cfg.MaxTicks,
		Rand:        rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
	}

	var hub *observer.Hub
	if cfg.Observer.Enabled {
		hub = observer.NewHub()
		opts.Publisher = hub
	}

	simulation, err := sim.New(ds, geography, opts)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	// Первым завершается цикл тиков; его остановка гасит observer.
	runCtx, stopAll := context.WithCancel(gctx)
	defer stopAll()

	g.Go(func() error {
		defer stopAll()
		err := simulation.Run(runCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("tick loop: %w", err)
		}
		return nil
	})

	if hub != nil {
		srv := observer.NewServer(hub)
		srv.AllowRemote = cfg.Observer.AllowRemote
		g.Go(func() error {
			return srv.ListenAndServe(runCtx, cfg.Observer.Addr)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("gridsim stopped",
		"ticks", simulation.Manager().Ticks(),
		"current_map", simulation.World().Current().Name())
	return nil
}

// openGeography picks the overview source: the configured database, or
// the dataset itself. The returned closer is always safe to call.
func openGeography(ctx context.Context, cfg config.Simulator, ds *data.Dataset) (*world.LazyGeography, func(), error) {
	noop := func() {}

	var fallback *world.GeographyIndex
	if ds.HasGeography() {
		idx, err := ds.Geography()
		if err != nil {
			return nil, noop, fmt.Errorf("building dataset geography: %w", err)
		}
		fallback = idx
	}

	if cfg.Database.Driver == config.DriverNone {
		if fallback == nil {
			slog.Warn("dataset has no overview, map seams are closed")
			return nil, noop, nil
		}
		return world.StaticGeography(fallback), noop, nil
	}

	store, err := db.OpenStore(ctx, cfg.Database.Driver, cfg.Database.DSN(), cfg.Database.Path)
	if err != nil {
		return nil, noop, fmt.Errorf("opening geography store: %w", err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing geography store", "err", err)
		}
	}
	return world.NewLazyGeography(db.GeographyLoader(ctx, store, fallback)), closeStore, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
