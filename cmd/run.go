package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slayken/slayken/internal/config"
	"github.com/slayken/slayken/internal/engine"
	"github.com/slayken/slayken/internal/logging"
	"github.com/slayken/slayken/internal/metrics"
	"github.com/slayken/slayken/internal/missions"
	"github.com/slayken/slayken/internal/store"
)

// runtime bundles everything a command needs and the cleanup for it.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	engine  *engine.Engine
	closers []func() error
}

// Close releases the store and flushes the logger.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.logger.Warn("close", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}

// openRuntime loads configuration, opens the configured store and builds
// the engine.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.Must(cfg.Logging)
	rt := &runtime{cfg: cfg, logger: logger, metrics: metrics.New()}

	opts, err := rt.openStore(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		rt.Close()
		return nil, err
	}
	opts.Catalog = missions.LoadCatalogOrEmpty(cfg.Missions.Catalog, logger)
	opts.Logger = logger
	opts.Metrics = rt.metrics
	opts.Location = loc
	opts.AbsoluteLevelProgress = cfg.Missions.AbsoluteLevelProgress

	rt.engine, err = engine.New(ctx, opts)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return rt, nil
}

// openStore fills the KV and award log for the configured backend.
func (rt *runtime) openStore(ctx context.Context) (engine.Options, error) {
	var opts engine.Options
	sc := rt.cfg.Store

	switch sc.Backend {
	case config.BackendSQLite:
		dbPath, err := resolveDBPath(rt.cfg)
		if err != nil {
			return opts, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return opts, fmt.Errorf("open store: %w", err)
		}
		rt.closers = append(rt.closers, st.Close)
		opts.KV = st.KV()
		opts.Events = st.EventRepo()
		rt.logger.Debug("store opened", zap.String("backend", sc.Backend), zap.String("path", dbPath))

	case config.BackendMemory:
		opts.KV = store.NewMemoryKV()

	case config.BackendRedis:
		kv, err := store.OpenRedis(ctx, sc.RedisURL, sc.RedisPrefix)
		if err != nil {
			return opts, fmt.Errorf("open redis store: %w", err)
		}
		rt.closers = append(rt.closers, kv.Close)
		opts.KV = kv

	case config.BackendPostgres:
		kv, err := store.OpenPostgres(ctx, sc.PostgresDSN)
		if err != nil {
			return opts, fmt.Errorf("open postgres store: %w", err)
		}
		rt.closers = append(rt.closers, kv.Close)
		opts.KV = kv

	default:
		return opts, fmt.Errorf("%w: %q", config.ErrUnknownBackend, sc.Backend)
	}
	return opts, nil
}
