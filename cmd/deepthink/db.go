package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"deepthink/internal/config"
	"deepthink/internal/logger"
	"deepthink/internal/store"
	"deepthink/internal/store/postgres"
	"deepthink/internal/store/redis"
	"deepthink/internal/store/sqlite"
	"deepthink/internal/tracker"
)

// app bundles what every data command needs. close releases the store and
// flushes the logger.
type app struct {
	cfg     *config.ProjectConfig
	log     logger.Logger
	advice  *config.Advice
	store   store.Store
	tracker *tracker.Tracker
	zap     *zap.Logger
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	log := logger.NewZapAdapter(zl).With(map[string]interface{}{"project": cfg.Project})

	advice, err := config.LoadAdvice(cfg.Advice)
	if err != nil {
		_ = zl.Sync()
		return nil, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		_ = zl.Sync()
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close(ctx)
		_ = zl.Sync()
		return nil, err
	}

	tr := tracker.New(db,
		tracker.WithLogger(log),
		tracker.WithHistoryCapacity(cfg.History.MaxEntries),
		tracker.WithAdvice(advice),
	)
	return &app{cfg: cfg, log: log, advice: advice, store: db, tracker: tr, zap: zl}, nil
}

// withApp opens the configured store for one command and closes it afterwards.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)
	return fn(ctx, a)
}

func (a *app) close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		a.log.WithError(err).Warn("closing store failed", nil)
	}
	_ = a.zap.Sync()
}

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	backend, err := config.Backend(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	// each branch returns a nil interface on failure, never a typed nil client
	switch backend {
	case "sqlite":
		client, err := sqlite.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "postgres":
		client, err := postgres.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "redis":
		client, err := redis.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unsupported database backend %q", backend)
}
