package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/usershub/internal/cache"
	"github.com/geocoder89/usershub/internal/config"
	"github.com/geocoder89/usershub/internal/db"
	"github.com/geocoder89/usershub/internal/observability"
	"github.com/geocoder89/usershub/internal/repo/memory"
	"github.com/geocoder89/usershub/internal/repo/mongodb"
	"github.com/geocoder89/usershub/internal/repo/postgres"
)

// openStore connects the configured backend. The returned close func releases it.
func openStore(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (cache.Store, func(context.Context), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}

		repo := mongodb.NewUsersRepo(client.Database(cfg.MongoDatabase), prom)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}

		log.Info("MongoDB connected", "database", cfg.MongoDatabase)

		return repo, func(ctx context.Context) { _ = client.Disconnect(ctx) }, nil

	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}

		log.Info("Postgres connected", "max_conns", cfg.DBMaxConns)

		return postgres.NewUsersRepo(pool, prom), func(context.Context) { pool.Close() }, nil

	default:
		log.Warn("using in-memory store, data is lost on restart")
		return memory.NewUsersRepo(), func(context.Context) {}, nil
	}
}

// withCache wraps store in the read-through cache when CACHE_TTL is set.
func withCache(ctx context.Context, cfg config.Config, store cache.Store, prom *observability.Prom, log *slog.Logger) (cache.Store, func(), error) {
	if !cfg.CacheEnabled() {
		return store, func() {}, nil
	}

	if cfg.RedisURL == "" {
		log.Info("cache enabled", "backend", "memory", "ttl", cfg.CacheTTL.String())
		return cache.NewUsers(store, cache.New(cfg.CacheTTL), prom, log), func() {}, nil
	}

	rdb, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}

	log.Info("cache enabled", "backend", "redis", "ttl", cfg.CacheTTL.String())

	return cache.NewUsers(store, rdb, prom, log), func() { _ = rdb.Close() }, nil
}
