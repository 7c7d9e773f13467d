package main

import (
	"context"
	"database/sql"
	"delivery-map-client/internal/adapters/backend"
	"delivery-map-client/internal/adapters/cache"
	"delivery-map-client/internal/config"
	"delivery-map-client/internal/platform/db"
	"delivery-map-client/internal/ports"
	"delivery-map-client/internal/services"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// app holds the wired adapters for one command run.
type app struct {
	cfg     config.Config
	backend *backend.Client
	plans   *services.PlanService
	close   func()
}

func wire(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	client, err := backend.NewClient(cfg.BackendURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	segments, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	assembler := services.NewPathAssembler(client, segments, cfg.SegmentConcurrency)
	return &app{
		cfg:     cfg,
		backend: client,
		plans:   services.NewPlanService(client, assembler, cfg.Start()),
		close:   closeCache,
	}, nil
}

// openCache returns a nil cache when CACHE_DRIVER is none.
func openCache(ctx context.Context, cfg config.Config) (ports.SegmentCache, func(), error) {
	switch cfg.CacheDriver {
	case config.CachePostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSchema(ctx, conn, cache.Postgres); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return cache.NewSQLSegmentCache(conn), closer(conn), nil

	case config.CacheSqlite:
		conn, err := db.OpenSqlite(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSchema(ctx, conn, cache.Sqlite); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return cache.NewSqliteSegmentCache(conn), closer(conn), nil

	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("open redis %q: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisSegmentCache(rdb, cfg.CacheTTL), func() { _ = rdb.Close() }, nil
	}

	return nil, func() {}, nil
}

func closer(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Printf("op=cache.close err=%v", err)
		}
	}
}
