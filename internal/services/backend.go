package services

import (
	"context"
	"fmt"
	"io"

	"github.com/j-veylop/dhikr-tally/internal/config"
	"github.com/j-veylop/dhikr-tally/internal/db"
	"github.com/j-veylop/dhikr-tally/internal/kv"
)

// Backend is a key/value store that owns resources.
type Backend interface {
	kv.Store
	io.Closer
}

// OpenBackend opens the storage backend selected by cfg.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil

	case config.BackendRedis:
		store, err := kv.NewRedisStore(ctx, kv.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		return store, nil

	default:
		database, err := db.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return database, nil
	}
}

// BackendName describes b for display.
func BackendName(b kv.Store) string {
	switch b := b.(type) {
	case *db.DB:
		return "sqlite (" + b.Path() + ")"
	case *kv.RedisStore:
		return "redis"
	case *kv.MemoryStore:
		return "memory"
	default:
		return "custom"
	}
}
