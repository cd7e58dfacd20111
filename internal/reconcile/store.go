package reconcile

import (
	"context"
	"fmt"

	"alternator-reqgen/internal/common/config"
	"alternator-reqgen/internal/common/database"
	"alternator-reqgen/internal/common/logger"
)

// Store loads and persists the historical response cache.
type Store interface {
	Load(ctx context.Context) (*History, error)
	Persist(ctx context.Context, h *History) error
	Close() error
}

// Backend names accepted by store.backend.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// NewStore builds the store selected by cfg.Store.Backend.
func NewStore(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case BackendFile, "":
		path := cfg.Paths.Resolve(cfg.Paths.History)
		log.Debug("Using file history store", map[string]interface{}{"path": path})
		return NewFileStore(path), nil

	case BackendRedis:
		client, err := database.ConnectRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		log.Debug("Using redis history store", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
			"prefix":  cfg.Store.RedisPrefix,
		})
		return NewRedisStore(client, cfg.Store.RedisPrefix), nil

	case BackendPostgres:
		client, err := database.ConnectPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(client, cfg.Store.Table)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		log.Debug("Using postgres history store", map[string]interface{}{
			"host":  cfg.Database.Postgres.Host,
			"table": cfg.Store.Table,
		})
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
