package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/feiralocal-backend/api/middleware"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/pkg/config"
	"github.com/angelmondragon/feiralocal-backend/pkg/db"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
	"github.com/angelmondragon/feiralocal-backend/pkg/migrate"
	"github.com/angelmondragon/feiralocal-backend/pkg/redis"
)

const memoryReplayEntries = 512

// storage is the backend chosen by configuration plus whatever clients must
// be closed on shutdown.
type storage struct {
	backend persistence.Backend
	replay  middleware.ReplayStore
	closers []func() error
}

func (s *storage) close(ctx context.Context, logg *logger.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logg.Error(ctx, "error closing storage client", err)
		}
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*storage, error) {
	backend, err := enums.ParseStorageBackend(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}

	switch {
	case backend == enums.StorageBackendRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		return &storage{
			backend: persistence.NewRedisBackend(client, cfg.Storage.Session),
			replay:  middleware.NewRedisReplayStore(client, middleware.DefaultIdempotencyTTL),
			closers: []func() error{client.Close},
		}, nil

	case backend.IsSQL():
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		return &storage{
			backend: persistence.NewSQLBackend(client),
			replay:  middleware.NewMemoryReplayStore(memoryReplayEntries, middleware.DefaultIdempotencyTTL),
			closers: []func() error{client.Close},
		}, nil

	default:
		return &storage{
			backend: persistence.NewMemoryBackend(),
			replay:  middleware.NewMemoryReplayStore(memoryReplayEntries, middleware.DefaultIdempotencyTTL),
		}, nil
	}
}
