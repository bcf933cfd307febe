package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/guidequeue/internal/config"
	"github.com/rpggio/guidequeue/internal/memstore"
	"github.com/rpggio/guidequeue/internal/redisstore"
	"github.com/rpggio/guidequeue/internal/repository"
	"github.com/rpggio/guidequeue/internal/sqlite"
)

// backend is the opened persistence for one process.
type backend struct {
	KV       repository.KVRepository
	Activity repository.ActivityRepository
	closers  []func() error
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Backend {
	case "memory":
		logger.Warn("using in-memory store; state is lost on restart")
		return &backend{
			KV:       memstore.NewKV(),
			Activity: memstore.NewActivityRepository(),
		}, nil

	case "redis":
		client, err := redisstore.Connect(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return &backend{
			KV:       redisstore.NewKVRepository(client),
			Activity: redisstore.NewActivityRepository(client, cfg.KeyPrefix+"activity"),
			closers:  []func() error{client.Close},
		}, nil

	default:
		if err := ensureDBDir(cfg.Path); err != nil {
			return nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("using sqlite store", "path", cfg.Path)
		return &backend{
			KV:       sqlite.NewKVRepository(db),
			Activity: sqlite.NewActivityRepository(db),
			closers:  []func() error{db.Close},
		}, nil
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
