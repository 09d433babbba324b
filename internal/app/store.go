package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/cache"
	"github.com/odyssey-erp/teamhub/internal/platform/db"
	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

// Backends are the opened storage connections.
type Backends struct {
	Store   docstore.Store
	Alerter notifications.Alerter
	Redis   *redis.Client
	closers []func()
}

// Close releases every connection in reverse order.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// OpenBackends connects the configured docstore driver and alert channel.
func OpenBackends(ctx context.Context, cfg *Config, logger *slog.Logger) (*Backends, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backends{}
	if cfg.NeedsRedis() {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		b.Redis = client
		b.closers = append(b.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		})
	}

	switch cfg.DocstoreDriver {
	case DriverMemory:
		b.Store = docstore.NewMemory()
	case DriverRedis:
		b.Store = docstore.NewRedis(b.Redis, "")
	case DriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		pg := docstore.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Store = pg
	default:
		b.Close()
		return nil, fmt.Errorf("unknown docstore driver %q", cfg.DocstoreDriver)
	}

	if cfg.AlertsDriver == "redis" {
		b.Alerter = notifications.NewRedisAlerter(b.Redis)
	} else {
		b.Alerter = notifications.NewLogAlerter(logger)
	}
	logger.Info("storage ready", slog.String("docstore", cfg.DocstoreDriver), slog.String("alerts", cfg.AlertsDriver))
	return b, nil
}
