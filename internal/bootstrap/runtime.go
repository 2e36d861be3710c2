// Package bootstrap wires the runtime dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"workstation/internal/aiworker"
	"workstation/internal/cache"
	"workstation/internal/config"
	"workstation/internal/database"
	"workstation/internal/middleware"
	"workstation/internal/repository"
	"workstation/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SyncCatalog upserts the built-in AI workers and tools.
	SyncCatalog bool
}

// InitRuntime connects to DB and Redis and optionally syncs the built-in
// AI worker catalog. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SyncCatalog {
		if err := SyncCatalog(ctx, db); err != nil {
			return nil, nil, err
		}
	}

	return db, r, nil
}

// SyncCatalog loads the embedded catalog and upserts it.
func SyncCatalog(ctx context.Context, db *gorm.DB) error {
	catalog, err := aiworker.Default()
	if err != nil {
		return fmt.Errorf("load AI worker catalog: %w", err)
	}
	svc := service.NewAIWorkerService(repository.NewAIWorkerRepository(db), catalog)
	if err := svc.SyncCatalog(ctx); err != nil {
		return fmt.Errorf("sync AI worker catalog: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "AI worker catalog synced",
		slog.Int("workers", len(catalog.Workers)), slog.Int("tools", len(catalog.Tools)))
	return nil
}
