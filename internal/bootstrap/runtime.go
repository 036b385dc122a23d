// Package bootstrap wires the process-wide runtime shared by the server and
// the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huzidev/dev-forum-api/internal/cache"
	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/database"
	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/repository"
	"github.com/huzidev/dev-forum-api/internal/seed"
	"github.com/huzidev/dev-forum-api/internal/service"
	"github.com/huzidev/dev-forum-api/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCatalog creates any built-in plan missing from the database.
	SeedCatalog bool
	// SkipStore leaves Runtime.Store nil for commands that never touch media.
	SkipStore bool
}

// Runtime is the set of connected backends.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store storage.ObjectStore
}

// InitRuntime connects to the database (applying the configured schema
// policy), Redis and object storage. Redis is optional and may be nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rt := &Runtime{DB: db, Redis: cache.GetClient()}

	if !opts.SkipStore {
		if rt.Store, err = storage.New(ctx, cfg); err != nil {
			return nil, fmt.Errorf("object storage init failed: %w", err)
		}
	}

	if opts.SeedCatalog {
		if _, err := SeedPlanCatalog(ctx, db); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// SeedPlanCatalog inserts the built-in plans whose titles are not yet taken.
// Existing plans are left untouched so admin edits survive restarts.
func SeedPlanCatalog(ctx context.Context, db *gorm.DB) (int, error) {
	catalog, err := seed.PlanCatalog()
	if err != nil {
		return 0, err
	}
	plans := service.NewPlanService(service.Deps{
		Repos: repository.New(db),
		Tx:    repository.NewTransactor(db),
	})
	created, err := plans.EnsureCatalog(ctx, catalog)
	if err != nil {
		return created, fmt.Errorf("seed plan catalog: %w", err)
	}
	if created > 0 {
		middleware.Logger.InfoContext(ctx, "plan catalog seeded", slog.Int("created", created))
	}
	return created, nil
}
