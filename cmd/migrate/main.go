// Command migrate applies, inspects and rolls back the forum schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/database"
	"github.com/huzidev/dev-forum-api/internal/middleware"
)

const usageText = "usage: go run ./cmd/migrate <up|auto|status|down <version>>"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf(usageText)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// the command decides what to apply
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close() }()

	ctx := context.Background()
	logger := middleware.Logger.With("component", "migrate")

	switch cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0))); cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		logger.Info("sql migrations applied")

	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		logger.Info("models auto-migrated", "models", len(database.PersistentModels()))

	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		logger.Info("schema status",
			"mode", status.Mode,
			"env", status.Environment,
			"run_sql", status.WillRunSQL,
			"run_auto", status.WillRunAutoMigrate,
			"applied", status.AppliedVersions,
			"pending", len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			fmt.Printf("pending  %s\n", m.String())
		}

	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf(usageText)
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		logger.Info("migration rolled back", "version", version)

	default:
		return fmt.Errorf("unknown command %q; %s", cmd, usageText)
	}
	return nil
}
