package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/huzidev/dev-forum-api/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// MigrationStore tracks which migrations have been applied.
type MigrationStore struct {
	db *gorm.DB
}

// NewMigrationStore creates a MigrationStore over db.
func NewMigrationStore(db *gorm.DB) *MigrationStore {
	return &MigrationStore{db: db}
}

// AppliedVersions lists applied versions in ascending order. A missing log table reads as empty.
func (s *MigrationStore) AppliedVersions(ctx context.Context) ([]int, error) {
	var versions []int
	err := s.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isMissingTableError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return versions, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// Apply runs the script and records it in one transaction.
func (s *MigrationStore) Apply(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.String(), err)
		}
		if err := tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.String(), err)
		}
		return nil
	})
}

// Revert runs the down script and removes the log row in one transaction.
func (s *MigrationStore) Revert(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("failed to run rollback SQL for %s: %w", m.String(), err)
		}
		return tx.Where("version = ?", m.Version).Delete(&MigrationLog{}).Error
	})
}

const ensureMigrationLogTableSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// RunMigrations applies every pending embedded migration in version order.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(ensureMigrationLogTableSQL).Error; err != nil {
		return fmt.Errorf("failed to ensure migration logs table: %w", err)
	}

	store := NewMigrationStore(db)
	applied, err := store.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	pending, err := pendingMigrations(applied, migrations)
	if err != nil {
		return err
	}

	for _, m := range pending {
		middleware.Logger.Info("Applying migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		if err := store.Apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// pendingMigrations returns registered migrations not yet applied. Applied
// versions the binary does not know about are an error.
func pendingMigrations(applied []int, registered []Migration) ([]Migration, error) {
	known := make(map[int]struct{}, len(registered))
	for _, m := range registered {
		known[m.Version] = struct{}{}
	}

	appliedSet := make(map[int]struct{}, len(applied))
	var unknown []int
	for _, version := range applied {
		appliedSet[version] = struct{}{}
		if _, ok := known[version]; !ok {
			unknown = append(unknown, version)
		}
	}
	if len(unknown) > 0 {
		sort.Ints(unknown)
		parts := make([]string, 0, len(unknown))
		for _, version := range unknown {
			parts = append(parts, fmt.Sprintf("%06d", version))
		}
		return nil, fmt.Errorf("migration_logs contains versions unknown to this build: %s", strings.Join(parts, ", "))
	}

	var pending []Migration
	for _, m := range registered {
		if _, ok := appliedSet[m.Version]; !ok {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// RollbackMigration reverts a specific applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	store := NewMigrationStore(db)
	applied, err := store.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, v := range applied {
		if v == version {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Int("version", version), slog.String("name", m.Name))
	return store.Revert(ctx, *m)
}
