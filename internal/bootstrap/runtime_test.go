package bootstrap

import (
	"context"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/database"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeedPlanCatalog_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	catalog, err := seed.PlanCatalog()
	require.NoError(t, err)

	ctx := context.Background()
	created, err := SeedPlanCatalog(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(catalog), created)

	// an admin edit must survive the next start
	require.NoError(t, db.Model(&models.Plan{}).Where("title = ?", catalog[0].Title).Update("price", 123.0).Error)

	created, err = SeedPlanCatalog(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, created)

	var n int64
	require.NoError(t, db.Model(&models.Plan{}).Count(&n).Error)
	assert.Equal(t, int64(len(catalog)), n)

	var edited models.Plan
	require.NoError(t, db.Where("title = ?", catalog[0].Title).First(&edited).Error)
	assert.InDelta(t, 123.0, edited.Price, 0.001)
}
