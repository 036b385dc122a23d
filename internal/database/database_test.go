package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	err := configurePool(db, &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		env       string
		allow     bool
		wantSQL   bool
		wantAuto  bool
		wantError bool
	}{
		{"hybrid dev", "", "development", false, true, true, false},
		{"hybrid prod", "hybrid", "production", false, true, false, false},
		{"sql only", "sql", "development", false, true, false, false},
		{"auto dev", "auto", "development", false, false, true, false},
		{"auto prod refused", "auto", "production", false, false, false, true},
		{"auto prod allowed", "auto", "staging", true, false, true, false},
		{"unknown", "magic", "development", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&config.Config{
				DBSchemaMode:                  tt.mode,
				Env:                           tt.env,
				DBAutoMigrateAllowDestructive: tt.allow,
			})
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init", all[0].Name)
	assert.Contains(t, all[0].UpScript, "CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_post")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS users")
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Version, all[i].Version)
	}
	assert.Equal(t, "000001_init", GetMigrationByVersion(1).String())
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	t.Run("ordered by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000002_second.up.sql":   {Data: []byte("B")},
			"m/000002_second.down.sql": {Data: []byte("b")},
			"m/000001_first.up.sql":    {Data: []byte("A")},
			"m/000001_first.down.sql":  {Data: []byte("a")},
			"m/README.md":              {Data: []byte("ignored")},
		}
		got, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Name)
		assert.Equal(t, "b", got[1].DownScript)
	})

	t.Run("missing down script", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{"m/000001_x.up.sql": {Data: []byte("A")}}, "m")
		assert.Error(t, err)
	})

	t.Run("bad version", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"m/abc_x.up.sql":   {Data: []byte("A")},
			"m/abc_x.down.sql": {Data: []byte("a")},
		}, "m")
		assert.Error(t, err)
	})
}

func TestPendingMigrations(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}}

	pending, err := pendingMigrations([]int{1}, registered)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	_, err = pendingMigrations([]int{1, 7}, registered)
	assert.ErrorContains(t, err, "000007")
}

func TestMigrationStoreApplyRevert(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	store := NewMigrationStore(db)

	versions, err := store.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)

	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	m := Migration{
		Version:    5,
		Name:       "widgets",
		UpScript:   "CREATE TABLE widgets (id INTEGER PRIMARY KEY)",
		DownScript: "DROP TABLE widgets",
	}
	require.NoError(t, store.Apply(ctx, m))

	versions, err = store.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, versions)
	assert.True(t, db.Migrator().HasTable("widgets"))

	require.NoError(t, store.Revert(ctx, m))
	versions, err = store.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)
	assert.False(t, db.Migrator().HasTable("widgets"))
}

func TestAutoMigratePersistentModels(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "friend_requests", "friendships", "notifications", "point_histories", "posts", "poll_votes", "likes", "questions", "threads", "bug_reports", "plans", "benefits"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("likes", "idx_likes_user_post"))
}

func TestStatementKind(t *testing.T) {
	assert.Equal(t, "select", statementKind("SELECT * FROM users"))
	assert.Equal(t, "insert", statementKind("  INSERT INTO likes"))
	assert.Equal(t, "unknown", statementKind(""))
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBName: "forum"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=forum sslmode=disable", DSN(cfg, "h", "1", "u", "p"))
	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg, "h", "1", "u", "p"), "sslmode=require")
}

func TestRegisterTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := observability.Tracer
	observability.Tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	db := openSQLite(t)
	require.NoError(t, RegisterTracing(db))
	require.NoError(t, AutoMigrate(db))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&models.BugReport{UserID: 1, Title: "t", Description: "d"}).Error)
	var got []models.BugReport
	require.NoError(t, db.WithContext(ctx).Find(&got).Error)
	assert.Error(t, db.WithContext(ctx).Table("missing_table").Find(&got).Error)

	names := map[string]bool{}
	for _, span := range recorder.Ended() {
		names[span.Name()] = true
	}
	assert.True(t, names["db.insert bug_reports"], names)
	assert.True(t, names["db.select bug_reports"], names)
	assert.True(t, names["db.select missing_table"], names)
}
