package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/database"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// publisherStub records published notifications.
type publisherStub struct {
	mu        sync.Mutex
	published []models.Notification
	publishFn func(n models.Notification) error
}

func (p *publisherStub) Publish(_ context.Context, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, n)
	if p.publishFn != nil {
		return p.publishFn(n)
	}
	return nil
}

func (p *publisherStub) types() []models.NotificationType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.NotificationType, len(p.published))
	for i, n := range p.published {
		out[i] = n.Type
	}
	return out
}

// memStore is an in-memory storage.ObjectStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return "", m.putErr
	}
	m.objects[key] = body
	return "https://media.test/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type testEnv struct {
	db    *gorm.DB
	deps  Deps
	pub   *publisherStub
	store *memStore
}

// newTestEnv wires the services over a migrated in-memory database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	env := &testEnv{db: db, pub: &publisherStub{}, store: newMemStore()}
	env.deps = Deps{
		Repos:     repository.New(db),
		Tx:        repository.NewTransactor(db),
		Publisher: env.pub,
		Store:     env.store,
	}
	return env
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{
		ExternalID: "user_" + name,
		Email:      fmt.Sprintf("%s@forum.test", name),
		Username:   name,
		Role:       models.RoleUser,
	}
	require.NoError(t, e.deps.Repos.Users.Create(context.Background(), u))
	return u
}

func (e *testEnv) admin(t *testing.T, name string) *models.User {
	t.Helper()
	u := e.user(t, name)
	require.NoError(t, e.deps.Repos.Users.SetRole(context.Background(), u.ID, models.RoleAdmin))
	u.Role = models.RoleAdmin
	return u
}

func (e *testEnv) total(t *testing.T, userID uint) int64 {
	t.Helper()
	total, err := e.deps.Repos.Points.Total(context.Background(), userID)
	require.NoError(t, err)
	return total
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}
