package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}

func TestNotifier_LocalSinkWithoutRedis(t *testing.T) {
	n := NewNotifier(nil)
	// no sink yet: publishing is a no-op
	require.NoError(t, n.PublishUser(context.Background(), 1, "dropped"))

	hub := NewHub()
	require.NoError(t, hub.StartWiring(context.Background(), n))
	c, err := hub.Register(7, nil)
	require.NoError(t, err)

	require.NoError(t, n.Publish(context.Background(), models.Notification{ID: 3, UserID: 7, Type: models.NotificationComment, Content: "hi"}))

	var event struct {
		Type    string              `json:"type"`
		Payload models.Notification `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-c.Send, &event))
	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, uint(3), event.Payload.ID)
	assert.Equal(t, "hi", event.Payload.Content)
}

func TestNotifier_RedisFanOut(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	c, err := hub.Register(9, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(context.Background(), 9, `{"type":"ping"}`))
	select {
	case msg := <-c.Send:
		assert.JSONEq(t, `{"type":"ping"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("expected message from redis subscriber")
	}

	require.NoError(t, n.PublishUser(context.Background(), 10, `{"type":"other"}`))
	assert.Never(t, func() bool { return len(c.Send) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
