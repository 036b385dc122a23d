// Package notifications provides real-time notification delivery over WebSocket.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPattern = "notifications:user:*"
	userChannelFormat  = "notifications:user:%d"
)

// Event is the JSON envelope pushed to WebSocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// UserChannel is the Redis channel carrying one user's realtime events.
func UserChannel(userID uint) string {
	return fmt.Sprintf(userChannelFormat, userID)
}

// Notifier publishes inbox events into Redis so every API instance can fan
// them out to its own sockets. Without Redis it delivers to a local sink.
type Notifier struct {
	rdb   *redis.Client
	local func(userID uint, payload string)
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// SetLocalSink sets where events go when Redis is not configured.
func (n *Notifier) SetLocalSink(sink func(userID uint, payload string)) {
	n.local = sink
}

// Publish pushes a persisted notification to its recipient.
func (n *Notifier) Publish(ctx context.Context, notification models.Notification) error {
	payload, err := json.Marshal(Event{Type: "notification", Payload: notification})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return n.PublishUser(ctx, notification.UserID, string(payload))
}

// PublishUser sends a raw payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		if n.local != nil {
			n.local(userID, payload)
		}
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	// wait for the subscription so publishes right after start are not lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
