// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis failures by operation.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// DatabaseQueryLatency records query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RateLimitRejections counts requests refused by the rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_rate_limit_rejections_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"resource"})

	// PointsAwarded sums ledger points written, by entry type.
	PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_points_entries_total",
		Help: "Point history entries written by type",
	}, []string{"type"})

	// EngagementEvents counts likes, comments, votes and posts.
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_engagement_events_total",
		Help: "Engagement events by kind",
	}, []string{"event"})

	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_notifications_created_total",
		Help: "Notifications persisted by type",
	}, []string{"type"})

	// NotificationsDelivered counts realtime pushes to connected clients.
	NotificationsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_notifications_delivered_total",
		Help: "Notifications pushed over WebSocket",
	})

	// WebSocketConnections is the gauge of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forum_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client was slow.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_websocket_backpressure_drops_total",
		Help: "WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// ImagesProcessed counts uploaded images by outcome.
	ImagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_images_processed_total",
		Help: "Uploaded images by outcome",
	}, []string{"outcome"})
)

// TrackQuery returns a func that records the latency of a query when called.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
