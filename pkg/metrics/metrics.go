package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venturelink_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks active sessions (not expired/revoked).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "venturelink_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venturelink_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// NotificationsPersisted counts notifications written to the store by type.
	NotificationsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venturelink_notifications_persisted_total",
			Help: "Total number of notifications persisted",
		},
		[]string{"type"},
	)

	// NotificationsDelivered counts realtime deliveries by outcome (delivered|offline).
	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venturelink_notifications_delivered_total",
			Help: "Total number of realtime notification delivery attempts",
		},
		[]string{"outcome"},
	)

	// RealtimeConnections tracks open websocket connections.
	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "venturelink_realtime_connections",
			Help: "Number of open realtime connections",
		},
	)
)
