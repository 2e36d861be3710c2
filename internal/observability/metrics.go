package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts notification rows written by fan-out.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstation_notifications_created_total",
		Help: "Total notifications created by type",
	}, []string{"type"})

	// NotificationsFailed counts fan-out batches that could not be written.
	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstation_notifications_failed_total",
		Help: "Total notification fan-out failures by type",
	}, []string{"type"})

	// NotificationRetries counts fan-out batches handed to the retry queue, by outcome.
	NotificationRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstation_notification_retries_total",
		Help: "Notification retry jobs by outcome",
	}, []string{"outcome"})

	// NotificationsPurged counts rows removed by the retention sweep.
	NotificationsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstation_notifications_purged_total",
		Help: "Total notifications removed by retention",
	})

	// MessagesSent counts direct messages stored.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstation_messages_sent_total",
		Help: "Total direct messages sent",
	})

	// JoinRequestTransitions counts join request state changes.
	JoinRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstation_join_request_transitions_total",
		Help: "Join request transitions by resulting status",
	}, []string{"status"})

	// ProjectSupportToggles counts support toggles by direction.
	ProjectSupportToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstation_project_support_toggles_total",
		Help: "Project support toggles by action",
	}, []string{"action"})

	// WebSocketConnectionsTotal is the gauge of open notification sockets.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "workstation_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts events pushed to sockets by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstation_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstation_websocket_backpressure_drops_total",
		Help: "Total WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstation_redis_errors_total",
		Help: "Total Redis command errors",
	}, []string{"command"})
)
