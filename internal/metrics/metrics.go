package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parlor_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parlor_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	Logins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_logins_total",
			Help: "Total successful logins",
		},
	)

	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parlor_messages_posted_total",
			Help: "Total messages posted",
		},
		[]string{"room"},
	)

	MessagesEdited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_messages_edited_total",
			Help: "Total messages edited",
		},
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_messages_deleted_total",
			Help: "Total messages deleted",
		},
	)

	PrivateMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_private_messages_total",
			Help: "Total private messages sent",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	NicknameChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_nickname_changes_total",
			Help: "Total identity rebinds",
		},
	)

	// Side-channel metrics
	NotifyDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_notify_delivered_total",
			Help: "Notification events delivered to the sink",
		},
	)

	NotifyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parlor_notify_failures_total",
			Help: "Notification events dropped or failed",
		},
		[]string{"reason"}, // "deliver" or "queue_full"
	)

	ArchiveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parlor_archive_failures_total",
			Help: "Best-effort archive writes that failed",
		},
		[]string{"op"},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parlor_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	ArchiveLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parlor_archive_latency_seconds",
			Help:    "Archive write latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1},
		},
	)
)
