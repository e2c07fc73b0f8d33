package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roompartner_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roompartner_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Live transport metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roompartner_ws_connections_active",
			Help: "Currently registered live connections",
		},
	)

	PresenceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roompartner_presence_events_total",
			Help: "Presence transitions broadcast",
		},
		[]string{"event"}, // "online" or "offline"
	)

	TypingSignals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roompartner_typing_signals_total",
			Help: "Typing signals relayed",
		},
	)

	// Messaging metrics
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roompartner_messages_sent_total",
			Help: "Messages persisted",
		},
	)

	MessagesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roompartner_messages_read_total",
			Help: "Messages flipped to read by mark-read sweeps",
		},
	)

	DeliveryMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roompartner_delivery_misses_total",
			Help: "Best-effort pushes dropped because a handle was dead or slow",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roompartner_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
