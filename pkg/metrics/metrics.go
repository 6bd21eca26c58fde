package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// WebSocket hub metrics
	ConnectionsActive prometheus.Gauge
	MessagesSent      *prometheus.CounterVec
	MessagesDropped   prometheus.Counter

	// Notification metrics
	NotificationsCreated *prometheus.CounterVec
	NotificationPushes   prometheus.Counter

	// Scheduler metrics
	ReminderScanLatency prometheus.Histogram
	RemindersSent       *prometheus.CounterVec
	ReminderScanErrors  prometheus.Counter
	TipsGenerated       *prometheus.CounterVec
	TipGenerationErrors prometheus.Counter
}

// NewMetrics creates and registers all application metrics on the given
// registerer (the default registerer when nil).
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections_active",
			Help:      "Current number of registered websocket connections",
		}),
		MessagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_sent_total",
			Help:      "Total websocket messages written, by delivery kind",
		}, []string{"kind"}),
		MessagesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_dropped_total",
			Help:      "Total websocket messages dropped due to closed or failing connections",
		}),
		NotificationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Total persisted notifications, by type",
		}, []string{"type"}),
		NotificationPushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_pushes_total",
			Help:      "Total live pushes attempted after persistence",
		}),
		ReminderScanLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_scan_duration_seconds",
			Help:      "Time spent scanning appointments for due reminders",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		RemindersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Total appointment reminders created, by window",
		}, []string{"window"}),
		ReminderScanErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_scan_errors_total",
			Help:      "Total reminder scans that aborted with an error",
		}),
		TipsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_tips_generated_total",
			Help:      "Total health tips generated, by slot",
		}, []string{"slot"}),
		TipGenerationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_tip_generation_errors_total",
			Help:      "Total failed health tip generation attempts",
		}),
	}
}
