package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the notification module.
type Metrics struct {
	// Notifications dispatched by type
	Dispatched *prometheus.CounterVec

	// Live feed publish failures
	FeedErrors prometheus.Counter

	// Mark-read calls by outcome
	MarkRead *prometheus.CounterVec
}

// New creates a new Metrics instance with all notification module metrics registered.
func New() *Metrics {
	return &Metrics{
		Dispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "doneby_notifications_dispatched_total",
			Help: "Total notifications dispatched by type",
		}, []string{"type"}),

		FeedErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "doneby_notification_feed_errors_total",
			Help: "Total failures publishing notifications to the live feed",
		}),

		MarkRead: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "doneby_notification_mark_read_total",
			Help: "Total mark-read calls by outcome",
		}, []string{"outcome"}), // outcome: "changed", "noop"
	}
}

// IncrementDispatched records a dispatched notification.
func (m *Metrics) IncrementDispatched(kind string) {
	if m != nil {
		m.Dispatched.WithLabelValues(kind).Inc()
	}
}

// IncrementFeedError records a failed feed publish.
func (m *Metrics) IncrementFeedError() {
	if m != nil {
		m.FeedErrors.Inc()
	}
}

// IncrementMarkRead records a mark-read call outcome.
func (m *Metrics) IncrementMarkRead(outcome string) {
	if m != nil {
		m.MarkRead.WithLabelValues(outcome).Inc()
	}
}
