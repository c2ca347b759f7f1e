package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Transition attempts by target status and outcome
	Transitions *prometheus.CounterVec

	// Full transition latency including side effects
	TransitionLatency prometheus.Histogram

	// Evidence attachments by type
	EvidenceAttached *prometheus.CounterVec
}

// New creates a new Metrics instance with all verification module metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "doneby_verification_transitions_total",
			Help: "Total verification status transition attempts by target status and outcome",
		}, []string{"to", "outcome"}), // outcome: "ok", "invalid", "noop", "conflict", "error"

		TransitionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "doneby_verification_transition_duration_seconds",
			Help:    "Duration of a full transition including activity and notification side effects",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		EvidenceAttached: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "doneby_verification_evidence_attached_total",
			Help: "Total evidence attachments by evidence type",
		}, []string{"type"}),
	}
}

// IncrementTransition records a transition attempt outcome.
func (m *Metrics) IncrementTransition(to, outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(to, outcome).Inc()
	}
}

// ObserveTransitionLatency records the duration of a transition call.
func (m *Metrics) ObserveTransitionLatency(d time.Duration) {
	if m != nil {
		m.TransitionLatency.Observe(d.Seconds())
	}
}

// IncrementEvidenceAttached records an evidence attachment.
func (m *Metrics) IncrementEvidenceAttached(kind string) {
	if m != nil {
		m.EvidenceAttached.WithLabelValues(kind).Inc()
	}
}
