package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order placement outcomes.
type OrderMetrics struct {
	duration *prometheus.HistogramVec
	placed   *prometheus.CounterVec
	failed   *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_place_duration_seconds",
		Help:    "Duration of order placement in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed successfully.",
	}, []string{"source"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Order placements that returned an error.",
	}, []string{"source", "code"})
	reg.MustRegister(duration, placed, failed)
	return &OrderMetrics{
		duration: duration,
		placed:   placed,
		failed:   failed,
	}
}

// ObserveDuration records the placement duration for the given source.
func (m *OrderMetrics) ObserveDuration(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncPlaced increments the success counter.
func (m *OrderMetrics) IncPlaced(source string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFailed increments the failure counter with the error code.
func (m *OrderMetrics) IncFailed(source, code string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(source), normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
