package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherCounter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
					break
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestOrderMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.IncPlaced("cart")
	m.IncPlaced("cart")
	m.IncPlaced("Direct")
	m.IncFailed("cart", "INSUFFICIENT_STOCK")
	m.ObserveDuration("cart", 120*time.Millisecond)

	assert.Equal(t, 2.0, gatherCounter(t, reg, "orders_placed_total",
		map[string]string{"source": "cart"}))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "orders_placed_total",
		map[string]string{"source": "direct"}))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "orders_failed_total",
		map[string]string{"source": "cart", "code": "insufficient_stock"}))
}

func TestOrderMetricsNilSafe(t *testing.T) {
	var m *OrderMetrics
	m.IncPlaced("cart")
	m.IncFailed("cart", "x")
	m.ObserveDuration("cart", time.Second)

	unregistered := NewOrderMetrics(nil)
	unregistered.IncPlaced("cart")
	unregistered.ObserveDuration("", 0)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "cart", normalizeLabel(" Cart "))
	assert.Equal(t, "unknown", normalizeLabel("  "))
}
