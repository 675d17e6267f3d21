package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestValue(t *testing.T) {
	before := Value(TripsTotal.WithLabelValues("ok"))
	TripsTotal.WithLabelValues("ok").Inc()
	if got := Value(TripsTotal.WithLabelValues("ok")); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}

	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge"})
	g.Set(3)
	if got := Value(g); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}

	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_hist"})
	h.Observe(1)
	h.Observe(2)
	if got := Value(h); got != 2 {
		t.Errorf("expected sample count 2, got %v", got)
	}
}
