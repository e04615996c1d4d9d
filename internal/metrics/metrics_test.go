package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Seed("seeded")
	m.Seed("skipped")
	m.Seed("skipped")
	m.Save("busy")
	m.DateFailures("day_first", 2)
	m.DateFailures("iso", 0)
	m.SetContributions(7)
	m.ObserveRequest("/v1/view", http.MethodGet, http.StatusOK, 3*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.seeds.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saves.WithLabelValues("busy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.dateFailures.WithLabelValues("day_first")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.contributions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("unmatched", "GET", "404")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Seed("x")
	m.Save("x")
	m.DateFailures("iso", 3)
	m.SetContributions(1)
	m.ObserveRequest("/", "GET", 200, time.Second)
}
