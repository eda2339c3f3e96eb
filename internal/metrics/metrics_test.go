package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.DispatchesTotal.WithLabelValues(OutcomeAccepted).Inc()
	m.DispatchesTotal.WithLabelValues(OutcomeAccepted).Inc()
	m.JobsInFlight.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.DispatchesTotal.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobsInFlight))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(nil)
	m.ScanResultsTotal.WithLabelValues("triggered").Inc()

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `quill_dispatch_scan_results_total{status="triggered"} 1`)
}
