package metrics_collectors_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/gps-ingestor/internal/metrics_collectors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry_ObserveSubmission(t *testing.T) {
	r := metrics_collectors.NewMetricsRegistry()

	r.ObserveSubmission("http", metrics_collectors.OutcomeSaved)
	r.ObserveSubmission("http", metrics_collectors.OutcomeSaved)
	r.ObserveSubmission("mqtt", metrics_collectors.OutcomeInvalid)

	count, err := testutil.GatherAndCount(r.Registry(), "gps_ingest_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per label pair")
}

func TestMetricsRegistry_ObserveStore(t *testing.T) {
	r := metrics_collectors.NewMetricsRegistry()

	r.ObserveStore(15 * time.Millisecond)

	count, err := testutil.GatherAndCount(r.Registry(), "gps_ingest_store_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetricsRegistry_NilIsNoop(t *testing.T) {
	var r *metrics_collectors.MetricsRegistry

	assert.NotPanics(t, func() {
		r.ObserveSubmission("http", metrics_collectors.OutcomeSaved)
		r.ObserveStore(time.Second)
	})
}

func TestMetricsRegistry_Handler(t *testing.T) {
	r := metrics_collectors.NewMetricsRegistry()
	r.ObserveSubmission("http", metrics_collectors.OutcomeStorageError)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), `gps_ingest_submissions_total{outcome="storage_error",transport="http"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
