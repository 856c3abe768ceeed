package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := New()

	r.ObserveFetch(FetchOK)
	r.ObserveFetch(FetchOK)
	r.ObserveFetch(FetchFailed)
	r.ObserveSubmit(SubmitRejected)
	r.ObservePipeline(0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.QuoteFetches.WithLabelValues(FetchOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.QuoteFetches.WithLabelValues(FetchFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PositionsSubmits.WithLabelValues(SubmitRejected)))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tracker_quote_fetch_total{result="ok"} 2`)
	assert.Contains(t, string(body), "tracker_pipeline_duration_seconds_count 1")
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveFetch(FetchOK)
		r.ObserveSubmit(SubmitAccepted)
		r.ObservePipeline(1)
	})
}
