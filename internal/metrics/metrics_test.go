package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/affectgrid/internal/grid"
)

func TestRecorder_Accepted(t *testing.T) {
	r := New()

	r.Accepted(grid.ValenceNegative, 2*time.Millisecond)
	r.Accepted(grid.ValenceNegative, 3*time.Millisecond)
	r.Accepted(grid.ValencePositive, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.ingested.WithLabelValues("Negative")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ingested.WithLabelValues("Positive")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_ValenceSeriesStartAtZero(t *testing.T) {
	r := New()
	assert.Equal(t, 2, testutil.CollectAndCount(r.ingested))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ingested.WithLabelValues("Positive")))
}

func TestRecorder_FailedAndQueueDepth(t *testing.T) {
	r := New()

	r.Failed("MALFORMED_INPUT")
	r.Failed("MALFORMED_INPUT")
	r.Failed("STORAGE_UNAVAILABLE")
	r.QueueDepth(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.failures.WithLabelValues("MALFORMED_INPUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("STORAGE_UNAVAILABLE")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.queueDepth))
}

func TestRecorder_Handler(t *testing.T) {
	r := New(WithRuntimeCollectors())
	r.Accepted(grid.ValencePositive, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `affectgrid_coordinates_ingested_total{valence="Positive"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecorders_AreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Failed("OUT_OF_RANGE")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.failures.WithLabelValues("OUT_OF_RANGE")))
}
