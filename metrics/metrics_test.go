package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveDetect(10, 3, 2, 20*time.Millisecond)
	m.ObserveGenerate(8, 5, 1, time.Second)
	m.ObserveGenerate(2, 1, 0, time.Second)
	m.Failure(StageGenerate)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.rowsProcessed.WithLabelValues(StageDetect)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.rowsProcessed.WithLabelValues(StageGenerate)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.termsDetected.WithLabelValues("acronym")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.substitutions.WithLabelValues("acronym")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestFailures.WithLabelValues(StageGenerate)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveDetect(1, 1, 1, time.Millisecond)
	m.ObserveGenerate(1, 1, 1, time.Millisecond)
	m.Failure(StageDetect)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveDetect(4, 1, 1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `corpus_prep_rows_processed_total{stage="detect"} 4`)
}
