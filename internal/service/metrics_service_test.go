package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learner-grades-api/internal/sample"
)

func TestMetricsServiceObserveLearnerData(t *testing.T) {
	metrics := NewMetricsService()
	svc := newLearnerServiceForTest(WithMetrics(metrics))

	svc.GetLearnerData(sample.Course(), sample.AssignmentGroup(), sample.Submissions())
	req := sample.Request()
	req.Course.ID = 2
	_, err := svc.Compute(req)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.computations.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.computations.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.learnersScored))

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.ComputationsTotal)
	assert.Equal(t, uint64(1), snapshot.RejectedTotal)
	assert.Equal(t, uint64(2), snapshot.LearnersScored)
}

func TestMetricsServiceHTTPRequests(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodPost, "/api/v1/learner-data", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveHTTPRequest(http.MethodPost, "/api/v1/learner-data", http.StatusOK, 40*time.Millisecond)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30, snapshot.AverageRequestDurationMs, 0.001)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveLearnerData(OutcomeSuccess, 3)
	metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	assert.Equal(t, MetricsSnapshot{}, metrics.Snapshot())

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
