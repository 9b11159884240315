package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a lightweight summary of collected metrics.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ComputationsTotal        uint64    `json:"computations_total"`
	RejectedTotal            uint64    `json:"rejected_total"`
	LearnersScored           uint64    `json:"learners_scored"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	computations    *prometheus.CounterVec
	learnersScored  prometheus.Counter
	learnersPerRun  prometheus.Histogram

	requestCount         uint64
	requestDurationTotal uint64
	computationCount     uint64
	rejectedCount        uint64
	learnerCount         uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	computations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "learner_data_computations_total",
		Help: "Learner data computations by outcome",
	}, []string{"outcome"})

	learnersScored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "learner_data_learners_scored_total",
		Help: "Total learner summaries produced",
	})

	learnersPerRun := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "learner_data_learners_per_computation",
		Help:    "Learners scored per successful computation",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, computations, learnersScored, learnersPerRun, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		computations:    computations,
		learnersScored:  learnersScored,
		learnersPerRun:  learnersPerRun,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveLearnerData records one computation outcome and the learners it produced.
func (m *MetricsService) ObserveLearnerData(outcome string, learners int) {
	if m == nil {
		return
	}
	m.computations.WithLabelValues(outcome).Inc()
	atomic.AddUint64(&m.computationCount, 1)
	if outcome != OutcomeSuccess {
		atomic.AddUint64(&m.rejectedCount, 1)
		return
	}
	m.learnersScored.Add(float64(learners))
	m.learnersPerRun.Observe(float64(learners))
	atomic.AddUint64(&m.learnerCount, uint64(learners))
}

// Snapshot returns aggregated metrics suitable for the summary endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ComputationsTotal:        atomic.LoadUint64(&m.computationCount),
		RejectedTotal:            atomic.LoadUint64(&m.rejectedCount),
		LearnersScored:           atomic.LoadUint64(&m.learnerCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
