// Package observability wires prometheus instrumentation for the HTTP
// surface and the AI gateway.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts HTTP requests by route, method, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	// HTTPRequestDuration observes HTTP request latency by route and method.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"route", "method"},
	)

	// AIRequestsTotal counts model calls by provider and operation
	// (keywords, evaluation, suggestions).
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	// AIRequestDuration observes model call latency.
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)

	// EvaluationsTotal counts completed pipeline runs by outcome
	// (ok, degraded, failed).
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of resume evaluations by outcome",
		},
		[]string{"outcome"},
	)
	// MatchPercentageHistogram tracks the distribution of overall match scores.
	MatchPercentageHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_match_percentage",
			Help:    "Distribution of overall match percentage (0-100)",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	// KeywordCoverageHistogram tracks overall keyword coverage per run.
	KeywordCoverageHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_keyword_coverage_percentage",
			Help:    "Distribution of overall keyword coverage (0-100)",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry. Safe to
// call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			EvaluationsTotal,
			MatchPercentageHistogram,
			KeywordCoverageHistogram,
		)
	})
}

// ObserveEvaluation records the outcome distribution of one pipeline run.
func ObserveEvaluation(outcome string, matchPercentage int, keywordCoverage float64) {
	EvaluationsTotal.WithLabelValues(outcome).Inc()
	MatchPercentageHistogram.Observe(float64(matchPercentage))
	KeywordCoverageHistogram.Observe(keywordCoverage)
}

// HTTPMetricsMiddleware records request counts and latency per chi route.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
