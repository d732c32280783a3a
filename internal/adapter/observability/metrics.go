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
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider, operation and outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	ResumeAnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_analyses_total",
			Help: "Resume analysis attempts by outcome",
		},
		[]string{"outcome"},
	)
	MarketReadinessHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_market_readiness_score",
			Help:    "Distribution of stored market_readiness_score ([1,100])",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	RecommendationsServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Recommendation responses by basis",
		},
		[]string{"basis"},
	)
	RecommendationTopScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_top_suitability",
			Help:    "Suitability score of the first ranked internship",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by a rate limit bucket",
		},
		[]string{"bucket"},
	)
)

var registerOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			ResumeAnalysesTotal,
			MarketReadinessHistogram,
			RecommendationsServedTotal,
			RecommendationTopScore,
			RateLimitedTotal,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest records one call to an AI provider.
func ObserveAIRequest(provider, operation, outcome string, took time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, operation, outcome).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(took.Seconds())
}

// ObserveAnalysis records the outcome of a resume analysis and, on success, its score.
func ObserveAnalysis(outcome string, score int) {
	ResumeAnalysesTotal.WithLabelValues(outcome).Inc()
	if outcome == "stored" && score >= 1 && score <= 100 {
		MarketReadinessHistogram.Observe(float64(score))
	}
}

// ObserveRecommendations records one served recommendation list.
func ObserveRecommendations(basis string, topScore float64, n int) {
	RecommendationsServedTotal.WithLabelValues(basis).Inc()
	if n > 0 {
		RecommendationTopScore.Observe(topScore)
	}
}

// RateLimited records a rejected request for bucket.
func RateLimited(bucket string) {
	RateLimitedTotal.WithLabelValues(bucket).Inc()
}
