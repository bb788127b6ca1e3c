package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "contacts",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})

	// User cache metrics

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "user_cache_hits_total",
		Help:      "User lookups served from the cache.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "user_cache_misses_total",
		Help:      "User lookups that fell through to the store.",
	})

	CacheInvalidationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "user_cache_invalidations_total",
		Help:      "Explicit cache deletions after user mutations.",
	})

	// Email metrics

	EmailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "emails_sent_total",
		Help:      "Emails dispatched, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// Birthday reminder metrics

	ReminderDigestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "reminder_digests_total",
		Help:      "Birthday digest emails sent.",
	})

	ReminderCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "contacts",
		Name:      "reminder_cycle_duration_seconds",
		Help:      "Time taken for one birthday reminder cycle.",
		Buckets:   prometheus.DefBuckets,
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		RateLimitedTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheInvalidationsTotal,
		EmailsSentTotal,
		ReminderDigestsTotal,
		ReminderCycleDuration,
	)
}

// ReadinessChecker is satisfied by *health.Checker.
type ReadinessChecker interface {
	LivenessHandler() http.HandlerFunc
	ReadinessHandler() http.HandlerFunc
}

// NewServer serves /metrics plus the liveness and readiness probes on the
// internal port.
func NewServer(addr string, checker ReadinessChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", checker.LivenessHandler())
	mux.HandleFunc("/readyz", checker.ReadinessHandler())
	return &http.Server{Addr: addr, Handler: mux}
}
