package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	statsJobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtdesk",
			Name:      "statistics_job_runs_total",
			Help:      "Nightly statistics job runs by outcome.",
		},
		[]string{"outcome"},
	)

	dailyComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtdesk",
			Name:      "daily_statistics_computations_total",
			Help:      "Per-club daily statistics computations by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, statsJobRuns, dailyComputations)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncJobRun records one nightly job run with the given outcome label.
func IncJobRun(outcome string) {
	statsJobRuns.WithLabelValues(outcome).Inc()
}

// IncDailyComputation records one per-club daily computation outcome.
func IncDailyComputation(outcome string) {
	dailyComputations.WithLabelValues(outcome).Inc()
}
