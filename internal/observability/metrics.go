package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the coordination service.
type Metrics struct {
	ReportsCreated  prometheus.Counter
	StoreFailures   *prometheus.CounterVec // labels: operation
	PriorityScores  *prometheus.CounterVec // labels: tier
	WeatherLookups  *prometheus.CounterVec // labels: outcome={classified,unavailable}
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,no_match,error}

	RescoreCycles  prometheus.Counter
	RescoreChanges prometheus.Counter
	RescoreRunning prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "reports_created_total",
			Help:      "Total incident reports taken in.",
		}),
		StoreFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "store_failures_total",
			Help:      "Persistence failures that were logged and swallowed, by operation.",
		}, []string{"operation"}),
		PriorityScores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "priority_scores_total",
			Help:      "Priority computations by resulting tier.",
		}, []string{"tier"}),
		WeatherLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "weather_lookups_total",
			Help:      "Weather classifications by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "geocode_requests_total",
			Help:      "Geocoding lookups by outcome.",
		}, []string{"outcome"}),
		RescoreCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "rescore_cycles_total",
			Help:      "Completed background re-scoring sweeps.",
		}),
		RescoreChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "rescore_changes_total",
			Help:      "Reports whose tier changed during a background sweep.",
		}),
		RescoreRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_response",
			Name:      "rescore_running",
			Help:      "1 while the background rescorer is active.",
		}),
	}
}

// NewMetrics creates the collectors and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsCreated,
		m.StoreFailures,
		m.PriorityScores,
		m.WeatherLookups,
		m.GeocodeRequests,
		m.RescoreCycles,
		m.RescoreChanges,
		m.RescoreRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can call it
// repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
