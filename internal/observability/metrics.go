package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather engine.
type Metrics struct {
	ReadingsGenerated  *prometheus.CounterVec // labels: village
	SpecialsRolled     *prometheus.CounterVec // labels: village
	GenerationDuration prometheus.Histogram

	// Concurrency and scheduling outcomes.
	InsertRaces         prometheus.Counter
	SchedulerCollisions prometheus.Counter
	GuaranteedScheduled *prometheus.CounterVec // labels: village

	// Announcement / warm trigger.
	ReadingsAnnounced *prometheus.CounterVec // labels: village
	WarmRunErrors     prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReadingsGenerated,
		m.SpecialsRolled,
		m.GenerationDuration,
		m.InsertRaces,
		m.SchedulerCollisions,
		m.GuaranteedScheduled,
		m.ReadingsAnnounced,
		m.WarmRunErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReadingsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village_weather",
			Name:      "readings_generated_total",
			Help:      "Weather readings generated, by village.",
		}, []string{"village"}),
		SpecialsRolled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village_weather",
			Name:      "specials_rolled_total",
			Help:      "Naturally rolled special conditions, by village.",
		}, []string{"village"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "village_weather",
			Name:      "generation_duration_seconds",
			Help:      "Duration of one generate-and-persist cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		InsertRaces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "village_weather",
			Name:      "insert_races_total",
			Help:      "Creation races lost to a concurrent writer and recovered by re-fetch.",
		}),
		SchedulerCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "village_weather",
			Name:      "scheduler_collisions_total",
			Help:      "Guaranteed-special scheduling attempts refused because one was already set.",
		}),
		GuaranteedScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village_weather",
			Name:      "guaranteed_scheduled_total",
			Help:      "Guaranteed specials successfully scheduled, by village.",
		}, []string{"village"}),
		ReadingsAnnounced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "village_weather",
			Name:      "readings_announced_total",
			Help:      "Readings published to the announcement topic, by village.",
		}, []string{"village"}),
		WarmRunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "village_weather",
			Name:      "warm_run_errors_total",
			Help:      "Failures during warm trigger runs.",
		}),
	}
}
