// Package telemetry exposes the curling engine's Prometheus metrics and
// implements match.Recorder so ApplyMove can report turn outcomes,
// fouls, and simulation cost without depending on Prometheus directly.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects curling match metrics. The zero value is not usable;
// construct with NewRecorder.
type Recorder struct {
	turnsTotal         *prometheus.CounterVec
	foulsTotal         *prometheus.CounterVec
	simulationSteps    prometheus.Histogram
	stepBudgetExceeded prometheus.Counter
}

// NewRecorder registers the curling metrics against reg and returns a
// Recorder ready to be installed as match.Setting.Recorder. Pass
// prometheus.DefaultRegisterer for a process-wide singleton, or a fresh
// prometheus.NewRegistry() for test isolation.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		turnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curling_turns_total",
			Help: "Turns resolved by ApplyMove, by outcome reason.",
		}, []string{"reason"}), // bounded: shot, concede, time_limit

		foulsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curling_fouls_total",
			Help: "Shots reverted for a rule foul, by rule.",
		}, []string{"rule"}), // bounded: free_guard_zone, no_tick

		simulationSteps: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "curling_simulation_steps",
			Help:    "Simulator.Step calls taken to settle a single shot.",
			Buckets: []float64{100, 500, 1000, 5000, 20000, 60000, 120000},
		}),

		stepBudgetExceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "curling_step_budget_exceeded_total",
			Help: "Shots that hit Limits.MaxStepsPerShot before settling.",
		}),
	}
}

// ObserveTurn implements match.Recorder.
func (r *Recorder) ObserveTurn(reason string) {
	r.turnsTotal.WithLabelValues(reason).Inc()
}

// ObserveFoul implements match.Recorder.
func (r *Recorder) ObserveFoul(rule string) {
	r.foulsTotal.WithLabelValues(rule).Inc()
}

// ObserveSimulationSteps implements match.Recorder.
func (r *Recorder) ObserveSimulationSteps(n int) {
	r.simulationSteps.Observe(float64(n))
}

// ObserveStepBudgetExceeded implements match.Recorder.
func (r *Recorder) ObserveStepBudgetExceeded() {
	r.stepBudgetExceeded.Inc()
}

// Handler returns the standard Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
