package kerbmath

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry holds the counters of this package. It is not the global Prometheus registry so that importing
// kerbmath does not pollute the metrics of the caller.
var Registry = prometheus.NewRegistry()

var (
	resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kerbmath_resolutions_total",
			Help: "Orbits resolved from parameters, by parameter combination.",
		},
		[]string{"combination"},
	)

	resolveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kerbmath_resolve_failures_total",
			Help: "Orbit resolutions which failed, by error kind.",
		},
		[]string{"kind"},
	)

	burns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kerbmath_burns_total",
			Help: "Maneuvers planned, by burn kind.",
		},
		[]string{"kind"},
	)

	entryRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kerbmath_entry_runs_total",
			Help: "Atmospheric entry simulations, by final status.",
		},
		[]string{"status"},
	)

	entrySteps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kerbmath_entry_steps_total",
			Help: "Integration steps performed by all entry simulations.",
		},
	)
)

func init() {
	Registry.MustRegister(resolutions, resolveFailures, burns, entryRuns, entrySteps)
}

// WriteMetrics writes all the counters in the Prometheus text exposition format.
func WriteMetrics(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
