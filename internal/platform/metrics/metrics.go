// Package metrics records scan telemetry in a private Prometheus registry.
// The CLI is short-lived, so nothing is served: the registry is flushed once
// to a node-exporter textfile when a path is configured.
//
// All Recorder methods are safe on a nil receiver, which disables recording.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "webnmap"

// Recorder owns the registry and the collectors written to it.
type Recorder struct {
	registry *prometheus.Registry

	raceOutcomes  *prometheus.CounterVec
	portStates    *prometheus.CounterVec
	bruteProbes   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	scans         prometheus.Counter
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		raceOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "race_outcomes_total",
			Help:      "Provider races by tool, outcome and winning provider.",
		}, []string{"tool", "outcome", "winner"}),
		portStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "port_states_total",
			Help:      "Ports classified by the connect-scan heuristic, by state.",
		}, []string{"state"}),
		bruteProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dirbrute_probes_total",
			Help:      "Directory brute-force probes by result.",
		}, []string{"result"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each scan stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Scan stages that recovered from an error or panic.",
		}, []string{"stage"}),
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Completed scans.",
		}),
	}

	r.registry.MustRegister(
		r.raceOutcomes,
		r.portStates,
		r.bruteProbes,
		r.stageDuration,
		r.stageErrors,
		r.scans,
	)
	return r
}

// Registry exposes the underlying registry (tests, custom exporters).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RaceOutcome counts one race. outcome is "winner", "all_failed" or "timed_out".
func (r *Recorder) RaceOutcome(tool, outcome, winner string) {
	if r == nil {
		return
	}
	r.raceOutcomes.WithLabelValues(tool, outcome, winner).Inc()
}

// PortState counts one classified port.
func (r *Recorder) PortState(state string) {
	if r == nil {
		return
	}
	r.portStates.WithLabelValues(state).Inc()
}

// BruteProbe counts one brute-force probe.
func (r *Recorder) BruteProbe(found bool) {
	if r == nil {
		return
	}
	result := "miss"
	if found {
		result = "found"
	}
	r.bruteProbes.WithLabelValues(result).Inc()
}

// ObserveStage records how long a stage took and whether it recovered from a failure.
func (r *Recorder) ObserveStage(stage string, d time.Duration, failed bool) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if failed {
		r.stageErrors.WithLabelValues(stage).Inc()
	}
}

// ScanCompleted counts a finished scan.
func (r *Recorder) ScanCompleted() {
	if r == nil {
		return
	}
	r.scans.Inc()
}

// WriteTextfile writes the registry to path in the textfile-collector format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
