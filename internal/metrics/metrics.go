// Package metrics exposes load, invocation and reload counters through
// Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

const namespace = "playground"

// Metrics tracks module activity. It implements plugin.Observer.
type Metrics struct {
	registry *prometheus.Registry

	loads          *prometheus.CounterVec
	invocations    *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	actions        *prometheus.CounterVec
	reloads        *prometheus.CounterVec
	droppedActions prometheus.Counter
}

// New creates metrics registered in a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "module_loads_total",
				Help:      "Module load attempts by engine and outcome.",
			},
			[]string{"engine", "outcome"},
		),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Module invocations by engine and outcome.",
			},
			[]string{"engine", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Time spent inside the module entry point.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"engine"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recorded_actions_total",
				Help:      "Timeline actions drained from successful invocations.",
			},
			[]string{"engine"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Hot reloads by outcome.",
			},
			[]string{"outcome"},
		),
		droppedActions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_actions_total",
				Help:      "Replayed actions dropped for pointing outside the grid.",
			},
		),
	}

	m.registry.MustRegister(m.loads, m.invocations, m.duration, m.actions, m.reloads, m.droppedActions)
	return m
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLoad counts a load attempt.
func (m *Metrics) ObserveLoad(engine string, err error) {
	m.loads.WithLabelValues(engineLabel(engine), Outcome(err)).Inc()
}

// ObserveInvoke counts an invocation and, on success, its actions.
func (m *Metrics) ObserveInvoke(engine string, elapsed time.Duration, actions int, err error) {
	engine = engineLabel(engine)
	m.invocations.WithLabelValues(engine, Outcome(err)).Inc()
	m.duration.WithLabelValues(engine).Observe(elapsed.Seconds())
	if err == nil {
		m.actions.WithLabelValues(engine).Add(float64(actions))
	}
}

// ObserveReload counts a hot reload.
func (m *Metrics) ObserveReload(err error) {
	m.reloads.WithLabelValues(Outcome(err)).Inc()
}

// ObserveDropped counts actions dropped during replay.
func (m *Metrics) ObserveDropped(n int) {
	if n > 0 {
		m.droppedActions.Add(float64(n))
	}
}

func engineLabel(engine string) string {
	if engine == "" {
		return "none"
	}
	return engine
}

// Outcome names the class of err for a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, contract.ErrIo):
		return "io"
	case errors.Is(err, contract.ErrCompile):
		return "compile"
	case errors.Is(err, contract.ErrLink):
		return "link"
	case errors.Is(err, contract.ErrMissingExport):
		return "missing_export"
	case errors.Is(err, contract.ErrTimeout):
		return "timeout"
	case errors.Is(err, contract.ErrTrapped):
		return "trapped"
	case errors.Is(err, contract.ErrContractViolation):
		return "violation"
	default:
		return "error"
	}
}
