package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "spectrum"

// Metrics holds the Prometheus collectors of a Spectrum process.
type Metrics struct {
	Registry *prometheus.Registry

	Mutations  *prometheus.CounterVec
	Emissions  *prometheus.CounterVec
	Rejections *prometheus.CounterVec
	Disposals  prometheus.Counter
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "mutations_total",
				Help:      "Total number of synchronizer mutations, by kind and whether they changed committed state.",
			},
			[]string{"kind", "applied"},
		),
		Emissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "emissions_total",
				Help:      "Total number of change notifications, by channel.",
			},
			[]string{"channel"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "rejected_mutations_total",
				Help:      "Total number of session mutations that returned an error, by reason.",
			},
			[]string{"kind", "reason"},
		),
		Disposals: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "disposals_total",
				Help:      "Total number of disposed synchronizers.",
			},
		),
	}
	m.Registry.MustRegister(m.Mutations, m.Emissions, m.Rejections, m.Disposals)
	return m
}

// Hooks returns lifecycle hooks that record mutations, emissions and disposals.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(e *domain.MutationEvent) {
			m.Mutations.WithLabelValues(string(e.Kind), strconv.FormatBool(e.Applied)).Inc()
		},
		OnEmit: func(e *domain.EmitEvent) {
			m.Emissions.WithLabelValues(string(e.Channel)).Inc()
		},
		OnDispose: func() {
			m.Disposals.Inc()
		},
	}
}

// Interceptor returns a pipeline stage that counts rejected mutations.
func (m *Metrics) Interceptor() pipeline.Interceptor {
	return pipeline.Interceptor{
		Name: "metrics",
		HandleError: func(ctx context.Context, req *pipeline.Request, err error) error {
			m.Rejections.WithLabelValues(string(req.Mutation.Kind), Reason(err)).Inc()
			return err
		},
	}
}

// RegisterLiveSessions exposes a gauge reading the number of hydrated sessions from fn.
func (m *Metrics) RegisterLiveSessions(fn func() int) {
	m.Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "live_sessions",
			Help:      "Number of sessions with a hydrated synchronizer.",
		},
		func() float64 { return float64(fn()) },
	))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Reason maps an error onto a low-cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidColor):
		return "invalid_color"
	case errors.Is(err, domain.ErrTooFewColors):
		return "too_few_colors"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, domain.ErrEmptyDirection):
		return "empty_direction"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, domain.ErrPresetNotFound):
		return "preset_not_found"
	case errors.Is(err, domain.ErrUnknownMutation):
		return "unknown_mutation"
	case errors.Is(err, domain.ErrDisposed):
		return "disposed"
	case errors.Is(err, pipeline.ErrInputTooLarge), errors.Is(err, pipeline.ErrInvalidUTF8):
		return "sanitize"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
