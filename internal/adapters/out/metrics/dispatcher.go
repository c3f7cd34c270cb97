package metrics

import (
	"context"
	"time"

	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/domain/statecommand"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeError labels commands that returned an error instead of a result.
const OutcomeError = "error"

type DispatcherMetrics struct {
	Commands  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewDispatcherMetrics(reg prometheus.Registerer) *DispatcherMetrics {
	cmds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "state_commands",
		Name:      "total",
		Help:      "State commands dispatched, by command and outcome.",
	}, []string{"command", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "state_commands",
		Name:      "duration_ms",
		Help:      "State command latency in milliseconds, including the reply wait for remote dispatch.",
		Buckets:   latencyBuckets,
	}, []string{"command"})

	reg.MustRegister(cmds, latency)
	return &DispatcherMetrics{Commands: cmds, LatencyMS: latency}
}

// InstrumentedDispatcher counts and times every command passed to next.
type InstrumentedDispatcher struct {
	next    commands.StateCommandDispatcher
	metrics *DispatcherMetrics
}

func NewInstrumentedDispatcher(next commands.StateCommandDispatcher, m *DispatcherMetrics) *InstrumentedDispatcher {
	return &InstrumentedDispatcher{next: next, metrics: m}
}

func (d *InstrumentedDispatcher) Dispatch(ctx context.Context, cmd statecommand.Command) (commands.StateCommandResult, error) {
	start := time.Now()
	result, err := d.next.Dispatch(ctx, cmd)

	outcome := OutcomeError
	if err == nil {
		outcome = result.Outcome.String()
	}
	d.metrics.Commands.WithLabelValues(cmd.Name(), outcome).Inc()
	d.metrics.LatencyMS.WithLabelValues(cmd.Name()).Observe(float64(time.Since(start).Milliseconds()))
	return result, err
}
