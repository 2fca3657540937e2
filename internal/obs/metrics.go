package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the runtime's Prometheus instrumentation. One
// instance is shared process-wide.
type Metrics struct {
	ToolCalls       *prometheus.CounterVec
	ToolCallLatency *prometheus.HistogramVec
	TriggerFires    *prometheus.CounterVec
	ReverseRPCLatency *prometheus.HistogramVec
	DispatchErrors  *prometheus.CounterVec
}

// NewMetrics registers the runtime's metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillrt_tool_calls_total",
			Help: "Tool calls dispatched, by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		ToolCallLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "skillrt_tool_call_duration_seconds",
			Help: "Tool call handler latency.",
		}, []string{"tool"}),
		TriggerFires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillrt_trigger_fires_total",
			Help: "Triggers fired, by trigger type.",
		}, []string{"type"}),
		ReverseRPCLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "skillrt_reverse_rpc_duration_seconds",
			Help: "Reverse-RPC call latency, by method.",
		}, []string{"method"}),
		DispatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillrt_dispatch_errors_total",
			Help: "Inbound dispatch failures, by method.",
		}, []string{"method"}),
	}
	reg.MustRegister(m.ToolCalls, m.ToolCallLatency, m.TriggerFires, m.ReverseRPCLatency, m.DispatchErrors)
	return m
}

// ObserveToolCall records the outcome and latency of one tool call.
func (m *Metrics) ObserveToolCall(tool string, isError bool, d time.Duration) {
	outcome := "ok"
	if isError {
		outcome = "error"
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolCallLatency.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveReverseRPC records the latency of one reverse-RPC call.
func (m *Metrics) ObserveReverseRPC(method string, d time.Duration) {
	m.ReverseRPCLatency.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveTriggerFire increments the fire count for a trigger type.
func (m *Metrics) ObserveTriggerFire(triggerType string) {
	m.TriggerFires.WithLabelValues(triggerType).Inc()
}

// ObserveDispatchError increments the error count for a dispatched method.
func (m *Metrics) ObserveDispatchError(method string) {
	m.DispatchErrors.WithLabelValues(method).Inc()
}
