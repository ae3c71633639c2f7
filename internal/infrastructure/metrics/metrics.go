package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Agent-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent",
			Subsystem: "agent_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agent",
			Subsystem: "agent_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Tool call counters
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent",
			Subsystem: "agent_api",
			Name:      "tool_calls_total",
			Help:      "Total tool executions",
		},
		[]string{"tool_name", "kind", "status"},
	)

	// Tool duration histogram
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agent",
			Subsystem: "agent_api",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool_name", "kind"},
	)

	// Orchestration iterations histogram
	OrchestrationIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agent",
			Subsystem: "agent_api",
			Name:      "orchestration_iterations",
			Help:      "Backend round trips per orchestration run",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"agent_name", "mode"},
	)

	// Workflow execution counters
	WorkflowExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent",
			Subsystem: "agent_api",
			Name:      "workflow_executions_total",
			Help:      "Total workflow executions",
		},
		[]string{"workflow", "status"},
	)

	// Workflow duration histogram
	WorkflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agent",
			Subsystem: "agent_api",
			Name:      "workflow_duration_seconds",
			Help:      "Workflow execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"workflow"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordToolCall records a tool execution
func RecordToolCall(toolName, kind, status string, durationSec float64) {
	ToolCallsTotal.WithLabelValues(toolName, kind, status).Inc()
	ToolDuration.WithLabelValues(toolName, kind).Observe(durationSec)
}

// RecordOrchestration records the round-trip count of one orchestration run
func RecordOrchestration(agentName, mode string, iterations int) {
	OrchestrationIterations.WithLabelValues(agentName, mode).Observe(float64(iterations))
}

// RecordWorkflowExecution records a workflow run
func RecordWorkflowExecution(workflow, status string, durationSec float64) {
	WorkflowExecutionsTotal.WithLabelValues(workflow, status).Inc()
	WorkflowDuration.WithLabelValues(workflow).Observe(durationSec)
}
