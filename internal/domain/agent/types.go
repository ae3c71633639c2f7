package agent

import "errors"

var (
	// ErrDuplicateAgent is returned when registering a name that already exists.
	ErrDuplicateAgent = errors.New("agent already registered")
	// ErrAgentNotFound is returned when looking up an unregistered agent.
	ErrAgentNotFound = errors.New("agent not found")
)

// Agent describes a named persona: a role prompt plus the tools it may use.
type Agent struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	RolePrompt  string   `json:"role_prompt"`
	Tools       []string `json:"tools"`
}

// Mode identifies how an invocation result was produced.
type Mode string

const (
	// ModeNative uses the backend's function-calling protocol.
	ModeNative Mode = "native"
	// ModeText wraps tool calls in literal textual markers for backends
	// without function calling.
	ModeText Mode = "text"
	// ModeFallback is a deterministic templated answer produced when the
	// backend is unreachable.
	ModeFallback Mode = "fallback"
)

// InvocationStatus describes how the orchestration loop terminated.
type InvocationStatus string

const (
	StatusCompleted            InvocationStatus = "completed"
	StatusMaxIterationsReached InvocationStatus = "max_iterations_reached"
)

// ToolCallRecord captures one tool invocation made during an orchestration
// run. Failed calls are recorded alongside successful ones.
type ToolCallRecord struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
	Result    interface{}            `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Metadata carries diagnostic details about an invocation.
type Metadata struct {
	AgentName  string           `json:"agent_name"`
	Model      string           `json:"model"`
	Mode       Mode             `json:"mode"`
	Status     InvocationStatus `json:"status"`
	Iterations int              `json:"iterations"`
}

// InvocationResult is the uniform outcome of an orchestration run. Callers
// always receive a well-formed result, never an error.
type InvocationResult struct {
	Text        string           `json:"text"`
	ToolsUsed   []string         `json:"tools_used"`
	ToolResults []ToolCallRecord `json:"tool_results"`
	Metadata    Metadata         `json:"metadata"`
}

// InvokeParams contains the data needed to start an orchestration run.
type InvokeParams struct {
	Prompt       string
	MaxTokens    int
	Temperature  float64
	Stop         []string
	UseTools     bool
	MaxToolCalls int
	TextMode     bool
}
