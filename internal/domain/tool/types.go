package tool

import (
	"context"
	"errors"

	"agent-server/services/agent-api/internal/domain/llm"
)

// Kind identifies the invocation mechanism backing a tool. The set is closed:
// the executor dispatches over exactly these four kinds.
type Kind string

const (
	KindAPI         Kind = "api"
	KindCalculation Kind = "calculation"
	KindFunction    Kind = "function"
	KindDatabase    Kind = "database"
)

// Valid reports whether the kind is one of the supported invocation mechanisms.
func (k Kind) Valid() bool {
	switch k {
	case KindAPI, KindCalculation, KindFunction, KindDatabase:
		return true
	}
	return false
}

var (
	// ErrDuplicateTool is returned when registering a name that already exists.
	ErrDuplicateTool = errors.New("tool already registered")
	// ErrToolNotFound is returned when looking up an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")
	// ErrUnknownKind is returned when registering an unsupported tool kind.
	ErrUnknownKind = errors.New("unknown tool kind")
)

// Config carries kind-specific settings for a registered tool.
type Config struct {
	// api
	URL            string            `json:"url,omitempty"`
	Method         string            `json:"method,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	// function
	Source string `json:"source,omitempty"`
	// database
	DSN string `json:"dsn,omitempty"`
}

// Descriptor describes a registered tool: its schema, invocation kind and
// kind-specific configuration. Kind is immutable after registration.
type Descriptor struct {
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	ParameterSchema map[string]interface{} `json:"parameter_schema"`
	Kind            Kind                   `json:"kind"`
	Config          Config                 `json:"config"`
}

// ToLLMTool converts the descriptor into the OpenAI-compatible tool definition
// advertised to the model backend.
func (d Descriptor) ToLLMTool() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.ParameterSchema,
		},
	}
}

// Request carries one tool invocation.
type Request struct {
	ToolName   string                 `json:"tool_name"`
	Parameters map[string]interface{} `json:"parameters"`
}

// Response is the uniform outcome of a tool execution. Exactly one of Result
// and ErrorMessage is meaningful, gated by Success.
type Response struct {
	Success         bool        `json:"success"`
	Result          interface{} `json:"result,omitempty"`
	ErrorMessage    string      `json:"error_message,omitempty"`
	ExecutionTimeMS float64     `json:"execution_time_ms"`
}

// HTTPCallSpec describes one outbound HTTP call made by the api tool kind.
type HTTPCallSpec struct {
	URL            string
	Method         string
	Headers        map[string]string
	Parameters     map[string]interface{}
	TimeoutSeconds int
}

// HTTPResult captures the outcome of an api tool call.
type HTTPResult struct {
	StatusCode int               `json:"status_code"`
	Data       interface{}       `json:"data"`
	Headers    map[string]string `json:"headers"`
}

// HTTPCaller performs HTTP requests on behalf of the api tool kind.
type HTTPCaller interface {
	Call(ctx context.Context, spec HTTPCallSpec) (*HTTPResult, error)
}

// SQLResult captures the outcome of a database tool call. Rows is populated
// for SELECT-shaped statements, AffectedRows for everything else.
type SQLResult struct {
	Rows         []map[string]interface{} `json:"rows,omitempty"`
	AffectedRows int64                    `json:"affected_rows"`
	Selected     bool                     `json:"-"`
}

// SQLRunner executes a single statement against a connection opened and
// closed within the call.
type SQLRunner interface {
	Run(ctx context.Context, dsn, statement string) (*SQLResult, error)
}
