package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"agent-server/services/agent-api/internal/domain/status"
)

var (
	// ErrWorkflowNotFound is returned when executing an undefined workflow.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrInvalidStep is returned when a step definition fails validation.
	ErrInvalidStep = errors.New("invalid workflow step")
)

// StepType identifies what a workflow step does.
type StepType string

const (
	// StepToolCall executes a registered tool with templated parameters.
	StepToolCall StepType = "tool_call"
	// StepAgentCall invokes an agent with a templated prompt.
	StepAgentCall StepType = "agent_call"
	// StepCondition evaluates a boolean expression against the context.
	StepCondition StepType = "condition"
)

// Step is a tagged variant: exactly the fields for its type are meaningful.
type Step struct {
	Name string   `json:"name"`
	Type StepType `json:"type"`

	// tool_call
	Tool       string                 `json:"tool,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`

	// agent_call
	Agent  string `json:"agent,omitempty"`
	Prompt string `json:"prompt,omitempty"`

	// condition
	Expression string `json:"expression,omitempty"`
}

// Validate checks that the step carries the fields its type requires.
func (s Step) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: step name is required", ErrInvalidStep)
	}
	switch s.Type {
	case StepToolCall:
		if strings.TrimSpace(s.Tool) == "" {
			return fmt.Errorf("%w: step %q: tool name is required", ErrInvalidStep, s.Name)
		}
	case StepAgentCall:
		if strings.TrimSpace(s.Agent) == "" {
			return fmt.Errorf("%w: step %q: agent name is required", ErrInvalidStep, s.Name)
		}
		if strings.TrimSpace(s.Prompt) == "" {
			return fmt.Errorf("%w: step %q: prompt is required", ErrInvalidStep, s.Name)
		}
	case StepCondition:
		if strings.TrimSpace(s.Expression) == "" {
			return fmt.Errorf("%w: step %q: expression is required", ErrInvalidStep, s.Name)
		}
	default:
		return fmt.Errorf("%w: step %q: unknown type %q", ErrInvalidStep, s.Name, s.Type)
	}
	return nil
}

// Definition is a named, ordered list of steps. The step list is immutable
// after registration; only the status moves.
type Definition struct {
	Name      string        `json:"name"`
	Steps     []Step        `json:"steps"`
	Status    status.Status `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// StepResult records one step's outcome inside an execution trace.
type StepResult struct {
	StepName  string      `json:"step_name"`
	StepType  StepType    `json:"step_type"`
	Success   bool        `json:"success"`
	Output    interface{} `json:"output,omitempty"`
	Error     string      `json:"error,omitempty"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
}

// Execution is the immutable record of one workflow run. Once appended to
// history it is never mutated.
type Execution struct {
	ID           string                 `json:"execution_id"`
	WorkflowName string                 `json:"workflow_name"`
	Status       status.Status          `json:"status"`
	StepResults  []StepResult           `json:"step_results"`
	Context      map[string]interface{} `json:"context"`
	StartTime    time.Time              `json:"start_time"`
	EndTime      time.Time              `json:"end_time"`
}
