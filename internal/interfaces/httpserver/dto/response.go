package dto

import (
	"time"

	"agent-server/services/agent-api/internal/domain/agent"
	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/domain/workflow"
)

// ToolPayload is the wire form of a registered tool.
type ToolPayload struct {
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	ParameterSchema map[string]interface{} `json:"parameter_schema"`
	Kind            string                 `json:"kind"`
}

// FromTool converts a descriptor, omitting kind-specific config (it may hold
// credentials such as connection strings).
func FromTool(d tool.Descriptor) ToolPayload {
	return ToolPayload{
		Name:            d.Name,
		Description:     d.Description,
		ParameterSchema: d.ParameterSchema,
		Kind:            string(d.Kind),
	}
}

// FromTools converts a descriptor list.
func FromTools(descs []tool.Descriptor) []ToolPayload {
	out := make([]ToolPayload, 0, len(descs))
	for _, d := range descs {
		out = append(out, FromTool(d))
	}
	return out
}

// ToolExecutionPayload is the wire form of a tool execution outcome.
type ToolExecutionPayload struct {
	Success         bool        `json:"success"`
	Result          interface{} `json:"result,omitempty"`
	ErrorMessage    string      `json:"error_message,omitempty"`
	ExecutionTimeMS float64     `json:"execution_time_ms"`
}

// FromToolResponse converts an execution outcome.
func FromToolResponse(resp tool.Response) ToolExecutionPayload {
	return ToolExecutionPayload{
		Success:         resp.Success,
		Result:          resp.Result,
		ErrorMessage:    resp.ErrorMessage,
		ExecutionTimeMS: resp.ExecutionTimeMS,
	}
}

// AgentPayload is the wire form of a registered agent.
type AgentPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	RolePrompt  string   `json:"role_prompt"`
	Tools       []string `json:"tools"`
}

// FromAgent converts an agent.
func FromAgent(a agent.Agent) AgentPayload {
	return AgentPayload{
		Name:        a.Name,
		Description: a.Description,
		RolePrompt:  a.RolePrompt,
		Tools:       a.Tools,
	}
}

// FromAgents converts an agent list.
func FromAgents(agents []agent.Agent) []AgentPayload {
	out := make([]AgentPayload, 0, len(agents))
	for _, a := range agents {
		out = append(out, FromAgent(a))
	}
	return out
}

// InvocationPayload is the wire form of an orchestration result.
type InvocationPayload struct {
	Text        string                 `json:"text"`
	ToolsUsed   []string               `json:"tools_used"`
	ToolResults []agent.ToolCallRecord `json:"tool_results"`
	Metadata    agent.Metadata         `json:"metadata"`
}

// FromInvocation converts an orchestration result.
func FromInvocation(result *agent.InvocationResult) InvocationPayload {
	return InvocationPayload{
		Text:        result.Text,
		ToolsUsed:   result.ToolsUsed,
		ToolResults: result.ToolResults,
		Metadata:    result.Metadata,
	}
}

// WorkflowPayload is the wire form of a workflow definition.
type WorkflowPayload struct {
	Name      string                `json:"name"`
	Steps     []WorkflowStepPayload `json:"steps"`
	Status    string                `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

// FromWorkflow converts a definition.
func FromWorkflow(def workflow.Definition) WorkflowPayload {
	steps := make([]WorkflowStepPayload, 0, len(def.Steps))
	for _, s := range def.Steps {
		steps = append(steps, WorkflowStepPayload{
			Name:       s.Name,
			Type:       string(s.Type),
			Tool:       s.Tool,
			Parameters: s.Parameters,
			Agent:      s.Agent,
			Prompt:     s.Prompt,
			Expression: s.Expression,
		})
	}
	return WorkflowPayload{
		Name:      def.Name,
		Steps:     steps,
		Status:    def.Status.String(),
		CreatedAt: def.CreatedAt,
	}
}

// FromWorkflows converts a definition list.
func FromWorkflows(defs []workflow.Definition) []WorkflowPayload {
	out := make([]WorkflowPayload, 0, len(defs))
	for _, def := range defs {
		out = append(out, FromWorkflow(def))
	}
	return out
}

// StepResultPayload is the wire form of a step outcome.
type StepResultPayload struct {
	StepName  string      `json:"step_name"`
	StepType  string      `json:"step_type"`
	Success   bool        `json:"success"`
	Output    interface{} `json:"output,omitempty"`
	Error     string      `json:"error,omitempty"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
}

// ExecutionPayload is the wire form of a workflow execution trace.
type ExecutionPayload struct {
	ExecutionID  string                 `json:"execution_id"`
	WorkflowName string                 `json:"workflow_name"`
	Status       string                 `json:"status"`
	StepResults  []StepResultPayload    `json:"step_results"`
	Context      map[string]interface{} `json:"context"`
	StartTime    time.Time              `json:"start_time"`
	EndTime      time.Time              `json:"end_time"`
}

// FromExecution converts an execution trace.
func FromExecution(execution workflow.Execution) ExecutionPayload {
	results := make([]StepResultPayload, 0, len(execution.StepResults))
	for _, r := range execution.StepResults {
		results = append(results, StepResultPayload{
			StepName:  r.StepName,
			StepType:  string(r.StepType),
			Success:   r.Success,
			Output:    r.Output,
			Error:     r.Error,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		})
	}
	return ExecutionPayload{
		ExecutionID:  execution.ID,
		WorkflowName: execution.WorkflowName,
		Status:       execution.Status.String(),
		StepResults:  results,
		Context:      execution.Context,
		StartTime:    execution.StartTime,
		EndTime:      execution.EndTime,
	}
}

// FromExecutions converts an execution list.
func FromExecutions(executions []workflow.Execution) []ExecutionPayload {
	out := make([]ExecutionPayload, 0, len(executions))
	for _, execution := range executions {
		out = append(out, FromExecution(execution))
	}
	return out
}
