package dto

import (
	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/domain/workflow"
)

// ToolConfigPayload carries kind-specific tool settings.
type ToolConfigPayload struct {
	URL            string            `json:"url,omitempty"`
	Method         string            `json:"method,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	Source         string            `json:"source,omitempty"`
	DSN            string            `json:"dsn,omitempty"`
}

// RegisterToolRequest is the body for POST /v1/tools.
type RegisterToolRequest struct {
	Name            string                 `json:"name" binding:"required"`
	Description     string                 `json:"description"`
	ParameterSchema map[string]interface{} `json:"parameter_schema"`
	Kind            string                 `json:"kind" binding:"required"`
	Config          ToolConfigPayload      `json:"config"`
}

// ToDomain converts the registration request into a tool descriptor.
func (r RegisterToolRequest) ToDomain() tool.Descriptor {
	return tool.Descriptor{
		Name:            r.Name,
		Description:     r.Description,
		ParameterSchema: r.ParameterSchema,
		Kind:            tool.Kind(r.Kind),
		Config: tool.Config{
			URL:            r.Config.URL,
			Method:         r.Config.Method,
			Headers:        r.Config.Headers,
			TimeoutSeconds: r.Config.TimeoutSeconds,
			Source:         r.Config.Source,
			DSN:            r.Config.DSN,
		},
	}
}

// ExecuteToolRequest is the body for POST /v1/tools/:tool_name/execute.
type ExecuteToolRequest struct {
	Parameters map[string]interface{} `json:"parameters"`
}

// RegisterAgentRequest is the body for POST /v1/agents.
type RegisterAgentRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	RolePrompt  string   `json:"role_prompt" binding:"required"`
	Tools       []string `json:"tools"`
}

// AssignToolsRequest is the body for PUT /v1/agents/:agent_name/tools.
type AssignToolsRequest struct {
	Tools []string `json:"tools" binding:"required"`
}

// InvokeAgentRequest is the body for POST /v1/agents/:agent_name/invoke.
type InvokeAgentRequest struct {
	Prompt       string   `json:"prompt" binding:"required"`
	MaxTokens    int      `json:"max_tokens"`
	Temperature  float64  `json:"temperature"`
	Stop         []string `json:"stop,omitempty"`
	UseTools     *bool    `json:"use_tools"`
	MaxToolCalls int      `json:"max_tool_calls"`
	TextMode     bool     `json:"text_mode"`
}

// WorkflowStepPayload mirrors workflow.Step for registration bodies.
type WorkflowStepPayload struct {
	Name       string                 `json:"name" binding:"required"`
	Type       string                 `json:"type" binding:"required"`
	Tool       string                 `json:"tool,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Agent      string                 `json:"agent,omitempty"`
	Prompt     string                 `json:"prompt,omitempty"`
	Expression string                 `json:"expression,omitempty"`
}

// DefineWorkflowRequest is the body for POST /v1/workflows.
type DefineWorkflowRequest struct {
	Name  string                `json:"name" binding:"required"`
	Steps []WorkflowStepPayload `json:"steps" binding:"required"`
}

// ToDomain converts the request steps into workflow steps.
func (r DefineWorkflowRequest) ToDomain() []workflow.Step {
	steps := make([]workflow.Step, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, workflow.Step{
			Name:       s.Name,
			Type:       workflow.StepType(s.Type),
			Tool:       s.Tool,
			Parameters: s.Parameters,
			Agent:      s.Agent,
			Prompt:     s.Prompt,
			Expression: s.Expression,
		})
	}
	return steps
}

// ExecuteWorkflowRequest is the body for POST /v1/workflows/:workflow_name/execute.
type ExecuteWorkflowRequest struct {
	Context map[string]interface{} `json:"context"`
}
