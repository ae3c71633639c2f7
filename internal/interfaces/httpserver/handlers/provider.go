package handlers

import (
	"github.com/rs/zerolog"

	"agent-server/services/agent-api/internal/domain/agent"
	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/domain/workflow"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Tool     *ToolHandler
	Agent    *AgentHandler
	Workflow *WorkflowHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	toolRegistry *tool.Registry,
	executor *tool.Executor,
	agentRegistry *agent.Registry,
	orchestrator *agent.Orchestrator,
	manager *workflow.Manager,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Tool:     NewToolHandler(toolRegistry, executor, log),
		Agent:    NewAgentHandler(agentRegistry, orchestrator, log),
		Workflow: NewWorkflowHandler(manager, log),
	}
}
