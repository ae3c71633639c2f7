package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"agent-server/services/agent-api/internal/domain/agent"
	"agent-server/services/agent-api/internal/domain/status"
	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/infrastructure/observability"
)

// Manager stores workflow definitions and runs them step by step. Definitions
// and the execution history are process-lifetime, in-memory state.
type Manager struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
	history     []Execution

	tools        *tool.Registry
	executor     *tool.Executor
	agents       *agent.Registry
	orchestrator *agent.Orchestrator
	log          zerolog.Logger
}

// NewManager constructs a workflow manager. The orchestrator may be nil when
// no model backend is attached; agent_call steps then fail instead of crash.
func NewManager(tools *tool.Registry, executor *tool.Executor, agents *agent.Registry, orchestrator *agent.Orchestrator, log zerolog.Logger) *Manager {
	return &Manager{
		definitions:  make(map[string]*Definition),
		tools:        tools,
		executor:     executor,
		agents:       agents,
		orchestrator: orchestrator,
		log:          log.With().Str("component", "workflow").Logger(),
	}
}

// Define registers a workflow. Redefining a name replaces its step list and
// resets its status.
func (m *Manager) Define(name string, steps []Step) error {
	if name == "" {
		return fmt.Errorf("define workflow: name is required")
	}
	if len(steps) == 0 {
		return fmt.Errorf("define workflow %q: at least one step is required", name)
	}
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("define workflow %q: %w", name, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.definitions[name] = &Definition{
		Name:      name,
		Steps:     steps,
		Status:    status.StatusDefined,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// Get returns a workflow definition by name.
func (m *Manager) Get(name string) (Definition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.definitions[name]
	if !ok {
		return Definition{}, false
	}
	return *def, true
}

// List returns all defined workflows.
func (m *Manager) List() []Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	defs := make([]Definition, 0, len(m.definitions))
	for _, def := range m.definitions {
		defs = append(defs, *def)
	}
	return defs
}

// Execute runs a workflow's steps strictly in order against a copy of the
// initial context. The first failing step halts the run; the partial trace
// stays visible in the returned execution. The finished execution is appended
// to history and never mutated afterward.
func (m *Manager) Execute(ctx context.Context, name string, initial map[string]interface{}) (*Execution, error) {
	m.mu.RLock()
	def, ok := m.definitions[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("execute workflow %q: %w", name, ErrWorkflowNotFound)
	}

	m.setStatus(name, status.StatusRunning)

	execution := &Execution{
		ID:           uuid.NewString(),
		WorkflowName: name,
		Status:       status.StatusRunning,
		StepResults:  []StepResult{},
		Context:      copyContext(initial),
		StartTime:    time.Now().UTC(),
	}

	m.log.Info().Str("workflow", name).Str("execution_id", execution.ID).Int("steps", len(def.Steps)).Msg("workflow started")

	final := status.StatusCompleted
	for _, step := range def.Steps {
		result := m.runStep(ctx, step, execution.Context)
		execution.StepResults = append(execution.StepResults, result)

		if !result.Success {
			m.log.Warn().Str("workflow", name).Str("step", step.Name).Str("error", result.Error).Msg("workflow step failed")
			final = status.StatusFailed
			break
		}

		mergeOutput(execution.Context, step.Name, result.Output)
	}

	execution.Status = final
	execution.EndTime = time.Now().UTC()
	m.setStatus(name, final)

	m.mu.Lock()
	m.history = append(m.history, *execution)
	m.mu.Unlock()

	m.log.Info().Str("workflow", name).Str("execution_id", execution.ID).Str("status", final.String()).Msg("workflow finished")
	return execution, nil
}

// History returns finished executions, newest last. A non-empty name filters
// by workflow.
func (m *Manager) History(name string) []Execution {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Execution, 0, len(m.history))
	for _, execution := range m.history {
		if name != "" && execution.WorkflowName != name {
			continue
		}
		out = append(out, execution)
	}
	return out
}

func (m *Manager) runStep(ctx context.Context, step Step, workflowCtx map[string]interface{}) StepResult {
	ctx, span := observability.Tracer().Start(ctx, "workflow.step", trace.WithAttributes(
		attribute.String("step.name", step.Name),
		attribute.String("step.type", string(step.Type)),
	))
	defer span.End()

	result := StepResult{
		StepName:  step.Name,
		StepType:  step.Type,
		StartTime: time.Now().UTC(),
	}

	var output interface{}
	var err error
	switch step.Type {
	case StepToolCall:
		output, err = m.runToolStep(ctx, step, workflowCtx)
	case StepAgentCall:
		output, err = m.runAgentStep(ctx, step, workflowCtx)
	case StepCondition:
		output, err = m.runConditionStep(step, workflowCtx)
	default:
		err = fmt.Errorf("%w: unknown type %q", ErrInvalidStep, step.Type)
	}

	result.EndTime = time.Now().UTC()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Output = output
	return result
}

func (m *Manager) runToolStep(ctx context.Context, step Step, workflowCtx map[string]interface{}) (interface{}, error) {
	desc, ok := m.tools.Get(step.Tool)
	if !ok {
		return nil, fmt.Errorf("%w: %q", tool.ErrToolNotFound, step.Tool)
	}

	params, _ := resolveTemplates(step.Parameters, workflowCtx).(map[string]interface{})
	if params == nil {
		params = map[string]interface{}{}
	}

	resp := m.executor.Execute(ctx, desc, params)
	if !resp.Success {
		return nil, fmt.Errorf("tool %q failed: %s", step.Tool, resp.ErrorMessage)
	}
	return resp.Result, nil
}

func (m *Manager) runAgentStep(ctx context.Context, step Step, workflowCtx map[string]interface{}) (interface{}, error) {
	if m.orchestrator == nil {
		return nil, fmt.Errorf("agent step %q: no model service attached", step.Name)
	}
	a, ok := m.agents.Get(step.Agent)
	if !ok {
		return nil, fmt.Errorf("agent step %q: %w: %q", step.Name, agent.ErrAgentNotFound, step.Agent)
	}

	prompt := fmt.Sprint(resolveTemplates(step.Prompt, workflowCtx))
	invocation := m.orchestrator.Invoke(ctx, a, agent.InvokeParams{
		Prompt:   prompt,
		UseTools: true,
	})

	return map[string]interface{}{
		"response":   invocation.Text,
		"tools_used": invocation.ToolsUsed,
		"agent":      a.Name,
	}, nil
}

func (m *Manager) runConditionStep(step Step, workflowCtx map[string]interface{}) (interface{}, error) {
	env := map[string]interface{}{"context": workflowCtx}
	for key, value := range workflowCtx {
		env[key] = value
	}

	program, err := expr.Compile(step.Expression, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("condition %q: compile: %w", step.Name, err)
	}
	value, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("condition %q: evaluate: %w", step.Name, err)
	}
	return map[string]interface{}{"condition_result": truthy(value)}, nil
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

func (m *Manager) setStatus(name string, next status.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, ok := m.definitions[name]
	if !ok {
		return
	}
	updated, err := def.Status.TransitionTo(next)
	if err != nil {
		m.log.Debug().Str("workflow", name).Str("from", def.Status.String()).Str("to", next.String()).Msg("skipping invalid status transition")
		return
	}
	def.Status = updated
}

// mergeOutput folds a step's output into the shared context. Map outputs
// merge key by key; scalar outputs are stored under the step name.
func mergeOutput(workflowCtx map[string]interface{}, stepName string, output interface{}) {
	switch out := output.(type) {
	case map[string]interface{}:
		for key, value := range out {
			workflowCtx[key] = value
		}
	case nil:
	default:
		workflowCtx[stepName] = output
	}
}

func copyContext(initial map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(initial))
	for key, value := range initial {
		out[key] = value
	}
	return out
}
