package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"agent-server/services/agent-api/internal/domain/agent"
	"agent-server/services/agent-api/internal/domain/status"
	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/domain/workflow"
)

func newManager(t *testing.T) (*workflow.Manager, *tool.Registry) {
	t.Helper()
	tools := tool.NewRegistry()
	executor := tool.NewExecutor(nil, nil, "", 30*time.Second, zerolog.Nop())
	agents := agent.NewRegistry(tools)
	manager := workflow.NewManager(tools, executor, agents, nil, zerolog.Nop())
	return manager, tools
}

func registerEcho(t *testing.T, tools *tool.Registry) {
	t.Helper()
	err := tools.Register(tool.Descriptor{
		Name:        "echo",
		Description: "returns its input",
		Kind:        tool.KindFunction,
		Config:      tool.Config{Source: "msg"},
	})
	if err != nil {
		t.Fatalf("Register(echo) error = %v", err)
	}
}

func registerCalc(t *testing.T, tools *tool.Registry) {
	t.Helper()
	err := tools.Register(tool.Descriptor{
		Name:        "calc",
		Description: "evaluates arithmetic",
		Kind:        tool.KindCalculation,
	})
	if err != nil {
		t.Fatalf("Register(calc) error = %v", err)
	}
}

func TestManager_DefineValidation(t *testing.T) {
	manager, _ := newManager(t)

	tests := []struct {
		name  string
		steps []workflow.Step
	}{
		{"no steps", nil},
		{"missing step name", []workflow.Step{{Type: workflow.StepToolCall, Tool: "echo"}}},
		{"tool step without tool", []workflow.Step{{Name: "a", Type: workflow.StepToolCall}}},
		{"agent step without prompt", []workflow.Step{{Name: "a", Type: workflow.StepAgentCall, Agent: "x"}}},
		{"condition without expression", []workflow.Step{{Name: "a", Type: workflow.StepCondition}}},
		{"unknown type", []workflow.Step{{Name: "a", Type: workflow.StepType("loop")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := manager.Define("bad", tt.steps); err == nil {
				t.Error("Define() error = nil, want validation error")
			}
		})
	}
}

func TestManager_ExecuteUndefined(t *testing.T) {
	manager, _ := newManager(t)

	_, err := manager.Execute(context.Background(), "ghost", nil)
	if !errors.Is(err, workflow.ErrWorkflowNotFound) {
		t.Errorf("Execute() error = %v, want ErrWorkflowNotFound", err)
	}
}

func TestManager_EchoScenario(t *testing.T) {
	manager, tools := newManager(t)
	registerEcho(t, tools)

	err := manager.Define("echo-flow", []workflow.Step{
		{
			Name:       "echo_input",
			Type:       workflow.StepToolCall,
			Tool:       "echo",
			Parameters: map[string]interface{}{"msg": "{{input}}"},
		},
	})
	if err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	execution, err := manager.Execute(context.Background(), "echo-flow", map[string]interface{}{"input": "hi"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if execution.Status != status.StatusCompleted {
		t.Errorf("Status = %q, want completed", execution.Status)
	}
	if len(execution.StepResults) != 1 {
		t.Fatalf("StepResults length = %d, want 1", len(execution.StepResults))
	}

	output, ok := execution.StepResults[0].Output.(map[string]interface{})
	if !ok {
		t.Fatalf("Output type = %T, want map", execution.StepResults[0].Output)
	}
	if output["result"] != "hi" {
		t.Errorf("step output result = %v, want hi", output["result"])
	}
	// Successful output merges into the shared context.
	if execution.Context["result"] != "hi" {
		t.Errorf("context result = %v, want hi", execution.Context["result"])
	}
	if execution.ID == "" {
		t.Error("execution ID is empty")
	}

	def, _ := manager.Get("echo-flow")
	if def.Status != status.StatusCompleted {
		t.Errorf("definition status = %q, want completed", def.Status)
	}
}

func TestManager_FailFast(t *testing.T) {
	manager, tools := newManager(t)
	registerCalc(t, tools)

	err := manager.Define("fragile", []workflow.Step{
		{Name: "a", Type: workflow.StepToolCall, Tool: "calc", Parameters: map[string]interface{}{"expression": "1 + 1"}},
		{Name: "b", Type: workflow.StepToolCall, Tool: "calc", Parameters: map[string]interface{}{"expression": "eval(1)"}},
		{Name: "c", Type: workflow.StepToolCall, Tool: "calc", Parameters: map[string]interface{}{"expression": "2 + 2"}},
	})
	if err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	execution, err := manager.Execute(context.Background(), "fragile", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if execution.Status != status.StatusFailed {
		t.Errorf("Status = %q, want failed", execution.Status)
	}
	if len(execution.StepResults) != 2 {
		t.Fatalf("StepResults length = %d, want 2 (step c must not run)", len(execution.StepResults))
	}
	if !execution.StepResults[0].Success {
		t.Error("step a should succeed")
	}
	if execution.StepResults[1].Success || execution.StepResults[1].Error == "" {
		t.Error("step b should fail with a recorded error")
	}
}

func TestManager_ToolNotFoundIsStepFailure(t *testing.T) {
	manager, _ := newManager(t)

	if err := manager.Define("missing-tool", []workflow.Step{
		{Name: "a", Type: workflow.StepToolCall, Tool: "ghost"},
	}); err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	execution, err := manager.Execute(context.Background(), "missing-tool", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if execution.Status != status.StatusFailed {
		t.Errorf("Status = %q, want failed", execution.Status)
	}
}

func TestManager_AgentStepWithoutModelService(t *testing.T) {
	manager, _ := newManager(t)

	if err := manager.Define("needs-model", []workflow.Step{
		{Name: "ask", Type: workflow.StepAgentCall, Agent: "analyst", Prompt: "summarize {{input}}"},
	}); err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	execution, err := manager.Execute(context.Background(), "needs-model", map[string]interface{}{"input": "x"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if execution.Status != status.StatusFailed {
		t.Errorf("Status = %q, want failed (absent model service is a step failure, not a crash)", execution.Status)
	}
}

func TestManager_ConditionStep(t *testing.T) {
	manager, _ := newManager(t)

	if err := manager.Define("gate", []workflow.Step{
		{Name: "check", Type: workflow.StepCondition, Expression: "count > 2"},
	}); err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	execution, err := manager.Execute(context.Background(), "gate", map[string]interface{}{"count": 3})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if execution.Status != status.StatusCompleted {
		t.Fatalf("Status = %q, want completed", execution.Status)
	}
	output, ok := execution.StepResults[0].Output.(map[string]interface{})
	if !ok {
		t.Fatalf("condition output = %#v, want map", execution.StepResults[0].Output)
	}
	if output["condition_result"] != true {
		t.Errorf("condition_result = %v, want true", output["condition_result"])
	}
	// The map output merges key by key, so the verdict lands in the context.
	if execution.Context["condition_result"] != true {
		t.Errorf("context condition_result = %v, want true", execution.Context["condition_result"])
	}
}

func TestManager_HistoryFilter(t *testing.T) {
	manager, tools := newManager(t)
	registerCalc(t, tools)

	step := workflow.Step{Name: "a", Type: workflow.StepToolCall, Tool: "calc", Parameters: map[string]interface{}{"expression": "1 + 1"}}
	if err := manager.Define("first", []workflow.Step{step}); err != nil {
		t.Fatalf("Define(first) error = %v", err)
	}
	if err := manager.Define("second", []workflow.Step{step}); err != nil {
		t.Fatalf("Define(second) error = %v", err)
	}

	for _, name := range []string{"first", "second", "first"} {
		if _, err := manager.Execute(context.Background(), name, nil); err != nil {
			t.Fatalf("Execute(%q) error = %v", name, err)
		}
	}

	if got := len(manager.History("")); got != 3 {
		t.Errorf("History(\"\") length = %d, want 3", got)
	}
	if got := len(manager.History("first")); got != 2 {
		t.Errorf("History(first) length = %d, want 2", got)
	}
	if got := len(manager.History("second")); got != 1 {
		t.Errorf("History(second) length = %d, want 1", got)
	}
	if got := len(manager.History("ghost")); got != 0 {
		t.Errorf("History(ghost) length = %d, want 0", got)
	}
}
