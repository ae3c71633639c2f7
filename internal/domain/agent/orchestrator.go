package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agent-server/services/agent-api/internal/domain/llm"
	"agent-server/services/agent-api/internal/domain/tool"
	"agent-server/services/agent-api/internal/infrastructure/observability"
)

// Orchestrator drives a bounded conversation between the chat-completion
// backend and the tool executor until the model produces a final answer or
// the iteration budget runs out.
type Orchestrator struct {
	provider     llm.Provider
	tools        *tool.Registry
	executor     *tool.Executor
	fallback     *FallbackResponder
	model        string
	maxToolCalls int
	log          zerolog.Logger
}

// NewOrchestrator constructs the orchestration loop driver.
func NewOrchestrator(provider llm.Provider, tools *tool.Registry, executor *tool.Executor, model string, maxToolCalls int, log zerolog.Logger) *Orchestrator {
	if maxToolCalls <= 0 {
		maxToolCalls = 8
	}
	return &Orchestrator{
		provider:     provider,
		tools:        tools,
		executor:     executor,
		fallback:     NewFallbackResponder(model),
		model:        model,
		maxToolCalls: maxToolCalls,
		log:          log.With().Str("component", "orchestrator").Logger(),
	}
}

// Invoke runs the orchestration loop for the given agent and prompt. It never
// returns an error: backend failures degrade to a deterministic fallback
// answer and tool failures are captured into the result records.
func (o *Orchestrator) Invoke(ctx context.Context, a Agent, params InvokeParams) *InvocationResult {
	ctx, span := observability.Tracer().Start(ctx, "agent.invoke", trace.WithAttributes(
		attribute.String("agent.name", a.Name),
		attribute.Bool("agent.text_mode", params.TextMode),
	))
	defer span.End()

	var result *InvocationResult
	if params.TextMode {
		result = o.invokeText(ctx, a, params)
	} else {
		result = o.invokeNative(ctx, a, params)
	}
	span.SetAttributes(
		attribute.String("agent.mode", string(result.Metadata.Mode)),
		attribute.Int("agent.iterations", result.Metadata.Iterations),
	)
	return result
}

func (o *Orchestrator) invokeNative(ctx context.Context, a Agent, params InvokeParams) *InvocationResult {
	budget := params.MaxToolCalls
	if budget <= 0 {
		budget = o.maxToolCalls
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: a.RolePrompt},
		{Role: "user", Content: params.Prompt},
	}

	var toolDefs []llm.ToolDefinition
	if params.UseTools {
		toolDefs = o.advertisedTools(a)
	}

	run := newRunRecorder()

	for iteration := 0; iteration < budget; iteration++ {
		msg, err := o.complete(ctx, messages, toolDefs, params)
		if err != nil {
			o.log.Warn().Err(err).Str("agent", a.Name).Msg("backend unavailable, using fallback")
			return o.fallback.Respond(a, params.Prompt, run)
		}

		if len(msg.ToolCalls) == 0 {
			return &InvocationResult{
				Text:        msg.Text(),
				ToolsUsed:   run.toolsUsed,
				ToolResults: run.toolResults,
				Metadata: Metadata{
					AgentName:  a.Name,
					Model:      o.model,
					Mode:       ModeNative,
					Status:     StatusCompleted,
					Iterations: iteration + 1,
				},
			}
		}

		messages = append(messages, llm.ChatMessage{
			Role:      "assistant",
			Content:   msg.Content,
			ToolCalls: msg.ToolCalls,
		})

		for _, call := range msg.ToolCalls {
			messages = append(messages, o.dispatchToolCall(ctx, call, run))
		}
	}

	// Budget exhausted while the model still wants tools: one final
	// completion without tools advertised, returning whatever comes back.
	msg, err := o.complete(ctx, messages, nil, params)
	if err != nil {
		o.log.Warn().Err(err).Str("agent", a.Name).Msg("backend unavailable on final call, using fallback")
		return o.fallback.Respond(a, params.Prompt, run)
	}

	return &InvocationResult{
		Text:        msg.Text(),
		ToolsUsed:   run.toolsUsed,
		ToolResults: run.toolResults,
		Metadata: Metadata{
			AgentName:  a.Name,
			Model:      o.model,
			Mode:       ModeNative,
			Status:     StatusMaxIterationsReached,
			Iterations: budget + 1,
		},
	}
}

// dispatchToolCall executes one tool-call directive and returns the tool-role
// message recording its outcome. Unknown tools and malformed arguments are
// non-fatal: the loop continues with an error result.
func (o *Orchestrator) dispatchToolCall(ctx context.Context, call llm.ToolCall, run *runRecorder) llm.ChatMessage {
	callID := call.ID
	if callID == "" {
		callID = "call_" + uuid.NewString()
	}

	args := map[string]interface{}{}
	if len(call.Function.Arguments) > 0 {
		if err := json.Unmarshal(call.Function.Arguments, &args); err != nil {
			o.log.Debug().Str("tool", call.Function.Name).Msg("malformed tool arguments, treating as empty")
			args = map[string]interface{}{}
		}
	}

	name := call.Function.Name
	desc, ok := o.tools.Get(name)
	if !ok {
		run.record(name, args, nil, fmt.Sprintf("tool %q not found", name))
		return toolMessage(callID, map[string]interface{}{"error": fmt.Sprintf("tool %q not found", name)})
	}

	resp := o.executor.Execute(ctx, desc, args)
	if !resp.Success {
		run.record(name, args, nil, resp.ErrorMessage)
		return toolMessage(callID, map[string]interface{}{"error": resp.ErrorMessage})
	}

	run.record(name, args, resp.Result, "")
	return toolMessage(callID, resp.Result)
}

func (o *Orchestrator) complete(ctx context.Context, messages []llm.ChatMessage, toolDefs []llm.ToolDefinition, params InvokeParams) (*llm.ChatMessage, error) {
	req := llm.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
		Tools:    toolDefs,
		Stop:     params.Stop,
	}
	if params.Temperature > 0 {
		temp := params.Temperature
		req.Temperature = &temp
	}
	if params.MaxTokens > 0 {
		maxTokens := params.MaxTokens
		req.MaxTokens = &maxTokens
	}

	resp, err := o.provider.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("backend returned no choices")
	}
	return &resp.Choices[0].Message, nil
}

// advertisedTools resolves the agent's tool names against the registry.
// Names without a registered descriptor are skipped.
func (o *Orchestrator) advertisedTools(a Agent) []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(a.Tools))
	for _, name := range a.Tools {
		if desc, ok := o.tools.Get(name); ok {
			defs = append(defs, desc.ToLLMTool())
		}
	}
	return defs
}

func toolMessage(callID string, payload interface{}) llm.ChatMessage {
	content, err := json.Marshal(payload)
	if err != nil {
		content = []byte(`{"error":"unserializable tool result"}`)
	}
	return llm.ChatMessage{
		Role:       "tool",
		Content:    string(content),
		ToolCallID: &callID,
	}
}

// runRecorder accumulates the tools used and their results across one run.
// ToolsUsed stays an ordered set; failed calls are recorded, not hidden.
type runRecorder struct {
	toolsUsed   []string
	seen        map[string]struct{}
	toolResults []ToolCallRecord
}

func newRunRecorder() *runRecorder {
	return &runRecorder{
		toolsUsed:   []string{},
		seen:        make(map[string]struct{}),
		toolResults: []ToolCallRecord{},
	}
}

func (r *runRecorder) record(toolName string, args map[string]interface{}, result interface{}, errMsg string) {
	if _, ok := r.seen[toolName]; !ok {
		r.seen[toolName] = struct{}{}
		r.toolsUsed = append(r.toolsUsed, toolName)
	}
	r.toolResults = append(r.toolResults, ToolCallRecord{
		Tool:      toolName,
		Arguments: args,
		Result:    result,
		Error:     errMsg,
	})
}
