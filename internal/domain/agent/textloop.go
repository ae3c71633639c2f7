package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"agent-server/services/agent-api/internal/domain/llm"
	"agent-server/services/agent-api/internal/domain/tool"
)

// Text-marker protocol for backends without native function calling. The
// model is instructed to emit tool calls and final answers wrapped in literal
// tags, which are parsed back out of free-form text.
var (
	finalPattern    = regexp.MustCompile(`(?s)<final>(.*?)</final>`)
	toolCallPattern = regexp.MustCompile(`(?s)<tool_call>(\{.*?\})</tool_call>`)
)

type textToolCall struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// invokeText runs the same bounded loop as the native mode, but over a plain
// text transcript. Unparseable model output degrades to returning the raw
// text unchanged.
func (o *Orchestrator) invokeText(ctx context.Context, a Agent, params InvokeParams) *InvocationResult {
	budget := params.MaxToolCalls
	if budget <= 0 {
		budget = o.maxToolCalls
	}

	run := newRunRecorder()

	var advertised []tool.Descriptor
	if params.UseTools {
		for _, name := range a.Tools {
			if desc, ok := o.tools.Get(name); ok {
				advertised = append(advertised, desc)
			}
		}
	}

	prompt := o.buildTextPrompt(a, advertised, params.Prompt)

	for iteration := 0; iteration < budget; iteration++ {
		output, err := o.generateText(ctx, prompt, params)
		if err != nil {
			o.log.Warn().Err(err).Str("agent", a.Name).Msg("backend unavailable, using fallback")
			return o.fallback.Respond(a, params.Prompt, run)
		}

		if match := finalPattern.FindStringSubmatch(output); match != nil {
			return textResult(a, o.model, strings.TrimSpace(match[1]), run, StatusCompleted, iteration+1)
		}

		match := toolCallPattern.FindStringSubmatch(output)
		if match == nil {
			// No structured output at all: return the raw text.
			return textResult(a, o.model, strings.TrimSpace(output), run, StatusCompleted, iteration+1)
		}

		var call textToolCall
		if err := json.Unmarshal([]byte(match[1]), &call); err != nil {
			return textResult(a, o.model, strings.TrimSpace(output), run, StatusCompleted, iteration+1)
		}

		resultText := o.executeTextCall(ctx, call, run)
		prompt += fmt.Sprintf(
			"\nTool '%s' result:\n%s\nNow, based on the tool result, either call another tool or provide the final answer.\n",
			call.ToolName, resultText,
		)
	}

	// Budget exhausted: ask the model to finalize without further tools.
	output, err := o.generateText(ctx, prompt+"\nPlease provide the final answer wrapped in <final> ... </final>.", params)
	if err != nil {
		return o.fallback.Respond(a, params.Prompt, run)
	}
	text := strings.TrimSpace(output)
	if match := finalPattern.FindStringSubmatch(output); match != nil {
		text = strings.TrimSpace(match[1])
	}
	return textResult(a, o.model, text, run, StatusMaxIterationsReached, budget+1)
}

func (o *Orchestrator) executeTextCall(ctx context.Context, call textToolCall, run *runRecorder) string {
	args := call.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}

	desc, ok := o.tools.Get(call.ToolName)
	if !ok {
		errMsg := fmt.Sprintf("tool %q not found", call.ToolName)
		run.record(call.ToolName, args, nil, errMsg)
		return errMsg
	}

	resp := o.executor.Execute(ctx, desc, args)
	if !resp.Success {
		run.record(call.ToolName, args, nil, resp.ErrorMessage)
		return "error: " + resp.ErrorMessage
	}

	run.record(call.ToolName, args, resp.Result, "")
	serialized, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Sprint(resp.Result)
	}
	return string(serialized)
}

func (o *Orchestrator) generateText(ctx context.Context, prompt string, params InvokeParams) (string, error) {
	msg, err := o.complete(ctx, []llm.ChatMessage{{Role: "user", Content: prompt}}, nil, params)
	if err != nil {
		return "", err
	}
	return msg.Text(), nil
}

func (o *Orchestrator) buildTextPrompt(a Agent, tools []tool.Descriptor, userPrompt string) string {
	var sb strings.Builder
	sb.WriteString("System:\n")
	sb.WriteString(a.RolePrompt)
	sb.WriteString("\nYou are a helpful assistant that can use tools. ")
	sb.WriteString("Decide whether a tool is needed. If so, emit a tool call. ")
	sb.WriteString("Otherwise, output the final answer.\n")

	if len(tools) > 0 {
		sb.WriteString("\nYou have access to the following tools. To call a tool, output exactly a JSON object wrapped in <tool_call> tags.\n")
		sb.WriteString(`Use this format: <tool_call>{"tool_name": "name", "arguments": { ... }}</tool_call>` + "\n")
		sb.WriteString("If you are ready to provide the final answer, wrap it in <final> ... </final>.\n")
		sb.WriteString("Tools:\n")
		for _, desc := range tools {
			sb.WriteString("- name: " + desc.Name + "\n")
			sb.WriteString("  description: " + desc.Description + "\n")
			if schema, err := json.Marshal(desc.ParameterSchema); err == nil {
				sb.WriteString("  json_input_schema: " + string(schema) + "\n")
			}
		}
	}

	sb.WriteString("\nUser:\n")
	sb.WriteString(userPrompt)
	sb.WriteString("\n")
	return sb.String()
}

func textResult(a Agent, model, text string, run *runRecorder, st InvocationStatus, iterations int) *InvocationResult {
	return &InvocationResult{
		Text:        text,
		ToolsUsed:   run.toolsUsed,
		ToolResults: run.toolResults,
		Metadata: Metadata{
			AgentName:  a.Name,
			Model:      model,
			Mode:       ModeText,
			Status:     st,
			Iterations: iterations,
		},
	}
}
