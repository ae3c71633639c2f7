package tool_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"agent-server/services/agent-api/internal/domain/tool"
)

// fakeHTTPCaller records the last call and returns a canned result.
type fakeHTTPCaller struct {
	lastSpec tool.HTTPCallSpec
	result   *tool.HTTPResult
	err      error
}

func (f *fakeHTTPCaller) Call(_ context.Context, spec tool.HTTPCallSpec) (*tool.HTTPResult, error) {
	f.lastSpec = spec
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeSQLRunner records the last statement and returns a canned result.
type fakeSQLRunner struct {
	lastDSN       string
	lastStatement string
	result        *tool.SQLResult
	err           error
}

func (f *fakeSQLRunner) Run(_ context.Context, dsn, statement string) (*tool.SQLResult, error) {
	f.lastDSN = dsn
	f.lastStatement = statement
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newExecutor(httpCaller tool.HTTPCaller, sqlRunner tool.SQLRunner) *tool.Executor {
	return tool.NewExecutor(httpCaller, sqlRunner, "", 30*time.Second, zerolog.Nop())
}

func TestExecutor_Calculation(t *testing.T) {
	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{Name: "calculator", Kind: tool.KindCalculation}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{
		"expression": "2 + 3 * 4",
	})
	if !resp.Success {
		t.Fatalf("Execute() failed: %s", resp.ErrorMessage)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result type = %T, want map", resp.Result)
	}
	if got := fmt.Sprint(result["result"]); got != "14" {
		t.Errorf("result = %v, want 14", result["result"])
	}
}

func TestExecutor_CalculationVariables(t *testing.T) {
	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{Name: "calculator", Kind: tool.KindCalculation}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{
		"expression": "sqrt(x * x)",
		"variables":  map[string]interface{}{"x": 9.0},
	})
	if !resp.Success {
		t.Fatalf("Execute() failed: %s", resp.ErrorMessage)
	}
	result := resp.Result.(map[string]interface{})
	if got := fmt.Sprint(result["result"]); got != "9" {
		t.Errorf("result = %v, want 9", result["result"])
	}
}

func TestExecutor_CalculationScreening(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{"forbidden keyword eval", "eval(1)"},
		{"forbidden keyword import", "import_data + 1"},
		{"forbidden dunder", "__x + 1"},
		{"forbidden character semicolon", "1 + 1; 2"},
		{"forbidden character quote", "'os'"},
		{"empty expression", "   "},
	}

	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{Name: "calculator", Kind: tool.KindCalculation}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := executor.Execute(context.Background(), desc, map[string]interface{}{
				"expression": tt.expression,
			})
			if resp.Success {
				t.Errorf("Execute(%q) succeeded, want validation failure", tt.expression)
			}
		})
	}
}

func TestExecutor_API(t *testing.T) {
	caller := &fakeHTTPCaller{
		result: &tool.HTTPResult{
			StatusCode: 200,
			Data:       map[string]interface{}{"ok": true},
		},
	}
	executor := newExecutor(caller, nil)

	desc := tool.Descriptor{
		Name: "weather",
		Kind: tool.KindAPI,
		Config: tool.Config{
			URL:     "https://api.example.com/weather",
			Method:  "get",
			Headers: map[string]string{"X-Api-Key": "secret"},
		},
	}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{"city": "Hanoi"})
	if !resp.Success {
		t.Fatalf("Execute() failed: %s", resp.ErrorMessage)
	}

	if caller.lastSpec.URL != desc.Config.URL {
		t.Errorf("spec.URL = %q, want %q", caller.lastSpec.URL, desc.Config.URL)
	}
	if caller.lastSpec.Method != "GET" {
		t.Errorf("spec.Method = %q, want GET", caller.lastSpec.Method)
	}
	if caller.lastSpec.Headers["X-Api-Key"] != "secret" {
		t.Error("config headers not forwarded")
	}
	if caller.lastSpec.Parameters["city"] != "Hanoi" {
		t.Error("call parameters not forwarded")
	}
}

func TestExecutor_APIFailure(t *testing.T) {
	caller := &fakeHTTPCaller{err: fmt.Errorf("connection refused")}
	executor := newExecutor(caller, nil)

	desc := tool.Descriptor{
		Name:   "weather",
		Kind:   tool.KindAPI,
		Config: tool.Config{URL: "https://api.example.com/weather"},
	}

	resp := executor.Execute(context.Background(), desc, nil)
	if resp.Success {
		t.Fatal("Execute() succeeded, want failure")
	}
	if !strings.Contains(resp.ErrorMessage, "connection refused") {
		t.Errorf("ErrorMessage = %q, want network error", resp.ErrorMessage)
	}
}

func TestExecutor_Function(t *testing.T) {
	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{
		Name:   "doubler",
		Kind:   tool.KindFunction,
		Config: tool.Config{Source: "value * 2"},
	}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{
		"function_params": map[string]interface{}{"value": 21},
	})
	if !resp.Success {
		t.Fatalf("Execute() failed: %s", resp.ErrorMessage)
	}
	result := resp.Result.(map[string]interface{})
	if got := fmt.Sprint(result["result"]); got != "42" {
		t.Errorf("result = %v, want 42", result["result"])
	}
}

func TestExecutor_FunctionScreening(t *testing.T) {
	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{
		Name:   "sneaky",
		Kind:   tool.KindFunction,
		Config: tool.Config{Source: `exec("rm -rf /")`},
	}

	resp := executor.Execute(context.Background(), desc, nil)
	if resp.Success {
		t.Fatal("Execute() succeeded, want screening failure")
	}
	if !strings.Contains(resp.ErrorMessage, "forbidden keyword") {
		t.Errorf("ErrorMessage = %q, want forbidden keyword error", resp.ErrorMessage)
	}
}

func TestExecutor_DatabaseSelect(t *testing.T) {
	runner := &fakeSQLRunner{
		result: &tool.SQLResult{
			Rows:     []map[string]interface{}{{"id": 1}, {"id": 2}},
			Selected: true,
		},
	}
	executor := newExecutor(nil, runner)
	desc := tool.Descriptor{
		Name:   "orders",
		Kind:   tool.KindDatabase,
		Config: tool.Config{DSN: "postgres://localhost/orders"},
	}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{
		"query": "SELECT id FROM orders",
	})
	if !resp.Success {
		t.Fatalf("Execute() failed: %s", resp.ErrorMessage)
	}
	result := resp.Result.(map[string]interface{})
	if got := result["row_count"]; got != 2 {
		t.Errorf("row_count = %v, want 2", got)
	}
	if runner.lastDSN != desc.Config.DSN {
		t.Errorf("dsn = %q, want %q", runner.lastDSN, desc.Config.DSN)
	}
}

func TestExecutor_DatabaseExec(t *testing.T) {
	runner := &fakeSQLRunner{result: &tool.SQLResult{AffectedRows: 3}}
	executor := newExecutor(nil, runner)
	desc := tool.Descriptor{
		Name:   "orders",
		Kind:   tool.KindDatabase,
		Config: tool.Config{DSN: "postgres://localhost/orders"},
	}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{
		"query": "DELETE FROM orders WHERE stale",
	})
	if !resp.Success {
		t.Fatalf("Execute() failed: %s", resp.ErrorMessage)
	}
	result := resp.Result.(map[string]interface{})
	if got := fmt.Sprint(result["affected_rows"]); got != "3" {
		t.Errorf("affected_rows = %v, want 3", result["affected_rows"])
	}
}

func TestExecutor_DatabaseMissingQuery(t *testing.T) {
	executor := newExecutor(nil, &fakeSQLRunner{})
	desc := tool.Descriptor{Name: "orders", Kind: tool.KindDatabase}

	resp := executor.Execute(context.Background(), desc, nil)
	if resp.Success {
		t.Fatal("Execute() succeeded, want failure for missing query")
	}
}

func TestExecutor_SchemaValidation(t *testing.T) {
	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{
		Name: "calculator",
		Kind: tool.KindCalculation,
		ParameterSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"expression": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"expression"},
		},
	}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{"other": 1})
	if resp.Success {
		t.Fatal("Execute() succeeded, want schema validation failure")
	}
	if !strings.Contains(resp.ErrorMessage, "invalid parameters") {
		t.Errorf("ErrorMessage = %q, want invalid parameters", resp.ErrorMessage)
	}
}

func TestExecutor_NeverErrorsOnUnknownKind(t *testing.T) {
	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{Name: "mystery", Kind: tool.Kind("quantum")}

	resp := executor.Execute(context.Background(), desc, nil)
	if resp.Success {
		t.Fatal("Execute() succeeded for unknown kind")
	}
	if resp.ExecutionTimeMS < 0 {
		t.Error("ExecutionTimeMS is negative")
	}
}

func TestExecutor_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	defer otel.SetTracerProvider(previous)

	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{Name: "calculator", Kind: tool.KindCalculation}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{"expression": "1 + 1"})
	if !resp.Success {
		t.Fatalf("Execute() failed: %s", resp.ErrorMessage)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "tool.execute" {
		t.Errorf("span name = %q, want tool.execute", span.Name())
	}

	attrs := make(map[string]string, len(span.Attributes()))
	for _, attr := range span.Attributes() {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}
	if attrs["tool.name"] != "calculator" {
		t.Errorf("tool.name attribute = %q, want calculator", attrs["tool.name"])
	}
	if attrs["tool.kind"] != "calculation" {
		t.Errorf("tool.kind attribute = %q, want calculation", attrs["tool.kind"])
	}
}

func TestExecutor_SpanStatusOnFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	defer otel.SetTracerProvider(previous)

	executor := newExecutor(nil, nil)
	desc := tool.Descriptor{Name: "calculator", Kind: tool.KindCalculation}

	resp := executor.Execute(context.Background(), desc, map[string]interface{}{"expression": "eval(1)"})
	if resp.Success {
		t.Fatal("Execute() succeeded, want screening failure")
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want error", spans[0].Status().Code)
	}
}
