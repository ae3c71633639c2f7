package tool

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"agent-server/services/agent-api/internal/infrastructure/observability"
)

// Executor performs the side effect behind a tool descriptor. All failure
// modes are captured into the returned Response; Execute never panics and
// never returns an error.
type Executor struct {
	http           HTTPCaller
	sql            SQLRunner
	defaultDSN     string
	defaultTimeout time.Duration
	log            zerolog.Logger
}

// NewExecutor constructs a dynamic tool executor.
func NewExecutor(httpCaller HTTPCaller, sqlRunner SQLRunner, defaultDSN string, defaultTimeout time.Duration, log zerolog.Logger) *Executor {
	return &Executor{
		http:           httpCaller,
		sql:            sqlRunner,
		defaultDSN:     defaultDSN,
		defaultTimeout: defaultTimeout,
		log:            log.With().Str("component", "tool-executor").Logger(),
	}
}

// Execute runs the tool described by desc with the given parameters.
func (e *Executor) Execute(ctx context.Context, desc Descriptor, params map[string]interface{}) Response {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "tool.execute", trace.WithAttributes(
		attribute.String("tool.name", desc.Name),
		attribute.String("tool.kind", string(desc.Kind)),
	))
	defer span.End()

	if params == nil {
		params = map[string]interface{}{}
	}

	if msg := e.validateParameters(desc, params); msg != "" {
		span.SetStatus(codes.Error, msg)
		return errorResponse(msg, start)
	}

	if e.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.defaultTimeout)
		defer cancel()
	}

	var (
		result interface{}
		err    error
	)
	switch desc.Kind {
	case KindAPI:
		result, err = e.executeAPI(ctx, desc, params)
	case KindCalculation:
		result, err = executeCalculation(params)
	case KindFunction:
		result, err = executeFunction(desc, params)
	case KindDatabase:
		result, err = e.executeDatabase(ctx, desc, params)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, desc.Kind)
	}

	if err != nil {
		e.log.Debug().Str("tool", desc.Name).Str("kind", string(desc.Kind)).Err(err).Msg("tool execution failed")
		span.SetStatus(codes.Error, err.Error())
		return errorResponse(err.Error(), start)
	}

	return Response{
		Success:         true,
		Result:          result,
		ExecutionTimeMS: elapsedMS(start),
	}
}

// validateParameters checks the call arguments against the descriptor's JSON
// schema. An empty schema accepts anything.
func (e *Executor) validateParameters(desc Descriptor, params map[string]interface{}) string {
	if len(desc.ParameterSchema) == 0 {
		return ""
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(desc.ParameterSchema),
		gojsonschema.NewGoLoader(params),
	)
	if err != nil {
		// Malformed schemas fall back to a required-fields check so a bad
		// registration cannot block every call.
		return e.validateRequired(desc, params)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return "invalid parameters: " + strings.Join(msgs, "; ")
	}
	return ""
}

func (e *Executor) validateRequired(desc Descriptor, params map[string]interface{}) string {
	required, _ := desc.ParameterSchema["required"].([]interface{})
	for _, raw := range required {
		name, ok := raw.(string)
		if !ok {
			continue
		}
		if _, present := params[name]; !present {
			return fmt.Sprintf("invalid parameters: missing required field %q", name)
		}
	}
	return ""
}

func (e *Executor) executeAPI(ctx context.Context, desc Descriptor, params map[string]interface{}) (interface{}, error) {
	if e.http == nil {
		return nil, fmt.Errorf("api tools are not configured")
	}

	url := desc.Config.URL
	if override, ok := params["url"].(string); ok && override != "" {
		url = override
	}
	if url == "" {
		return nil, fmt.Errorf("url is required for api tools")
	}

	method := strings.ToUpper(desc.Config.Method)
	if override, ok := params["method"].(string); ok && override != "" {
		method = strings.ToUpper(override)
	}
	if method == "" {
		method = "GET"
	}

	headers := make(map[string]string, len(desc.Config.Headers))
	for k, v := range desc.Config.Headers {
		headers[k] = v
	}
	if callHeaders, ok := params["headers"].(map[string]interface{}); ok {
		for k, v := range callHeaders {
			headers[k] = fmt.Sprint(v)
		}
	}

	payload := params
	if data, ok := params["data"].(map[string]interface{}); ok {
		payload = data
	}

	result, err := e.http.Call(ctx, HTTPCallSpec{
		URL:            url,
		Method:         method,
		Headers:        headers,
		Parameters:     payload,
		TimeoutSeconds: desc.Config.TimeoutSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("api call failed: %w", err)
	}
	return result, nil
}

func (e *Executor) executeDatabase(ctx context.Context, desc Descriptor, params map[string]interface{}) (interface{}, error) {
	if e.sql == nil {
		return nil, fmt.Errorf("database tools are not configured")
	}

	statement, _ := params["query"].(string)
	if strings.TrimSpace(statement) == "" {
		return nil, fmt.Errorf("query is required for database tools")
	}

	dsn := desc.Config.DSN
	if override, ok := params["database_url"].(string); ok && override != "" {
		dsn = override
	}
	if dsn == "" {
		dsn = e.defaultDSN
	}
	if dsn == "" {
		return nil, fmt.Errorf("database url not provided")
	}

	result, err := e.sql.Run(ctx, dsn, statement)
	if err != nil {
		return nil, fmt.Errorf("database execution failed: %w", err)
	}

	if result.Selected {
		return map[string]interface{}{
			"data":      result.Rows,
			"row_count": len(result.Rows),
		}, nil
	}
	return map[string]interface{}{
		"affected_rows": result.AffectedRows,
	}, nil
}

func errorResponse(msg string, start time.Time) Response {
	return Response{
		Success:         false,
		ErrorMessage:    msg,
		ExecutionTimeMS: elapsedMS(start),
	}
}

func elapsedMS(start time.Time) float64 {
	ms := float64(time.Since(start)) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
