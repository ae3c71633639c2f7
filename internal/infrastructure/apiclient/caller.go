package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"agent-server/services/agent-api/internal/domain/tool"
)

const defaultTimeout = 30 * time.Second

// Caller performs HTTP side effects for api-kind tools. It implements the
// tool.HTTPCaller interface.
type Caller struct {
	httpClient *resty.Client
}

// NewCaller builds a shared Resty client for tool HTTP calls.
func NewCaller() *Caller {
	return &Caller{
		httpClient: resty.New().SetHeader("Accept", "application/json"),
	}
}

// Call executes one HTTP request. GET requests carry parameters
// as query values, every other method sends them as a JSON body. Non-2xx
// statuses are errors; response bodies parse as JSON with a raw-text
// fallback.
func (c *Caller) Call(ctx context.Context, spec tool.HTTPCallSpec) (*tool.HTTPResult, error) {
	timeout := defaultTimeout
	if spec.TimeoutSeconds > 0 {
		timeout = time.Duration(spec.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request := c.httpClient.R().SetContext(ctx)
	for key, value := range spec.Headers {
		request.SetHeader(key, value)
	}

	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	if method == http.MethodGet {
		for key, value := range spec.Parameters {
			request.SetQueryParam(key, fmt.Sprint(value))
		}
	} else if spec.Parameters != nil {
		request.SetHeader("Content-Type", "application/json")
		request.SetBody(spec.Parameters)
	}

	resp, err := request.Execute(method, spec.URL)
	if err != nil {
		return nil, fmt.Errorf("http call to %s: %w", spec.URL, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("http call to %s: status %d: %s", spec.URL, resp.StatusCode(), resp.String())
	}

	var data interface{}
	body := resp.Body()
	if err := json.Unmarshal(body, &data); err != nil {
		data = string(body)
	}

	headers := make(map[string]string, len(resp.Header()))
	for key := range resp.Header() {
		headers[key] = resp.Header().Get(key)
	}

	return &tool.HTTPResult{
		StatusCode: resp.StatusCode(),
		Data:       data,
		Headers:    headers,
	}, nil
}

// Ensure interface compliance.
var _ tool.HTTPCaller = (*Caller)(nil)
