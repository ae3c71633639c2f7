package llmprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"agent-server/services/agent-api/internal/domain/llm"
)

// Client implements the llm.Provider interface against an OpenAI-compatible
// chat completion endpoint.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed client. baseURL should include the API
// prefix (e.g. http://localhost:8000/v1). apiKey is sent as a bearer token
// unless the request context carries its own Authorization value.
func NewClient(baseURL, apiKey string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(75 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Client{httpClient: client}
}

// CreateChatCompletion calls POST /chat/completions.
func (c *Client) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	var completion llm.ChatCompletionResponse
	request := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion)

	if token := llm.AuthTokenFromContext(ctx); token != "" {
		request.SetHeader("Authorization", token)
	}

	resp, err := request.Post("/chat/completions")
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("llm backend error: %s", resp.String())
	}
	return &completion, nil
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)
