// Package analysis generates the daily AI analysis of collected titles.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the default chat-completion API endpoint.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultModel is the default analysis model.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout is the timeout for completion requests.
	DefaultTimeout = 2 * time.Minute

	// RequestsPerSecond is the client-side rate limit.
	RequestsPerSecond = 1

	// apiPathChatCompletions is the chat completions endpoint path.
	apiPathChatCompletions = "/v1/chat/completions"
)

// Client is a rate-limited chat-completion API client.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the analysis model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new chat-completion client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelName returns the name of the analysis model.
func (c *Client) ModelName() string {
	return c.model
}

// Complete sends one system+user prompt pair and returns the model's reply.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPathChatCompletions, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d: %s", resp.StatusCode, formatErrorBody(resp.Body))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("provider error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// formatErrorBody reads and formats the response body for error messages.
func formatErrorBody(body io.Reader) string {
	respBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return string(respBody)
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage is one message in a chat completion exchange.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response from the chat completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

// chatChoice is one candidate reply.
type chatChoice struct {
	Message chatMessage `json:"message"`
}

// chatError is an in-band provider error.
type chatError struct {
	Message string `json:"message"`
}
