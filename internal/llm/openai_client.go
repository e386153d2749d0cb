// In file: internal/llm/openai_client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devops-ai/agent-gateway/internal/api"
	"github.com/devops-ai/agent-gateway/internal/tools"
)

const openAIAPIURL = "https://api.openai.com/v1/chat/completions"

// openAIRequest is the top-level structure of a chat-completions call.
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Tools       []openAITool    `json:"tools,omitempty"`
	ToolChoice  string          `json:"tool_choice,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float32        `json:"temperature,omitempty"`
	TopP        *float32        `json:"top_p,omitempty"`
}

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []tools.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function tools.Function `json:"function"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage api.Usage `json:"usage"`
}

// OpenAIClient talks to the OpenAI chat-completions API over raw HTTP.
// It implements the LLMClient interface with retries and backoff for
// transient failures.
type OpenAIClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

var _ LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a configured client for the OpenAI API.
// The model is chosen per-request via GenerationConfig.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key cannot be empty")
	}
	return &OpenAIClient{
		apiKey: apiKey,
		apiURL: openAIAPIURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// Generate performs a blocking request to the OpenAI API.
func (c *OpenAIClient) Generate(
	ctx context.Context,
	messages []Message,
	config *GenerationConfig,
	availableTools []tools.Tool,
) (*GenerationResult, error) {
	payload, err := c.buildRequestPayload(messages, config, availableTools)
	if err != nil {
		return nil, fmt.Errorf("failed to build openai request payload: %w", err)
	}

	respBody, err := c.doRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	return parseOpenAIResponse(respBody)
}

// buildRequestPayload constructs the JSON body for the API call.
func (c *OpenAIClient) buildRequestPayload(messages []Message, config *GenerationConfig, availableTools []tools.Tool) ([]byte, error) {
	req := openAIRequest{
		Model:    config.Model,
		Messages: toOpenAIMessages(messages),
		Tools:    toOpenAITools(availableTools),
	}

	if config.MaxTokens > 0 {
		req.MaxTokens = config.MaxTokens
	}
	if config.Temperature != nil {
		req.Temperature = config.Temperature
	}
	if config.TopP != nil {
		req.TopP = config.TopP
	}
	// The model decides whether to call a tool or answer directly.
	if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}

	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}
	return payloadBytes, nil
}

// doRequest performs the HTTP call with retries and exponential backoff.
// Client errors (4xx) are not retried.
func (c *OpenAIClient) doRequest(ctx context.Context, payload []byte) ([]byte, error) {
	var lastErr error
	delay := initialRetryDelay

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", i+1, maxRetries, err)
			if err := sleepBackoff(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		lastErr = fmt.Errorf("openai API error (attempt %d/%d): status %d, body: %s", i+1, maxRetries, resp.StatusCode, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, lastErr
		}

		if err := sleepBackoff(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
	return nil, lastErr
}

// sleepBackoff waits out a retry delay but returns early if the caller is
// gone, so a disconnected client does not hold the handler for the backoff.
func sleepBackoff(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// toOpenAIMessages converts the internal message slice to the API format.
func toOpenAIMessages(messages []Message) []openAIMessage {
	openAIMsgs := make([]openAIMessage, 0, len(messages))
	for _, msg := range messages {
		m := openAIMessage{Role: string(msg.Role)}

		switch msg.Role {
		case RoleTool:
			m.ToolCallID = msg.ToolCallID
			m.Content = msg.Content
		case RoleAssistant:
			m.Content = msg.Content
			if len(msg.ToolCalls) > 0 {
				m.ToolCalls = make([]tools.ToolCall, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					m.ToolCalls[i] = *tc
				}
			}
		default: // RoleUser and RoleSystem
			m.Content = msg.Content
		}
		openAIMsgs = append(openAIMsgs, m)
	}
	return openAIMsgs
}

func toOpenAITools(availableTools []tools.Tool) []openAITool {
	if len(availableTools) == 0 {
		return nil
	}
	converted := make([]openAITool, 0, len(availableTools))
	for _, tool := range availableTools {
		converted = append(converted, openAITool{
			Type:     tools.ToolTypeFunction,
			Function: tool.Function,
		})
	}
	return converted
}

// parseOpenAIResponse converts a full API response into a GenerationResult.
func parseOpenAIResponse(body []byte) (*GenerationResult, error) {
	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal openai response: %w", err)
	}
	if len(openAIResp.Choices) == 0 {
		return nil, errors.New("no choices returned from OpenAI")
	}

	choice := openAIResp.Choices[0]
	result := &GenerationResult{
		Content: choice.Message.Content,
		Usage:   openAIResp.Usage,
	}

	if len(choice.Message.ToolCalls) > 0 {
		result.ToolCalls = make([]*tools.ToolCall, 0, len(choice.Message.ToolCalls))
		for _, tc := range choice.Message.ToolCalls {
			result.ToolCalls = append(result.ToolCalls, &tools.ToolCall{
				ID:   tc.ID,
				Type: tools.ToolTypeFunction,
				Function: tools.ToolCallFunction{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
	}

	return result, nil
}
