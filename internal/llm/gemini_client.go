// In file: internal/llm/gemini_client.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/devops-ai/agent-gateway/internal/tools"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient talks to Google's Gemini models through the official SDK.
type GeminiClient struct {
	model *genai.GenerativeModel
}

var _ LLMClient = (*GeminiClient)(nil)

func NewGeminiClient(apiKey, modelID string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{model: client.GenerativeModel(modelID)}, nil
}

// Generate performs a blocking request to the Gemini API.
func (c *GeminiClient) Generate(
	ctx context.Context,
	messages []Message,
	config *GenerationConfig,
	availableTools []tools.Tool,
) (*GenerationResult, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages to send")
	}
	model := c.requestModel(config, availableTools)

	chat := model.StartChat()
	chat.History = toGeminiContentHistory(messages)

	lastMessage := messages[len(messages)-1]
	resp, err := chat.SendMessage(ctx, genai.Text(lastMessage.Content))
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return parseGeminiResponse(resp)
}

// requestModel returns a per-request copy of the shared model with the
// generation settings applied. Turns run concurrently, so the shared model is
// never mutated; each call configures its own copy.
func (c *GeminiClient) requestModel(config *GenerationConfig, availableTools []tools.Tool) *genai.GenerativeModel {
	model := *c.model

	if config != nil {
		if config.Temperature != nil {
			model.SetTemperature(*config.Temperature)
		}
		if config.TopP != nil {
			model.SetTopP(*config.TopP)
		}
		if config.MaxTokens > 0 {
			model.SetMaxOutputTokens(int32(config.MaxTokens))
		} else {
			model.SetMaxOutputTokens(4096)
		}
	} else {
		model.SetMaxOutputTokens(4096)
	}

	if len(availableTools) > 0 {
		model.Tools = toGeminiTools(availableTools)
	}
	return &model
}

// toGeminiTools converts the internal tool definitions to the SDK's format.
func toGeminiTools(toolsToConvert []tools.Tool) []*genai.Tool {
	var geminiTools []*genai.Tool
	for _, t := range toolsToConvert {
		funcDecl := &genai.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  convertSchema(t.Function.Parameters),
		}
		geminiTools = append(geminiTools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{funcDecl},
		})
	}
	return geminiTools
}

// convertSchema maps the internal JSONSchema onto the SDK's schema type.
func convertSchema(s tools.JSONSchema) *genai.Schema {
	geminiSchema := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
	}
	switch s.Type {
	case "object":
		geminiSchema.Type = genai.TypeObject
	case "string":
		geminiSchema.Type = genai.TypeString
	case "number":
		geminiSchema.Type = genai.TypeNumber
	case "integer":
		geminiSchema.Type = genai.TypeInteger
	case "boolean":
		geminiSchema.Type = genai.TypeBoolean
	}
	if s.Properties != nil {
		geminiSchema.Properties = make(map[string]*genai.Schema)
		for k, v := range s.Properties {
			geminiSchema.Properties[k] = convertSchema(*v)
		}
	}
	return geminiSchema
}

// toGeminiContentHistory converts the conversation into the SDK's two-role
// history. Gemini only knows "user" and "model", so tool results ride along
// as user-role text; the last message is the new prompt and is excluded.
func toGeminiContentHistory(messages []Message) []*genai.Content {
	var history []*genai.Content
	for _, msg := range messages[:len(messages)-1] {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return history
}

// parseGeminiResponse converts an SDK response into a GenerationResult.
func parseGeminiResponse(resp *genai.GenerateContentResponse) (*GenerationResult, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no content returned from Gemini")
	}

	candidate := resp.Candidates[0]
	var contentBuilder strings.Builder
	var toolCalls []*tools.ToolCall

	for _, part := range candidate.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			contentBuilder.WriteString(string(v))
		case genai.FunctionCall:
			argsJSON, err := json.Marshal(v.Args)
			if err != nil {
				log.Printf("WARNING: Could not marshal tool call args from Gemini: %v", err)
				continue
			}
			toolCalls = append(toolCalls, &tools.ToolCall{
				ID:   fmt.Sprintf("gemini-toolcall-%s", v.Name),
				Type: tools.ToolTypeFunction,
				Function: tools.ToolCallFunction{
					Name:      v.Name,
					Arguments: string(argsJSON),
				},
			})
		}
	}

	result := &GenerationResult{
		Content:   strings.TrimSpace(contentBuilder.String()),
		ToolCalls: toolCalls,
	}

	if resp.UsageMetadata != nil {
		result.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		result.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return result, nil
}
