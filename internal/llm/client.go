// In file: internal/llm/client.go

// Package llm defines the provider-agnostic LLM boundary of the gateway:
// conversation messages, generation parameters, and the LLMClient interface
// that every provider client (OpenAI, Gemini) implements.
package llm

import (
	"context"

	"github.com/devops-ai/agent-gateway/internal/api"
	"github.com/devops-ai/agent-gateway/internal/tools"
)

// Role represents the originator of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in a conversation history: a user prompt, an
// assistant reply (possibly carrying tool-call directives), or a tool result
// tied back to its directive via ToolCallID.
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolCalls  []*tools.ToolCall `json:"tool_calls,omitempty"`
}

// GenerationConfig holds the parameters controlling a generation request.
type GenerationConfig struct {
	// Model is the provider model ID (e.g. "gpt-4o", "gemini-1.5-pro").
	Model string
	// Temperature controls randomness; a pointer distinguishes 0.0 from unset.
	Temperature *float32
	MaxTokens   int
	TopP        *float32
}

// GenerationResult is the complete output of one LLM round. The inbound
// response from a provider is either a final answer (Content, no ToolCalls)
// or a tool-call directive (one or more ToolCalls); the relay branches on
// which one it got.
type GenerationResult struct {
	Content   string
	ToolCalls []*tools.ToolCall
	Usage     api.Usage
}

// LLMClient is the universal interface all provider clients implement.
//
// Generate is a blocking network call: it submits the full conversation
// history together with the advertised tool schemas and returns one complete
// result. Cancellation of the passed context aborts the in-flight request,
// which is how a disconnecting client tears down its turn.
type LLMClient interface {
	Generate(
		ctx context.Context,
		messages []Message,
		config *GenerationConfig,
		availableTools []tools.Tool,
	) (*GenerationResult, error)
}
