// In file: internal/relay/relay.go

// Package relay implements the gateway's turn loop: it carries one user
// prompt through LLM rounds and tool dispatches until the model produces a
// final answer or the per-turn round bound is hit.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/devops-ai/agent-gateway/internal/api"
	"github.com/devops-ai/agent-gateway/internal/llm"
	"github.com/devops-ai/agent-gateway/internal/tools"
)

// DefaultMaxToolRounds bounds the tool-call back-and-forth within one turn.
// Some bound must exist to prevent a model that keeps requesting tools from
// looping forever.
const DefaultMaxToolRounds = 5

// ErrTurnLimitExceeded is returned when a turn uses up its tool rounds
// without the model producing a final answer. Unlike tool failures, which
// are fed back into the model's context, this is terminal for the turn and
// is surfaced to the client.
var ErrTurnLimitExceeded = errors.New("turn exceeded the maximum number of tool-call rounds")

// Config holds the relay's tunables.
type Config struct {
	// Model is the provider model ID used for every round of a turn.
	Model string
	// MaxToolRounds caps the tool-call rounds per turn; zero or negative
	// selects DefaultMaxToolRounds.
	MaxToolRounds int
	// MaxTokens and Temperature are passed through to the LLM client.
	MaxTokens   int
	Temperature *float32
}

// TurnResult is the outcome of one completed turn.
type TurnResult struct {
	// Content is the model's final text answer.
	Content string
	// Usage accumulates token counts across every LLM round the turn took.
	Usage api.Usage
	// ToolRounds is how many tool-call rounds the turn used.
	ToolRounds int
}

// Relay owns the per-turn orchestration between the LLM client, the tool
// dispatcher, and the session store. It is safe for concurrent use: each
// turn only touches its own conversation's history.
type Relay struct {
	client     llm.LLMClient
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	store      SessionStore
	config     Config
}

func New(client llm.LLMClient, registry *tools.Registry, dispatcher *tools.Dispatcher, store SessionStore, config Config) *Relay {
	if config.MaxToolRounds <= 0 {
		config.MaxToolRounds = DefaultMaxToolRounds
	}
	return &Relay{
		client:     client,
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		config:     config,
	}
}

// HandleTurn carries one user prompt to one final answer.
//
// The loop is strictly sequential within the turn: every dispatch completes
// before the model is re-invoked with the updated history. Tool failures are
// not terminal; they are appended to the history as tagged results so the
// model can react. Only exhausting MaxToolRounds ends the turn with
// ErrTurnLimitExceeded.
func (r *Relay) HandleTurn(ctx context.Context, conversationID, userInput string) (*TurnResult, error) {
	messages, err := r.store.Load(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", conversationID, err)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userInput})

	genConfig := &llm.GenerationConfig{
		Model:       r.config.Model,
		MaxTokens:   r.config.MaxTokens,
		Temperature: r.config.Temperature,
	}

	result := &TurnResult{}
	for round := 0; round < r.config.MaxToolRounds; round++ {
		generation, err := r.client.Generate(ctx, messages, genConfig, r.registry.Definitions())
		if err != nil {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}
		result.Usage.Add(generation.Usage)

		if len(generation.ToolCalls) == 0 {
			// Final answer: persist the completed exchange and return.
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: generation.Content})
			if err := r.store.Save(ctx, conversationID, messages); err != nil {
				log.Printf("WARNING: Failed to save conversation %s: %v", conversationID, err)
			}
			result.Content = generation.Content
			return result, nil
		}

		result.ToolRounds++
		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   generation.Content,
			ToolCalls: generation.ToolCalls,
		})
		for _, call := range generation.ToolCalls {
			log.Printf("🛠️ Dispatching tool: %s (ID: %s) with args: %s", call.Function.Name, call.ID, call.Function.Arguments)
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				Content:    encodeResult(r.dispatcher.Dispatch(ctx, *call)),
			})
		}
	}

	// Every allowed round ended in another tool request. Persist what
	// happened so the next turn has the context, then fail this turn
	// without invoking the LLM again.
	if err := r.store.Save(ctx, conversationID, messages); err != nil {
		log.Printf("WARNING: Failed to save conversation %s: %v", conversationID, err)
	}
	return nil, fmt.Errorf("%w (limit %d)", ErrTurnLimitExceeded, r.config.MaxToolRounds)
}

// encodeResult renders a dispatch result as the JSON the model reads back.
// Encoding a two-field struct cannot fail, but fall back to the raw content
// rather than feeding the model nothing.
func encodeResult(result tools.Result) string {
	encoded, err := json.Marshal(result)
	if err != nil {
		return result.Content
	}
	return string(encoded)
}
