// In file: internal/relay/relay_test.go
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/devops-ai/agent-gateway/internal/api"
	"github.com/devops-ai/agent-gateway/internal/llm"
	"github.com/devops-ai/agent-gateway/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient replays a fixed sequence of generation results and records
// the message history it was handed on each call.
type scriptedClient struct {
	responses []*llm.GenerationResult
	calls     [][]llm.Message
	toolDefs  [][]tools.Tool
}

var _ llm.LLMClient = (*scriptedClient)(nil)

func (s *scriptedClient) Generate(_ context.Context, messages []llm.Message, _ *llm.GenerationConfig, availableTools []tools.Tool) (*llm.GenerationResult, error) {
	snapshot := make([]llm.Message, len(messages))
	copy(snapshot, messages)
	s.calls = append(s.calls, snapshot)
	s.toolDefs = append(s.toolDefs, availableTools)

	if len(s.responses) == 0 {
		return nil, errors.New("scripted client exhausted")
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

// countingTool records every invocation it receives.
type countingTool struct {
	name  string
	calls []string
	reply string
}

func (c *countingTool) Definition() tools.Tool {
	return tools.NewFunctionTool(c.name, "test tool", tools.JSONSchema{Type: "object"})
}

func (c *countingTool) Execute(_ context.Context, arguments string) (string, error) {
	c.calls = append(c.calls, arguments)
	return c.reply, nil
}

func toolCallResponse(name, arguments string, seq int) *llm.GenerationResult {
	return &llm.GenerationResult{
		ToolCalls: []*tools.ToolCall{{
			ID:   fmt.Sprintf("call-%d", seq),
			Type: tools.ToolTypeFunction,
			Function: tools.ToolCallFunction{
				Name:      name,
				Arguments: arguments,
			},
		}},
		Usage: api.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func finalResponse(content string) *llm.GenerationResult {
	return &llm.GenerationResult{
		Content: content,
		Usage:   api.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}
}

func newTestRelay(client llm.LLMClient, tool *countingTool, maxRounds int) (*Relay, *MemorySessionStore) {
	registry := tools.NewRegistry()
	if tool != nil {
		if err := registry.Register(tool); err != nil {
			panic(err)
		}
	}
	store := NewMemorySessionStore()
	r := New(client, registry, tools.NewDispatcher(registry, nil), store, Config{
		Model:         "gpt-4o",
		MaxToolRounds: maxRounds,
	})
	return r, store
}

func TestHandleTurnDirectAnswer(t *testing.T) {
	client := &scriptedClient{responses: []*llm.GenerationResult{finalResponse("Hello!")}}
	r, store := newTestRelay(client, nil, 3)

	result, err := r.HandleTurn(context.Background(), "conv-1", "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", result.Content)
	assert.Equal(t, 0, result.ToolRounds)
	require.Len(t, client.calls, 1)

	// The exchange is persisted for the next turn.
	history, err := store.Load(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
}

func TestHandleTurnSequentialToolRounds(t *testing.T) {
	tool := &countingTool{name: "list_pipelines", reply: "2 pipelines"}
	client := &scriptedClient{responses: []*llm.GenerationResult{
		toolCallResponse("list_pipelines", `{"page":1}`, 1),
		toolCallResponse("list_pipelines", `{"page":2}`, 2),
		finalResponse("There are 4 pipelines in total."),
	}}
	r, _ := newTestRelay(client, tool, 5)

	result, err := r.HandleTurn(context.Background(), "conv-2", "How many pipelines?")
	require.NoError(t, err)
	assert.Equal(t, "There are 4 pipelines in total.", result.Content)
	assert.Equal(t, 2, result.ToolRounds)

	// Exactly N dispatch rounds for N tool calls, in order.
	require.Equal(t, []string{`{"page":1}`, `{"page":2}`}, tool.calls)
	require.Len(t, client.calls, 3)

	// Each re-invocation carries the dispatched result back to the model as
	// a tagged tool message, tied to the directive by ID.
	secondCall := client.calls[1]
	last := secondCall[len(secondCall)-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	var decoded tools.Result
	require.NoError(t, json.Unmarshal([]byte(last.Content), &decoded))
	assert.Equal(t, tools.StatusSuccess, decoded.Status)
	assert.Equal(t, "2 pipelines", decoded.Content)

	// Usage accumulates across all three rounds.
	assert.Equal(t, 60, result.Usage.TotalTokens)
}

func TestHandleTurnToolFailureIsFedBackNotFatal(t *testing.T) {
	client := &scriptedClient{responses: []*llm.GenerationResult{
		toolCallResponse("no_such_tool", `{}`, 1),
		finalResponse("I could not find that tool."),
	}}
	r, _ := newTestRelay(client, nil, 3)

	result, err := r.HandleTurn(context.Background(), "conv-3", "Do the thing")
	require.NoError(t, err, "a tool failure must not fail the turn")
	assert.Equal(t, "I could not find that tool.", result.Content)

	secondCall := client.calls[1]
	last := secondCall[len(secondCall)-1]
	var decoded tools.Result
	require.NoError(t, json.Unmarshal([]byte(last.Content), &decoded))
	assert.Equal(t, tools.StatusError, decoded.Status)
	assert.Contains(t, decoded.Content, "unknown tool")
}

func TestHandleTurnLimitExceeded(t *testing.T) {
	tool := &countingTool{name: "list_pipelines", reply: "ok"}
	// The model asks for a tool on every round and never answers.
	client := &scriptedClient{responses: []*llm.GenerationResult{
		toolCallResponse("list_pipelines", `{}`, 1),
		toolCallResponse("list_pipelines", `{}`, 2),
		toolCallResponse("list_pipelines", `{}`, 3),
		// A 4th response exists but must never be requested.
		finalResponse("unreachable"),
	}}
	r, store := newTestRelay(client, tool, 3)

	_, err := r.HandleTurn(context.Background(), "conv-4", "Loop forever")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTurnLimitExceeded)
	assert.Len(t, client.calls, 3, "the relay must not call the LLM past the round limit")
	assert.Len(t, tool.calls, 3)

	// The partial history survives for the next turn.
	history, err := store.Load(context.Background(), "conv-4")
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestHandleTurnAdvertisesRegisteredTools(t *testing.T) {
	tool := &countingTool{name: "run_pipeline", reply: "ok"}
	client := &scriptedClient{responses: []*llm.GenerationResult{finalResponse("done")}}
	r, _ := newTestRelay(client, tool, 3)

	_, err := r.HandleTurn(context.Background(), "conv-5", "hello")
	require.NoError(t, err)
	require.Len(t, client.toolDefs, 1)
	require.Len(t, client.toolDefs[0], 1)
	assert.Equal(t, "run_pipeline", client.toolDefs[0][0].Function.Name)
}

func TestHandleTurnLLMFailurePropagates(t *testing.T) {
	client := &scriptedClient{} // exhausted immediately
	r, _ := newTestRelay(client, nil, 3)

	_, err := r.HandleTurn(context.Background(), "conv-6", "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTurnLimitExceeded)
}

func TestHandleTurnCarriesHistoryAcrossTurns(t *testing.T) {
	client := &scriptedClient{responses: []*llm.GenerationResult{
		finalResponse("First answer."),
		finalResponse("Second answer."),
	}}
	r, _ := newTestRelay(client, nil, 3)

	_, err := r.HandleTurn(context.Background(), "conv-7", "first")
	require.NoError(t, err)
	_, err = r.HandleTurn(context.Background(), "conv-7", "second")
	require.NoError(t, err)

	require.Len(t, client.calls, 2)
	// The second turn sees the whole first exchange plus the new prompt.
	require.Len(t, client.calls[1], 3)
	assert.Equal(t, "first", client.calls[1][0].Content)
	assert.Equal(t, "First answer.", client.calls[1][1].Content)
	assert.Equal(t, "second", client.calls[1][2].Content)
}
