// In file: internal/llm/gemini_client_test.go
package llm

import (
	"sync"
	"testing"

	"github.com/devops-ai/agent-gateway/internal/tools"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient("", "gemini-1.5-pro")
	require.Error(t, err)
}

func TestRequestModelDoesNotMutateSharedModel(t *testing.T) {
	client, err := NewGeminiClient("test-key", "gemini-1.5-pro")
	require.NoError(t, err)

	available := []tools.Tool{
		tools.NewFunctionTool("list_codearts_pipelines", "lists pipelines", tools.JSONSchema{Type: "object"}),
	}

	// Turns run concurrently, so per-request configuration must never write
	// to the shared model.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			temp := float32(i) / 10
			model := client.requestModel(&GenerationConfig{Temperature: &temp, MaxTokens: 100 + i}, available)
			require.NotNil(t, model.Temperature)
			assert.Equal(t, temp, *model.Temperature)
			require.NotNil(t, model.MaxOutputTokens)
			assert.Equal(t, int32(100+i), *model.MaxOutputTokens)
			require.Len(t, model.Tools, 1)
		}(i)
	}
	wg.Wait()

	assert.Nil(t, client.model.Temperature, "shared model config must stay untouched")
	assert.Nil(t, client.model.MaxOutputTokens, "shared model config must stay untouched")
	assert.Nil(t, client.model.Tools, "shared model tools must stay untouched")
}

func TestRequestModelDefaults(t *testing.T) {
	client, err := NewGeminiClient("test-key", "gemini-1.5-pro")
	require.NoError(t, err)

	model := client.requestModel(nil, nil)
	require.NotNil(t, model.MaxOutputTokens)
	assert.Equal(t, int32(4096), *model.MaxOutputTokens)
	assert.Nil(t, model.Tools)
}

func TestConvertSchemaTypesAndProperties(t *testing.T) {
	schema := tools.JSONSchema{
		Type:     "object",
		Required: []string{"project_id"},
		Properties: map[string]*tools.JSONSchema{
			"project_id": {Type: "string", Description: "target project"},
			"page":       {Type: "integer"},
			"dry_run":    {Type: "boolean"},
		},
	}

	converted := convertSchema(schema)
	assert.Equal(t, genai.TypeObject, converted.Type)
	assert.Equal(t, []string{"project_id"}, converted.Required)
	require.Len(t, converted.Properties, 3)
	assert.Equal(t, genai.TypeString, converted.Properties["project_id"].Type)
	assert.Equal(t, genai.TypeInteger, converted.Properties["page"].Type)
	assert.Equal(t, genai.TypeBoolean, converted.Properties["dry_run"].Type)
}

func TestToGeminiContentHistoryRoles(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "list pipelines"},
		{Role: RoleAssistant, Content: "checking"},
		{Role: RoleTool, ToolCallID: "call-1", Content: `{"status":"success","content":"[]"}`},
		{Role: RoleUser, Content: "and now?"},
	}

	history := toGeminiContentHistory(messages)
	// The last message is the new prompt and is excluded from history.
	require.Len(t, history, 3)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	// Gemini only knows two roles, so tool results ride along as user text.
	assert.Equal(t, "user", history[2].Role)
}
