// In file: internal/tools/dispatcher_test.go
package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringParam(description string) map[string]*JSONSchema {
	return map[string]*JSONSchema{
		"project_id": {Type: "string", Description: description},
	}
}

func newCall(name, arguments string) ToolCall {
	return ToolCall{
		ID:   "call-1",
		Type: ToolTypeFunction,
		Function: ToolCallFunction{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	dispatcher := NewDispatcher(NewRegistry(), nil)

	result := dispatcher.Dispatch(context.Background(), newCall("missing", "{}"))
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Content, "unknown tool")
	assert.Contains(t, result.Content, "missing")
}

func TestDispatchMissingRequiredField(t *testing.T) {
	registry := NewRegistry()
	invoked := false
	require.NoError(t, registry.Register(newFakeTool("list", []string{"project_id"}, stringParam("project"), func(context.Context, string) (string, error) {
		invoked = true
		return "", nil
	})))
	dispatcher := NewDispatcher(registry, nil)

	result := dispatcher.Dispatch(context.Background(), newCall("list", `{}`))
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Content, "project_id")
	assert.Contains(t, result.Content, "missing")
	assert.False(t, invoked, "handler must not run on invalid arguments")
}

func TestDispatchWrongArgumentType(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newFakeTool("list", []string{"project_id"}, stringParam("project"), nil)))
	dispatcher := NewDispatcher(registry, nil)

	result := dispatcher.Dispatch(context.Background(), newCall("list", `{"project_id": 42}`))
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Content, "project_id")
	assert.Contains(t, result.Content, "expected string")
}

func TestDispatchMalformedArgumentsJSON(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newFakeTool("list", nil, nil, nil)))
	dispatcher := NewDispatcher(registry, nil)

	result := dispatcher.Dispatch(context.Background(), newCall("list", `{not json`))
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Content, "not a JSON object")
}

func TestDispatchValidArgumentsReachHandlerUnchanged(t *testing.T) {
	registry := NewRegistry()
	var seen string
	require.NoError(t, registry.Register(newFakeTool("list", []string{"project_id"}, stringParam("project"), func(_ context.Context, arguments string) (string, error) {
		seen = arguments
		return "3 pipelines", nil
	})))
	dispatcher := NewDispatcher(registry, nil)

	args := `{"project_id": "p-123", "extra": true}`
	result := dispatcher.Dispatch(context.Background(), newCall("list", args))
	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "3 pipelines", result.Content)
	assert.Equal(t, args, seen, "handler must receive the raw payload unchanged")
}

func TestDispatchEmptyArgumentsForParameterlessTool(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newFakeTool("ping", nil, nil, nil)))
	dispatcher := NewDispatcher(registry, nil)

	result := dispatcher.Dispatch(context.Background(), newCall("ping", ""))
	assert.Equal(t, StatusSuccess, result.Status)
}

func TestDispatchHandlerErrorBecomesFailure(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newFakeTool("create", nil, nil, func(context.Context, string) (string, error) {
		return "", errors.New("CodeArts API returned status 503: upstream unavailable")
	})))
	dispatcher := NewDispatcher(registry, nil)

	result := dispatcher.Dispatch(context.Background(), newCall("create", "{}"))
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Content, "create")
	assert.Contains(t, result.Content, "upstream unavailable", "the underlying reason must be preserved")
}

func TestDispatchHandlerPanicBecomesFailure(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newFakeTool("boom", nil, nil, func(context.Context, string) (string, error) {
		panic("nil map write")
	})))
	dispatcher := NewDispatcher(registry, nil)

	var result Result
	require.NotPanics(t, func() {
		result = dispatcher.Dispatch(context.Background(), newCall("boom", "{}"))
	})
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Content, "panic")
	assert.Contains(t, result.Content, "nil map write")
}

func TestValidateArgumentTypes(t *testing.T) {
	schema := JSONSchema{
		Type: "object",
		Properties: map[string]*JSONSchema{
			"name":    {Type: "string"},
			"count":   {Type: "integer"},
			"ratio":   {Type: "number"},
			"dry_run": {Type: "boolean"},
			"labels":  {Type: "array"},
			"options": {Type: "object"},
		},
	}

	require.NoError(t, validateArguments(schema, `{"name":"x","count":3,"ratio":0.5,"dry_run":true,"labels":[],"options":{}}`))

	var verr *ValidationError
	err := validateArguments(schema, `{"count": 3.5}`)
	require.Error(t, err)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "count", verr.Field)

	err = validateArguments(schema, `{"name": null}`)
	require.Error(t, err)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}
