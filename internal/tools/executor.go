// In file: internal/tools/executor.go
package tools

import "context"

// ToolExecutor is the contract every tool in the gateway implements.
//
// Having all tools behind this interface lets the registry and dispatcher
// manage them uniformly without knowing anything about what a tool does or
// which external service it talks to.
type ToolExecutor interface {
	// Definition returns the tool's schema, which is advertised to the LLM
	// so it understands the tool's purpose, name, and arguments.
	Definition() Tool

	// Execute runs the tool with the arguments the LLM produced, as a JSON
	// string already validated against the tool's schema. The context is the
	// per-turn context: a disconnecting client cancels in-flight executions.
	// The returned string is fed back into the model's conversation.
	Execute(ctx context.Context, arguments string) (string, error)
}
