// In file: internal/tools/registry.go
package tools

import (
	"fmt"
	"sync"
)

// Registry holds the set of callable tools, keyed by function name.
//
// The registry is populated once at startup and is read-mostly afterwards:
// every concurrently handled turn reads it to advertise tool schemas and to
// resolve dispatches, so access is guarded by an RWMutex.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ToolExecutor
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ToolExecutor),
	}
}

// Register adds a tool to the registry. Names are unique: registering a
// second tool under an existing name fails with ErrDuplicateTool.
func (r *Registry) Register(tool ToolExecutor) error {
	name := tool.Definition().Function.Name
	if name == "" {
		return fmt.Errorf("tool definition has an empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = tool
	return nil
}

// Lookup returns the executor registered under name, or ErrUnknownTool.
func (r *Registry) Lookup(name string) (ToolExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool, nil
}

// Definitions returns the schemas of all registered tools, for advertisement
// to the LLM layer.
func (r *Registry) Definitions() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	return defs
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
