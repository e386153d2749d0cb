// In file: internal/tools/errors.go
package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry operations.
var (
	// ErrDuplicateTool is returned by Register when a tool with the same
	// name is already present.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrUnknownTool is returned by Lookup for names nothing was registered
	// under. The dispatcher converts it into a Failure result rather than
	// propagating it.
	ErrUnknownTool = errors.New("unknown tool")
)

// ValidationError reports a tool-call argument that violates the tool's
// declared schema. Field names the offending parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// HandlerError wraps a fault raised by a tool handler, preserving the
// underlying reason as text. It never crosses the dispatcher boundary as a
// raw error; the dispatcher folds it into a Failure result.
type HandlerError struct {
	Tool   string
	Reason string
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("tool %q failed: %s", e.Tool, e.Reason)
}
