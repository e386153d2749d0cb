// In file: internal/tools/types.go

// Package tools implements the tool-invocation layer of the agent gateway:
// the registry of callable tools, the dispatcher that routes tool-call
// directives from the LLM to their handlers, and the concrete tool
// implementations (e.g. the CodeArts pipeline tools).
//
// The types here are a universal, provider-agnostic representation of tools.
// The LLM clients translate them into the specific wire format each provider
// expects (OpenAI function tools, Gemini function declarations, ...).
package tools

// ToolTypeFunction is the standard type for function-based tools.
const ToolTypeFunction = "function"

// Tool is the schema for a callable action the gateway advertises to the LLM.
type Tool struct {
	Type string `json:"type"`
	// Function holds the detailed definition of the function.
	Function Function `json:"function"`
}

// Function defines the name, description, and parameters of a callable tool.
// The description is what the model reads to decide when to invoke the tool,
// so it should be written for the model, not for humans.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// JSONSchema is a structured representation of the JSON Schema subset used
// for tool parameters. Using this instead of map[string]interface{} keeps
// tool definitions readable and lets the dispatcher validate arguments
// before a handler ever sees them.
type JSONSchema struct {
	// Type is the data type of a schema node ("object", "string", "number",
	// "integer", "boolean"). The top-level parameters node is always "object".
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	// Properties maps parameter names to their schemas.
	Properties map[string]*JSONSchema `json:"properties,omitempty"`
	// Required lists the parameter names that must be present in a call.
	Required []string `json:"required,omitempty"`
}

// ToolCall is a directive *from* the LLM to execute a specific tool.
// The dispatcher consumes it and produces a Result.
type ToolCall struct {
	// ID ties the execution result back to the model's request when the
	// conversation is re-submitted for the next round.
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction holds the name and raw arguments of a requested call.
type ToolCallFunction struct {
	Name string `json:"name"`
	// Arguments is a JSON object encoded as a string, exactly as produced
	// by the model. The dispatcher validates it against the tool's schema.
	Arguments string `json:"arguments"`
}

// ResultStatus tags a Result as either a success or a failure.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// Result is the structured outcome of dispatching one tool call. Failures
// carry the reason as text so the model can read it and decide whether to
// retry, pick another tool, or give up.
type Result struct {
	Status  ResultStatus `json:"status"`
	Content string       `json:"content"`
}

// Success wraps a handler payload as a successful Result.
func Success(payload string) Result {
	return Result{Status: StatusSuccess, Content: payload}
}

// Failure wraps a reason as a failed Result.
func Failure(reason string) Result {
	return Result{Status: StatusError, Content: reason}
}

// NewFunctionTool builds a Tool with the correct "function" type set.
func NewFunctionTool(name, description string, parameters JSONSchema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
