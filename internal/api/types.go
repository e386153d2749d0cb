// In file: internal/api/types.go

// Package api defines the public request/response types of the gateway's
// HTTP surface, kept separate from the internal llm types so the wire
// contract can evolve independently of the provider clients.
package api

// ChatRequest is the body of POST /api/v1/chat. One request is one turn:
// a user prompt through to one final textual answer, possibly involving
// several tool-call rounds on the server side.
type ChatRequest struct {
	// ConversationID groups turns into a conversation. When empty, the
	// gateway mints a new ID and returns it so the client can continue.
	ConversationID string `json:"conversation_id"`
	Prompt         string `json:"prompt" binding:"required"`
}

// ChatResponse is the body returned for a completed turn.
type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	ModelUsed      string `json:"model_used"`
	Usage          Usage  `json:"usage"`
	LatencyMS      int64  `json:"latency_ms"`
	ToolRounds     int    `json:"tool_rounds"`
}

// Usage holds token accounting for a turn, accumulated across all LLM
// rounds the turn needed.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another round's usage into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}
