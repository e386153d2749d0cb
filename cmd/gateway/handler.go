// In file: cmd/gateway/handler.go
package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/devops-ai/agent-gateway/internal/api"
	"github.com/devops-ai/agent-gateway/internal/relay"
	"github.com/devops-ai/agent-gateway/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GatewayHandler is the HTTP surface of the gateway. It owns nothing beyond
// references to the relay and supporting services; all turn logic lives in
// the relay.
type GatewayHandler struct {
	relay    *relay.Relay
	registry *tools.Registry
	metrics  *tools.MetricsRecorder
	config   *AppConfig
}

func NewGatewayHandler(r *relay.Relay, registry *tools.Registry, metrics *tools.MetricsRecorder, config *AppConfig) *GatewayHandler {
	return &GatewayHandler{
		relay:    r,
		registry: registry,
		metrics:  metrics,
		config:   config,
	}
}

// HandleChat serves POST /api/v1/chat: one request is one turn. The request
// context doubles as the turn context, so a client that disconnects cancels
// its in-flight LLM and tool calls.
func (h *GatewayHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()

	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	log.Printf("--- New Turn (Convo: %s, Prompt: '%.40s...') ---", conversationID, req.Prompt)

	result, err := h.relay.HandleTurn(c.Request.Context(), conversationID, req.Prompt)
	if err != nil {
		if errors.Is(err, relay.ErrTurnLimitExceeded) {
			// Terminal for this turn only; the conversation itself survives.
			c.JSON(http.StatusBadGateway, gin.H{
				"error":           err.Error(),
				"conversation_id": conversationID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.ChatResponse{
		ConversationID: conversationID,
		Content:        result.Content,
		ModelUsed:      h.config.Relay.Model,
		Usage:          result.Usage,
		LatencyMS:      time.Since(startTime).Milliseconds(),
		ToolRounds:     result.ToolRounds,
	})
}

// HandleListTools serves GET /api/v1/tools: the tool schemas currently
// advertised to the model, mostly useful for debugging a deployment.
func (h *GatewayHandler) HandleListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.registry.Definitions()})
}

// HandleToolMetrics serves GET /api/v1/tools/:name/metrics.
func (h *GatewayHandler) HandleToolMetrics(c *gin.Context) {
	name := c.Param("name")
	if _, err := h.registry.Lookup(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	snapshot, err := h.metrics.Snapshot(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
