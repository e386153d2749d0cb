// In file: cmd/gateway/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/devops-ai/agent-gateway/internal/llm"
	"github.com/devops-ai/agent-gateway/internal/relay"
	"github.com/devops-ai/agent-gateway/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// main is the entry point for the application. Its primary role is the
// "Composition Root": it loads configuration, initializes all services,
// injects dependencies, and starts the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting Agent Gateway | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	// 2. INITIALIZE SERVICES
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ FATAL: Could not connect to Redis: %v", err)
	}

	llmClients, err := initializeLLMClients(cfg)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}
	relayClient, ok := llmClients[cfg.Relay.Model]
	if !ok {
		log.Fatalf("❌ FATAL: No client available for relay model %s", cfg.Relay.Model)
	}

	registry, err := initializeRegistry(cfg)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}

	metrics := tools.NewMetricsRecorder(rdb)
	dispatcher := tools.NewDispatcher(registry, metrics)
	sessions := relay.NewRedisSessionStore(rdb, cfg.SessionTTL())

	turnRelay := relay.New(relayClient, registry, dispatcher, sessions, relay.Config{
		Model:         cfg.Relay.Model,
		MaxToolRounds: cfg.Relay.MaxToolRounds,
		MaxTokens:     cfg.Relay.MaxTokens,
	})

	gatewayHandler := NewGatewayHandler(turnRelay, registry, metrics, cfg)
	log.Println("✅ All services initialized.")

	// 3. START BACKGROUND PROCESSES
	go startHealthChecker(cfg.Relay.Model, relayClient, rdb)

	// 4. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/chat", gatewayHandler.HandleChat)
		v1.GET("/tools", gatewayHandler.HandleListTools)
		v1.GET("/tools/:name/metrics", gatewayHandler.HandleToolMetrics)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// initializeLLMClients creates instances of the LLM clients based on config.
func initializeLLMClients(cfg *AppConfig) (map[string]llm.LLMClient, error) {
	clients := make(map[string]llm.LLMClient)
	var err error
	for modelID, apiKey := range cfg.APIKeys {
		var client llm.LLMClient
		switch {
		case strings.HasPrefix(modelID, "gpt"):
			client, err = llm.NewOpenAIClient(apiKey)
		case strings.HasPrefix(modelID, "gemini"):
			client, err = llm.NewGeminiClient(apiKey, modelID)
		default:
			log.Printf("WARNING: Unknown model provider for %s, skipping.", modelID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create client for %s: %w", modelID, err)
		}
		clients[modelID] = client
	}
	log.Printf("✅ %d LLM clients initialized.", len(clients))
	return clients, nil
}

// initializeRegistry creates the tool registry and registers all available
// tools.
func initializeRegistry(cfg *AppConfig) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	if cfg.CodeArtsToken == "" {
		return nil, fmt.Errorf("CODEARTS_AUTH_TOKEN environment variable is not set")
	}
	codeArts, err := tools.NewCodeArtsClient(cfg.CodeArts.Endpoint, cfg.CodeArtsToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create CodeArts client: %w", err)
	}

	for _, tool := range []tools.ToolExecutor{
		tools.NewListPipelinesTool(codeArts),
		tools.NewCreatePipelineTool(codeArts),
		tools.NewRunPipelineTool(codeArts),
	} {
		if err := registry.Register(tool); err != nil {
			return nil, fmt.Errorf("failed to register tool: %w", err)
		}
	}

	log.Printf("✅ Tool registry initialized with %d tools.", registry.Count())
	return registry, nil
}

// startHealthChecker runs a background goroutine that pings the relay model
// with a trivial prompt and records liveness in Redis.
func startHealthChecker(modelID string, client llm.LLMClient, rdb *redis.Client) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	log.Println("🩺 Health checker started.")

	runCheck := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		config := &llm.GenerationConfig{Model: modelID, MaxTokens: 5}
		prompt := []llm.Message{{Role: llm.RoleUser, Content: "ping"}}

		_, err := client.Generate(ctx, prompt, config, nil)
		cancel()

		status := "online"
		if err != nil {
			status = "offline"
		}
		key := fmt.Sprintf("health:%s", modelID)
		pipe := rdb.Pipeline()
		pipe.HSet(context.Background(), key, "status", status)
		pipe.HSet(context.Background(), key, "last_check", time.Now().Format(time.RFC3339Nano))
		if _, err := pipe.Exec(context.Background()); err != nil {
			log.Printf("WARNING: Failed to record health status for %s: %v", modelID, err)
		}
		log.Printf("Health check for %s: %s", modelID, status)
	}

	runCheck()
	for range ticker.C {
		runCheck()
	}
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Gateway is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server shutdown failed:", err)
	}

	log.Println("👋 Server exited gracefully.")
}
