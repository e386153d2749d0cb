// In file: cmd/gateway/config.go
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds all configuration for the gateway, loaded from the
// environment and config.yaml.
type AppConfig struct {
	Port          string
	RedisAddr     string
	Model         string
	APIKeys       map[string]string
	CodeArtsToken string

	Relay    RelayConfig    `yaml:"relay"`
	CodeArts CodeArtsConfig `yaml:"codearts"`
}

// RelayConfig is the config.yaml section controlling the turn loop.
type RelayConfig struct {
	Model             string `yaml:"model"`
	MaxToolRounds     int    `yaml:"max_tool_rounds"`
	MaxTokens         int    `yaml:"max_tokens"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
}

// CodeArtsConfig is the config.yaml section for the pipeline tools.
type CodeArtsConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// SessionTTL returns the configured session expiry as a duration,
// defaulting to one hour.
func (c *AppConfig) SessionTTL() time.Duration {
	if c.Relay.SessionTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Relay.SessionTTLMinutes) * time.Minute
}

// LoadConfig loads configuration from a .env file, environment variables,
// and config.yaml.
func LoadConfig() (*AppConfig, error) {
	// Only load a .env file in local development. In containers
	// (GIN_MODE="release") configuration comes in as real environment
	// variables.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		Port:          os.Getenv("PORT"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		CodeArtsToken: os.Getenv("CODEARTS_AUTH_TOKEN"),
		APIKeys:       make(map[string]string),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	enabledModelsStr := os.Getenv("ENABLED_MODELS")
	if enabledModelsStr == "" {
		return nil, fmt.Errorf("ENABLED_MODELS environment variable is not set")
	}
	for _, modelID := range strings.Split(enabledModelsStr, ",") {
		modelID = strings.TrimSpace(modelID)
		var apiKey string
		switch {
		case strings.HasPrefix(modelID, "gpt"):
			apiKey = os.Getenv("OPENAI_API_KEY")
		case strings.HasPrefix(modelID, "gemini"):
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey != "" {
			cfg.APIKeys[modelID] = apiKey
		}
	}
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("no API key found for any enabled model")
	}

	configFile, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}
	if err := yaml.Unmarshal(configFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml: %w", err)
	}

	// The relay model must be one of the enabled models.
	if cfg.Relay.Model == "" {
		return nil, fmt.Errorf("relay.model is not set in config.yaml")
	}
	if _, ok := cfg.APIKeys[cfg.Relay.Model]; !ok {
		return nil, fmt.Errorf("relay model %q is not in ENABLED_MODELS or has no API key", cfg.Relay.Model)
	}

	return cfg, nil
}
