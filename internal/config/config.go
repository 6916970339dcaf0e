// internal/config/config.go
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything both binaries read from the environment
type Config struct {
	// Editing-core server
	Port       string `envconfig:"PORT" default:"8080"`
	BackendURL string `envconfig:"BACKEND_URL" default:"http://localhost:8000"`

	// Generation backend
	BackendPort string `envconfig:"BACKEND_PORT" default:"8000"`
	LLMProvider string `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIKey   string `envconfig:"OPENAI_API_KEY"`
	AIBaseURL   string `envconfig:"AI_BASE_URL"`
	AIModel     string `envconfig:"AI_MODEL" default:"gpt-4o"`
	// Prompt context is trimmed to this many tokens before each completion
	AIMaxContextTokens int `envconfig:"AI_MAX_CONTEXT_TOKENS" default:"6000"`

	DebugMode bool `envconfig:"DEBUG_MODE" default:"true"`
}

// Load reads configuration from the environment, with an optional .env file
func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// LLMConfig returns the provider configuration map for the registry
func (c *Config) LLMConfig() map[string]string {
	return map[string]string{
		"api_key":       c.OpenAIKey,
		"base_url":      c.AIBaseURL,
		"default_model": c.AIModel,
	}
}
