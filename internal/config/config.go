// Package config provides configuration for the chat orchestrator.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Chain driver (answer stream producer)
	ChainURL     string
	ChainTimeout time.Duration

	// Title generation LLM (OpenAI-compatible endpoint)
	LLMURL     string
	LLMAPIKey  string
	LLMTimeout time.Duration
	TitleModel string

	// Background jobs
	JobQueueSize int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:     getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:  getEnv("DATABASE_URL", "file:orchestrator.db?cache=shared&mode=rwc"),
		ChainURL:     getEnv("CHAIN_URL", "http://localhost:8100"),
		ChainTimeout: time.Duration(getEnvInt("CHAIN_TIMEOUT_MS", 300000)) * time.Millisecond,
		LLMURL:       getEnv("LLM_URL", "http://localhost:4000"),
		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMTimeout:   time.Duration(getEnvInt("LLM_TIMEOUT_MS", 30000)) * time.Millisecond,
		TitleModel:   getEnv("TITLE_MODEL", "gpt-4o-mini"),
		JobQueueSize: getEnvInt("JOB_QUEUE_SIZE", 64),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
