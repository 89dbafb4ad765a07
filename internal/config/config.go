// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

// Config holds application configuration.
type Config struct {
	Port            int
	MedicationsPath string
	SessionsPath    string

	// LLM
	Backend            string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIChatModel    string
	OpenAISummaryModel string
	AnthropicAPIKey    string
	AnthropicModel     string
	GenerationTimeout  time.Duration

	// Caregiver alerts; disabled when DatabaseURL is empty
	DatabaseURL   string
	NotifyChannel string

	// Observability
	LogDir           string
	LogLevel         string
	TelemetryEnabled bool
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               envInt("PORT", 8080),
		MedicationsPath:    envStr("MEDICATIONS_PATH", "data/medications.json"),
		SessionsPath:       envStr("SESSIONS_PATH", "data/sessions.json"),
		Backend:            strings.ToLower(envStr("LLM_BACKEND", BackendOpenAI)),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OpenAIChatModel:    envStr("OPENAI_MODEL_CHAT", "gpt-4o-mini"),
		OpenAISummaryModel: os.Getenv("OPENAI_MODEL_SUMMARY"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:     os.Getenv("ANTHROPIC_MODEL"),
		GenerationTimeout:  envDuration("GENERATION_TIMEOUT", 20*time.Second),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		NotifyChannel:      envStr("POSTGRES_NOTIFY_CHANNEL", "caregiver_alerts"),
		LogDir:             envStr("LOG_DIR", "logs"),
		LogLevel:           strings.ToLower(envStr("LOG_LEVEL", "info")),
		TelemetryEnabled:   envBool("TELEMETRY_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.MedicationsPath == "" || c.SessionsPath == "" {
		return fmt.Errorf("MEDICATIONS_PATH and SESSIONS_PATH must not be empty")
	}
	if c.MedicationsPath == c.SessionsPath {
		return fmt.Errorf("MEDICATIONS_PATH and SESSIONS_PATH must differ")
	}
	switch c.Backend {
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set for the %s backend", c.Backend)
		}
	case BackendAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY must be set for the %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("LLM_BACKEND must be %q or %q, got %q", BackendOpenAI, BackendAnthropic, c.Backend)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive, got %s", c.GenerationTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// AlertsEnabled reports whether caregiver alerts are stored in PostgreSQL.
func (c *Config) AlertsEnabled() bool { return c.DatabaseURL != "" }

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("15s") or a plain number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
