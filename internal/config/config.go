package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the agent service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"agent-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8084"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AuthEnabled     bool          `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer      string        `env:"AUTH_ISSUER"`
	AuthAudience    string        `env:"AUTH_AUDIENCE"`
	AuthJWKSURL     string        `env:"AUTH_JWKS_URL"`
	LLMBaseURL      string        `env:"LLM_BASE_URL" envDefault:"http://localhost:8000/v1"`
	LLMAPIKey       string        `env:"LLM_API_KEY" envDefault:"EMPTY"`
	DefaultModel    string        `env:"DEFAULT_MODEL" envDefault:"Qwen/Qwen2.5-7B-Instruct"`
	MaxToolCalls    int           `env:"MAX_TOOL_CALLS" envDefault:"8"`
	ToolTimeout     time.Duration `env:"TOOL_EXECUTION_TIMEOUT" envDefault:"45s"`
	ToolDatabaseDSN string        `env:"TOOL_DATABASE_DSN" envDefault:""`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthAudience) == "" {
			return nil, fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}

	if cfg.MaxToolCalls <= 0 {
		cfg.MaxToolCalls = 8
	}

	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 45 * time.Second
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
