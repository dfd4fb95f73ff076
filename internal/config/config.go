package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/slotwise/scheduler/internal/model"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the scheduler service.
// Environment variables are automatically parsed from the SLOTWISE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage Configuration
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"slotwise.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Language-model provider configuration. AIEnabled gates every AI-backed
	// endpoint globally; the deterministic provider stays usable regardless.
	AIEnabled              bool   `envconfig:"AI_ENABLED" default:"true"`
	AIProvider             string `envconfig:"AI_PROVIDER" default:"deterministic"`
	OpenAIBaseURL          string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIAPIKey           string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel            string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	ProviderTimeoutSeconds int    `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"30"`

	// Scheduling policy defaults applied when a request does not carry its own.
	BufferMin       int    `envconfig:"BUFFER_MINUTES" default:"15"`
	WorkHoursStart  string `envconfig:"WORK_HOURS_START" default:"09:00"`
	WorkHoursEnd    string `envconfig:"WORK_HOURS_END" default:"17:00"`
	WorkHoursTZ     string `envconfig:"WORK_HOURS_TZ" default:"UTC"`
	MaxSuggestions  int    `envconfig:"MAX_SUGGESTIONS" default:"10"`
	MinimumScore    int    `envconfig:"MINIMUM_SCORE" default:"40"`
	DefaultDuration int    `envconfig:"DEFAULT_DURATION_MINUTES" default:"60"`
}

// ResolveDefaults validates driver/provider choices and derives DBDriver when
// set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	allowedProvider := map[string]bool{"deterministic": true, "openai": true}
	if !allowedProvider[c.AIProvider] {
		return fmt.Errorf("unsupported AI_PROVIDER: %s", c.AIProvider)
	}

	if _, err := model.ParseTimeOfDay(c.WorkHoursStart); err != nil {
		return fmt.Errorf("invalid WORK_HOURS_START: %w", err)
	}
	if _, err := model.ParseTimeOfDay(c.WorkHoursEnd); err != nil {
		return fmt.Errorf("invalid WORK_HOURS_END: %w", err)
	}
	return nil
}

// WorkingHours materializes the configured default working-hours policy.
func (c *Config) WorkingHours() model.WorkingHours {
	start, _ := model.ParseTimeOfDay(c.WorkHoursStart)
	end, _ := model.ParseTimeOfDay(c.WorkHoursEnd)
	return model.WorkingHours{Start: start, End: end, TimeZone: c.WorkHoursTZ}
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with SLOTWISE_
// Example: SLOTWISE_HTTP_PORT, SLOTWISE_AI_PROVIDER
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SLOTWISE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Bool("ai_enabled", cfg.AIEnabled).
		Str("ai_provider", cfg.AIProvider).
		Str("work_hours", cfg.WorkHoursStart+"-"+cfg.WorkHoursEnd).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
		HTTPPort:    8080,

		DBDriver:   "sqlite",
		SQLitePath: ":memory:",

		AIEnabled:              true,
		AIProvider:             "deterministic",
		OpenAIBaseURL:          "https://api.openai.com/v1",
		OpenAIModel:            "gpt-4o-mini",
		ProviderTimeoutSeconds: 5,

		BufferMin:       15,
		WorkHoursStart:  "09:00",
		WorkHoursEnd:    "17:00",
		WorkHoursTZ:     "UTC",
		MaxSuggestions:  10,
		MinimumScore:    40,
		DefaultDuration: 60,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
