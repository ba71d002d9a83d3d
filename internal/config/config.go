package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
)

const defaultEnvFile = "api_key.env"

// requestTimeoutMargin is the minimum gap between the provider and router deadlines.
const requestTimeoutMargin = 5 * time.Second

// Config holds runtime configuration. It is read once at start-up and passed by value afterwards.
type Config struct {
	// Server
	Port           int           `env:"PORT" envDefault:"8080"`
	HealthPort     int           `env:"HEALTH_PORT" envDefault:"8081"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	// EnvFile is loaded before the rest of the config is parsed.
	EnvFile string `env:"ENV_FILE" envDefault:"api_key.env"`

	// Providers. Empty base URLs and models fall back to the provider package defaults.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`

	GroqKey     string `env:"GROQ_API_KEY"`
	GroqBaseURL string `env:"GROQ_BASE_URL"`
	GroqModel   string `env:"GROQ_MODEL"`

	GoogleKey     string `env:"GOOGLE_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`
	GeminiModel   string `env:"GEMINI_MODEL"`

	TogetherKey     string `env:"TOGETHER_API_KEY"`
	TogetherBaseURL string `env:"TOGETHER_BASE_URL"`
	MistralModel    string `env:"MISTRAL_MODEL"`

	// Events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none"` // "none" or "nats"
	EventsURL      string `env:"EVENTS_URL"`
	EventsSubject  string `env:"EVENTS_SUBJECT" envDefault:"verifier.events"`
}

// EnvFile returns the env file to load before Load runs.
func EnvFile() string {
	if f := os.Getenv("ENV_FILE"); f != "" {
		return f
	}
	return defaultEnvFile
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	if cfg.RequestTimeout <= cfg.ProviderTimeout {
		raised := cfg.ProviderTimeout + requestTimeoutMargin
		slog.Warn("REQUEST_TIMEOUT must exceed PROVIDER_TIMEOUT; raising it",
			"request_timeout", cfg.RequestTimeout, "provider_timeout", cfg.ProviderTimeout, "raised_to", raised)
		cfg.RequestTimeout = raised
	}
	return cfg
}

// MissingKeys lists the credential variables that are unset.
func (c Config) MissingKeys() []string {
	var missing []string
	if c.GroqKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if c.GoogleKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if c.TogetherKey == "" {
		missing = append(missing, "TOGETHER_API_KEY")
	}
	return missing
}
