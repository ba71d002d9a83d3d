package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var allVars = []string{
	"PORT", "HEALTH_PORT", "LOG_LEVEL", "LOG_FORMAT", "REQUEST_TIMEOUT", "ENV_FILE", "PROVIDER_TIMEOUT",
	"GROQ_API_KEY", "GROQ_BASE_URL", "GROQ_MODEL",
	"GOOGLE_API_KEY", "GEMINI_BASE_URL", "GEMINI_MODEL",
	"TOGETHER_API_KEY", "TOGETHER_BASE_URL", "MISTRAL_MODEL",
	"EVENTS_PROVIDER", "EVENTS_URL", "EVENTS_SUBJECT",
}

// clearEnv unsets every variable the config reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"HealthPort", cfg.HealthPort, 8081},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "json"},
		{"RequestTimeout", cfg.RequestTimeout, 60 * time.Second},
		{"EnvFile", cfg.EnvFile, "api_key.env"},
		{"ProviderTimeout", cfg.ProviderTimeout, 30 * time.Second},
		{"GroqBaseURL", cfg.GroqBaseURL, ""},
		{"GroqModel", cfg.GroqModel, ""},
		{"GeminiBaseURL", cfg.GeminiBaseURL, ""},
		{"GeminiModel", cfg.GeminiModel, ""},
		{"TogetherBaseURL", cfg.TogetherBaseURL, ""},
		{"MistralModel", cfg.MistralModel, ""},
		{"EventsProvider", cfg.EventsProvider, "none"},
		{"EventsSubject", cfg.EventsSubject, "verifier.events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-flash")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "gsk-test", cfg.GroqKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
}

func TestMissingKeys(t *testing.T) {
	cfg := Config{GoogleKey: "g"}
	assert.Equal(t, []string{"GROQ_API_KEY", "TOGETHER_API_KEY"}, cfg.MissingKeys())

	cfg = Config{GroqKey: "a", GoogleKey: "b", TogetherKey: "c"}
	assert.Empty(t, cfg.MissingKeys())
}

func TestEnvFile(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, "api_key.env", EnvFile())

	t.Setenv("ENV_FILE", "/etc/verifier/keys.env")
	assert.Equal(t, "/etc/verifier/keys.env", EnvFile())
}

func TestLoadRequestTimeoutExceedsProviderTimeout(t *testing.T) {
	tests := []struct {
		name     string
		request  string
		provider string
		want     time.Duration
	}{
		{name: "already larger", request: "60s", provider: "30s", want: 60 * time.Second},
		{name: "smaller is raised", request: "10s", provider: "30s", want: 35 * time.Second},
		{name: "equal is raised", request: "30s", provider: "30s", want: 35 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("REQUEST_TIMEOUT", tt.request)
			t.Setenv("PROVIDER_TIMEOUT", tt.provider)

			cfg := Load()

			assert.Equal(t, tt.want, cfg.RequestTimeout)
			assert.Greater(t, cfg.RequestTimeout, cfg.ProviderTimeout)
		})
	}
}
