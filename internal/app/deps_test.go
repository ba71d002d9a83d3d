package app

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-verifier/internal/config"
	"ai-verifier/internal/events"
	"ai-verifier/internal/provider"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildProviders(t *testing.T) {
	cfg := config.Config{
		ProviderTimeout: 5 * time.Second,
		GroqModel:       "llama-3.3-70b-versatile",
		GeminiModel:     "gemini-2.5-flash",
		MistralModel:    "mistralai/Mistral-7B-Instruct-v0.3",
	}
	reg := buildProviders(cfg, quietLog())

	assert.Equal(t, []provider.Name{provider.Groq, provider.Gemini, provider.Mistral}, reg.Names())

	c, err := reg.Get("Gemini")
	require.NoError(t, err)
	gem, ok := c.(*provider.GeminiClient)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", gem.Model())

	c, err = reg.Get("Mistral")
	require.NoError(t, err)
	chat, ok := c.(*provider.ChatCompletions)
	require.True(t, ok)
	assert.Equal(t, "mistralai/Mistral-7B-Instruct-v0.3", chat.Model())
}

func TestBuildEvents(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{name: "default", cfg: config.Config{}},
		{name: "none", cfg: config.Config{EventsProvider: "none"}},
		{name: "nats without url", cfg: config.Config{EventsProvider: "nats"}, wantErr: "EVENTS_URL is required"},
		{name: "unknown", cfg: config.Config{EventsProvider: "kafka"}, wantErr: "invalid EVENTS_PROVIDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub, err := buildEvents(tt.cfg, quietLog())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &events.NoOp{}, pub)
		})
	}
}

func TestBuildAudit_RequiresNATS(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("EVENTS_PROVIDER", "none")

	_, err := BuildAudit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVENTS_PROVIDER=nats")
}

func TestAuditDeps_CloseWithoutBus(t *testing.T) {
	assert.NoError(t, AuditDeps{}.Close())
}

func TestDeps_Close(t *testing.T) {
	pub := &events.MockPublisher{}
	pub.On("Close").Return(errors.New("drain failed")).Once()
	deps := Deps{
		Providers: buildProviders(config.Config{}, quietLog()),
		Events:    pub,
	}

	err := deps.Close()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "drain failed")
	pub.AssertExpectations(t)
}

func TestBuildProviders_EmptyConfigUsesProviderDefaults(t *testing.T) {
	reg := buildProviders(config.Config{}, quietLog())

	c, err := reg.Get("Gemini")
	require.NoError(t, err)
	assert.Equal(t, provider.GeminiModel, c.(*provider.GeminiClient).Model())

	c, err = reg.Get("Groq")
	require.NoError(t, err)
	assert.Equal(t, provider.GroqModel, c.(*provider.ChatCompletions).Model())

	assert.NoError(t, reg.Close())
}
