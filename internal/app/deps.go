package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"ai-verifier/internal/config"
	"ai-verifier/internal/events"
	"ai-verifier/internal/judge"
	"ai-verifier/internal/logger"
	"ai-verifier/internal/provider"
)

// Deps bundles common runtime dependencies for the gateway.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Providers *provider.Registry
	Judge     *judge.Judge
	Events    events.Publisher
}

// Close releases provider clients and the event publisher.
func (d Deps) Close() error {
	var errs []error
	if d.Providers != nil {
		errs = append(errs, d.Providers.Close())
	}
	if d.Events != nil {
		errs = append(errs, d.Events.Close())
	}
	return errors.Join(errs...)
}

// AuditDeps is the smaller bundle used by the audit worker.
type AuditDeps struct {
	Config config.Config
	Log    *slog.Logger
	Events events.Subscriber
	closer func() error
}

// Close releases the event bus connection.
func (d AuditDeps) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer()
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	cfg, log, err := load()
	if err != nil {
		return Deps{}, err
	}

	if missing := cfg.MissingKeys(); len(missing) > 0 {
		log.Warn("API keys not set; calls to these providers will fail", "missing", missing)
	}

	registry := buildProviders(cfg, log)
	judgeClient, err := registry.Get(string(judge.Provider))
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize judge: %w", err)
	}

	pub, err := buildEvents(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize events: %w", err)
	}

	return Deps{
		Config:    cfg,
		Log:       log,
		Providers: registry,
		Judge:     judge.New(judgeClient),
		Events:    pub,
	}, nil
}

// BuildAudit loads config and connects the event subscriber.
func BuildAudit() (AuditDeps, error) {
	cfg, log, err := load()
	if err != nil {
		return AuditDeps{}, err
	}
	if cfg.EventsProvider != "nats" {
		return AuditDeps{}, fmt.Errorf("audit worker requires EVENTS_PROVIDER=nats, got %q", cfg.EventsProvider)
	}
	bus, err := connectNATS(cfg, log)
	if err != nil {
		return AuditDeps{}, fmt.Errorf("failed to initialize events: %w", err)
	}
	return AuditDeps{Config: cfg, Log: log, Events: bus, closer: bus.Close}, nil
}

func load() (config.Config, *slog.Logger, error) {
	envFile := config.EnvFile()
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, nil, fmt.Errorf("failed to load environment variables from %s: %w", envFile, err)
	}
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat), nil
}

func buildProviders(cfg config.Config, log *slog.Logger) *provider.Registry {
	timeout := provider.WithTimeout(cfg.ProviderTimeout)
	groq := provider.NewGroq(cfg.GroqKey,
		provider.WithBaseURL(cfg.GroqBaseURL), provider.WithModel(cfg.GroqModel), timeout)
	gemini := provider.NewGemini(cfg.GoogleKey,
		provider.WithBaseURL(cfg.GeminiBaseURL), provider.WithModel(cfg.GeminiModel), timeout)
	mistral := provider.NewMistral(cfg.TogetherKey,
		provider.WithBaseURL(cfg.TogetherBaseURL), provider.WithModel(cfg.MistralModel), timeout)

	log.Info("providers configured",
		"groq_model", groq.Model(),
		"gemini_model", gemini.Model(),
		"mistral_model", mistral.Model(),
		"timeout", cfg.ProviderTimeout,
	)
	return provider.NewRegistry(groq, gemini, mistral)
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsProvider {
	case "", "none":
		log.Info("event publishing disabled")
		return events.NewNoOp(), nil
	case "nats":
		return connectNATS(cfg, log)
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}

func connectNATS(cfg config.Config, log *slog.Logger) (*events.NATS, error) {
	if cfg.EventsURL == "" {
		return nil, fmt.Errorf("EVENTS_URL is required when EVENTS_PROVIDER=nats")
	}
	nc, err := nats.Connect(cfg.EventsURL, nats.Name("ai-verifier"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("using NATS events", "subject", cfg.EventsSubject)
	return events.NewNATS(log, nc, cfg.EventsSubject), nil
}
