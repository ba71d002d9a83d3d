package provider

import (
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Default endpoints and models.
const (
	GroqBaseURL     = "https://api.groq.com/openai/v1"
	GroqModel       = "llama3-70b-8192"
	GeminiBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	GeminiModel     = "gemini-2.0-flash"
	TogetherBaseURL = "https://api.together.xyz/v1"
	MistralModel    = "mistralai/Mixtral-8x7B-Instruct-v0.1"
)

type settings struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a provider client.
type Option func(*settings)

// WithBaseURL points the client at a different endpoint root. Empty keeps the default.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		if url != "" {
			s.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithModel overrides the model identifier. Empty keeps the default.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTimeout bounds every outbound call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

func newSettings(baseURL, model string, opts []Option) settings {
	s := settings{
		baseURL: baseURL,
		model:   model,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{}
	}
	return s
}
