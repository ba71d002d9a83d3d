package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Name identifies one of the supported upstream LLM services.
type Name string

const (
	Groq    Name = "Groq"
	Gemini  Name = "Gemini"
	Mistral Name = "Mistral"
)

// Names lists every provider in display order.
var Names = []Name{Groq, Gemini, Mistral}

// Client asks a single provider a question and returns its answer text.
type Client interface {
	Name() Name
	Ask(ctx context.Context, question string) (string, error)
}

// Func adapts a plain function to Client. Useful in tests and for simple inline providers.
func Func(name Name, fn func(ctx context.Context, question string) (string, error)) Client {
	return funcClient{name: name, fn: fn}
}

type funcClient struct {
	name Name
	fn   func(ctx context.Context, question string) (string, error)
}

func (f funcClient) Name() Name { return f.name }

func (f funcClient) Ask(ctx context.Context, question string) (string, error) {
	return f.fn(ctx, question)
}

// Kind classifies why a provider call failed.
type Kind string

const (
	// KindStatus means the provider answered with a non-200 status.
	KindStatus Kind = "status"
	// KindTransport covers connection failures and undecodable responses.
	KindTransport Kind = "transport"
	// KindTimeout means the call deadline expired before the provider answered.
	KindTimeout Kind = "timeout"
	// KindExtraction means a 200 response did not contain the answer path.
	KindExtraction Kind = "extraction"
)

// Error is the failure half of every provider call.
type Error struct {
	Provider   Name
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("Error from %s: %d - %s", e.Provider, e.StatusCode, e.Body)
	case KindTimeout:
		return fmt.Sprintf("Timeout while waiting for %s: %v", e.Provider, e.Err)
	case KindExtraction:
		return fmt.Sprintf("Unexpected response from %s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("Error while connecting to %s: %v", e.Provider, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

// callError wraps a failure raised while talking to the provider, keeping an
// existing *Error intact.
func callError(name Name, err error) *Error {
	if perr, ok := AsError(err); ok {
		return perr
	}
	if isTimeout(err) {
		return &Error{Provider: name, Kind: KindTimeout, Err: err}
	}
	return &Error{Provider: name, Kind: KindTransport, Err: err}
}

func statusError(name Name, code int, body string) *Error {
	return &Error{
		Provider:   name,
		Kind:       KindStatus,
		StatusCode: code,
		Body:       strings.TrimSpace(body),
	}
}

func extractionError(name Name, format string, args ...any) *Error {
	return &Error{Provider: name, Kind: KindExtraction, Err: fmt.Errorf(format, args...)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
