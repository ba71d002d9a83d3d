package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ChatCompletions implements Client for OpenAI-compatible chat-completions APIs
// (Groq and Together). The key travels as a bearer token.
type ChatCompletions struct {
	name    Name
	model   openai.ChatModel
	timeout time.Duration
	client  *openai.Client
}

// NewGroq builds the Groq client.
func NewGroq(apiKey string, opts ...Option) *ChatCompletions {
	return newChatCompletions(Groq, apiKey, newSettings(GroqBaseURL, GroqModel, opts))
}

// NewMistral builds the Mixtral client served by Together.
func NewMistral(apiKey string, opts ...Option) *ChatCompletions {
	return newChatCompletions(Mistral, apiKey, newSettings(TogetherBaseURL, MistralModel, opts))
}

func newChatCompletions(name Name, apiKey string, s settings) *ChatCompletions {
	c := &ChatCompletions{
		name:    name,
		model:   openai.ChatModel(s.model),
		timeout: s.timeout,
	}
	cli := openai.NewClient(
		option.WithBaseURL(s.baseURL+"/"),
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(s.httpClient),
		option.WithMaxRetries(0),
		option.WithMiddleware(c.statusMiddleware),
	)
	c.client = &cli
	return c
}

func (c *ChatCompletions) Name() Name { return c.name }

// Model returns the model identifier sent upstream.
func (c *ChatCompletions) Model() string { return string(c.model) }

// Ask sends question as a single user message and returns the first choice, trimmed.
func (c *ChatCompletions) Ask(ctx context.Context, question string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("nil chat completions client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(question),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", statusError(c.name, apiErr.StatusCode, apiErr.RawJSON())
		}
		return "", callError(c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", extractionError(c.name, "choices[0].message.content missing: no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", extractionError(c.name, "choices[0].message.content missing: empty completion content")
	}
	return content, nil
}

// statusMiddleware turns any non-200 answer into a status error carrying the raw body,
// whatever the body's shape.
func (c *ChatCompletions) statusMiddleware(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	res, err := next(req)
	if err != nil || res.StatusCode == http.StatusOK {
		return res, err
	}
	defer res.Body.Close()
	body, readErr := io.ReadAll(res.Body)
	if readErr != nil {
		return nil, callError(c.name, readErr)
	}
	return nil, statusError(c.name, res.StatusCode, string(body))
}
