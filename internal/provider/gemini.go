package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"
)

// GeminiClient implements Client for Google's generateContent API.
// Gemini takes the key as a query parameter rather than a header.
type GeminiClient struct {
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *resty.Client
}

// NewGemini builds the Gemini client.
func NewGemini(apiKey string, opts ...Option) *GeminiClient {
	s := newSettings(GeminiBaseURL, GeminiModel, opts)
	client := resty.NewWithClient(s.httpClient)
	client.SetBaseURL(s.baseURL)
	client.SetHeader("Content-Type", "application/json")

	return &GeminiClient{
		apiKey:     apiKey,
		model:      s.model,
		timeout:    s.timeout,
		httpClient: client,
	}
}

// Close releases the underlying HTTP client.
func (g *GeminiClient) Close() error {
	return g.httpClient.Close()
}

func (g *GeminiClient) Name() Name { return Gemini }

// Model returns the model identifier sent upstream.
func (g *GeminiClient) Model() string { return g.model }

// Ask sends question as a single content part and returns the first candidate's text, trimmed.
func (g *GeminiClient) Ask(ctx context.Context, question string) (string, error) {
	if g == nil || g.httpClient == nil {
		return "", errors.New("nil gemini client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: question}}},
		},
	}

	response, err := g.httpClient.R().
		SetContext(reqCtx).
		SetQueryParam("key", g.apiKey).
		SetBody(payload).
		SetResult(&geminiResponse{}).
		Post("/models/" + g.model + ":generateContent")
	if err != nil {
		return "", callError(Gemini, err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", statusError(Gemini, response.StatusCode(), response.String())
	}

	body, ok := response.Result().(*geminiResponse)
	if !ok || body == nil || len(body.Candidates) == 0 {
		return "", extractionError(Gemini, "candidates[0] missing: %s", response.String())
	}
	parts := body.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", extractionError(Gemini, "candidates[0].content.parts[0] missing: %s", response.String())
	}
	text := strings.TrimSpace(parts[0].Text)
	if text == "" {
		return "", extractionError(Gemini, "candidates[0].content.parts[0].text is empty")
	}
	return text, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
