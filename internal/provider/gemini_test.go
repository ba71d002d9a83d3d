package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemini_Ask(t *testing.T) {
	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantAnswer string
		wantKind   Kind
		wantStatus int
		wantInErr  []string
	}{
		{
			name: "success is trimmed",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"\n Paris is the capital.  \n"}]}}]}`))
			},
			wantAnswer: "Paris is the capital.",
		},
		{
			name: "non-200 becomes status error with body",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
			},
			wantKind:   KindStatus,
			wantStatus: http.StatusBadRequest,
			wantInErr:  []string{"Error from Gemini", "400", "API key not valid"},
		},
		{
			name: "missing candidates is an extraction error",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[]}`))
			},
			wantKind:  KindExtraction,
			wantInErr: []string{"Unexpected response from Gemini", "candidates[0]"},
		},
		{
			name: "missing parts is an extraction error",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`))
			},
			wantKind:  KindExtraction,
			wantInErr: []string{"parts[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
				assert.Equal(t, "AIza-test", r.URL.Query().Get("key"))
				assert.Empty(t, r.Header.Get("Authorization"))
				assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

				var body geminiRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Len(t, body.Contents, 1)
				require.Len(t, body.Contents[0].Parts, 1)
				assert.Equal(t, "What is the capital of France?", body.Contents[0].Parts[0].Text)

				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewGemini("AIza-test", WithBaseURL(server.URL+"/v1beta"))
			defer client.Close()

			answer, err := client.Ask(context.Background(), "What is the capital of France?")
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAnswer, answer)
				return
			}

			require.Error(t, err)
			perr, ok := AsError(err)
			require.True(t, ok, "expected *provider.Error, got %T", err)
			assert.Equal(t, tt.wantKind, perr.Kind)
			assert.Equal(t, Gemini, perr.Provider)
			if tt.wantStatus != 0 {
				assert.Equal(t, tt.wantStatus, perr.StatusCode)
			}
			for _, s := range tt.wantInErr {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestGemini_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewGemini("AIza-test", WithBaseURL(baseURL))
	defer client.Close()

	_, err := client.Ask(context.Background(), "hi")
	require.Error(t, err)
	perr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindTransport, perr.Kind)
	assert.True(t, strings.HasPrefix(err.Error(), "Error while connecting to Gemini: "), err.Error())
}

func TestGemini_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewGemini("AIza-test", WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))
	defer client.Close()

	_, err := client.Ask(context.Background(), "slow")
	require.Error(t, err)
	perr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, perr.Kind)
}

func TestGemini_Defaults(t *testing.T) {
	client := NewGemini("k")
	defer client.Close()
	assert.Equal(t, Gemini, client.Name())
	assert.Equal(t, "gemini-2.0-flash", client.Model())
}
