package anthropicprovider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/pocketbot/pkg/providers"
)

func messageBody(model string, blocks ...map[string]any) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       model,
		"stop_reason": "end_turn",
		"content":     blocks,
		"usage": map[string]any{
			"input_tokens":  15,
			"output_tokens": 8,
		},
	}
}

func TestBuildParams_SingleUserTurn(t *testing.T) {
	params := buildParams("claude-haiku", "Hello", 512)

	assert.Equal(t, "claude-haiku", string(params.Model))
	assert.Equal(t, int64(512), params.MaxTokens)
	require.Len(t, params.Messages, 1)

	b, err := json.Marshal(params)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Hello"`)
	assert.Contains(t, string(b), `"role":"user"`)
}

func TestProvider_GenerateRoundTrip(t *testing.T) {
	var gotModel, gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")

		var reqBody map[string]any
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
		gotModel, _ = reqBody["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageBody(gotModel,
			map[string]any{"type": "text", "text": "Hello! "},
			map[string]any{"type": "text", "text": "How can I help?"},
		))
	}))
	defer server.Close()

	p := NewProvider(Config{APIKey: "test-key", APIBase: server.URL})
	text, err := p.Generate(context.Background(), "claude-haiku", "Hello")
	require.NoError(t, err)

	assert.Equal(t, "Hello! How can I help?", text)
	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "claude-haiku", gotModel)
}

func TestProvider_StatusErrorIsNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	p := NewProvider(Config{APIKey: "k", APIBase: server.URL})
	_, err := p.Generate(context.Background(), "claude-haiku", "hi")

	var gerr *providers.GatewayError
	require.True(t, errors.As(err, &gerr), "want *GatewayError, got %T", err)
	assert.Equal(t, providers.KindStatus, gerr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, gerr.Code)
	assert.Equal(t, int32(1), requests.Load())
}

func TestProvider_NoTextBlocksIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageBody("claude-haiku"))
	}))
	defer server.Close()

	p := NewProvider(Config{APIKey: "k", APIBase: server.URL})
	_, err := p.Generate(context.Background(), "claude-haiku", "hi")

	var gerr *providers.GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, providers.KindTransport, gerr.Kind)
}

func TestProvider_ConnectionFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := NewProvider(Config{APIKey: "k", APIBase: url})
	_, err := p.Generate(context.Background(), "claude-haiku", "hi")

	var gerr *providers.GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, providers.KindTransport, gerr.Kind)
}

func TestProvider_DefaultMaxTokens(t *testing.T) {
	p := NewProvider(Config{APIKey: "k"})
	assert.Equal(t, int64(defaultMaxTokens), p.maxTokens)
	assert.Equal(t, defaultBaseURL, p.BaseURL())
}

func TestNormalizeBaseURL_StripsV1Suffix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", defaultBaseURL},
		{"https://api.anthropic.com/v1/", "https://api.anthropic.com"},
		{"https://proxy.internal/anthropic", "https://proxy.internal/anthropic"},
		{"/v1", defaultBaseURL},
	}
	for _, tt := range tests {
		if got := normalizeBaseURL(tt.in); got != tt.want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
