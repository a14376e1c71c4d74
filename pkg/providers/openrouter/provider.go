package openrouter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/providers"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

type Config struct {
	APIKey  string
	APIBase string
	Referer string // sent as HTTP-Referer, identifies the calling app
	Title   string // sent as X-Title
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Provider talks to an OpenAI-compatible chat completions endpoint.
type Provider struct {
	client  openai.Client
	baseURL string
}

func NewProvider(cfg Config) *Provider {
	baseURL := normalizeBaseURL(cfg.APIBase)
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Provider{
		client:  openai.NewClient(opts...),
		baseURL: baseURL,
	}
}

func (p *Provider) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(modelID),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		gerr := classify(err)
		logger.WarnCF("openrouter", "Completion failed", map[string]any{
			"model":   modelID,
			"status":  gerr.Code,
			"error":   err.Error(),
			"elapsed": time.Since(start).String(),
		})
		return "", gerr
	}
	if len(resp.Choices) == 0 {
		return "", providers.TransportError(errors.New("no choices in response"))
	}

	logger.DebugCF("openrouter", "Completion received", map[string]any{
		"model":   modelID,
		"elapsed": time.Since(start).String(),
	})
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) BaseURL() string {
	return p.baseURL
}

func classify(err error) *providers.GatewayError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return providers.StatusError(apiErr.StatusCode, err)
	}
	return providers.TransportError(err)
}

func normalizeBaseURL(apiBase string) string {
	base := strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if base == "" {
		return defaultBaseURL
	}
	return base
}
