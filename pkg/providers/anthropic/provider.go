package anthropicprovider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/providers"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultMaxTokens = 1024
)

type Config struct {
	APIKey     string
	APIBase    string
	MaxTokens  int64
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Provider struct {
	client    *anthropic.Client
	baseURL   string
	maxTokens int64
}

func NewProvider(cfg Config) *Provider {
	baseURL := normalizeBaseURL(cfg.APIBase)
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Provider{
		client:    &client,
		baseURL:   baseURL,
		maxTokens: maxTokens,
	}
}

func (p *Provider) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	params := buildParams(modelID, prompt, p.maxTokens)

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		gerr := classify(err)
		logger.WarnCF("anthropic", "Message request failed", map[string]any{
			"model":  modelID,
			"status": gerr.Code,
			"error":  err.Error(),
		})
		return "", gerr
	}

	text := parseResponse(resp)
	if text == "" {
		return "", providers.TransportError(errors.New("response contained no text blocks"))
	}
	return text, nil
}

func (p *Provider) BaseURL() string {
	return p.baseURL
}

func buildParams(modelID, prompt string, maxTokens int64) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

func parseResponse(resp *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return sb.String()
}

func classify(err error) *providers.GatewayError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return providers.StatusError(apiErr.StatusCode, err)
	}
	return providers.TransportError(err)
}

func normalizeBaseURL(apiBase string) string {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		return defaultBaseURL
	}

	base = strings.TrimRight(base, "/")
	if b, ok := strings.CutSuffix(base, "/v1"); ok {
		base = b
	}
	if base == "" {
		return defaultBaseURL
	}

	return base
}
