package ask

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/pocketbot/pkg/config"
	"github.com/tinyland-inc/pocketbot/pkg/providers"
)

func TestNewAskCommand(t *testing.T) {
	cmd := NewAskCommand()

	require.NotNil(t, cmd)
	assert.Equal(t, "ask [question]", cmd.Use)
	assert.True(t, cmd.HasExample())
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("model"))
	assert.NotNil(t, cmd.Flags().Lookup("weather"))
	assert.Error(t, cmd.Args(cmd, nil))
}

func TestResolveModel(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, cfg.Models.Default, resolveModel(cfg.Catalog(), cfg.Models.Default, ""))
	assert.Equal(t, "qwen/qwen3-coder:free", resolveModel(cfg.Catalog(), cfg.Models.Default, "Qwen3 Coder"))
	assert.Equal(t, "openai/gpt-4o", resolveModel(cfg.Catalog(), cfg.Models.Default, "openai/gpt-4o"))
}

func TestAsk(t *testing.T) {
	cfg := config.DefaultConfig()
	var gotModel, gotPrompt string
	gen := providers.GeneratorFunc(func(_ context.Context, model, prompt string) (string, error) {
		gotModel, gotPrompt = model, prompt
		return "Mild and cloudy.", nil
	})

	var out bytes.Buffer
	require.NoError(t, ask(context.Background(), &out, gen, cfg, " Lisbon ", "Mistral", true))

	assert.Equal(t, "Mild and cloudy.\n", out.String())
	assert.Equal(t, "mistralai/mistral-small-3.2-24b-instruct:free", gotModel)
	assert.Contains(t, gotPrompt, "'Lisbon'")
}

func TestAsk_RendersGatewayError(t *testing.T) {
	gen := providers.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return "", providers.StatusError(402, nil)
	})

	err := ask(context.Background(), &bytes.Buffer{}, gen, config.DefaultConfig(), "hi", "", false)
	assert.EqualError(t, err, "Error: 402")
}
