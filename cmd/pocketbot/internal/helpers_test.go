package internal

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/pocketbot/pkg/config"
	anthropicprovider "github.com/tinyland-inc/pocketbot/pkg/providers/anthropic"
	"github.com/tinyland-inc/pocketbot/pkg/providers/openrouter"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("POCKETBOT_CONFIG", "")
	assert.True(t, strings.HasSuffix(GetConfigPath(), filepath.Join(".pocketbot", "config.json")))

	t.Setenv("POCKETBOT_CONFIG", "/etc/pocketbot.json")
	assert.Equal(t, "/etc/pocketbot.json", GetConfigPath())
}

func TestCreateGenerator(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := CreateGenerator(cfg)
	assert.ErrorContains(t, err, "api_key")

	cfg.Provider.APIKey = "sk-test"
	gen, err := CreateGenerator(cfg)
	require.NoError(t, err)
	orp, ok := gen.(*openrouter.Provider)
	require.True(t, ok)
	assert.Equal(t, "https://openrouter.ai/api/v1", orp.BaseURL())

	cfg.Provider.Kind = config.ProviderAnthropic
	gen, err = CreateGenerator(cfg)
	require.NoError(t, err)
	ap, ok := gen.(*anthropicprovider.Provider)
	require.True(t, ok)
	assert.Equal(t, "https://api.anthropic.com", ap.BaseURL())

	cfg.Provider.Kind = "bogus"
	_, err = CreateGenerator(cfg)
	assert.Error(t, err)
}

func TestNewRouterCreatesScratchDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Converter.ScratchDir = filepath.Join(t.TempDir(), "scratch")
	cfg.Telegram.AuthorizedUserID = "1001"

	rt, err := NewRouter(cfg, nil, nil)
	require.NoError(t, err)
	assert.DirExists(t, cfg.Converter.ScratchDir)
	assert.Equal(t, "1001", rt.AuthorizedUserID)
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev", FormatVersion())
	_, goVer := FormatBuildInfo()
	assert.NotEmpty(t, goVer)
}
