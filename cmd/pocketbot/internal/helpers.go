package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tinyland-inc/pocketbot/pkg/config"
	"github.com/tinyland-inc/pocketbot/pkg/converter"
	"github.com/tinyland-inc/pocketbot/pkg/geocode"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
	"github.com/tinyland-inc/pocketbot/pkg/providers"
	anthropicprovider "github.com/tinyland-inc/pocketbot/pkg/providers/anthropic"
	"github.com/tinyland-inc/pocketbot/pkg/providers/openrouter"
	"github.com/tinyland-inc/pocketbot/pkg/router"
	"github.com/tinyland-inc/pocketbot/pkg/state"
)

const Logo = "🌦"

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

func GetConfigPath() string {
	if p := os.Getenv("POCKETBOT_CONFIG"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pocketbot", "config.json")
}

// LoadConfig reads the config and applies its log level.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(GetConfigPath())
	if err != nil {
		return nil, err
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	return cfg, nil
}

// CreateGenerator builds the text-generation backend selected by provider.kind.
func CreateGenerator(cfg *config.Config) (providers.Generator, error) {
	p := cfg.Provider
	timeout := seconds(p.TimeoutSeconds)

	switch p.Kind {
	case "", config.ProviderOpenRouter:
		if p.APIKey == "" {
			return nil, fmt.Errorf("provider.api_key is required for %s", config.ProviderOpenRouter)
		}
		return openrouter.NewProvider(openrouter.Config{
			APIKey:  p.APIKey,
			APIBase: p.APIBase,
			Referer: p.Referer,
			Title:   p.Title,
			Timeout: timeout,
		}), nil
	case config.ProviderAnthropic:
		if p.APIKey == "" {
			return nil, fmt.Errorf("provider.api_key is required for %s", config.ProviderAnthropic)
		}
		apiBase := p.APIBase
		if apiBase == config.DefaultConfig().Provider.APIBase {
			apiBase = ""
		}
		return anthropicprovider.NewProvider(anthropicprovider.Config{
			APIKey:  p.APIKey,
			APIBase: apiBase,
			Timeout: timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", p.Kind)
	}
}

func NewConverter(cfg *config.Config) *converter.Converter {
	return converter.New(converter.Config{
		SofficePath: cfg.Converter.SofficePath,
		Timeout:     seconds(cfg.Converter.TimeoutSeconds),
	})
}

func NewGeocoder(cfg *config.Config) *geocode.Client {
	return geocode.NewClient(geocode.Config{
		BaseURL:   cfg.Geocode.BaseURL,
		UserAgent: cfg.Geocode.UserAgent,
		Language:  cfg.Geocode.Language,
		Timeout:   seconds(cfg.Geocode.TimeoutSeconds),
	})
}

// Transport is what a chat channel offers the router.
type Transport interface {
	presenter.Transport
	router.FileFetcher
}

// NewRouter wires the state store, presenter and gateways around one transport.
func NewRouter(cfg *config.Config, gen providers.Generator, t Transport) (*router.Router, error) {
	scratch := cfg.ScratchPath()
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	return router.New(router.Deps{
		AuthorizedUserID: cfg.Telegram.AuthorizedUserID.String(),
		Store:            state.NewStore(),
		Presenter:        presenter.New(t),
		Generator:        gen,
		Converter:        NewConverter(cfg),
		Geocoder:         NewGeocoder(cfg),
		Files:            t,
		Catalog:          cfg.Catalog(),
		DefaultModel:     cfg.Models.Default,
		ScratchDir:       scratch,
	}), nil
}

// ShutdownContext bounds how long shutdown waits for in-flight handlers.
func ShutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}

func GetVersion() string {
	return version
}
