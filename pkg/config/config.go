package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// FlexibleString is a string that also accepts a JSON number,
// so authorized_user_id can be written as "123" or 123.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexibleString(n.String())
	return nil
}

// UnmarshalText is used by env parsing.
func (f *FlexibleString) UnmarshalText(text []byte) error {
	*f = FlexibleString(strings.TrimSpace(string(text)))
	return nil
}

func (f FlexibleString) String() string { return string(f) }

type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Provider  ProviderConfig  `json:"provider"`
	Models    ModelsConfig    `json:"models"`
	Geocode   GeocodeConfig   `json:"geocode"`
	Converter ConverterConfig `json:"converter"`
	Log       LogConfig       `json:"log"`
}

type TelegramConfig struct {
	Token            string         `env:"POCKETBOT_TELEGRAM_TOKEN"              json:"token"`
	Proxy            string         `env:"POCKETBOT_TELEGRAM_PROXY"              json:"proxy,omitempty"`
	AuthorizedUserID FlexibleString `env:"POCKETBOT_TELEGRAM_AUTHORIZED_USER_ID" json:"authorized_user_id"`
	PollTimeout      int            `env:"POCKETBOT_TELEGRAM_POLL_TIMEOUT"       json:"poll_timeout"` // seconds
}

const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

type ProviderConfig struct {
	Kind           string `env:"POCKETBOT_PROVIDER_KIND"            json:"kind"`
	APIKey         string `env:"POCKETBOT_PROVIDER_API_KEY"         json:"api_key"`
	APIBase        string `env:"POCKETBOT_PROVIDER_API_BASE"        json:"api_base,omitempty"`
	Referer        string `env:"POCKETBOT_PROVIDER_REFERER"         json:"referer,omitempty"`
	Title          string `env:"POCKETBOT_PROVIDER_TITLE"           json:"title,omitempty"`
	TimeoutSeconds int    `env:"POCKETBOT_PROVIDER_TIMEOUT_SECONDS" json:"timeout_seconds"`
}

// ModelEntry binds a menu label to a backend model identifier.
type ModelEntry struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

type ModelsConfig struct {
	Default string       `env:"POCKETBOT_MODELS_DEFAULT" json:"default"`
	Catalog []ModelEntry `json:"catalog"`
}

type GeocodeConfig struct {
	BaseURL        string `env:"POCKETBOT_GEOCODE_BASE_URL"        json:"base_url"`
	UserAgent      string `env:"POCKETBOT_GEOCODE_USER_AGENT"      json:"user_agent"`
	Language       string `env:"POCKETBOT_GEOCODE_LANGUAGE"        json:"language"`
	TimeoutSeconds int    `env:"POCKETBOT_GEOCODE_TIMEOUT_SECONDS" json:"timeout_seconds"`
}

type ConverterConfig struct {
	SofficePath    string `env:"POCKETBOT_CONVERTER_SOFFICE_PATH"    json:"soffice_path"`
	ScratchDir     string `env:"POCKETBOT_CONVERTER_SCRATCH_DIR"     json:"scratch_dir"`
	TimeoutSeconds int    `env:"POCKETBOT_CONVERTER_TIMEOUT_SECONDS" json:"timeout_seconds"`
}

type LogConfig struct {
	Level string `env:"POCKETBOT_LOG_LEVEL" json:"level"`
}

// ModelCatalog is the ordered label -> model id mapping shown in the models menu.
type ModelCatalog []ModelEntry

// Lookup returns the model id bound to label.
func (c ModelCatalog) Lookup(label string) (string, bool) {
	for _, m := range c {
		if m.Label == label {
			return m.ID, true
		}
	}
	return "", false
}

// Labels returns the catalog labels in order.
func (c ModelCatalog) Labels() []string {
	labels := make([]string, len(c))
	for i, m := range c {
		labels[i] = m.Label
	}
	return labels
}

func (c *Config) Catalog() ModelCatalog {
	return ModelCatalog(c.Models.Catalog)
}

func (c *Config) ScratchPath() string {
	return expandHome(c.Converter.ScratchDir)
}

func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 30,
		},
		Provider: ProviderConfig{
			Kind:    ProviderOpenRouter,
			APIBase: "https://openrouter.ai/api/v1",
			Referer: "https://t.me/pocketbot",
			Title:   "Personal AI Bot",
		},
		Models: ModelsConfig{
			Default: "mistralai/mistral-small-3.2-24b-instruct:free",
			Catalog: []ModelEntry{
				{Label: "DeepSeek R1", ID: "deepseek/deepseek-r1-0528:free"},
				{Label: "Mistral", ID: "mistralai/mistral-small-3.2-24b-instruct:free"},
				{Label: "Qwen3 Coder", ID: "qwen/qwen3-coder:free"},
			},
		},
		Geocode: GeocodeConfig{
			BaseURL:        "https://nominatim.openstreetmap.org",
			UserAgent:      "PocketbotWeather/1.0",
			Language:       "en",
			TimeoutSeconds: 10,
		},
		Converter: ConverterConfig{
			SofficePath:    "soffice",
			ScratchDir:     "~/.pocketbot/downloads",
			TimeoutSeconds: 120,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if err == nil {
		// A user-provided catalog replaces the defaults instead of merging
		// element-wise into the existing backing array.
		var tmp struct {
			Models struct {
				Catalog []ModelEntry `json:"catalog"`
			} `json:"models"`
		}
		if err := json.Unmarshal(data, &tmp); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if len(tmp.Models.Catalog) > 0 {
			cfg.Models.Catalog = nil
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks invariants that do not depend on which command runs.
// Credentials are checked by the commands that need them.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider.Kind {
	case ProviderOpenRouter, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("provider.kind %q: must be %q or %q",
			c.Provider.Kind, ProviderOpenRouter, ProviderAnthropic))
	}
	if c.Provider.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("provider.timeout_seconds must be non-negative"))
	}
	if c.Models.Default == "" {
		errs = append(errs, errors.New("models.default is required"))
	}

	seen := make(map[string]bool, len(c.Models.Catalog))
	for i, m := range c.Models.Catalog {
		if m.Label == "" || m.ID == "" {
			errs = append(errs, fmt.Errorf("models.catalog[%d]: label and id are required", i))
			continue
		}
		if seen[m.Label] {
			errs = append(errs, fmt.Errorf("models.catalog[%d]: duplicate label %q", i, m.Label))
		}
		seen[m.Label] = true
		if strings.HasPrefix(m.Label, "/") {
			errs = append(errs, fmt.Errorf("models.catalog[%d]: label %q must not look like a command", i, m.Label))
		}
	}

	if id := c.Telegram.AuthorizedUserID.String(); id != "" {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			errs = append(errs, fmt.Errorf("telegram.authorized_user_id %q: not a numeric id", id))
		}
	}
	if c.Converter.TimeoutSeconds < 0 || c.Geocode.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("timeouts must be non-negative"))
	}

	return errors.Join(errs...)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
