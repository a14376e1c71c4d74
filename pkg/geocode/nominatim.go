// Package geocode resolves coordinates to a human-readable place name using
// a Nominatim-compatible reverse geocoding endpoint.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/tinyland-inc/pocketbot/pkg/logger"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// NearestSettlement is used when the response has no locality field.
	NearestSettlement = "the nearest settlement"
	// UnknownArea is substituted by callers when the lookup fails outright.
	UnknownArea = "this area"
)

var localityFields = []string{"address.city", "address.town", "address.village", "address.hamlet"}

// Error reports a failed lookup. It is never shown to users.
type Error struct {
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("reverse geocode: status %d", e.StatusCode)
	}
	return fmt.Sprintf("reverse geocode: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Config struct {
	BaseURL   string
	UserAgent string
	Language  string
	Timeout   time.Duration
}

type Client struct {
	http     *resty.Client
	language string
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(base).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	return &Client{http: rc, language: lang}
}

// Reverse returns "City, State", "City" or the nearest-settlement placeholder.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":             strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":             strconv.FormatFloat(lon, 'f', -1, 64),
			"format":          "json",
			"accept-language": c.language,
		}).
		Get("/reverse")
	if err != nil {
		return "", &Error{Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &Error{StatusCode: resp.StatusCode()}
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return "", &Error{Err: fmt.Errorf("invalid JSON body")}
	}

	place := DisplayName(body)
	logger.DebugCF("geocode", "Reverse lookup resolved", map[string]any{
		"place": place,
	})
	return place, nil
}

// DisplayName extracts the locality and region from a reverse lookup body.
func DisplayName(body []byte) string {
	city := ""
	for _, field := range localityFields {
		if v := strings.TrimSpace(gjson.GetBytes(body, field).String()); v != "" {
			city = v
			break
		}
	}
	if city == "" {
		city = NearestSettlement
	}

	if region := strings.TrimSpace(gjson.GetBytes(body, "address.state").String()); region != "" {
		return city + ", " + region
	}
	return city
}
