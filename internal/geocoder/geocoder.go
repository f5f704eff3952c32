package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eightam/acf-ofm-location/internal/metrics"
	"github.com/eightam/acf-ofm-location/internal/models"
)

// MaxResults caps the number of search results returned by any provider.
const MaxResults = 5

const (
	DefaultPhotonURL    = "https://photon.komoot.io"
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent    = "acf-ofm-location/1.0"
)

var (
	ErrUnknownProvider    = errors.New("geocoder: unknown provider")
	ErrReverseUnsupported = errors.New("geocoder: provider does not support reverse geocoding")
)

// Searcher resolves a free-text query to candidate locations.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Location, error)
}

// Reverser resolves a point to an address.
type Reverser interface {
	Reverse(ctx context.Context, lat, lng float64) (models.Location, error)
}

// Provider is a geocoding backend.
type Provider interface {
	Searcher
	Reverser
	Name() string
}

// Config holds the settings shared by all providers.
type Config struct {
	PhotonURL    string
	NominatimURL string
	UserAgent    string
	Timeout      time.Duration
	// NominatimRate is the maximum number of Nominatim requests per second.
	NominatimRate float64
	HTTPClient    *http.Client
}

func (c Config) withDefaults() Config {
	if c.PhotonURL == "" {
		c.PhotonURL = DefaultPhotonURL
	}
	if c.NominatimURL == "" {
		c.NominatimURL = DefaultNominatimURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.NominatimRate <= 0 {
		c.NominatimRate = 1
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// New builds the provider registered under name. Photon falls back to a
// Nominatim client built from the same config for reverse lookups.
func New(name string, cfg Config) (Provider, error) {
	switch name {
	case models.ProviderNominatim:
		return NewNominatim(cfg), nil
	case models.ProviderPhoton, "":
		return NewPhoton(cfg, NewNominatim(cfg)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// getJSON performs a GET and decodes a 200 response into dst.
func getJSON(ctx context.Context, client *http.Client, userAgent, provider, operation, url string, dst any) error {
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("geocoder: %s: build request: %w", provider, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		metrics.ObserveUpstream(provider, operation, "error", started)
		return fmt.Errorf("geocoder: %s request failed: %w", provider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveUpstream(provider, operation, "error", started)
		return fmt.Errorf("geocoder: %s upstream status %d", provider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		metrics.ObserveUpstream(provider, operation, "error", started)
		return fmt.Errorf("geocoder: %s decode: %w", provider, err)
	}

	metrics.ObserveUpstream(provider, operation, "ok", started)
	return nil
}
