package models

import "net/url"

// Geocoding provider names accepted in settings.
const (
	ProviderPhoton    = "photon"
	ProviderNominatim = "nominatim"
)

const (
	DefaultStyleURL = "https://tiles.openfreemap.org/styles/positron"
	DefaultLat      = 50.0
	DefaultLng      = 10.0
	DefaultZoom     = 6
	MaxZoom         = 20
)

// Settings configures a location picker: which provider answers searches,
// which map style is drawn and where the map starts.
type Settings struct {
	GeocodingAPI string  `json:"geocoding_api" mapstructure:"geocoding_api"`
	StyleURL     string  `json:"style_url" mapstructure:"style_url"`
	DefaultLat   float64 `json:"default_lat" mapstructure:"default_lat"`
	DefaultLng   float64 `json:"default_lng" mapstructure:"default_lng"`
	DefaultZoom  int     `json:"default_zoom" mapstructure:"default_zoom"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		GeocodingAPI: ProviderPhoton,
		StyleURL:     DefaultStyleURL,
		DefaultLat:   DefaultLat,
		DefaultLng:   DefaultLng,
		DefaultZoom:  DefaultZoom,
	}
}

// Sanitize replaces unknown providers with Photon, restores an empty or
// malformed style URL and clamps the zoom level into 0..20.
func (s *Settings) Sanitize() {
	if s.GeocodingAPI != ProviderPhoton && s.GeocodingAPI != ProviderNominatim {
		s.GeocodingAPI = ProviderPhoton
	}
	if !ValidStyleURL(s.StyleURL) {
		s.StyleURL = DefaultStyleURL
	}
	if s.DefaultZoom < 0 {
		s.DefaultZoom = 0
	}
	if s.DefaultZoom > MaxZoom {
		s.DefaultZoom = MaxZoom
	}
	if ValidateCoordinates(s.DefaultLat, s.DefaultLng) != nil {
		s.DefaultLat = DefaultLat
		s.DefaultLng = DefaultLng
	}
}

// ValidStyleURL reports whether raw is an absolute http(s) URL.
func ValidStyleURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Override returns s with every value set in field taken from field. Empty
// strings and zero numbers inherit, as does a malformed style URL.
func (s Settings) Override(field Settings) Settings {
	if field.GeocodingAPI != "" {
		s.GeocodingAPI = field.GeocodingAPI
	}
	if field.StyleURL != "" && ValidStyleURL(field.StyleURL) {
		s.StyleURL = field.StyleURL
	}
	if field.DefaultLat != 0 {
		s.DefaultLat = field.DefaultLat
	}
	if field.DefaultLng != 0 {
		s.DefaultLng = field.DefaultLng
	}
	if field.DefaultZoom != 0 {
		s.DefaultZoom = field.DefaultZoom
	}
	return s
}
