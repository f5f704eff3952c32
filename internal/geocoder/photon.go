package geocoder

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/eightam/acf-ofm-location/internal/models"
)

// Photon queries a komoot Photon instance. Photon only answers searches;
// reverse lookups go to the fallback reverser.
type Photon struct {
	baseURL   string
	userAgent string
	client    *http.Client
	fallback  Reverser
}

type photonResponse struct {
	Features []photonFeature `json:"features"`
}

type photonFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Street      string `json:"street"`
		HouseNumber string `json:"housenumber"`
		City        string `json:"city"`
		PostCode    string `json:"postcode"`
		State       string `json:"state"`
		Country     string `json:"country"`
	} `json:"properties"`
}

// NewPhoton creates a Photon client. fallback may be nil.
func NewPhoton(cfg Config, fallback Reverser) *Photon {
	cfg = cfg.withDefaults()
	return &Photon{
		baseURL:   strings.TrimRight(cfg.PhotonURL, "/"),
		userAgent: cfg.UserAgent,
		client:    cfg.HTTPClient,
		fallback:  fallback,
	}
}

func (p *Photon) Name() string { return models.ProviderPhoton }

// Search returns at most MaxResults locations in provider order.
func (p *Photon) Search(ctx context.Context, query string) ([]models.Location, error) {
	reqURL := p.baseURL + "/api/?" + url.Values{"q": {query}}.Encode()

	var resp photonResponse
	if err := getJSON(ctx, p.client, p.userAgent, p.Name(), "search", reqURL, &resp); err != nil {
		return nil, err
	}

	// only the first MaxResults features are considered, unusable ones are dropped
	features := resp.Features[:min(MaxResults, len(resp.Features))]
	locations := make([]models.Location, 0, len(features))
	for _, f := range features {
		// GeoJSON order is [lng, lat]
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		if models.ValidateCoordinates(f.Geometry.Coordinates[1], f.Geometry.Coordinates[0]) != nil {
			continue
		}
		props := f.Properties
		full := models.BuildFullAddress(props.Street, props.HouseNumber, props.City, props.PostCode, props.State, props.Country)
		locations = append(locations, models.Location{
			FullAddress: full,
			Street:      props.Street,
			HouseNumber: props.HouseNumber,
			City:        props.City,
			PostCode:    props.PostCode,
			Country:     props.Country,
			State:       props.State,
			Latitude:    f.Geometry.Coordinates[1],
			Longitude:   f.Geometry.Coordinates[0],
		})
	}

	return locations, nil
}

// Reverse delegates to the fallback reverser.
func (p *Photon) Reverse(ctx context.Context, lat, lng float64) (models.Location, error) {
	if p.fallback == nil {
		return models.Location{}, ErrReverseUnsupported
	}
	return p.fallback.Reverse(ctx, lat, lng)
}
