package geocoder

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/eightam/acf-ofm-location/internal/models"

	"golang.org/x/time/rate"
)

// Nominatim queries an OpenStreetMap Nominatim instance. Requests are
// throttled to the configured rate as required by the public usage policy.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

type nominatimAddress struct {
	Road        string `json:"road"`
	HouseNumber string `json:"house_number"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	PostCode    string `json:"postcode"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

type nominatimPlace struct {
	Lat     string           `json:"lat"`
	Lon     string           `json:"lon"`
	Address nominatimAddress `json:"address"`
}

// NewNominatim creates a Nominatim client.
func NewNominatim(cfg Config) *Nominatim {
	cfg = cfg.withDefaults()
	return &Nominatim{
		baseURL:   strings.TrimRight(cfg.NominatimURL, "/"),
		userAgent: cfg.UserAgent,
		client:    cfg.HTTPClient,
		limiter:   rate.NewLimiter(rate.Limit(cfg.NominatimRate), 1),
	}
}

func (n *Nominatim) Name() string { return models.ProviderNominatim }

// Search returns at most MaxResults locations in provider order.
func (n *Nominatim) Search(ctx context.Context, query string) ([]models.Location, error) {
	params := url.Values{}
	params.Add("format", "json")
	params.Add("q", query)
	params.Add("addressdetails", "1")

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocoder: nominatim throttle: %w", err)
	}

	var places []nominatimPlace
	if err := getJSON(ctx, n.client, n.userAgent, n.Name(), "search", n.baseURL+"/search?"+params.Encode(), &places); err != nil {
		return nil, err
	}

	places = places[:min(MaxResults, len(places))]
	locations := make([]models.Location, 0, len(places))
	for _, p := range places {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil || models.ValidateCoordinates(lat, lng) != nil {
			continue
		}
		loc := fromNominatimAddress(p.Address, lat, lng)
		loc.FullAddress = models.BuildFullAddress(loc.Street, loc.HouseNumber, loc.City, loc.PostCode, loc.State, loc.Country)
		locations = append(locations, loc)
	}

	return locations, nil
}

// Reverse resolves the address at lat/lng. The returned location keeps the
// requested coordinates; an unresolvable point yields the coordinate string
// as its address.
func (n *Nominatim) Reverse(ctx context.Context, lat, lng float64) (models.Location, error) {
	params := url.Values{}
	params.Add("format", "json")
	params.Add("lat", models.FormatFloat(lat))
	params.Add("lon", models.FormatFloat(lng))
	params.Add("addressdetails", "1")

	if err := n.limiter.Wait(ctx); err != nil {
		return models.Location{}, fmt.Errorf("geocoder: nominatim throttle: %w", err)
	}

	var place nominatimPlace
	if err := getJSON(ctx, n.client, n.userAgent, n.Name(), "reverse", n.baseURL+"/reverse?"+params.Encode(), &place); err != nil {
		return models.Location{}, err
	}

	a := fromNominatimAddress(place.Address, lat, lng)
	return models.NewLocation(a.Street, a.HouseNumber, a.City, a.PostCode, a.State, a.Country, lat, lng), nil
}

func fromNominatimAddress(a nominatimAddress, lat, lng float64) models.Location {
	return models.Location{
		Street:      a.Road,
		HouseNumber: a.HouseNumber,
		City:        pickCity(a),
		PostCode:    a.PostCode,
		Country:     a.Country,
		State:       a.State,
		Latitude:    lat,
		Longitude:   lng,
	}
}

func pickCity(a nominatimAddress) string {
	if a.City != "" {
		return a.City
	}
	if a.Town != "" {
		return a.Town
	}
	return a.Village
}
