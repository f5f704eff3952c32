package models

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Component keys of a location value, in the order they are rendered and stored.
const (
	ComponentFullAddress = "full_address"
	ComponentStreet      = "street"
	ComponentNumber      = "number"
	ComponentCity        = "city"
	ComponentPostCode    = "post_code"
	ComponentCountry     = "country"
	ComponentState       = "state"
	ComponentLat         = "lat"
	ComponentLng         = "lng"
)

// Components lists every component key of a location value.
var Components = []string{
	ComponentFullAddress,
	ComponentStreet,
	ComponentNumber,
	ComponentCity,
	ComponentPostCode,
	ComponentCountry,
	ComponentState,
	ComponentLat,
	ComponentLng,
}

var (
	ErrInvalidLatitude  = errors.New("invalid latitude value")
	ErrInvalidLongitude = errors.New("invalid longitude value")
)

// Location is a single selected place: its decomposed address and its coordinates.
type Location struct {
	FullAddress string  `json:"full_address"`
	Street      string  `json:"street"`
	HouseNumber string  `json:"number"`
	City        string  `json:"city"`
	PostCode    string  `json:"post_code"`
	Country     string  `json:"country"`
	State       string  `json:"state"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
}

// NewLocation builds a Location from its address parts and fills FullAddress.
// When every part is empty the address falls back to the formatted coordinates.
func NewLocation(street, number, city, postCode, state, country string, lat, lng float64) Location {
	full := BuildFullAddress(street, number, city, postCode, state, country)
	if full == "" {
		full = FormatCoordinates(lat, lng)
	}
	return Location{
		FullAddress: full,
		Street:      street,
		HouseNumber: number,
		City:        city,
		PostCode:    postCode,
		Country:     country,
		State:       state,
		Latitude:    lat,
		Longitude:   lng,
	}
}

// CoordinatesOnly is the record used when no address can be resolved for a point.
func CoordinatesOnly(lat, lng float64) Location {
	return Location{
		FullAddress: FormatCoordinates(lat, lng),
		Latitude:    lat,
		Longitude:   lng,
	}
}

// BuildFullAddress joins the non-empty parts with ", " in a fixed order:
// "street number", city, post code, state, country.
func BuildFullAddress(street, number, city, postCode, state, country string) string {
	parts := make([]string, 0, 5)
	if street != "" {
		if number != "" {
			parts = append(parts, street+" "+number)
		} else {
			parts = append(parts, street)
		}
	}
	for _, p := range []string{city, postCode, state, country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// FormatCoordinates renders a point as "lat, lng" with six decimals.
func FormatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

// ValidateCoordinates checks that lat is within [-90, 90] and lng within
// [-180, 180]. NaN is outside every range.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: %f", ErrInvalidLatitude, lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: %f", ErrInvalidLongitude, lng)
	}
	return nil
}

// FormatFloat renders a coordinate without losing precision.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Values returns the location as bound form values keyed by component.
func (l Location) Values() map[string]string {
	return map[string]string{
		ComponentFullAddress: l.FullAddress,
		ComponentStreet:      l.Street,
		ComponentNumber:      l.HouseNumber,
		ComponentCity:        l.City,
		ComponentPostCode:    l.PostCode,
		ComponentCountry:     l.Country,
		ComponentState:       l.State,
		ComponentLat:         FormatFloat(l.Latitude),
		ComponentLng:         FormatFloat(l.Longitude),
	}
}

// LocationFromValues is the inverse of Values. ok reports whether both
// coordinates were present, finite and numeric.
func LocationFromValues(values map[string]string) (loc Location, ok bool) {
	loc = Location{
		FullAddress: values[ComponentFullAddress],
		Street:      values[ComponentStreet],
		HouseNumber: values[ComponentNumber],
		City:        values[ComponentCity],
		PostCode:    values[ComponentPostCode],
		Country:     values[ComponentCountry],
		State:       values[ComponentState],
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(values[ComponentLat]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(values[ComponentLng]), 64)
	if latErr != nil || lngErr != nil || !isFinite(lat) || !isFinite(lng) {
		return loc, false
	}
	loc.Latitude = lat
	loc.Longitude = lng
	return loc, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize strips markup, control characters and surrounding whitespace from
// every text component.
func (l *Location) Sanitize() {
	for _, s := range []*string{
		&l.FullAddress, &l.Street, &l.HouseNumber, &l.City,
		&l.PostCode, &l.Country, &l.State,
	} {
		*s = sanitizeText(*s)
	}
}

func sanitizeText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
