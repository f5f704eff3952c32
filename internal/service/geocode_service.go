package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eightam/acf-ofm-location/internal/geocoder"
	"github.com/eightam/acf-ofm-location/internal/metrics"
	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/rs/zerolog/log"
)

// MinQueryLength is the shortest query sent to a provider.
const MinQueryLength = 3

var ErrQueryTooShort = errors.New("service: query must be at least 3 characters")

// Cache interface for dependency injection
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// GeoCodeService contains the core business logic for forward geocoding
type GeoCodeService struct {
	provider geocoder.Searcher
	name     string
	cache    Cache
	ttl      time.Duration
}

// NewGeoCodeService creates a new geo code service. cache may be nil.
func NewGeoCodeService(provider geocoder.Provider, cache Cache, ttl time.Duration) *GeoCodeService {
	return &GeoCodeService{provider: provider, name: provider.Name(), cache: cache, ttl: ttl}
}

// Geocode searches the configured provider for address text. Upstream
// failures are logged and reported as an empty result set.
func (s *GeoCodeService) Geocode(ctx context.Context, address string) ([]models.Location, error) {
	query := strings.TrimSpace(address)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	key := fmt.Sprintf("geocode:%s:%s", s.name, strings.ToLower(query))
	if s.cache != nil {
		var cached []models.Location
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("geocode cache read failed")
		}
		if found {
			metrics.CacheHits.WithLabelValues("geocode").Inc()
			return cached, nil
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	locations, err := s.provider.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("provider", s.name).Str("query", query).Msg("forward geocoding failed")
		return []models.Location{}, nil
	}
	if len(locations) > geocoder.MaxResults {
		locations = locations[:geocoder.MaxResults]
	}
	if len(locations) == 0 {
		return []models.Location{}, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, locations, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("geocode cache write failed")
		}
	}

	return locations, nil
}
