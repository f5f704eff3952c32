package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eightam/acf-ofm-location/internal/geocoder"
	"github.com/eightam/acf-ofm-location/internal/metrics"
	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/rs/zerolog/log"
)

// ReverseGeoCodeService contains the core business logic for reverse geocoding operations
type ReverseGeoCodeService struct {
	reverser geocoder.Reverser
	cache    Cache
	ttl      time.Duration
}

// NewReverseGeoCodeService creates a new reverse geo code service. cache may be nil.
func NewReverseGeoCodeService(reverser geocoder.Reverser, cache Cache, ttl time.Duration) *ReverseGeoCodeService {
	return &ReverseGeoCodeService{reverser: reverser, cache: cache, ttl: ttl}
}

// ReverseGeocode resolves the address at the given coordinates. A failing
// provider never fails the call: the coordinates alone are returned.
func (s *ReverseGeoCodeService) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Location, error) {
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	key := "reverse:" + fmt.Sprintf("%.6f,%.6f", lat, lng)
	if s.cache != nil {
		var cached models.Location
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("reverse cache read failed")
		}
		if found {
			metrics.CacheHits.WithLabelValues("reverse").Inc()
			cached.Latitude, cached.Longitude = lat, lng
			return &cached, nil
		}
		metrics.CacheMisses.WithLabelValues("reverse").Inc()
	}

	location, err := s.reverser.Reverse(ctx, lat, lng)
	if err != nil {
		log.Warn().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("reverse geocoding failed, returning coordinates only")
		fallback := models.CoordinatesOnly(lat, lng)
		return &fallback, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, location, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("reverse cache write failed")
		}
	}

	return &location, nil
}
