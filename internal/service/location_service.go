package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eightam/acf-ofm-location/internal/models"
)

var ErrLocationRequired = errors.New("please select a location")

// LocationRepository interface for dependency injection
type LocationRepository interface {
	SaveLocation(ctx context.Context, postID int64, field models.FieldRef, loc models.Location) error
	FindLocation(ctx context.Context, postID int64, fieldName string) (*models.Location, error)
	DeleteLocation(ctx context.Context, postID int64, fieldName string) error
}

// LocationService stores the location values of content items
type LocationService struct {
	repo LocationRepository
}

// NewLocationService creates a new location service
func NewLocationService(repo LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

// Validate checks a submitted value. loc is nil when nothing was picked.
func (s *LocationService) Validate(loc *models.Location, required bool) error {
	if loc == nil {
		if required {
			return ErrLocationRequired
		}
		return nil
	}
	return models.ValidateCoordinates(loc.Latitude, loc.Longitude)
}

// Save validates and stores loc, or removes the stored value when loc is nil.
func (s *LocationService) Save(ctx context.Context, postID int64, field models.FieldRef, loc *models.Location, required bool) error {
	if err := s.Validate(loc, required); err != nil {
		return err
	}

	if loc == nil {
		if err := s.repo.DeleteLocation(ctx, postID, field.Name); err != nil {
			return fmt.Errorf("service: failed to delete location: %w", err)
		}
		return nil
	}

	clean := *loc
	clean.Sanitize()
	if clean.FullAddress == "" {
		clean.FullAddress = models.FormatCoordinates(clean.Latitude, clean.Longitude)
	}

	if err := s.repo.SaveLocation(ctx, postID, field, clean); err != nil {
		return fmt.Errorf("service: failed to save location: %w", err)
	}
	return nil
}

// Get returns the stored value, or nil when the field is empty.
func (s *LocationService) Get(ctx context.Context, postID int64, fieldName string) (*models.Location, error) {
	loc, err := s.repo.FindLocation(ctx, postID, fieldName)
	if err != nil {
		return nil, fmt.Errorf("service: failed to find location: %w", err)
	}
	return loc, nil
}

// Delete removes every component of the stored value.
func (s *LocationService) Delete(ctx context.Context, postID int64, fieldName string) error {
	if err := s.repo.DeleteLocation(ctx, postID, fieldName); err != nil {
		return fmt.Errorf("service: failed to delete location: %w", err)
	}
	return nil
}
