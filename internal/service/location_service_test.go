package service

import (
	"context"
	"testing"

	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLocationRepository is a mock implementation of the LocationRepository interface
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) SaveLocation(ctx context.Context, postID int64, field models.FieldRef, loc models.Location) error {
	args := m.Called(ctx, postID, field, loc)
	return args.Error(0)
}

func (m *MockLocationRepository) FindLocation(ctx context.Context, postID int64, fieldName string) (*models.Location, error) {
	args := m.Called(ctx, postID, fieldName)
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) DeleteLocation(ctx context.Context, postID int64, fieldName string) error {
	args := m.Called(ctx, postID, fieldName)
	return args.Error(0)
}

var venue = models.FieldRef{Key: "field_64ab", Name: "venue"}

func TestLocationService_Validate(t *testing.T) {
	svc := NewLocationService(new(MockLocationRepository))

	assert.ErrorIs(t, svc.Validate(nil, true), ErrLocationRequired)
	assert.NoError(t, svc.Validate(nil, false))
	assert.NoError(t, svc.Validate(&marunouchi, true))
	assert.ErrorIs(t, svc.Validate(&models.Location{Latitude: -95}, false), models.ErrInvalidLatitude)
	assert.ErrorIs(t, svc.Validate(&models.Location{Longitude: 200}, false), models.ErrInvalidLongitude)
}

func TestLocationService_Save(t *testing.T) {
	tests := []struct {
		name        string
		loc         *models.Location
		required    bool
		setup       func(repo *MockLocationRepository)
		expectError error
	}{
		{
			name:        "required but empty",
			loc:         nil,
			required:    true,
			expectError: ErrLocationRequired,
		},
		{
			name:     "empty value deletes components",
			loc:      nil,
			required: false,
			setup: func(repo *MockLocationRepository) {
				repo.On("DeleteLocation", mock.Anything, int64(7), "venue").Return(nil)
			},
		},
		{
			name: "sanitized value is stored",
			loc: &models.Location{
				FullAddress: " <em>Main St 5</em>, Springfield ",
				Street:      "Main St",
				HouseNumber: "5",
				City:        "Springfield",
				Latitude:    39.78,
				Longitude:   -89.65,
			},
			setup: func(repo *MockLocationRepository) {
				repo.On("SaveLocation", mock.Anything, int64(7), venue, models.Location{
					FullAddress: "Main St 5, Springfield",
					Street:      "Main St",
					HouseNumber: "5",
					City:        "Springfield",
					Latitude:    39.78,
					Longitude:   -89.65,
				}).Return(nil)
			},
		},
		{
			name: "missing address falls back to coordinates",
			loc:  &models.Location{Latitude: 1.5, Longitude: 2.25},
			setup: func(repo *MockLocationRepository) {
				repo.On("SaveLocation", mock.Anything, int64(7), venue, models.Location{
					FullAddress: "1.500000, 2.250000",
					Latitude:    1.5,
					Longitude:   2.25,
				}).Return(nil)
			},
		},
		{
			name:        "invalid latitude",
			loc:         &models.Location{Latitude: 100},
			expectError: models.ErrInvalidLatitude,
		},
		{
			name: "repository error",
			loc:  &marunouchi,
			setup: func(repo *MockLocationRepository) {
				repo.On("SaveLocation", mock.Anything, int64(7), venue, marunouchi).Return(assert.AnError)
			},
			expectError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLocationRepository)
			if tt.setup != nil {
				tt.setup(repo)
			}
			svc := NewLocationService(repo)

			err := svc.Save(context.Background(), 7, venue, tt.loc, tt.required)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLocationService_Get(t *testing.T) {
	repo := new(MockLocationRepository)
	repo.On("FindLocation", mock.Anything, int64(3), "venue").Return(&marunouchi, nil)
	repo.On("FindLocation", mock.Anything, int64(4), "venue").Return((*models.Location)(nil), nil)
	repo.On("FindLocation", mock.Anything, int64(5), "venue").Return((*models.Location)(nil), assert.AnError)
	svc := NewLocationService(repo)

	loc, err := svc.Get(context.Background(), 3, "venue")
	assert.NoError(t, err)
	assert.Equal(t, &marunouchi, loc)

	loc, err = svc.Get(context.Background(), 4, "venue")
	assert.NoError(t, err)
	assert.Nil(t, loc)

	_, err = svc.Get(context.Background(), 5, "venue")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLocationService_Delete(t *testing.T) {
	repo := new(MockLocationRepository)
	repo.On("DeleteLocation", mock.Anything, int64(3), "venue").Return(nil)

	assert.NoError(t, NewLocationService(repo).Delete(context.Background(), 3, "venue"))
	repo.AssertExpectations(t)
}
