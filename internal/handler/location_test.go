package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eightam/acf-ofm-location/internal/models"
	"github.com/eightam/acf-ofm-location/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLocationService is a mock implementation of the LocationService interface
type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) Save(ctx context.Context, postID int64, field models.FieldRef, loc *models.Location, required bool) error {
	args := m.Called(ctx, postID, field, loc, required)
	return args.Error(0)
}

func (m *MockLocationService) Get(ctx context.Context, postID int64, fieldName string) (*models.Location, error) {
	args := m.Called(ctx, postID, fieldName)
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationService) Delete(ctx context.Context, postID int64, fieldName string) error {
	args := m.Called(ctx, postID, fieldName)
	return args.Error(0)
}

func setupLocationRouter(svc LocationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLocationHandler(svc)
	r := gin.New()
	r.GET("/posts/:id/locations/:field", h.GetLocation)
	r.PUT("/posts/:id/locations/:field", h.PutLocation)
	r.DELETE("/posts/:id/locations/:field", h.DeleteLocation)
	r.GET("/fields/:name/components", h.Components)
	return r
}

func TestLocationHandler_GetLocation(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setup          func(svc *MockLocationService)
		expectedStatus int
		expectedBody   any
	}{
		{
			name: "stored value",
			path: "/posts/3/locations/venue",
			setup: func(svc *MockLocationService) {
				svc.On("Get", mock.Anything, int64(3), "venue").Return(&marunouchi, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   marunouchi,
		},
		{
			name: "empty field",
			path: "/posts/3/locations/venue",
			setup: func(svc *MockLocationService) {
				svc.On("Get", mock.Anything, int64(3), "venue").Return((*models.Location)(nil), nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   gin.H{"error": "no location set"},
		},
		{
			name:           "invalid post id",
			path:           "/posts/abc/locations/venue",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "invalid post id"},
		},
		{
			name: "service error",
			path: "/posts/3/locations/venue",
			setup: func(svc *MockLocationService) {
				svc.On("Get", mock.Anything, int64(3), "venue").Return((*models.Location)(nil), assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockLocationService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			w := httptest.NewRecorder()
			setupLocationRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assertJSONBody(t, tt.expectedBody, w)
			svc.AssertExpectations(t)
		})
	}
}

func TestLocationHandler_PutLocation(t *testing.T) {
	venue := models.FieldRef{Key: "field_venue", Name: "venue"}

	tests := []struct {
		name           string
		target         string
		body           string
		setup          func(svc *MockLocationService)
		expectedStatus int
		expectedBody   any
	}{
		{
			name:   "stores value",
			target: "/posts/7/locations/venue?key=field_64ab",
			body:   `{"full_address":"Main St 5, Springfield","street":"Main St","number":"5","city":"Springfield","lat":39.78,"lng":-89.65}`,
			setup: func(svc *MockLocationService) {
				svc.On("Save", mock.Anything, int64(7), models.FieldRef{Key: "field_64ab", Name: "venue"}, &models.Location{
					FullAddress: "Main St 5, Springfield",
					Street:      "Main St",
					HouseNumber: "5",
					City:        "Springfield",
					Latitude:    39.78,
					Longitude:   -89.65,
				}, false).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "zero coordinates are a value",
			target: "/posts/7/locations/venue",
			body:   `{"lat":0,"lng":0}`,
			setup: func(svc *MockLocationService) {
				svc.On("Save", mock.Anything, int64(7), venue, &models.Location{}, false).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "empty body clears",
			target: "/posts/7/locations/venue",
			setup: func(svc *MockLocationService) {
				svc.On("Save", mock.Anything, int64(7), venue, (*models.Location)(nil), false).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "required but empty",
			target: "/posts/7/locations/venue?required=1",
			body:   `{"full_address":"somewhere"}`,
			setup: func(svc *MockLocationService) {
				svc.On("Save", mock.Anything, int64(7), venue, (*models.Location)(nil), true).Return(service.ErrLocationRequired)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   gin.H{"error": "please select a location"},
		},
		{
			name:   "latitude out of range",
			target: "/posts/7/locations/venue",
			body:   `{"lat":120,"lng":10}`,
			setup: func(svc *MockLocationService) {
				svc.On("Save", mock.Anything, int64(7), venue, mock.Anything, false).Return(models.ErrInvalidLatitude)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   gin.H{"error": models.ErrInvalidLatitude.Error()},
		},
		{
			name:   "longitude out of range",
			target: "/posts/7/locations/venue",
			body:   `{"lat":10,"lng":200}`,
			setup: func(svc *MockLocationService) {
				svc.On("Save", mock.Anything, int64(7), venue, mock.Anything, false).Return(models.ErrInvalidLongitude)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   gin.H{"error": models.ErrInvalidLongitude.Error()},
		},
		{
			name:           "malformed body",
			target:         "/posts/7/locations/venue",
			body:           `{"lat":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "invalid location payload"},
		},
		{
			name:           "malformed required flag",
			target:         "/posts/7/locations/venue?required=maybe",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "invalid 'required' flag"},
		},
		{
			name:   "storage error",
			target: "/posts/7/locations/venue",
			body:   `{"lat":1,"lng":2}`,
			setup: func(svc *MockLocationService) {
				svc.On("Save", mock.Anything, int64(7), venue, mock.Anything, false).Return(fmt.Errorf("service: %w", assert.AnError))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockLocationService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			req := httptest.NewRequest(http.MethodPut, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			setupLocationRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != nil {
				assertJSONBody(t, tt.expectedBody, w)
			} else {
				assert.Empty(t, w.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestLocationHandler_DeleteLocation(t *testing.T) {
	svc := new(MockLocationService)
	svc.On("Delete", mock.Anything, int64(3), "venue").Return(nil).Once()
	svc.On("Delete", mock.Anything, int64(4), "venue").Return(assert.AnError).Once()
	r := setupLocationRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/posts/3/locations/venue", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/posts/4/locations/venue", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/posts/0/locations/venue", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestLocationHandler_Components(t *testing.T) {
	r := setupLocationRouter(new(MockLocationService))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fields/venue/components?key=field_64ab&label=Venue", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assertJSONBody(t, models.CompanionFields("field_64ab", "venue", "Venue"), w)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fields/venue/components", nil))
	assertJSONBody(t, models.CompanionFields("field_venue", "venue", "venue"), w)
}
