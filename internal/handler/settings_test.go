package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSettingsHandler_FieldSettings(t *testing.T) {
	gin.SetMode(gin.TestMode)

	global := models.DefaultSettings()
	h := NewSettingsHandler(global)
	r := gin.New()
	r.GET("/fields/:name/settings", h.FieldSettings)

	tests := []struct {
		name           string
		rawQuery       string
		expectedStatus int
		expectedBody   any
	}{
		{
			name:           "inherits everything",
			rawQuery:       "",
			expectedStatus: http.StatusOK,
			expectedBody:   global,
		},
		{
			name:           "field overrides",
			rawQuery:       "geocoding_api=nominatim&default_lat=35.68&default_lng=139.76&default_zoom=12&style_url=https://tiles.example.org/styles/bright",
			expectedStatus: http.StatusOK,
			expectedBody: models.Settings{
				GeocodingAPI: models.ProviderNominatim,
				StyleURL:     "https://tiles.example.org/styles/bright",
				DefaultLat:   35.68,
				DefaultLng:   139.76,
				DefaultZoom:  12,
			},
		},
		{
			name:           "invalid override values are sanitized",
			rawQuery:       "geocoding_api=google&default_zoom=99&style_url=javascript:alert(1)",
			expectedStatus: http.StatusOK,
			expectedBody: models.Settings{
				GeocodingAPI: models.ProviderPhoton,
				StyleURL:     models.DefaultStyleURL,
				DefaultLat:   models.DefaultLat,
				DefaultLng:   models.DefaultLng,
				DefaultZoom:  models.MaxZoom,
			},
		},
		{
			name:           "malformed latitude",
			rawQuery:       "default_lat=north",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "invalid default_lat"},
		},
		{
			name:           "malformed zoom",
			rawQuery:       "default_zoom=1.5",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "invalid default_zoom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fields/venue/settings?"+tt.rawQuery, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assertJSONBody(t, tt.expectedBody, w)
		})
	}
}
