package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/time/rate"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2)
	r := gin.New()
	r.Use(limiter.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":4321"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1"))
	// buckets are per client
	assert.Equal(t, http.StatusOK, get("10.0.0.2"))
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	geo := new(MockGeoCodeService)
	geo.On("Geocode", mock.Anything, "berlin").Return([]models.Location{marunouchi}, nil)
	settings := models.Settings{GeocodingAPI: "bogus", DefaultZoom: 40}

	r := NewRouter(Handlers{
		GeoCode:        NewGeoCodeHandler(geo),
		ReverseGeocode: NewReverseGeocodeHandler(new(MockReverseGeoCodeService)),
		Location:       NewLocationHandler(new(MockLocationService)),
		Settings:       NewSettingsHandler(settings),
		Limiter:        NewIPRateLimiter(rate.Inf, 1),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	settings.Sanitize()
	assertJSONBody(t, settings, w)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/geocode?q=berlin", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assertJSONBody(t, []models.Location{marunouchi}, w)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ofm_location_http_requests_total")

	geo.AssertExpectations(t)
}
