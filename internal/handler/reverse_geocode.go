package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ReverseGeocodeHandler handles reverse geocoding requests
type ReverseGeocodeHandler struct {
	service GeoCodingService
}

// Service interface for dependency injection. A nil error always comes with a location.
type GeoCodingService interface {
	ReverseGeocode(context.Context, float64, float64) (*models.Location, error)
}

// NewReverseGeocodeHandler creates a new reverse geocode handler
func NewReverseGeocodeHandler(svc GeoCodingService) *ReverseGeocodeHandler {
	return &ReverseGeocodeHandler{service: svc}
}

// ReverseGeocode handles GET /reverse-geocode requests
func (h *ReverseGeocodeHandler) ReverseGeocode(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'lat' and 'lon'"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude format"})
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude format"})
		return
	}

	location, err := h.service.ReverseGeocode(c.Request.Context(), lat, lon)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidLatitude):
			c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidLatitude.Error()})
		case errors.Is(err, models.ErrInvalidLongitude):
			c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidLongitude.Error()})
		default:
			log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("reverse geocode failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, location)
}
