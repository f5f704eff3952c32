package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eightam/acf-ofm-location/internal/models"
	"github.com/eightam/acf-ofm-location/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GeoCodeHandler handles geocoding requests
type GeoCodeHandler struct {
	service GeoCodeService
}

// Service interface for dependency injection
type GeoCodeService interface {
	Geocode(context.Context, string) ([]models.Location, error)
}

// NewGeoCodeHandler creates a new geocode handler
func NewGeoCodeHandler(svc GeoCodeService) *GeoCodeHandler {
	return &GeoCodeHandler{service: svc}
}

// GeoCode handles GET /geocode requests
func (h *GeoCodeHandler) GeoCode(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	locations, err := h.service.Geocode(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrQueryTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query must be at least 3 characters"})
			return
		}
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("geocode failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, locations)
}
