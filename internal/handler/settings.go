package handler

import (
	"net/http"
	"strconv"

	"github.com/eightam/acf-ofm-location/internal/models"

	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the picker configuration to the browser
type SettingsHandler struct {
	settings models.Settings
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings models.Settings) *SettingsHandler {
	settings.Sanitize()
	return &SettingsHandler{settings: settings}
}

// Settings handles GET /settings requests
func (h *SettingsHandler) Settings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings)
}

// FieldSettings handles GET /fields/:name/settings requests. Query
// parameters carry the field's own settings; anything left out inherits
// the global value.
func (h *SettingsHandler) FieldSettings(c *gin.Context) {
	field := models.Settings{
		GeocodingAPI: c.Query("geocoding_api"),
		StyleURL:     c.Query("style_url"),
	}

	var err error
	if field.DefaultLat, err = optionalFloat(c, "default_lat"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default_lat"})
		return
	}
	if field.DefaultLng, err = optionalFloat(c, "default_lng"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default_lng"})
		return
	}
	if raw := c.Query("default_zoom"); raw != "" {
		if field.DefaultZoom, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default_zoom"})
			return
		}
	}

	effective := h.settings.Override(field)
	effective.Sanitize()
	c.JSON(http.StatusOK, effective)
}

func optionalFloat(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
