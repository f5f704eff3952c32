package handler

import (
	"net/http"

	"github.com/eightam/acf-ofm-location/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	GeoCode        *GeoCodeHandler
	ReverseGeocode *ReverseGeocodeHandler
	Location       *LocationHandler
	Settings       *SettingsHandler
	Limiter        *IPRateLimiter
}

// NewRouter registers every route on a fresh gin engine
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(), metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", metrics.Handler())
	r.GET("/settings", h.Settings.Settings)

	api := r.Group("/")
	if h.Limiter != nil {
		api.Use(h.Limiter.RateLimit())
	}
	api.GET("/geocode", h.GeoCode.GeoCode)
	api.GET("/reverse-geocode", h.ReverseGeocode.ReverseGeocode)

	api.GET("/posts/:id/locations/:field", h.Location.GetLocation)
	api.PUT("/posts/:id/locations/:field", h.Location.PutLocation)
	api.DELETE("/posts/:id/locations/:field", h.Location.DeleteLocation)
	api.GET("/fields/:name/components", h.Location.Components)
	api.GET("/fields/:name/settings", h.Settings.FieldSettings)

	return r
}
