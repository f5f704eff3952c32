package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/eightam/acf-ofm-location/internal/models"
	"github.com/eightam/acf-ofm-location/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// LocationHandler handles reads and writes of stored location values
type LocationHandler struct {
	service LocationService
}

// Service interface for dependency injection
type LocationService interface {
	Save(ctx context.Context, postID int64, field models.FieldRef, loc *models.Location, required bool) error
	Get(ctx context.Context, postID int64, fieldName string) (*models.Location, error)
	Delete(ctx context.Context, postID int64, fieldName string) error
}

// locationRequest is the submitted form value. Coordinates are pointers so
// an unset location can be told apart from 0,0.
type locationRequest struct {
	FullAddress string   `json:"full_address"`
	Street      string   `json:"street"`
	Number      string   `json:"number"`
	City        string   `json:"city"`
	PostCode    string   `json:"post_code"`
	Country     string   `json:"country"`
	State       string   `json:"state"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

func (r locationRequest) location() *models.Location {
	if r.Lat == nil || r.Lng == nil {
		return nil
	}
	return &models.Location{
		FullAddress: r.FullAddress,
		Street:      r.Street,
		HouseNumber: r.Number,
		City:        r.City,
		PostCode:    r.PostCode,
		Country:     r.Country,
		State:       r.State,
		Latitude:    *r.Lat,
		Longitude:   *r.Lng,
	}
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(svc LocationService) *LocationHandler {
	return &LocationHandler{service: svc}
}

// GetLocation handles GET /posts/:id/locations/:field requests
func (h *LocationHandler) GetLocation(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	loc, err := h.service.Get(c.Request.Context(), postID, c.Param("field"))
	if err != nil {
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("get location failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if loc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no location set"})
		return
	}

	c.JSON(http.StatusOK, loc)
}

// PutLocation handles PUT /posts/:id/locations/:field requests. An empty
// body or a value without coordinates clears the field.
func (h *LocationHandler) PutLocation(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	required, err := strconv.ParseBool(c.DefaultQuery("required", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'required' flag"})
		return
	}

	var req locationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location payload"})
			return
		}
	}

	name := c.Param("field")
	field := models.FieldRef{Key: c.DefaultQuery("key", "field_"+name), Name: name}

	err = h.service.Save(c.Request.Context(), postID, field, req.location(), required)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrLocationRequired),
		errors.Is(err, models.ErrInvalidLatitude),
		errors.Is(err, models.ErrInvalidLongitude):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationMessage(err)})
	default:
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("save location failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// DeleteLocation handles DELETE /posts/:id/locations/:field requests
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), postID, c.Param("field")); err != nil {
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("delete location failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Components handles GET /fields/:name/components requests
func (h *LocationHandler) Components(c *gin.Context) {
	name := c.Param("name")
	key := c.DefaultQuery("key", "field_"+name)
	label := c.DefaultQuery("label", name)

	c.JSON(http.StatusOK, models.CompanionFields(key, name, label))
}

func postIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return 0, false
	}
	return id, true
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrLocationRequired):
		return service.ErrLocationRequired.Error()
	case errors.Is(err, models.ErrInvalidLatitude):
		return models.ErrInvalidLatitude.Error()
	default:
		return models.ErrInvalidLongitude.Error()
	}
}
