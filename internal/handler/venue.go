package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/ticketing/internal/model"
	"github.com/stagepass/ticketing/internal/repository"
)

type venueResp struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	City            string    `json:"city"`
	Address         string    `json:"address"`
	SeatingCapacity uint32    `json:"seating_capacity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toVenueResp(v model.Venue) venueResp {
	return venueResp{
		ID:              v.ID,
		Name:            v.Name,
		City:            v.City,
		Address:         v.Address,
		SeatingCapacity: v.SeatingCapacity,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// CreateVenue handles POST /v1/venues.
func (h *TenantHandler) CreateVenue(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name            string `json:"name"`
		City            string `json:"city"`
		Address         string `json:"address"`
		SeatingCapacity uint32 `json:"seating_capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.SeatingCapacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seating_capacity must be greater than zero"})
	}
	v := &model.Venue{
		TenantID:        tenantID,
		Name:            name,
		City:            strings.TrimSpace(body.City),
		Address:         strings.TrimSpace(body.Address),
		SeatingCapacity: body.SeatingCapacity,
	}
	if err := h.VenueRepo.Create(c.Request().Context(), v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create venue"})
	}
	return c.JSON(http.StatusCreated, toVenueResp(*v))
}

// ListVenues handles GET /v1/venues.
func (h *TenantHandler) ListVenues(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venues, err := h.VenueRepo.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venues"})
	}
	items := make([]venueResp, 0, len(venues))
	for _, v := range venues {
		items = append(items, toVenueResp(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateVenue handles PUT/PATCH /v1/venues/:id. Reducing the seating
// capacity does not touch existing shows: their ticket capacity was
// fixed at creation time and is not re-derived.
func (h *TenantHandler) UpdateVenue(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	cur, err := h.VenueRepo.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venue"})
	}
	var body struct {
		Name            *string `json:"name"`
		City            *string `json:"city"`
		Address         *string `json:"address"`
		SeatingCapacity *uint32 `json:"seating_capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil {
		if n := strings.TrimSpace(*body.Name); n != "" {
			cur.Name = n
		}
	}
	if body.City != nil {
		cur.City = strings.TrimSpace(*body.City)
	}
	if body.Address != nil {
		cur.Address = strings.TrimSpace(*body.Address)
	}
	if body.SeatingCapacity != nil {
		if *body.SeatingCapacity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seating_capacity must be greater than zero"})
		}
		cur.SeatingCapacity = *body.SeatingCapacity
	}
	if err := h.VenueRepo.Update(c.Request().Context(), cur); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update venue"})
	}
	return c.JSON(http.StatusOK, toVenueResp(*cur))
}

// DeleteVenue handles DELETE /v1/venues/:id. Deletion is refused with
// 409 while shows are still scheduled at the venue.
func (h *TenantHandler) DeleteVenue(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	if err := h.VenueRepo.Delete(c.Request().Context(), tenantID, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrVenueNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "venue still has shows scheduled"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete venue"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
