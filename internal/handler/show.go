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

type showResp struct {
	ID           uint64    `json:"id"`
	VenueID      uint64    `json:"venue_id"`
	ActID        uint64    `json:"act_id"`
	StartsAt     time.Time `json:"starts_at"`
	TotalTickets uint32    `json:"total_tickets"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toShowResp(s model.Show) showResp {
	return showResp{
		ID:           s.ID,
		VenueID:      s.VenueID,
		ActID:        s.ActID,
		StartsAt:     s.StartsAt,
		TotalTickets: s.TotalTickets,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// CreateShow handles POST /v1/shows. The total ticket capacity is
// validated against the venue's seating capacity and becomes immutable
// once the show exists; ticket offers later partition it under the
// ledger's control.
func (h *TenantHandler) CreateShow(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		VenueID      uint64 `json:"venue_id"`
		ActID        uint64 `json:"act_id"`
		StartsAt     string `json:"starts_at"`
		TotalTickets uint32 `json:"total_tickets"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.VenueID == 0 || body.ActID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_id and act_id are required"})
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(body.StartsAt))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_at format"})
	}
	venue, err := h.VenueRepo.GetByID(c.Request().Context(), tenantID, body.VenueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify venue"})
	}
	if _, err := h.ActRepo.GetByID(c.Request().Context(), tenantID, body.ActID); err != nil {
		if errors.Is(err, repository.ErrActNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "act not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify act"})
	}
	if body.TotalTickets == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_tickets must be greater than zero"})
	}
	if body.TotalTickets > venue.SeatingCapacity {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":            "total_tickets exceeds venue seating capacity",
			"seating_capacity": venue.SeatingCapacity,
		})
	}
	s := &model.Show{
		TenantID:     tenantID,
		VenueID:      body.VenueID,
		ActID:        body.ActID,
		StartsAt:     startsAt.UTC(),
		TotalTickets: body.TotalTickets,
	}
	if err := h.ShowRepo.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create show"})
	}
	return c.JSON(http.StatusCreated, toShowResp(*s))
}

// GetShow handles GET /v1/shows/:id.
func (h *TenantHandler) GetShow(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	s, err := h.ShowRepo.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	return c.JSON(http.StatusOK, toShowResp(*s))
}

// ListShowsByVenue handles GET /v1/venues/:id/shows.
func (h *TenantHandler) ListShowsByVenue(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	if _, err := h.VenueRepo.GetByID(c.Request().Context(), tenantID, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify venue"})
	}
	shows, err := h.ShowRepo.ListByVenue(c.Request().Context(), tenantID, venueID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	items := make([]showResp, 0, len(shows))
	for _, s := range shows {
		items = append(items, toShowResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateShow handles PUT/PATCH /v1/shows/:id. Only the start time and
// status may change; total_tickets is immutable by design, so there is
// no path by which a capacity reduction could undercut existing
// allocations.
func (h *TenantHandler) UpdateShow(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	cur, err := h.ShowRepo.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	var body struct {
		StartsAt *string `json:"starts_at"`
		Status   *string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.StartsAt != nil {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.StartsAt))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_at format"})
		}
		cur.StartsAt = t.UTC()
	}
	if body.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*body.Status))
		switch status {
		case "SCHEDULED", "CANCELLED", "FINISHED":
			cur.Status = status
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
	}
	if err := h.ShowRepo.Update(c.Request().Context(), cur); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update show"})
	}
	return c.JSON(http.StatusOK, toShowResp(*cur))
}

// DeleteShow handles DELETE /v1/shows/:id. The show's ticket offers
// are removed with it in one transaction.
func (h *TenantHandler) DeleteShow(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if err := h.ShowRepo.Delete(c.Request().Context(), tenantID, id); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete show"})
	}
	return c.NoContent(http.StatusNoContent)
}
