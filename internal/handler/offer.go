package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/ticketing/internal/ledger"
	"github.com/stagepass/ticketing/internal/model"
	"github.com/stagepass/ticketing/internal/queue"
	"github.com/stagepass/ticketing/internal/service/allocpublisher"
)

// offerResp is the JSON shape of a ticket offer returned by the API.
type offerResp struct {
	ID          uint64    `json:"id"`
	ShowID      uint64    `json:"show_id"`
	Name        string    `json:"name"`
	PriceCents  uint32    `json:"price_cents"`
	TicketCount uint32    `json:"ticket_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toOfferResp(o model.TicketOffer) offerResp {
	return offerResp{
		ID:          o.ID,
		ShowID:      o.ShowID,
		Name:        o.Name,
		PriceCents:  o.PriceCents,
		TicketCount: o.TicketCount,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// offerError translates a ledger error into an HTTP response. Capacity
// overflows and missing rows are expected outcomes with their own
// shapes; anything else is a generic 500.
func offerError(c echo.Context, err error) error {
	var capErr *ledger.CapacityError
	switch {
	case errors.Is(err, ledger.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	case errors.Is(err, ledger.ErrOfferNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket offer not found"})
	case errors.Is(err, ledger.ErrInvalidPrice):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be greater than zero"})
	case errors.Is(err, ledger.ErrInvalidCount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_count must be greater than zero"})
	case errors.As(err, &capErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error_code": "CAPACITY_EXCEEDED",
			"error":      "requested allocation exceeds available capacity",
			"requested":  capErr.Requested,
			"available":  capErr.Available,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// GetShowCapacity handles GET /v1/shows/:id/capacity. It returns the
// show's total, allocated and available ticket counts.
func (h *TenantHandler) GetShowCapacity(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	capacity, err := h.Ledger.Capacity(c.Request().Context(), tenantID, showID)
	if err != nil {
		return offerError(c, err)
	}
	return c.JSON(http.StatusOK, capacity)
}

// CreateOffer handles POST /v1/shows/:id/offers. The ledger validates
// the requested count against the show's free capacity inside a
// transaction; on overflow the response carries the requested and the
// actually available amounts.
func (h *TenantHandler) CreateOffer(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		Name        string `json:"name"`
		PriceCents  uint32 `json:"price_cents"`
		TicketCount uint32 `json:"ticket_count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	offer, err := h.Ledger.CreateOffer(c.Request().Context(), tenantID, showID, name, body.PriceCents, body.TicketCount)
	if err != nil {
		return offerError(c, err)
	}
	publishOfferAllocated(tenantID, offer, "created")
	return c.JSON(http.StatusCreated, toOfferResp(offer))
}

// UpdateOffer handles PUT/PATCH /v1/offers/:id. The capacity check
// excludes the offer's own prior allocation, so reducing or keeping
// the count always succeeds.
func (h *TenantHandler) UpdateOffer(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	offerID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offer id"})
	}
	var body struct {
		Name        string `json:"name"`
		PriceCents  uint32 `json:"price_cents"`
		TicketCount uint32 `json:"ticket_count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	offer, err := h.Ledger.UpdateOffer(c.Request().Context(), tenantID, offerID, name, body.PriceCents, body.TicketCount)
	if err != nil {
		return offerError(c, err)
	}
	publishOfferAllocated(tenantID, offer, "updated")
	return c.JSON(http.StatusOK, toOfferResp(offer))
}

// ListOffers handles GET /v1/shows/:id/offers and returns all offers
// of a show.
func (h *TenantHandler) ListOffers(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	// Verify the show exists in this tenant so an empty list is not
	// conflated with a missing show.
	if _, err := h.ShowRepo.GetByID(c.Request().Context(), tenantID, showID); err != nil {
		return offerError(c, err)
	}
	offers, err := h.OfferRepo.ListByShow(c.Request().Context(), tenantID, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load offers"})
	}
	items := make([]offerResp, 0, len(offers))
	for _, o := range offers {
		items = append(items, toOfferResp(o))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeleteOffer handles DELETE /v1/offers/:id. Removing an offer frees
// its allocation implicitly; no capacity check is needed.
func (h *TenantHandler) DeleteOffer(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	offerID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offer id"})
	}
	if err := h.OfferRepo.Delete(c.Request().Context(), tenantID, offerID); err != nil {
		return offerError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// publishOfferAllocated emits an allocation event after a successful
// commit. Publishing is fire-and-forget: a broker outage must never
// fail the request, so errors are logged by the publisher and dropped
// here.
func publishOfferAllocated(tenantID uint64, o model.TicketOffer, action string) {
	ev := queue.OfferAllocatedEvent{
		OfferID:     o.ID,
		ShowID:      o.ShowID,
		TenantID:    tenantID,
		Name:        o.Name,
		PriceCents:  o.PriceCents,
		TicketCount: o.TicketCount,
		Action:      action,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = allocpublisher.PublishOfferAllocated(ctx, ev)
	}()
}
