package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/ticketing/internal/ledger"
	"github.com/stagepass/ticketing/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints returning
// sanitized data for ticket buyers. Tenants are addressed by slug;
// internal fields (tenant IDs, timestamps of bookkeeping interest)
// are not exposed.
type PublicHandler struct {
	Tenants *repository.TenantRepo
	Shows   *repository.ShowRepo
	Offers  *repository.OfferRepo
	Ledger  *ledger.Ledger
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(tenants *repository.TenantRepo, shows *repository.ShowRepo, offers *repository.OfferRepo, l *ledger.Ledger) *PublicHandler {
	if tenants == nil || shows == nil || offers == nil || l == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Tenants: tenants, Shows: shows, Offers: offers, Ledger: l}
}

type publicShow struct {
	ID           uint64    `json:"id"`
	StartsAt     time.Time `json:"starts_at"`
	TotalTickets uint32    `json:"total_tickets"`
	Status       string    `json:"status"`
}

type publicOffer struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	PriceCents  uint32 `json:"price_cents"`
	TicketCount uint32 `json:"ticket_count"`
}

// ListTenantShows handles GET /v1/public/tenants/:slug/shows. It
// returns the tenant's upcoming scheduled shows.
func (h *PublicHandler) ListTenantShows(c echo.Context) error {
	tenant, err := h.Tenants.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	shows, err := h.Shows.ListUpcomingByTenant(c.Request().Context(), tenant.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	items := make([]publicShow, 0, len(shows))
	for _, s := range shows {
		items = append(items, publicShow{ID: s.ID, StartsAt: s.StartsAt, TotalTickets: s.TotalTickets, Status: s.Status})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tenant": echo.Map{"name": tenant.Name, "slug": tenant.Slug},
		"items":  items,
	})
}

// GetTenantShow handles GET /v1/public/tenants/:slug/shows/:id. It
// returns the show with its ticket offers and remaining availability.
// The availability read is not transactional and may lag concurrent
// writers by a moment; it can never show a violated invariant.
func (h *PublicHandler) GetTenantShow(c echo.Context) error {
	tenant, err := h.Tenants.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	show, err := h.Shows.GetByID(c.Request().Context(), tenant.ID, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	offers, err := h.Offers.ListByShow(c.Request().Context(), tenant.ID, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load offers"})
	}
	capacity, err := h.Ledger.Capacity(c.Request().Context(), tenant.ID, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load capacity"})
	}
	items := make([]publicOffer, 0, len(offers))
	for _, o := range offers {
		items = append(items, publicOffer{ID: o.ID, Name: o.Name, PriceCents: o.PriceCents, TicketCount: o.TicketCount})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show":               publicShow{ID: show.ID, StartsAt: show.StartsAt, TotalTickets: show.TotalTickets, Status: show.Status},
		"offers":             items,
		"available_capacity": capacity.AvailableCapacity,
	})
}
