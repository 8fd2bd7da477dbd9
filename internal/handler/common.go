// Package handler contains the HTTP handlers of the API. Handlers
// bind request bodies, call into repositories and the capacity ledger,
// and translate sentinel errors into HTTP responses. The tenant
// identity extracted from the JWT claims is passed explicitly into
// every lower-layer call.
package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/ticketing/internal/ledger"
	"github.com/stagepass/ticketing/internal/repository"
)

// TenantHandler bundles the dependencies of the tenant-scoped CRUD and
// capacity endpoints.
type TenantHandler struct {
	VenueRepo *repository.VenueRepo
	ActRepo   *repository.ActRepo
	ShowRepo  *repository.ShowRepo
	OfferRepo *repository.OfferRepo
	Ledger    *ledger.Ledger
}

// NewTenantHandler constructs a TenantHandler and panics if any
// dependency is nil.
func NewTenantHandler(venueRepo *repository.VenueRepo, actRepo *repository.ActRepo, showRepo *repository.ShowRepo, offerRepo *repository.OfferRepo, l *ledger.Ledger) *TenantHandler {
	if venueRepo == nil || actRepo == nil || showRepo == nil || offerRepo == nil || l == nil {
		panic("nil dependency passed to NewTenantHandler")
	}
	return &TenantHandler{
		VenueRepo: venueRepo,
		ActRepo:   actRepo,
		ShowRepo:  showRepo,
		OfferRepo: offerRepo,
		Ledger:    l,
	}
}

// contextUint64 extracts a numeric context value stored by the JWT
// middleware. Claims decoded from JSON arrive as float64; tokens built
// in tests may store native integers.
func contextUint64(c echo.Context, key string) (uint64, error) {
	v := c.Get(key)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}

// getUserID extracts the authenticated user's ID from context.
func getUserID(c echo.Context) (uint64, error) {
	return contextUint64(c, "user_id")
}

// getTenantID extracts the authenticated user's tenant ID from
// context.
func getTenantID(c echo.Context) (uint64, error) {
	return contextUint64(c, "tenant_id")
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
