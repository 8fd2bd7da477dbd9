package router

import (
	"github.com/labstack/echo/v4"

	"github.com/stagepass/ticketing/internal/handler"
	"github.com/stagepass/ticketing/internal/middleware"
)

// RegisterTenant registers the tenant-scoped management endpoints
// under /v1. All routes require a valid JWT carrying a tenant claim
// and an ADMIN or STAFF role within that tenant.
func RegisterTenant(e *echo.Echo, t *handler.TenantHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "STAFF"),
	)

	// ---- Venues ----
	g.POST("/venues", t.CreateVenue)
	g.GET("/venues", t.ListVenues)
	g.PUT("/venues/:id", t.UpdateVenue)
	g.PATCH("/venues/:id", t.UpdateVenue)
	g.DELETE("/venues/:id", t.DeleteVenue)
	g.GET("/venues/:id/shows", t.ListShowsByVenue)

	// ---- Acts ----
	g.POST("/acts", t.CreateAct)
	g.GET("/acts", t.ListActs)
	g.PUT("/acts/:id", t.UpdateAct)
	g.PATCH("/acts/:id", t.UpdateAct)
	g.DELETE("/acts/:id", t.DeleteAct)

	// ---- Shows ----
	g.POST("/shows", t.CreateShow)
	g.GET("/shows/:id", t.GetShow)
	g.PUT("/shows/:id", t.UpdateShow)
	g.PATCH("/shows/:id", t.UpdateShow)
	g.DELETE("/shows/:id", t.DeleteShow)

	// ---- Capacity & ticket offers ----
	g.GET("/shows/:id/capacity", t.GetShowCapacity)
	g.GET("/shows/:id/offers", t.ListOffers)
	g.POST("/shows/:id/offers", t.CreateOffer)
	g.PUT("/offers/:id", t.UpdateOffer)
	g.PATCH("/offers/:id", t.UpdateOffer)
	g.DELETE("/offers/:id", t.DeleteOffer)
}
