package router

import (
	"github.com/labstack/echo/v4"

	"github.com/stagepass/ticketing/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints. These
// return sanitized data for ticket buyers and are the routes the
// response cache middleware is worth applying to.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	// Upcoming shows of a tenant, addressed by slug.
	e.GET("/v1/public/tenants/:slug/shows", p.ListTenantShows, mw...)
	// Show details with its offers and remaining availability.
	e.GET("/v1/public/tenants/:slug/shows/:id", p.GetTenantShow, mw...)
}
