package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/handler"    // admin handlers
	"github.com/iliyamo/parking-spot-reservation/internal/middleware" // JWT + role middlewares
)

// RegisterAdmin registers ADMIN-scoped inventory endpoints under /v1.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// Pool replacement is wholesale: the submitted list becomes the
	// pool.  Existing reservations survive pool changes.
	g.PUT("/spots/flex", a.ReplaceFlex)
	g.PUT("/spots/fixed", a.ReplaceFixed)
}
