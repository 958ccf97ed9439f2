package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
)

// RegisterBooking registers the reservation lifecycle endpoints under
// /v1.  All routes require a valid JWT; both roles may book.  The
// optional extra middlewares (rate limiter) run after authentication so
// buckets are keyed by user rather than by IP alone.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, rel *handler.ReleaseHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "ADMIN"),
	}, extra...)
	g := e.Group("/v1", mws...)

	// Reservations: request a spot for a workday, give one back.
	g.POST("/reservations", b.Request)
	g.DELETE("/reservations/:date", b.Release)

	// Waitlist self-service: leave the queue for a date.
	g.DELETE("/waitlist/:date", b.CancelWaitlist)

	// Fixed-spot releases: fold an assigned spot into the shared pool
	// for a date range, or take the offer back.
	g.POST("/releases", rel.Create)
	g.DELETE("/releases/:spot", rel.Withdraw)
}

// RegisterStatus registers the read-only occupancy views under /v1.
// The optional extra middlewares (response cache) wrap only these
// routes; mutating endpoints must never serve cached decisions.
func RegisterStatus(e *echo.Echo, st *handler.StatusHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "ADMIN"),
	}, extra...)
	g := e.Group("/v1/status", mws...)

	g.GET("/day/:date", st.Day)
	g.GET("/week", st.Week)
}
