package handler

import (
    "net/http" // HTTP status codes
    "strings"  // trimming request fields

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/parking-spot-reservation/internal/booking" // reservation engine
)

// BookingHandler exposes the reservation lifecycle: requesting a spot
// for a workday, giving one back, and leaving the waitlist.  All
// methods assume JWT authentication has already run, so the context
// carries user_id and display_name.  Every decision is made by the
// engine; the handler only translates between HTTP and outcomes.
type BookingHandler struct {
	Engine *booking.Engine
}

// NewBookingHandler constructs a BookingHandler.  The engine must be non-nil.
func NewBookingHandler(engine *booking.Engine) *BookingHandler {
	if engine == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine}
}

// Request handles POST /v1/reservations.  The body carries the target
// date: {"date": "2026-09-02"}.  Depending on timing and inventory the
// user ends up confirmed on a spot, buffered for the lottery draw,
// waitlisted, or rejected with a machine-readable reason.
func (h *BookingHandler) Request(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Date string `json:"date"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Date) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	date, err := parseDate(strings.TrimSpace(body.Date), h.Engine.Rules().Location)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	out, err := h.Engine.RequestReservation(c.Request().Context(), userID, getDisplayName(c), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}
	return c.JSON(outcomeStatus(out), out)
}

// Release handles DELETE /v1/reservations/:date.  Giving a spot back
// immediately promotes the waitlist head, so the response only
// confirms the release itself.
func (h *BookingHandler) Release(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	date, err := parseDate(c.Param("date"), h.Engine.Rules().Location)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	out, err := h.Engine.ReleaseReservation(c.Request().Context(), userID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
	}
	return c.JSON(outcomeStatus(out), out)
}

// CancelWaitlist handles DELETE /v1/waitlist/:date, removing the
// caller's entry and closing the gap behind it.
func (h *BookingHandler) CancelWaitlist(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	date, err := parseDate(c.Param("date"), h.Engine.Rules().Location)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	out, err := h.Engine.CancelWaitlist(c.Request().Context(), userID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(outcomeStatus(out), out)
}
