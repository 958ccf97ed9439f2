package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-spot-reservation/internal/booking"
)

// StatusHandler serves the read-only occupancy views.  These endpoints
// sit behind the Redis response cache: the payload is identical for
// every caller, and a few seconds of staleness is acceptable for a
// listing that people refresh while deciding which day to book.
type StatusHandler struct {
	Engine *booking.Engine
}

func NewStatusHandler(engine *booking.Engine) *StatusHandler {
	if engine == nil {
		panic("nil engine passed to NewStatusHandler")
	}
	return &StatusHandler{Engine: engine}
}

// Day handles GET /v1/status/day/:date — every spot available on that
// date with its occupant, plus the ordered waitlist.
func (h *StatusHandler) Day(c echo.Context) error {
	date, err := parseDate(c.Param("date"), h.Engine.Rules().Location)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	st, err := h.Engine.DayStatusFor(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status failed"})
	}
	return c.JSON(http.StatusOK, st)
}

// Week handles GET /v1/status/week — the Monday-to-Friday listing of
// the currently displayed cycle.  After the Friday cutover this is the
// upcoming week.
func (h *StatusHandler) Week(c echo.Context) error {
	days, err := h.Engine.WeekStatus(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"days": days})
}
