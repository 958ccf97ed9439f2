package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-spot-reservation/internal/booking"
)

// ReleaseHandler manages fixed-spot releases: an owner of a permanently
// assigned spot can fold it into the shared inventory for a date range
// (vacation, travel) and withdraw pending releases again.  A release
// never cancels reservations already made on the spot.
type ReleaseHandler struct {
	Engine *booking.Engine
}

func NewReleaseHandler(engine *booking.Engine) *ReleaseHandler {
	if engine == nil {
		panic("nil engine passed to NewReleaseHandler")
	}
	return &ReleaseHandler{Engine: engine}
}

// Create handles POST /v1/releases with a body of
// {"spot": "12", "start_date": "2026-09-01", "end_date": "2026-09-05"}.
func (h *ReleaseHandler) Create(c echo.Context) error {
	var body struct {
		Spot      string `json:"spot"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	spot := strings.TrimSpace(body.Spot)
	if spot == "" || body.StartDate == "" || body.EndDate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "spot, start_date and end_date are required"})
	}
	loc := h.Engine.Rules().Location
	start, err := parseDate(body.StartDate, loc)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date, want YYYY-MM-DD"})
	}
	end, err := parseDate(body.EndDate, loc)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date, want YYYY-MM-DD"})
	}

	out, err := h.Engine.ReleaseFixedSpot(c.Request().Context(), spot, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
	}
	if out.Kind == booking.OutcomeOK {
		return c.JSON(http.StatusCreated, out)
	}
	return c.JSON(outcomeStatus(out), out)
}

// Withdraw handles DELETE /v1/releases/:spot, removing pending and
// ongoing releases for the spot from today onward.  Past releases stay
// as history, and reservations made while the spot was shared survive.
func (h *ReleaseHandler) Withdraw(c echo.Context) error {
	spot := strings.TrimSpace(c.Param("spot"))
	if spot == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "spot is required"})
	}
	removed, err := h.Engine.WithdrawFixedSpotRelease(c.Request().Context(), spot)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "withdraw failed"})
	}
	if removed == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending release for spot"})
	}
	return c.JSON(http.StatusOK, echo.Map{"withdrawn": removed})
}
