package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-spot-reservation/internal/booking"
)

// AdminHandler exposes inventory management.  Pool replacement is
// wholesale: the submitted list becomes the pool.  Existing
// reservations on spots that leave the pool are kept; the engine never
// deletes user state as a side effect of an admin action.
type AdminHandler struct {
	Engine *booking.Engine
}

func NewAdminHandler(engine *booking.Engine) *AdminHandler {
	if engine == nil {
		panic("nil engine passed to NewAdminHandler")
	}
	return &AdminHandler{Engine: engine}
}

type poolReq struct {
	Spots []string `json:"spots"`
}

// ReplaceFlex handles PUT /v1/admin/spots/flex.
func (h *AdminHandler) ReplaceFlex(c echo.Context) error {
	return h.replace(c, h.Engine.ReplaceFlexPool)
}

// ReplaceFixed handles PUT /v1/admin/spots/fixed.
func (h *AdminHandler) ReplaceFixed(c echo.Context) error {
	return h.replace(c, h.Engine.ReplaceFixedPool)
}

func (h *AdminHandler) replace(c echo.Context, swap func(ctx context.Context, spots []string) error) error {
	var body poolReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(body.Spots) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "spots is required"})
	}
	if err := swap(c.Request().Context(), body.Spots); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"spots": len(body.Spots)})
}
