package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-room-allocation/internal/service"
)

// AdminHandler serves the hotel-wide operations.
type AdminHandler struct {
    Svc *service.BookingService
}

func NewAdminHandler(svc *service.BookingService) *AdminHandler { return &AdminHandler{Svc: svc} }

type randomOccupancyReq struct {
    Fraction *float64 `json:"fraction"`
}

// RandomOccupancy resets the hotel and occupies a random share of rooms.
// The body is optional.
func (h *AdminHandler) RandomOccupancy(c echo.Context) error {
    var req randomOccupancyReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    res, err := h.Svc.RandomOccupancy(c.Request().Context(), req.Fraction)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// ResetAll frees every room.
func (h *AdminHandler) ResetAll(c echo.Context) error {
    return c.JSON(http.StatusOK, h.Svc.Reset(c.Request().Context()))
}
