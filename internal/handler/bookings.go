package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-room-allocation/internal/model"
    "github.com/iliyamo/hotel-room-allocation/internal/service"
)

const dateLayout = "2006-01-02"

// BookingHandler serves the guest booking endpoints.
type BookingHandler struct {
    Svc *service.BookingService
    Now func() time.Time
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
    return &BookingHandler{Svc: svc, Now: func() time.Time { return time.Now().UTC() }}
}

type createBookingReq struct {
    Rooms    int    `json:"rooms"`
    CheckIn  string `json:"check_in"`
    CheckOut string `json:"check_out"`
}

type bookingsResp struct {
    Count    int             `json:"count"`
    Bookings []model.Booking `json:"bookings"`
}

// parseStay reads the stay window.  A missing check-in means today and a
// missing check-out means one night.
func (h *BookingHandler) parseStay(req createBookingReq) (time.Time, time.Time, error) {
    in := h.Now().UTC().Truncate(24 * time.Hour)
    if s := strings.TrimSpace(req.CheckIn); s != "" {
        t, err := time.Parse(dateLayout, s)
        if err != nil {
            return time.Time{}, time.Time{}, err
        }
        in = t
    }
    out := in.AddDate(0, 0, 1)
    if s := strings.TrimSpace(req.CheckOut); s != "" {
        t, err := time.Parse(dateLayout, s)
        if err != nil {
            return time.Time{}, time.Time{}, err
        }
        out = t
    }
    return in, out, nil
}

// Create books rooms for the caller.
func (h *BookingHandler) Create(c echo.Context) error {
    actor, ok := actorOf(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    in, out, err := h.parseStay(req)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
    }
    res, err := h.Svc.Book(c.Request().Context(), model.BookingRequest{
        GuestID:   actor.UserID,
        RoomCount: req.Rooms,
        CheckIn:   in,
        CheckOut:  out,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// Mine lists the caller's bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
    actor, ok := actorOf(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list := h.Svc.GuestBookings(actor.UserID)
    return c.JSON(http.StatusOK, bookingsResp{Count: len(list), Bookings: list})
}

// Get returns one booking owned by the caller (any booking for admins).
func (h *BookingHandler) Get(c echo.Context) error {
    actor, ok := actorOf(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    b, err := h.Svc.Booking(c.Param("id"), actor)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// Cancel cancels one booking and frees its rooms.
func (h *BookingHandler) Cancel(c echo.Context) error {
    actor, ok := actorOf(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    b, err := h.Svc.Cancel(c.Request().Context(), c.Param("id"), actor)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// All lists every booking (admin).
func (h *BookingHandler) All(c echo.Context) error {
    list := h.Svc.AllBookings()
    if list == nil {
        list = []model.Booking{}
    }
    return c.JSON(http.StatusOK, bookingsResp{Count: len(list), Bookings: list})
}
