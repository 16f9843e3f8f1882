package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-room-allocation/internal/allocator"
    "github.com/iliyamo/hotel-room-allocation/internal/middleware"
    "github.com/iliyamo/hotel-room-allocation/internal/model"
    "github.com/iliyamo/hotel-room-allocation/internal/service"
)

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
    switch {
    case errors.Is(err, allocator.ErrInvalidRequest):
        return http.StatusBadRequest
    case errors.Is(err, allocator.ErrBookingNotFound), errors.Is(err, allocator.ErrRoomNotFound):
        return http.StatusNotFound
    case errors.Is(err, allocator.ErrInsufficientCapacity), errors.Is(err, allocator.ErrAlreadyCancelled):
        return http.StatusConflict
    case errors.Is(err, service.ErrForbidden):
        return http.StatusForbidden
    default:
        return http.StatusInternalServerError
    }
}

// writeError renders err as {"error": "..."}.  Unexpected errors are
// logged and hidden behind a generic message.
func writeError(c echo.Context, err error) error {
    status := statusOf(err)
    if status == http.StatusInternalServerError {
        c.Logger().Error(err)
        return c.JSON(status, echo.Map{"error": "internal error"})
    }
    return c.JSON(status, echo.Map{"error": err.Error()})
}

// actorOf builds the service actor from the identity JWTAuth stored.
func actorOf(c echo.Context) (service.Actor, bool) {
    id, ok := middleware.UserID(c)
    if !ok {
        return service.Actor{}, false
    }
    return service.Actor{UserID: id, Admin: middleware.Role(c) == model.RoleAdmin}, true
}
