package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-room-allocation/internal/allocator"
    "github.com/iliyamo/hotel-room-allocation/internal/model"
)

// RoomHandler serves the public, read-only room views.
type RoomHandler struct {
    Engine *allocator.Engine
}

func NewRoomHandler(e *allocator.Engine) *RoomHandler { return &RoomHandler{Engine: e} }

type roomsResp struct {
    Count int          `json:"count"`
    Rooms []model.Room `json:"rooms"`
}

// List returns every room, or only free ones with ?available=true.
func (h *RoomHandler) List(c echo.Context) error {
    var rooms []model.Room
    if ok, _ := strconv.ParseBool(c.QueryParam("available")); ok {
        rooms = h.Engine.AvailableRooms()
    } else {
        rooms = h.Engine.Rooms()
    }
    if rooms == nil {
        rooms = []model.Room{}
    }
    return c.JSON(http.StatusOK, roomsResp{Count: len(rooms), Rooms: rooms})
}

// Floor returns the rooms of one floor.
func (h *RoomHandler) Floor(c echo.Context) error {
    floor, err := strconv.Atoi(c.Param("floor"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "floor must be a number"})
    }
    rooms, err := h.Engine.FloorRooms(floor)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, roomsResp{Count: len(rooms), Rooms: rooms})
}

// Room returns one room by number.
func (h *RoomHandler) Room(c echo.Context) error {
    number, err := strconv.Atoi(c.Param("number"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "room number must be a number"})
    }
    room, err := h.Engine.Room(number)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, room)
}

// Stats returns occupancy totals per floor.
func (h *RoomHandler) Stats(c echo.Context) error {
    return c.JSON(http.StatusOK, h.Engine.Stats())
}
