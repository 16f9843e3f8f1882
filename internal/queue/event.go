// Package queue defines the booking event payload exchanged over RabbitMQ
// and the consumer that turns events into an audit log.
package queue

import (
    "time"

    "github.com/iliyamo/hotel-room-allocation/internal/model"
)

// QueueName is the durable queue every booking event is published to.
const QueueName = "booking.events"

// EventType identifies what happened.
type EventType string

const (
    EventBookingConfirmed    EventType = "booking.confirmed"
    EventBookingCancelled    EventType = "booking.cancelled"
    EventOccupancyReset      EventType = "occupancy.reset"
    EventOccupancyRandomized EventType = "occupancy.randomized"
)

// dateLayout renders stay dates.
const dateLayout = "2006-01-02"

// BookingEvent is published after a mutation commits.  Booking fields are
// empty for the hotel-wide reset and randomize events, which fill
// RoomsAffected and BookingsAffected instead.
type BookingEvent struct {
    Type              EventType       `json:"type"`
    BookingID         string          `json:"booking_id,omitempty"`
    GuestID           uint64          `json:"guest_id,omitempty"`
    Rooms             []int           `json:"rooms,omitempty"`
    CheckIn           string          `json:"check_in,omitempty"`
    CheckOut          string          `json:"check_out,omitempty"`
    TravelTimeMinutes int             `json:"travel_time_minutes"`
    Placement         model.Placement `json:"placement,omitempty"`
    RoomsAffected     int             `json:"rooms_affected,omitempty"`
    BookingsAffected  int             `json:"bookings_affected,omitempty"`
    OccurredAt        time.Time       `json:"occurred_at"`
}

// BookingConfirmed describes a freshly allocated booking.
func BookingConfirmed(req model.BookingRequest, res model.AllocationResult, at time.Time) BookingEvent {
    return BookingEvent{
        Type:              EventBookingConfirmed,
        BookingID:         res.BookingID,
        GuestID:           req.GuestID,
        Rooms:             res.RoomNumbers(),
        CheckIn:           req.CheckIn.UTC().Format(dateLayout),
        CheckOut:          req.CheckOut.UTC().Format(dateLayout),
        TravelTimeMinutes: res.TravelTimeMinutes,
        Placement:         res.Placement,
        OccurredAt:        at.UTC(),
    }
}

// BookingCancelled describes a booking that was just cancelled.
func BookingCancelled(b model.Booking, at time.Time) BookingEvent {
    return BookingEvent{
        Type:              EventBookingCancelled,
        BookingID:         b.ID,
        GuestID:           b.GuestID,
        Rooms:             append([]int(nil), b.Rooms...),
        CheckIn:           b.CheckIn.UTC().Format(dateLayout),
        CheckOut:          b.CheckOut.UTC().Format(dateLayout),
        TravelTimeMinutes: b.TravelTimeMinutes,
        Placement:         b.Placement,
        OccurredAt:        at.UTC(),
    }
}

// OccupancyChanged describes a hotel-wide reset or randomize.
func OccupancyChanged(t EventType, rooms, bookings int, at time.Time) BookingEvent {
    return BookingEvent{Type: t, RoomsAffected: rooms, BookingsAffected: bookings, OccurredAt: at.UTC()}
}
