package model

import "time"

// BookingStatus is the lifecycle state of a booking.  A booking starts
// CONFIRMED and may move to CANCELLED exactly once.
type BookingStatus string

const (
    BookingConfirmed BookingStatus = "CONFIRMED"
    BookingCancelled BookingStatus = "CANCELLED"
)

// BookingSource records how a booking came to exist.
type BookingSource string

const (
    // SourceRequest bookings were made through the allocation protocol.
    SourceRequest BookingSource = "request"
    // SourceGenerated bookings were created by the random occupancy generator.
    SourceGenerated BookingSource = "generated"
)

// Booking records a set of rooms held for a stay.  Rooms is kept sorted
// by floor and position so that responses and snapshots are stable.
//
// Fields:
//  ID                – opaque unique token.
//  GuestID           – user who made the booking (0 for generated bookings).
//  Rooms             – booked room numbers.
//  CheckIn, CheckOut – stay window; CheckOut is always after CheckIn.
//  TravelTimeMinutes – travel time of the room set at allocation time.
//  Placement         – single-floor or cross-floor.
//  Status            – CONFIRMED or CANCELLED.
//  Source            – request or generated.
//  Seq               – ledger insertion order, breaks CreatedAt ties.
//  CreatedAt         – when the booking was recorded.
//  CancelledAt       – when the booking was cancelled (nil while confirmed).
type Booking struct {
    ID                string        `json:"id"`
    GuestID           uint64        `json:"guest_id,omitempty"`
    Rooms             []int         `json:"rooms"`
    CheckIn           time.Time     `json:"check_in"`
    CheckOut          time.Time     `json:"check_out"`
    TravelTimeMinutes int           `json:"travel_time_minutes"`
    Placement         Placement     `json:"placement"`
    Status            BookingStatus `json:"status"`
    Source            BookingSource `json:"source"`
    Seq               uint64        `json:"-"`
    CreatedAt         time.Time     `json:"created_at"`
    CancelledAt       *time.Time    `json:"cancelled_at,omitempty"`
}

// Clone returns a deep copy so callers never share the ledger's slices.
func (b Booking) Clone() Booking {
    out := b
    out.Rooms = append([]int(nil), b.Rooms...)
    if b.CancelledAt != nil {
        t := *b.CancelledAt
        out.CancelledAt = &t
    }
    return out
}

// BookingRequest is the caller's request for a number of rooms.
type BookingRequest struct {
    GuestID   uint64
    RoomCount int
    CheckIn   time.Time
    CheckOut  time.Time
}

// AllocationResult is what a successful allocation returns to the caller.
type AllocationResult struct {
    BookingID         string    `json:"booking_id"`
    Rooms             []Room    `json:"rooms"`
    TravelTimeMinutes int       `json:"travel_time_minutes"`
    Placement         Placement `json:"placement"`
    FloorsUsed        []int     `json:"floors_used"`
}

// RoomNumbers returns the numbers of the allocated rooms in order.
func (r AllocationResult) RoomNumbers() []int {
    out := make([]int, len(r.Rooms))
    for i, rm := range r.Rooms {
        out[i] = rm.Number
    }
    return out
}
