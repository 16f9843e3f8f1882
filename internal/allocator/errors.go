package allocator

import "errors"

// Sentinel errors returned by the engine.  They are usually wrapped with
// details, so compare them with errors.Is.
var (
	// ErrInvalidRequest is returned for a room count outside 1..5, a stay
	// window whose check-out is not after check-in, or a bad occupancy
	// fraction.  Retrying the same input never helps.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInsufficientCapacity is returned when no set of free rooms can
	// satisfy the request.
	ErrInsufficientCapacity = errors.New("insufficient capacity")

	// ErrBookingNotFound is returned when cancelling or looking up an
	// unknown booking id.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAlreadyCancelled is returned when cancelling a booking twice.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrRoomNotFound is returned for a room number outside the topology.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomOccupied is returned when marking a room that is already
	// occupied.
	ErrRoomOccupied = errors.New("room already occupied")

	// ErrCorruptSnapshot is returned by Restore when a snapshot references
	// unknown rooms or books the same room twice.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
