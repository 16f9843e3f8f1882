// Package allocator is the room allocation engine of the hotel.
//
// The hotel has a fixed layout: floors 1–9 hold ten rooms each and floor 10
// holds seven, 97 rooms in total.  A request for N rooms (1..5) is served
// by picking the free rooms with the lowest travel time, where travel time
// is the bounding box of the room set: one minute per position between the
// leftmost and rightmost room plus two minutes per floor between the lowest
// and highest room.
//
// Selection works in two stages:
//
//   - Same floor.  Floors are scanned in ascending order; the first floor
//     with at least N free rooms wins, and a window of N consecutive free
//     rooms with the narrowest span is taken from it.
//   - Cross floor.  Only when no single floor can hold the request, every
//     N-combination of the free rooms is searched with branch-and-bound on
//     the partial bounding box.
//
// All state lives in an Engine.  Occupancy and the booking ledger form one
// consistency domain guarded by a single lock: allocations, cancellations,
// resets and random occupancy run inside one exclusive critical section
// while listings take a shared read lock.  The engine does no I/O; callers
// persist Snapshot values after the operation has returned.
package allocator
