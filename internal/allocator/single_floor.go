package allocator

import "github.com/iliyamo/hotel-room-allocation/internal/model"

// SelectSingleFloor picks n rooms from the free rooms of one floor.  free
// must be ordered by position.  A window of n consecutive entries slides
// over the free list (not over raw positions, so booked rooms in between
// are skipped) and the window with the lowest travel time wins; on ties the
// window that starts first is kept.  It returns nil when fewer than n rooms
// are free.
func SelectSingleFloor(free []model.Room, n int) []model.Room {
	if n < 1 || len(free) < n {
		return nil
	}
	best, bestCost := -1, 0
	for i := 0; i+n <= len(free); i++ {
		c := TravelTime(free[i : i+n])
		if best < 0 || c < bestCost {
			best, bestCost = i, c
		}
	}
	return append([]model.Room(nil), free[best:best+n]...)
}
