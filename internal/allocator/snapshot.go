package allocator

import (
	"fmt"
	"time"

	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

// Snapshot is a point-in-time copy of the ledger.  Occupancy is not stored:
// it is exactly the rooms of the confirmed bookings.  Version grows with
// every committed mutation, so a store can discard snapshots that arrive
// out of order.
type Snapshot struct {
	Version  uint64
	TakenAt  time.Time
	Bookings []model.Booking
}

// Snapshot copies the current state under the shared lock.
func (e *Engine) Snapshot() Snapshot {
	var s Snapshot
	e.occ.Inspect(func(r Reader) {
		s.Version = r.Version()
		s.Bookings = e.ledger.List()
	})
	s.TakenAt = e.now()
	return s
}

// Restore replaces the engine state with snap.  The snapshot is checked
// before anything changes: every confirmed room must exist and belong to
// one confirmed booking only.
func (e *Engine) Restore(snap Snapshot) error {
	owner := make(map[int]string)
	ids := make(map[string]bool, len(snap.Bookings))
	var rooms []int
	for _, b := range snap.Bookings {
		if b.ID == "" || ids[b.ID] {
			return fmt.Errorf("%w: missing or duplicate booking id %q", ErrCorruptSnapshot, b.ID)
		}
		ids[b.ID] = true
		if b.Status != model.BookingConfirmed {
			continue
		}
		for _, n := range b.Rooms {
			if _, ok := e.topo.Room(n); !ok {
				return fmt.Errorf("%w: booking %s references unknown room %d", ErrCorruptSnapshot, b.ID, n)
			}
			if prev, dup := owner[n]; dup {
				return fmt.Errorf("%w: room %d booked by %s and %s", ErrCorruptSnapshot, n, prev, b.ID)
			}
			owner[n] = b.ID
			rooms = append(rooms, n)
		}
	}
	return e.occ.TryMutate(func(tx *Tx) error {
		tx.Clear()
		if err := tx.MarkOccupied(rooms...); err != nil {
			return err
		}
		e.ledger.load(snap.Bookings)
		tx.restoreVersion(snap.Version)
		return nil
	})
}
