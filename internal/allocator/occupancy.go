package allocator

import (
	"fmt"
	"sync"

	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

// Occupancy is the authoritative free/occupied flag of every room.  It owns
// the lock of the engine's consistency domain: every read-decide-write
// sequence runs inside TryMutate, and reads that must be consistent run
// inside Inspect.  The booking ledger is only ever touched from within
// those callbacks, so it shares the same lock.
type Occupancy struct {
	mu       sync.RWMutex
	topo     *Topology
	occupied map[int]bool
	count    int
	version  uint64
}

// NewOccupancy returns an all-free occupancy over topo.
func NewOccupancy(topo *Topology) *Occupancy {
	return &Occupancy{topo: topo, occupied: make(map[int]bool, topo.Len())}
}

// Reader is the read-only view handed to Inspect callbacks.
type Reader interface {
	Occupied(number int) bool
	OccupiedCount() int
	FreeOnFloor(floor int) []model.Room
	Free() []model.Room
	Rooms() []model.Room
	Version() uint64
}

// Tx is the mutable view handed to TryMutate callbacks.  It is only valid
// while the callback runs.  Changes are undone when the callback returns an
// error, so a failed operation never leaves rooms partially marked.
type Tx struct {
	o    *Occupancy
	undo []change
	// restored, when set, replaces the version instead of bumping it.
	restored *uint64
}

type change struct {
	number int
	was    bool
}

// TryMutate runs fn under the exclusive lock.  If fn returns an error every
// change it made through tx is rolled back and the error is returned;
// otherwise the occupancy version is bumped.
func (o *Occupancy) TryMutate(fn func(tx *Tx) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	tx := &Tx{o: o}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	if tx.restored != nil {
		o.version = *tx.restored
	} else {
		o.version++
	}
	return nil
}

// Inspect runs fn under the shared lock.  Concurrent mutations wait until
// fn returns, so everything fn reads belongs to one state.
func (o *Occupancy) Inspect(fn func(r Reader)) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	fn(&Tx{o: o})
}

// Snapshot returns every room in floor-then-position order.  It is meant for
// display only; decisions must be taken inside TryMutate.
func (o *Occupancy) Snapshot() []model.Room {
	var rooms []model.Room
	o.Inspect(func(r Reader) { rooms = r.Rooms() })
	return rooms
}

// MarkOccupied marks the given rooms occupied in one step.  Nothing changes
// when any room is unknown or already occupied.
func (o *Occupancy) MarkOccupied(numbers ...int) error {
	return o.TryMutate(func(tx *Tx) error { return tx.MarkOccupied(numbers...) })
}

// Release frees the given rooms and returns how many were occupied.  Rooms
// that are already free are skipped, so releasing twice is harmless.
func (o *Occupancy) Release(numbers ...int) int {
	var n int
	_ = o.TryMutate(func(tx *Tx) error {
		n = tx.Release(numbers...)
		return nil
	})
	return n
}

func (tx *Tx) set(number int, occupied bool) {
	was := tx.o.occupied[number]
	if was == occupied {
		return
	}
	tx.undo = append(tx.undo, change{number: number, was: was})
	if occupied {
		tx.o.occupied[number] = true
		tx.o.count++
	} else {
		delete(tx.o.occupied, number)
		tx.o.count--
	}
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		c := tx.undo[i]
		if c.was {
			tx.o.occupied[c.number] = true
			tx.o.count++
		} else {
			delete(tx.o.occupied, c.number)
			tx.o.count--
		}
	}
	tx.undo = nil
}

// Occupied reports whether the room is occupied.
func (tx *Tx) Occupied(number int) bool { return tx.o.occupied[number] }

// OccupiedCount returns the number of occupied rooms.
func (tx *Tx) OccupiedCount() int { return tx.o.count }

// Version returns the number of committed mutations.
func (tx *Tx) Version() uint64 { return tx.o.version }

// FreeOnFloor returns the free rooms of floor ordered by position.
func (tx *Tx) FreeOnFloor(floor int) []model.Room {
	var free []model.Room
	for _, r := range tx.o.topo.FloorRooms(floor) {
		if !tx.o.occupied[r.Number] {
			free = append(free, r)
		}
	}
	return free
}

// Free returns every free room in floor-then-position order.
func (tx *Tx) Free() []model.Room {
	free := make([]model.Room, 0, tx.o.topo.Len()-tx.o.count)
	for f := 1; f <= tx.o.topo.Floors(); f++ {
		free = append(free, tx.FreeOnFloor(f)...)
	}
	return free
}

// Rooms returns every room with its occupied flag in floor-then-position
// order.
func (tx *Tx) Rooms() []model.Room {
	rooms := make([]model.Room, 0, tx.o.topo.Len())
	for f := 1; f <= tx.o.topo.Floors(); f++ {
		for _, r := range tx.o.topo.FloorRooms(f) {
			r.Occupied = tx.o.occupied[r.Number]
			rooms = append(rooms, r)
		}
	}
	return rooms
}

// MarkOccupied marks the rooms occupied.  All rooms are checked before any
// is marked.
func (tx *Tx) MarkOccupied(numbers ...int) error {
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if _, ok := tx.o.topo.Room(n); !ok {
			return fmt.Errorf("%w: %d", ErrRoomNotFound, n)
		}
		if tx.o.occupied[n] || seen[n] {
			return fmt.Errorf("%w: %d", ErrRoomOccupied, n)
		}
		seen[n] = true
	}
	for _, n := range numbers {
		tx.set(n, true)
	}
	return nil
}

// Release frees the rooms and returns how many were occupied.  Unknown and
// already free rooms are ignored.
func (tx *Tx) Release(numbers ...int) int {
	released := 0
	for _, n := range numbers {
		if tx.o.occupied[n] {
			tx.set(n, false)
			released++
		}
	}
	return released
}

// Clear frees every room and returns how many were occupied.
func (tx *Tx) Clear() int {
	released := 0
	for _, n := range tx.o.topo.Numbers() {
		if tx.o.occupied[n] {
			tx.set(n, false)
			released++
		}
	}
	return released
}

func (tx *Tx) restoreVersion(v uint64) { tx.restored = &v }
