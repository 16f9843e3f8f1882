package allocator

import (
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

// Ledger keeps every booking in creation order.  It has no lock of its
// own: the engine only calls it from inside Occupancy callbacks.
type Ledger struct {
	bookings []*model.Booking
	byID     map[string]*model.Booking
	seq      uint64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]*model.Booking)}
}

// Record appends a confirmed booking.  The ledger assigns Seq and Status.
func (l *Ledger) Record(b model.Booking) model.Booking {
	l.seq++
	b = b.Clone()
	b.Seq = l.seq
	b.Status = model.BookingConfirmed
	b.CancelledAt = nil
	l.bookings = append(l.bookings, &b)
	l.byID[b.ID] = &b
	return b.Clone()
}

// Cancel moves a confirmed booking to cancelled and returns it.  The caller
// releases the booking's rooms.
func (l *Ledger) Cancel(id string, at time.Time) (model.Booking, error) {
	b, ok := l.byID[id]
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	if b.Status == model.BookingCancelled {
		return b.Clone(), fmt.Errorf("%w: %s", ErrAlreadyCancelled, id)
	}
	b.Status = model.BookingCancelled
	b.CancelledAt = &at
	return b.Clone(), nil
}

// CancelAll cancels every confirmed booking and returns how many changed.
func (l *Ledger) CancelAll(at time.Time) int {
	n := 0
	for _, b := range l.bookings {
		if b.Status == model.BookingConfirmed {
			b.Status = model.BookingCancelled
			t := at
			b.CancelledAt = &t
			n++
		}
	}
	return n
}

// Clear drops every booking and returns how many were confirmed.  Seq keeps
// counting so that ids recorded later still sort after earlier ones.
func (l *Ledger) Clear() int {
	n := l.Confirmed()
	l.bookings = nil
	l.byID = make(map[string]*model.Booking)
	return n
}

// Get returns a copy of the booking with id.
func (l *Ledger) Get(id string) (model.Booking, bool) {
	b, ok := l.byID[id]
	if !ok {
		return model.Booking{}, false
	}
	return b.Clone(), true
}

// List returns copies of all bookings ordered by creation time, oldest
// first.  Bookings created at the same instant keep insertion order.
func (l *Ledger) List() []model.Booking {
	out := make([]model.Booking, len(l.bookings))
	for i, b := range l.bookings {
		out[i] = b.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// Confirmed returns the number of confirmed bookings.
func (l *Ledger) Confirmed() int {
	n := 0
	for _, b := range l.bookings {
		if b.Status == model.BookingConfirmed {
			n++
		}
	}
	return n
}

// load replaces the ledger content with bookings, as taken from a snapshot.
func (l *Ledger) load(bookings []model.Booking) {
	l.bookings = make([]*model.Booking, 0, len(bookings))
	l.byID = make(map[string]*model.Booking, len(bookings))
	l.seq = 0
	for _, b := range bookings {
		c := b.Clone()
		l.bookings = append(l.bookings, &c)
		l.byID[c.ID] = &c
		if c.Seq > l.seq {
			l.seq = c.Seq
		}
	}
}
