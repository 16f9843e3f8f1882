package allocator

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	var n atomic.Int64
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return fmt.Sprintf("bk-%03d", n.Add(1)) }),
		WithRand(rand.New(rand.NewPCG(7, 11))),
	}
	return New(append(base, opts...)...)
}

func stay(rooms int) model.BookingRequest {
	return model.BookingRequest{
		RoomCount: rooms,
		CheckIn:   testNow,
		CheckOut:  testNow.Add(48 * time.Hour),
	}
}

// withOnlyFree restores e to a state where exactly the given rooms are free.
// All other rooms belong to a single seed booking.
func withOnlyFree(t *testing.T, e *Engine, free ...int) {
	t.Helper()
	keep := make(map[int]bool, len(free))
	for _, n := range free {
		keep[n] = true
	}
	var taken []int
	for _, n := range e.Topology().Numbers() {
		if !keep[n] {
			taken = append(taken, n)
		}
	}
	snap := Snapshot{Version: 1}
	if len(taken) > 0 {
		snap.Bookings = []model.Booking{{
			ID:        "seed",
			Rooms:     taken,
			CheckIn:   testNow,
			CheckOut:  testNow.Add(24 * time.Hour),
			Status:    model.BookingConfirmed,
			Source:    model.SourceGenerated,
			Seq:       1,
			CreatedAt: testNow.Add(-time.Hour),
		}}
	}
	require.NoError(t, e.Restore(snap))
}

func numbers(rooms []model.Room) []int {
	out := make([]int, len(rooms))
	for i, r := range rooms {
		out[i] = r.Number
	}
	return out
}

func roomsOf(t *testing.T, topo *Topology, nums ...int) []model.Room {
	t.Helper()
	out := make([]model.Room, 0, len(nums))
	for _, n := range nums {
		r, ok := topo.Room(n)
		require.True(t, ok, "room %d", n)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// requireConsistent checks that occupied rooms are exactly the rooms of the
// confirmed bookings and that no room is shared by two of them.
func requireConsistent(t *testing.T, e *Engine) {
	t.Helper()
	owner := map[int]string{}
	for _, b := range e.Bookings() {
		if b.Status != model.BookingConfirmed {
			continue
		}
		for _, n := range b.Rooms {
			prev, dup := owner[n]
			require.False(t, dup, "room %d booked by %s and %s", n, prev, b.ID)
			owner[n] = b.ID
		}
	}
	occupied := 0
	for _, r := range e.Rooms() {
		if r.Occupied {
			occupied++
			_, ok := owner[r.Number]
			require.True(t, ok, "room %d occupied without booking", r.Number)
		}
	}
	require.Equal(t, len(owner), occupied)
}
