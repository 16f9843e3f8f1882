package allocator

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

// MaxRoomsPerBooking is the largest room count one request may ask for.
const MaxRoomsPerBooking = 5

// ResetPolicy decides what happens to confirmed bookings when the whole
// occupancy is wiped by Reset or GenerateRandomOccupancy.
type ResetPolicy string

const (
	// ResetCancel keeps the bookings and marks them cancelled.
	ResetCancel ResetPolicy = "cancel"
	// ResetClear drops every booking from the ledger.
	ResetClear ResetPolicy = "clear"
)

// ParseResetPolicy maps a configuration value to a policy.  Unknown values
// fall back to ResetCancel.
func ParseResetPolicy(s string) ResetPolicy {
	if ResetPolicy(s) == ResetClear {
		return ResetClear
	}
	return ResetCancel
}

// Engine allocates rooms and keeps occupancy and bookings consistent.  It
// is safe for concurrent use.
type Engine struct {
	topo   *Topology
	occ    *Occupancy
	ledger *Ledger
	now    func() time.Time
	newID  func() string
	rng    *rand.Rand
	policy ResetPolicy
	log    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for booking timestamps.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithIDGenerator sets the booking id generator.
func WithIDGenerator(f func() string) Option { return func(e *Engine) { e.newID = f } }

// WithRand sets the random source of GenerateRandomOccupancy.  It is only
// used under the exclusive lock.
func WithRand(r *rand.Rand) Option { return func(e *Engine) { e.rng = r } }

// WithResetPolicy sets how Reset treats existing bookings.
func WithResetPolicy(p ResetPolicy) Option { return func(e *Engine) { e.policy = p } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// New returns an engine over the standard topology with every room free.
func New(opts ...Option) *Engine {
	topo := NewTopology()
	e := &Engine{
		topo:   topo,
		occ:    NewOccupancy(topo),
		ledger: NewLedger(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		policy: ResetCancel,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>17|1))
	}
	return e
}

// Topology returns the hotel layout.
func (e *Engine) Topology() *Topology { return e.topo }

func validate(req model.BookingRequest) error {
	if req.RoomCount < 1 || req.RoomCount > MaxRoomsPerBooking {
		return fmt.Errorf("%w: can only book 1-%d rooms at a time, got %d", ErrInvalidRequest, MaxRoomsPerBooking, req.RoomCount)
	}
	if req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return fmt.Errorf("%w: check-in and check-out dates are required", ErrInvalidRequest)
	}
	if !day(req.CheckOut).After(day(req.CheckIn)) {
		return fmt.Errorf("%w: check-out must be after check-in", ErrInvalidRequest)
	}
	return nil
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// selectRooms runs the two selection stages against the current state.
func selectRooms(tx *Tx, floors, n int) ([]model.Room, model.Placement) {
	for f := 1; f <= floors; f++ {
		free := tx.FreeOnFloor(f)
		if len(free) < n {
			continue
		}
		if rooms := SelectSingleFloor(free, n); rooms != nil {
			return rooms, model.PlacementSingleFloor
		}
	}
	if rooms := SelectCrossFloor(tx.Free(), n); rooms != nil {
		return rooms, model.PlacementCrossFloor
	}
	return nil, ""
}

// Allocate books req.RoomCount rooms with the lowest travel time.  A floor
// that can hold the whole request is always preferred over a cheaper
// cross-floor set.  On error nothing changes.
func (e *Engine) Allocate(req model.BookingRequest) (model.AllocationResult, error) {
	if err := validate(req); err != nil {
		return model.AllocationResult{}, err
	}
	var res model.AllocationResult
	err := e.occ.TryMutate(func(tx *Tx) error {
		rooms, placement := selectRooms(tx, e.topo.Floors(), req.RoomCount)
		if rooms == nil {
			return fmt.Errorf("%w: not enough rooms available for booking %d rooms (%d free)",
				ErrInsufficientCapacity, req.RoomCount, e.topo.Len()-tx.OccupiedCount())
		}
		numbers := make([]int, len(rooms))
		for i, r := range rooms {
			numbers[i] = r.Number
		}
		if err := tx.MarkOccupied(numbers...); err != nil {
			return err
		}
		cost := TravelTime(rooms)
		b := e.ledger.Record(model.Booking{
			ID:                e.newID(),
			GuestID:           req.GuestID,
			Rooms:             numbers,
			CheckIn:           day(req.CheckIn),
			CheckOut:          day(req.CheckOut),
			TravelTimeMinutes: cost,
			Placement:         placement,
			Source:            model.SourceRequest,
			CreatedAt:         e.now(),
		})
		for i := range rooms {
			rooms[i].Occupied = true
		}
		res = model.AllocationResult{
			BookingID:         b.ID,
			Rooms:             rooms,
			TravelTimeMinutes: cost,
			Placement:         placement,
			FloorsUsed:        floorsOf(rooms),
		}
		return nil
	})
	if err != nil {
		return model.AllocationResult{}, err
	}
	e.log.Debug("rooms allocated",
		zap.String("booking_id", res.BookingID),
		zap.Ints("rooms", res.RoomNumbers()),
		zap.Int("travel_time", res.TravelTimeMinutes),
		zap.String("placement", string(res.Placement)))
	return res, nil
}

func floorsOf(rooms []model.Room) []int {
	seen := make(map[int]bool)
	var floors []int
	for _, r := range rooms {
		if !seen[r.Floor] {
			seen[r.Floor] = true
			floors = append(floors, r.Floor)
		}
	}
	sort.Ints(floors)
	return floors
}

// Cancel cancels a confirmed booking and frees its rooms.  The rooms are
// released in the same critical section as the ledger update.
func (e *Engine) Cancel(id string) (model.Booking, error) {
	var out model.Booking
	err := e.occ.TryMutate(func(tx *Tx) error {
		b, err := e.ledger.Cancel(id, e.now())
		if err != nil {
			return err
		}
		tx.Release(b.Rooms...)
		out = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	e.log.Debug("booking cancelled", zap.String("booking_id", id), zap.Ints("rooms", out.Rooms))
	return out, nil
}

// ResetSummary reports what Reset changed.
type ResetSummary struct {
	ReleasedRooms     int `json:"released_rooms"`
	CancelledBookings int `json:"cancelled_bookings"`
}

// Reset frees every room and reconciles the ledger according to the reset
// policy, in one critical section.
func (e *Engine) Reset() ResetSummary {
	var s ResetSummary
	_ = e.occ.TryMutate(func(tx *Tx) error {
		s = e.resetLocked(tx)
		return nil
	})
	e.log.Debug("occupancy reset",
		zap.Int("released_rooms", s.ReleasedRooms),
		zap.Int("cancelled_bookings", s.CancelledBookings))
	return s
}

func (e *Engine) resetLocked(tx *Tx) ResetSummary {
	var s ResetSummary
	s.ReleasedRooms = tx.Clear()
	if e.policy == ResetClear {
		s.CancelledBookings = e.ledger.Clear()
	} else {
		s.CancelledBookings = e.ledger.CancelAll(e.now())
	}
	return s
}

// Bookings returns every booking ordered by creation time, oldest first.
func (e *Engine) Bookings() []model.Booking {
	var out []model.Booking
	e.occ.Inspect(func(Reader) { out = e.ledger.List() })
	return out
}

// Booking returns the booking with id.
func (e *Engine) Booking(id string) (model.Booking, error) {
	var (
		b  model.Booking
		ok bool
	)
	e.occ.Inspect(func(Reader) { b, ok = e.ledger.Get(id) })
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	return b, nil
}

// Rooms returns every room with its occupied flag, floor by floor.
func (e *Engine) Rooms() []model.Room { return e.occ.Snapshot() }

// AvailableRooms returns the free rooms, floor by floor.
func (e *Engine) AvailableRooms() []model.Room {
	var out []model.Room
	e.occ.Inspect(func(r Reader) { out = r.Free() })
	return out
}

// FloorRooms returns the rooms of one floor with their occupied flags.
func (e *Engine) FloorRooms(floor int) ([]model.Room, error) {
	rooms := e.topo.FloorRooms(floor)
	if rooms == nil {
		return nil, fmt.Errorf("%w: floor %d", ErrRoomNotFound, floor)
	}
	e.occ.Inspect(func(r Reader) {
		for i := range rooms {
			rooms[i].Occupied = r.Occupied(rooms[i].Number)
		}
	})
	return rooms, nil
}

// Room returns one room with its occupied flag.
func (e *Engine) Room(number int) (model.Room, error) {
	room, ok := e.topo.Room(number)
	if !ok {
		return model.Room{}, fmt.Errorf("%w: %d", ErrRoomNotFound, number)
	}
	e.occ.Inspect(func(r Reader) { room.Occupied = r.Occupied(number) })
	return room, nil
}

// Stats summarises occupancy per floor.
func (e *Engine) Stats() model.OccupancyStats {
	var s model.OccupancyStats
	e.occ.Inspect(func(r Reader) {
		s.Total = e.topo.Len()
		s.Occupied = r.OccupiedCount()
		s.Free = s.Total - s.Occupied
		for f := 1; f <= e.topo.Floors(); f++ {
			s.Floors = append(s.Floors, model.FloorStats{
				Floor: f,
				Total: len(e.topo.FloorRooms(f)),
				Free:  len(r.FreeOnFloor(f)),
			})
		}
	})
	return s
}
