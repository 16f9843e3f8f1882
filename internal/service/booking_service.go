// Package service wraps the allocation engine with the side effects every
// mutation carries: snapshot persistence, cache invalidation and event
// publishing.  Side effects run after the engine lock is released and never
// fail the request; their errors are logged.
package service

import (
    "context"
    "errors"
    "fmt"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/hotel-room-allocation/internal/allocator"
    "github.com/iliyamo/hotel-room-allocation/internal/model"
    "github.com/iliyamo/hotel-room-allocation/internal/queue"
)

// ErrForbidden is returned when a guest touches another guest's booking.
var ErrForbidden = errors.New("booking belongs to another guest")

// SnapshotStore persists engine snapshots.  Save reports false when the
// stored snapshot is already as new.
type SnapshotStore interface {
    Save(ctx context.Context, snap allocator.Snapshot) (bool, error)
}

// Publisher delivers booking events.
type Publisher interface {
    Publish(ctx context.Context, ev queue.BookingEvent) error
}

// CachePurger drops cached room listings.
type CachePurger interface {
    PurgeRooms(ctx context.Context) error
}

// Actor is the authenticated caller of a booking operation.
type Actor struct {
    UserID uint64
    Admin  bool
}

func (a Actor) owns(b model.Booking) bool { return a.Admin || b.GuestID == a.UserID }

// BookingService wraps the engine and runs the post-commit side effects of
// every mutation once the engine lock is released.
type BookingService struct {
    engine          *allocator.Engine
    store           SnapshotStore
    pub             Publisher
    cache           CachePurger
    persistTimeout  time.Duration
    defaultFraction float64
    now             func() time.Time
    log             *zap.Logger
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithStore saves a snapshot after every mutation.
func WithStore(s SnapshotStore) Option { return func(b *BookingService) { b.store = s } }

// WithPublisher emits a booking event after every mutation.
func WithPublisher(p Publisher) Option { return func(b *BookingService) { b.pub = p } }

// WithCachePurger drops cached room listings after every mutation.
func WithCachePurger(c CachePurger) Option { return func(b *BookingService) { b.cache = c } }

// WithLogger sets the logger for side-effect failures.  Default is a no-op.
func WithLogger(l *zap.Logger) Option { return func(b *BookingService) { b.log = l } }

// WithClock sets the event timestamp source.
func WithClock(now func() time.Time) Option { return func(b *BookingService) { b.now = now } }

// WithPersistTimeout bounds each snapshot save.  Default 5s.
func WithPersistTimeout(d time.Duration) Option { return func(b *BookingService) { b.persistTimeout = d } }

// WithDefaultFraction sets the share of rooms RandomOccupancy fills when
// the caller gives none.
func WithDefaultFraction(f float64) Option { return func(b *BookingService) { b.defaultFraction = f } }

// NewBookingService returns a service over engine.  Without options it has
// no side effects.
func NewBookingService(engine *allocator.Engine, opts ...Option) *BookingService {
    s := &BookingService{
        engine:          engine,
        persistTimeout:  5 * time.Second,
        defaultFraction: allocator.DefaultOccupancyFraction,
        now:             func() time.Time { return time.Now().UTC() },
        log:             zap.NewNop(),
    }
    for _, o := range opts {
        o(s)
    }
    return s
}

// Engine exposes the wrapped engine for read-only room queries.
func (s *BookingService) Engine() *allocator.Engine { return s.engine }

// Book allocates rooms for req.
func (s *BookingService) Book(ctx context.Context, req model.BookingRequest) (model.AllocationResult, error) {
    res, err := s.engine.Allocate(req)
    if err != nil {
        return model.AllocationResult{}, err
    }
    s.log.Info("booking confirmed",
        zap.String("booking_id", res.BookingID),
        zap.Uint64("guest_id", req.GuestID),
        zap.Ints("rooms", res.RoomNumbers()),
        zap.Int("travel_time_minutes", res.TravelTimeMinutes),
        zap.String("placement", string(res.Placement)))
    s.afterMutation(ctx, queue.BookingConfirmed(req, res, s.now()))
    return res, nil
}

// Booking returns one booking visible to actor.
func (s *BookingService) Booking(id string, actor Actor) (model.Booking, error) {
    b, err := s.engine.Booking(id)
    if err != nil {
        return model.Booking{}, err
    }
    if !actor.owns(b) {
        return model.Booking{}, fmt.Errorf("%w: %s", ErrForbidden, id)
    }
    return b, nil
}

// Cancel cancels a booking owned by actor, or any booking for an admin.
func (s *BookingService) Cancel(ctx context.Context, id string, actor Actor) (model.Booking, error) {
    if _, err := s.Booking(id, actor); err != nil {
        return model.Booking{}, err
    }
    b, err := s.engine.Cancel(id)
    if err != nil {
        return model.Booking{}, err
    }
    s.log.Info("booking cancelled", zap.String("booking_id", id), zap.Uint64("actor", actor.UserID), zap.Ints("rooms", b.Rooms))
    s.afterMutation(ctx, queue.BookingCancelled(b, s.now()))
    return b, nil
}

// GuestBookings returns the bookings of one guest, oldest first.
func (s *BookingService) GuestBookings(guestID uint64) []model.Booking {
    out := []model.Booking{}
    for _, b := range s.engine.Bookings() {
        if b.GuestID == guestID {
            out = append(out, b)
        }
    }
    return out
}

// AllBookings returns the whole ledger, oldest first.
func (s *BookingService) AllBookings() []model.Booking { return s.engine.Bookings() }

// Reset frees every room.
func (s *BookingService) Reset(ctx context.Context) allocator.ResetSummary {
    sum := s.engine.Reset()
    s.log.Info("occupancy reset", zap.Int("released_rooms", sum.ReleasedRooms), zap.Int("bookings", sum.CancelledBookings))
    s.afterMutation(ctx, queue.OccupancyChanged(queue.EventOccupancyReset, sum.ReleasedRooms, sum.CancelledBookings, s.now()))
    return sum
}

// RandomOccupancy refills the hotel at random.  A nil fraction selects the
// configured default.
func (s *BookingService) RandomOccupancy(ctx context.Context, fraction *float64) (allocator.RandomOccupancyResult, error) {
    f := s.defaultFraction
    if fraction != nil {
        f = *fraction
    }
    res, err := s.engine.GenerateRandomOccupancy(f)
    if err != nil {
        return allocator.RandomOccupancyResult{}, err
    }
    s.log.Info("random occupancy generated", zap.Float64("fraction", f), zap.Int("rooms_occupied", res.RoomsOccupied))
    s.afterMutation(ctx, queue.OccupancyChanged(queue.EventOccupancyRandomized, res.RoomsOccupied, res.Reset.CancelledBookings, s.now()))
    return res, nil
}

// afterMutation persists the current snapshot, purges cached listings and
// publishes ev.  It outlives the request context's cancellation.
func (s *BookingService) afterMutation(ctx context.Context, ev queue.BookingEvent) {
    ctx = context.WithoutCancel(ctx)
    if s.store != nil {
        snap := s.engine.Snapshot()
        pctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
        saved, err := s.store.Save(pctx, snap)
        cancel()
        switch {
        case err != nil:
            s.log.Error("snapshot save failed", zap.Uint64("version", snap.Version), zap.Error(err))
        case !saved:
            s.log.Debug("snapshot superseded", zap.Uint64("version", snap.Version))
        }
    }
    if s.cache != nil {
        if err := s.cache.PurgeRooms(ctx); err != nil {
            s.log.Warn("room cache purge failed", zap.Error(err))
        }
    }
    if s.pub != nil {
        if err := s.pub.Publish(ctx, ev); err != nil {
            s.log.Warn("event publish failed", zap.String("type", string(ev.Type)), zap.Error(err))
        }
    }
}
