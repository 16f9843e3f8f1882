package allocator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

// DefaultOccupancyFraction is the share of rooms occupied by the demo
// generator when the caller does not choose one.
const DefaultOccupancyFraction = 0.3

// RandomOccupancyResult reports what GenerateRandomOccupancy did.
type RandomOccupancyResult struct {
	RoomsOccupied int          `json:"rooms_occupied"`
	Rooms         []int        `json:"rooms"`
	Reset         ResetSummary `json:"reset"`
}

// GenerateRandomOccupancy wipes the hotel and then occupies
// floor(TotalRooms*fraction) distinct rooms chosen uniformly at random.
// Each occupied room is recorded as a one-night generated booking so that
// occupancy and ledger stay in step.  Prior bookings are handled by the
// reset policy.
func (e *Engine) GenerateRandomOccupancy(fraction float64) (RandomOccupancyResult, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return RandomOccupancyResult{}, fmt.Errorf("%w: occupancy fraction must be within [0,1], got %v", ErrInvalidRequest, fraction)
	}
	target := int(math.Floor(float64(e.topo.Len()) * fraction))

	var res RandomOccupancyResult
	err := e.occ.TryMutate(func(tx *Tx) error {
		res.Reset = e.resetLocked(tx)
		numbers := e.topo.Numbers()
		perm := e.rng.Perm(len(numbers))
		picked := make([]int, target)
		for i := 0; i < target; i++ {
			picked[i] = numbers[perm[i]]
		}
		sort.Ints(picked)
		if err := tx.MarkOccupied(picked...); err != nil {
			return err
		}
		now := e.now()
		checkIn := day(now)
		for _, n := range picked {
			e.ledger.Record(model.Booking{
				ID:        e.newID(),
				Rooms:     []int{n},
				CheckIn:   checkIn,
				CheckOut:  checkIn.Add(24 * time.Hour),
				Placement: model.PlacementSingleFloor,
				Source:    model.SourceGenerated,
				CreatedAt: now,
			})
		}
		res.Rooms = picked
		res.RoomsOccupied = len(picked)
		return nil
	})
	if err != nil {
		return RandomOccupancyResult{}, err
	}
	e.log.Debug("random occupancy generated",
		zap.Float64("fraction", fraction),
		zap.Int("rooms_occupied", res.RoomsOccupied))
	return res, nil
}
