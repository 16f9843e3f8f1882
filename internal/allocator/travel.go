package allocator

import "github.com/iliyamo/hotel-room-allocation/internal/model"

const (
	// HorizontalMinutes is the walking time between adjacent positions.
	HorizontalMinutes = 1
	// VerticalMinutes is the lift/stairs time between adjacent floors.
	VerticalMinutes = 2
)

// box is the bounding box of a room set.  Adding rooms can only grow it,
// which is what makes the partial cost a valid bound for the search.
type box struct {
	n                  int
	minPos, maxPos     int
	minFloor, maxFloor int
}

func (b box) add(r model.Room) box {
	if b.n == 0 {
		return box{n: 1, minPos: r.Position, maxPos: r.Position, minFloor: r.Floor, maxFloor: r.Floor}
	}
	b.n++
	b.minPos = min(b.minPos, r.Position)
	b.maxPos = max(b.maxPos, r.Position)
	b.minFloor = min(b.minFloor, r.Floor)
	b.maxFloor = max(b.maxFloor, r.Floor)
	return b
}

func (b box) horizontal() int {
	if b.n <= 1 {
		return 0
	}
	return (b.maxPos - b.minPos) * HorizontalMinutes
}

func (b box) vertical() int {
	if b.n <= 1 {
		return 0
	}
	return (b.maxFloor - b.minFloor) * VerticalMinutes
}

func (b box) cost() int { return b.horizontal() + b.vertical() }

// TravelTime returns the travel time in minutes of a set of rooms: the
// horizontal span of positions across all floors plus two minutes per floor
// between the lowest and highest room.  Sets of zero or one room cost 0.
func TravelTime(rooms []model.Room) int {
	var b box
	for _, r := range rooms {
		b = b.add(r)
	}
	return b.cost()
}

// TravelTimeParts splits TravelTime into its horizontal and vertical parts.
func TravelTimeParts(rooms []model.Room) (horizontal, vertical int) {
	var b box
	for _, r := range rooms {
		b = b.add(r)
	}
	return b.horizontal(), b.vertical()
}
