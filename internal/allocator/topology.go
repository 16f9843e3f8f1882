package allocator

import "github.com/iliyamo/hotel-room-allocation/internal/model"

const (
	// FloorCount is the number of floors in the hotel.
	FloorCount = 10
	// RoomsPerFloor is the room count of floors 1..9.
	RoomsPerFloor = 10
	// TopFloorRooms is the room count of floor 10.
	TopFloorRooms = 7
	// TotalRooms is the size of the hotel.
	TotalRooms = (FloorCount-1)*RoomsPerFloor + TopFloorRooms
)

// defaultLayout lists the room count of every floor, lowest floor first.
var defaultLayout = []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 7}

// Topology is the immutable layout of the hotel.  It is built once and
// shared read-only by every other component.
type Topology struct {
	floors   [][]model.Room
	byNumber map[int]model.Room
	numbers  []int
}

// NewTopology builds the standard 97-room layout.
func NewTopology() *Topology {
	return newTopology(defaultLayout)
}

func newTopology(layout []int) *Topology {
	t := &Topology{
		floors:   make([][]model.Room, len(layout)),
		byNumber: make(map[int]model.Room),
	}
	for i, count := range layout {
		floor := i + 1
		rooms := make([]model.Room, 0, count)
		for pos := 1; pos <= count; pos++ {
			r := model.Room{Number: RoomNumber(floor, pos), Floor: floor, Position: pos}
			rooms = append(rooms, r)
			t.byNumber[r.Number] = r
			t.numbers = append(t.numbers, r.Number)
		}
		t.floors[i] = rooms
	}
	return t
}

// RoomNumber returns the number of the room at pos on floor, e.g. 305 or
// 1007 on the top floor.
func RoomNumber(floor, pos int) int {
	return floor*100 + pos
}

// Floors returns the number of floors.
func (t *Topology) Floors() int { return len(t.floors) }

// Len returns the total number of rooms.
func (t *Topology) Len() int { return len(t.numbers) }

// FloorRooms returns the rooms of floor ordered by position.  The slice is
// a copy.  It returns nil for an unknown floor.
func (t *Topology) FloorRooms(floor int) []model.Room {
	if floor < 1 || floor > len(t.floors) {
		return nil
	}
	return append([]model.Room(nil), t.floors[floor-1]...)
}

// Room looks up a room by number.
func (t *Topology) Room(number int) (model.Room, bool) {
	r, ok := t.byNumber[number]
	return r, ok
}

// Numbers returns every room number in floor-then-position order.
func (t *Topology) Numbers() []int {
	return append([]int(nil), t.numbers...)
}
