package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopology_Layout(t *testing.T) {
	topo := NewTopology()

	require.Equal(t, FloorCount, topo.Floors())
	require.Equal(t, 97, topo.Len())
	require.Equal(t, TotalRooms, topo.Len())

	for f := 1; f <= 9; f++ {
		assert.Len(t, topo.FloorRooms(f), RoomsPerFloor, "floor %d", f)
	}
	top := topo.FloorRooms(10)
	require.Len(t, top, TopFloorRooms)
	assert.Equal(t, []int{1001, 1002, 1003, 1004, 1005, 1006, 1007}, numbers(top))

	assert.Nil(t, topo.FloorRooms(0))
	assert.Nil(t, topo.FloorRooms(11))
}

func TestTopology_RoomNumbering(t *testing.T) {
	topo := NewTopology()

	r, ok := topo.Room(305)
	require.True(t, ok)
	assert.Equal(t, 3, r.Floor)
	assert.Equal(t, 5, r.Position)

	r, ok = topo.Room(1007)
	require.True(t, ok)
	assert.Equal(t, 10, r.Floor)
	assert.Equal(t, 7, r.Position)

	for _, n := range []int{100, 111, 1008, 1010, 0} {
		_, ok := topo.Room(n)
		assert.False(t, ok, "room %d", n)
	}
}

func TestTopology_NumbersAreFloorThenPosition(t *testing.T) {
	topo := NewTopology()
	nums := topo.Numbers()
	require.Len(t, nums, 97)
	for i := 1; i < len(nums); i++ {
		assert.Less(t, nums[i-1], nums[i])
	}
	assert.Equal(t, 101, nums[0])
	assert.Equal(t, 1007, nums[96])

	// Callers get copies.
	nums[0] = -1
	assert.Equal(t, 101, topo.Numbers()[0])
	fr := topo.FloorRooms(1)
	fr[0].Occupied = true
	assert.False(t, topo.FloorRooms(1)[0].Occupied)
}
