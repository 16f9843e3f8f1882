package allocator

import "github.com/iliyamo/hotel-room-allocation/internal/model"

// crossFloorSearch enumerates n-combinations of a pool ordered by floor and
// then position, keeping the first combination with the lowest cost.
//
// Pruning relies on two facts:
//   - the cost of a partial combination's bounding box never decreases as
//     rooms are added, so a partial cost >= incumbent cannot improve it;
//   - candidates are visited in ascending floor order, so once the vertical
//     span to the next candidate reaches the incumbent, every later
//     candidate at this depth is at least as expensive.
//
// Both cut only branches whose completions cost >= the incumbent, and the
// incumbent is replaced only on strictly lower cost, so the result is the
// same as a full enumeration in the same order.
type crossFloorSearch struct {
	pool     []model.Room
	n        int
	pick     []int
	best     []int
	bestCost int
	found    bool
	nodes    int
}

func newCrossFloorSearch(pool []model.Room, n int) *crossFloorSearch {
	return &crossFloorSearch{
		pool: pool,
		n:    n,
		pick: make([]int, n),
		best: make([]int, n),
	}
}

func (s *crossFloorSearch) run() []model.Room {
	s.dfs(0, 0, box{})
	if !s.found {
		return nil
	}
	out := make([]model.Room, s.n)
	for i, idx := range s.best {
		out[i] = s.pool[idx]
	}
	return out
}

func (s *crossFloorSearch) dfs(start, depth int, b box) {
	s.nodes++
	if depth == s.n {
		if c := b.cost(); !s.found || c < s.bestCost {
			copy(s.best, s.pick)
			s.bestCost = c
			s.found = true
		}
		return
	}
	// Leave enough candidates for the remaining depths.
	last := len(s.pool) - (s.n - depth)
	for i := start; i <= last; i++ {
		r := s.pool[i]
		if s.found {
			if b.n > 0 && (r.Floor-b.minFloor)*VerticalMinutes >= s.bestCost {
				break
			}
			if b.add(r).cost() >= s.bestCost {
				continue
			}
		}
		s.pick[depth] = i
		s.dfs(i+1, depth+1, b.add(r))
	}
}

// SelectCrossFloor picks n rooms from the free rooms of the whole hotel.
// free must be ordered by floor and then position.  Every n-combination is
// considered (with pruning) and the cheapest wins; on ties the combination
// found first in (floor, position) order is kept.  It returns nil when fewer
// than n rooms are free.
func SelectCrossFloor(free []model.Room, n int) []model.Room {
	if n < 1 || len(free) < n {
		return nil
	}
	return newCrossFloorSearch(free, n).run()
}
