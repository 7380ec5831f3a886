package geo

import (
	"container/heap"

	"github.com/udisondev/gridwalk/internal/model"
)

// Oracle answers whether a character standing on (x, y) may step in
// direction d. DirNone asks whether (x, y) itself can be entered from every
// side.
type Oracle interface {
	Passable(x, y int32, d model.Direction) bool
}

// Passable makes a bare Grid usable as a terrain-only Oracle.
func (g *Grid) Passable(x, y int32, d model.Direction) bool {
	return g.CanMove(x, y, d)
}

// Step is the outcome of one NextStep call.
type Step struct {
	// Dir is the first direction of the chosen path, DirNone when the start
	// tile is the best tile found.
	Dir model.Direction
	// Reached reports that a goal-adjacent tile was popped before the budget
	// ran out.
	Reached bool
	// Expansions is the number of frontier pops performed.
	Expansions int
}

// NextStep runs a bounded best-first search from `from` toward `target` on a
// width×height grid and returns the first step of the most promising path.
//
// The search stops when a tile within the goal threshold is popped: 0 when
// the target tile itself can be entered, 1 otherwise (occupied target). When
// the budget runs out first, the best estimate seen so far is used.
// facing biases equally good nodes toward the current direction of travel.
func NextStep(o Oracle, width, height int32, from model.Point, facing model.Direction, target model.Point, budget int) Step {
	if width <= 0 || height <= 0 || !inBounds(from, width, height) {
		return Step{}
	}
	if budget <= 0 {
		budget = DefaultSearchBudget
	}

	threshold := int32(1)
	if o.Passable(target.X, target.Y, model.DirNone) {
		threshold = 0
	}

	s := newSearch(width, height, from, facing, target)
	s.run(o, threshold, budget)

	// Walk predecessor links back to the start; the last link is the move.
	l := s.best
	for l.from != from {
		l = s.links[s.index(l.from)]
	}
	return Step{Dir: l.dir, Reached: s.reached, Expansions: s.expansions}
}

// link records how a tile was reached: the estimate of the path, the tile
// it was reached from and the direction taken from that tile.
type link struct {
	priority int32
	from     model.Point
	dir      model.Direction
}

// search holds per-call state; nothing outlives one NextStep invocation.
type search struct {
	width, height int32
	start         model.Point
	facing        model.Direction
	target        model.Point

	seen  []bool
	cost  []int32
	links []link

	frontier   nodeHeap
	best       link
	reached    bool
	expansions int
}

func newSearch(width, height int32, start model.Point, facing model.Direction, target model.Point) *search {
	n := int(width) * int(height)
	return &search{
		width:    width,
		height:   height,
		start:    start,
		facing:   facing,
		target:   target,
		seen:     make([]bool, n),
		cost:     make([]int32, n),
		links:    make([]link, n),
		frontier: make(nodeHeap, 0, 64),
	}
}

func (s *search) index(p model.Point) int {
	return int(p.Y)*int(s.width) + int(p.X)
}

func (s *search) run(o Oracle, threshold int32, budget int) {
	startPriority := -s.heuristic(s.start)
	s.best = link{priority: startPriority, from: s.start, dir: model.DirNone}

	idx := s.index(s.start)
	s.seen[idx] = true
	s.cost[idx] = 0
	s.links[idx] = s.best
	heap.Push(&s.frontier, &searchNode{priority: startPriority, x: s.start.X, y: s.start.Y})

	for s.frontier.Len() > 0 && s.expansions < budget {
		s.expansions++
		cur := heap.Pop(&s.frontier).(*searchNode)
		curPos := model.Point{X: cur.x, Y: cur.y}
		curIdx := s.index(curPos)

		if curPos.Manhattan(s.target) <= threshold {
			s.best = s.links[curIdx]
			s.reached = true
			return
		}

		newCost := s.cost[curIdx] - stepCost
		for _, d := range model.Cardinals {
			next := curPos.Step(d)
			if !inBounds(next, s.width, s.height) {
				continue
			}
			nextIdx := s.index(next)
			if s.seen[nextIdx] {
				continue
			}
			if !o.Passable(cur.x, cur.y, d) {
				continue
			}

			estimate := newCost - s.heuristic(next)
			candidate := link{priority: estimate, from: curPos, dir: d}
			if estimate >= s.best.priority {
				s.best = candidate
			}
			s.seen[nextIdx] = true
			s.cost[nextIdx] = newCost
			s.links[nextIdx] = candidate
			heap.Push(&s.frontier, &searchNode{priority: estimate, x: next.X, y: next.Y})
		}
	}
}

// heuristic is 4×Manhattan distance to the target minus a constant bias,
// plus ±1 when the node lies ahead of/behind the start along the facing.
func (s *search) heuristic(n model.Point) int32 {
	var tie int32
	switch s.facing {
	case model.DirDown:
		tie = cmp32(s.start.Y, n.Y)
	case model.DirLeft:
		tie = cmp32(n.X, s.start.X)
	case model.DirRight:
		tie = cmp32(s.start.X, n.X)
	case model.DirUp:
		tie = cmp32(n.Y, s.start.Y)
	}
	return tie + heuristicWeight*abs32(s.target.X-n.X) + heuristicWeight*abs32(s.target.Y-n.Y) - heuristicBias
}

func inBounds(p model.Point, width, height int32) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

func cmp32(a, b int32) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func abs32(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

// searchNode is a frontier entry.
type searchNode struct {
	priority int32
	x, y     int32
	index    int // heap index
}

// nodeHeap implements container/heap as a max-heap on priority.
// Equal priorities pop the lower x first, then the lower y.
type nodeHeap []*searchNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if a.x != b.x {
		return a.x < b.x
	}
	return a.y < b.y
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)   { n := x.(*searchNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil // GC
	node.index = -1
	*h = old[:n-1]
	return node
}
