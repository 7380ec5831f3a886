package geo

import (
	"container/heap"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridwalk/internal/model"
)

func mustGrid(t *testing.T, rows ...string) *Grid {
	t.Helper()
	g, err := ParseGrid(rows)
	require.NoError(t, err)
	return g
}

func TestNextStepOpenGrid(t *testing.T) {
	g := NewGrid(5, 5)

	step := NextStep(g, 5, 5, model.NewPoint(0, 0), model.DirDown, model.NewPoint(4, 4), DefaultSearchBudget)
	assert.True(t, step.Reached)
	assert.Contains(t, []model.Direction{model.DirRight, model.DirDown}, step.Dir)
	assert.NotEqual(t, model.DirLeft, step.Dir)
	assert.NotEqual(t, model.DirUp, step.Dir)
}

func TestNextStepFacingBreaksTies(t *testing.T) {
	g := NewGrid(5, 5)
	from := model.NewPoint(0, 0)
	target := model.NewPoint(4, 4)

	down := NextStep(g, 5, 5, from, model.DirDown, target, DefaultSearchBudget)
	assert.Equal(t, model.DirDown, down.Dir)

	right := NextStep(g, 5, 5, from, model.DirRight, target, DefaultSearchBudget)
	assert.Equal(t, model.DirRight, right.Dir)
}

func TestNextStepOccupiedTarget(t *testing.T) {
	// Target tile (4,2) is a wall: the goal threshold becomes 1.
	g := mustGrid(t,
		".....",
		".....",
		"....#",
		".....",
		".....",
	)
	target := model.NewPoint(4, 2)

	step := NextStep(g, 5, 5, model.NewPoint(0, 2), model.DirRight, target, DefaultSearchBudget)
	assert.True(t, step.Reached)
	assert.Equal(t, model.DirRight, step.Dir)

	// One tile away: arrived, no move.
	step = NextStep(g, 5, 5, model.NewPoint(3, 2), model.DirRight, target, DefaultSearchBudget)
	assert.True(t, step.Reached)
	assert.Equal(t, model.DirNone, step.Dir)
	assert.Equal(t, 1, step.Expansions)
}

func TestNextStepStopsOneTileAwayFromOccupiedTarget(t *testing.T) {
	g := mustGrid(t,
		".....",
		".....",
		"....#",
		".....",
		".....",
	)
	target := model.NewPoint(4, 2)
	pos := model.NewPoint(0, 0)
	facing := model.DirDown

	for range 20 {
		step := NextStep(g, 5, 5, pos, facing, target, DefaultSearchBudget)
		if step.Dir == model.DirNone {
			break
		}
		require.True(t, g.Passable(pos.X, pos.Y, step.Dir))
		pos = pos.Step(step.Dir)
		facing = step.Dir
		require.NotEqual(t, target, pos, "must never enter the occupied tile")
	}

	assert.Equal(t, int32(1), pos.Manhattan(target))
}

func TestNextStepFollowsPathAroundWall(t *testing.T) {
	g := mustGrid(t,
		".......",
		".......",
		".#####.",
		".......",
		".......",
	)
	target := model.NewPoint(3, 4)
	pos := model.NewPoint(3, 0)
	facing := model.DirDown

	ticks := 0
	for ; ticks < 40 && pos != target; ticks++ {
		step := NextStep(g, g.Width(), g.Height(), pos, facing, target, DefaultSearchBudget)
		require.True(t, step.Reached, "tick %d at %+v", ticks, pos)
		require.NotEqual(t, model.DirNone, step.Dir)
		require.True(t, g.Passable(pos.X, pos.Y, step.Dir))
		pos = pos.Step(step.Dir)
		facing = step.Dir
	}

	assert.Equal(t, target, pos)
	assert.LessOrEqual(t, ticks, 20)
}

func TestNextStepBudgetExhausted(t *testing.T) {
	g := NewGrid(100, 100)

	step := NextStep(g, 100, 100, model.NewPoint(0, 0), model.DirDown, model.NewPoint(99, 99), 10)
	assert.False(t, step.Reached)
	assert.Equal(t, 10, step.Expansions)
	assert.Contains(t, []model.Direction{model.DirRight, model.DirDown}, step.Dir)
}

func TestNextStepEnclosedStart(t *testing.T) {
	g := mustGrid(t,
		"#####",
		"#...#",
		"#####",
		".....",
	)

	step := NextStep(g, g.Width(), g.Height(), model.NewPoint(1, 1), model.DirDown, model.NewPoint(2, 3), DefaultSearchBudget)
	assert.False(t, step.Reached)
	assert.Equal(t, 3, step.Expansions, "frontier empties after the room is explored")
	// Best candidate moves closer along the room toward the target column.
	assert.Equal(t, model.DirRight, step.Dir)
}

func TestNextStepStartOutsideGrid(t *testing.T) {
	g := NewGrid(3, 3)

	step := NextStep(g, 3, 3, model.NewPoint(-1, 0), model.DirDown, model.NewPoint(2, 2), DefaultSearchBudget)
	assert.Equal(t, Step{}, step)
}

func TestNextStepAlreadyAtTarget(t *testing.T) {
	g := NewGrid(3, 3)

	step := NextStep(g, 3, 3, model.NewPoint(1, 1), model.DirUp, model.NewPoint(1, 1), DefaultSearchBudget)
	assert.True(t, step.Reached)
	assert.Equal(t, model.DirNone, step.Dir)
}

func TestNextStepTermination(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	const budget = 60

	for i := range 200 {
		w := int32(rng.IntN(20) + 1)
		h := int32(rng.IntN(20) + 1)
		g := NewGrid(w, h)
		for y := range h {
			for x := range w {
				if rng.IntN(4) == 0 {
					g.SetNSWE(x, y, NSWENone)
				}
			}
		}
		from := model.NewPoint(int32(rng.IntN(int(w))), int32(rng.IntN(int(h))))
		target := model.NewPoint(int32(rng.IntN(int(w))), int32(rng.IntN(int(h))))

		step := NextStep(g, w, h, from, model.Cardinals[rng.IntN(4)], target, budget)
		assert.LessOrEqual(t, step.Expansions, budget, "case %d", i)
		assert.True(t, step.Dir == model.DirNone || step.Dir.IsCardinal(), "case %d: %s", i, step.Dir)
		if step.Dir != model.DirNone {
			assert.True(t, g.Passable(from.X, from.Y, step.Dir), "case %d: first step must be legal", i)
		}
	}
}

func TestHeuristic(t *testing.T) {
	s := newSearch(10, 10, model.NewPoint(5, 5), model.DirRight, model.NewPoint(8, 5))

	// Ahead of the start along the facing: -1.
	assert.Equal(t, int32(-1+4*2-2), s.heuristic(model.NewPoint(6, 5)))
	// Behind: +1.
	assert.Equal(t, int32(1+4*4-2), s.heuristic(model.NewPoint(4, 5)))
	// Same column: 0.
	assert.Equal(t, int32(0+4*3+4*1-2), s.heuristic(model.NewPoint(5, 4)))

	none := newSearch(10, 10, model.NewPoint(5, 5), model.DirNone, model.NewPoint(8, 5))
	assert.Equal(t, int32(4*2-2), none.heuristic(model.NewPoint(6, 5)))
}

func TestNodeHeapOrdering(t *testing.T) {
	h := &nodeHeap{}
	heap.Push(h, &searchNode{priority: -10, x: 3, y: 3})
	heap.Push(h, &searchNode{priority: -5, x: 4, y: 1})
	heap.Push(h, &searchNode{priority: -5, x: 2, y: 9})
	heap.Push(h, &searchNode{priority: -5, x: 2, y: 4})
	heap.Push(h, &searchNode{priority: -20, x: 0, y: 0})

	var got [][3]int32
	for h.Len() > 0 {
		n := heap.Pop(h).(*searchNode)
		got = append(got, [3]int32{n.priority, n.x, n.y})
	}

	assert.Equal(t, [][3]int32{
		{-5, 2, 4},
		{-5, 2, 9},
		{-5, 4, 1},
		{-10, 3, 3},
		{-20, 0, 0},
	}, got)
}

func BenchmarkNextStep(b *testing.B) {
	g := NewGrid(64, 64)
	for y := int32(1); y < 63; y++ {
		g.SetNSWE(32, y, NSWENone)
	}
	from := model.NewPoint(0, 32)
	target := model.NewPoint(63, 32)

	b.ResetTimer()
	for b.Loop() {
		_ = NextStep(g, 64, 64, from, model.DirRight, target, DefaultSearchBudget)
	}
}
