package movement

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/testutil"
)

func TestMoveTowardOpenGrid(t *testing.T) {
	tests := []struct {
		facing model.Direction
		want   model.Point
	}{
		{model.DirDown, model.NewPoint(0, 1)},
		{model.DirRight, model.NewPoint(1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.facing.String(), func(t *testing.T) {
			mv, ch := newTestMover(t, testutil.OpenMap(5, 5), model.NewPoint(0, 0), nil)
			ch.Turn(tt.facing)

			require.True(t, mv.MoveToward(model.NewPoint(4, 4)))
			assert.Equal(t, tt.want, ch.Position())
		})
	}
}

func TestMoveTowardStopsNextToOccupiedTarget(t *testing.T) {
	m := testutil.OpenMap(5, 5)
	target := model.NewPoint(4, 2)
	m.Blocked[target] = true
	mv, ch := newTestMover(t, m, model.NewPoint(0, 0), nil)

	for range 20 {
		if !mv.MoveToward(target) {
			break
		}
		require.NotEqual(t, target, ch.Position())
	}

	assert.Equal(t, int32(1), ch.Position().Manhattan(target))

	// Arrived: further calls only face the target.
	before := ch.Position()
	assert.False(t, mv.MoveToward(target))
	assert.Equal(t, before, ch.Position())
	assert.Equal(t, ch.DirectionToward(target), ch.Direction())
}

func TestMoveTowardAlreadyThere(t *testing.T) {
	mv, ch := newTestMover(t, testutil.OpenMap(3, 3), model.NewPoint(1, 1), nil)
	ch.Turn(model.DirLeft)

	assert.False(t, mv.MoveToward(model.NewPoint(1, 1)))
	assert.Equal(t, model.NewPoint(1, 1), ch.Position())
	assert.Equal(t, model.DirLeft, ch.Direction())
}

func TestMoveTowardAroundWall(t *testing.T) {
	m := mockMap(t,
		".......",
		".......",
		".#####.",
		".......",
		".......",
	)
	target := model.NewPoint(3, 4)
	mv, ch := newTestMover(t, m, model.NewPoint(3, 0), nil)

	for i := 0; i < 20 && ch.Position() != target; i++ {
		require.True(t, mv.MoveToward(target), "tick %d", i)
	}
	assert.Equal(t, target, ch.Position())
	assert.Empty(t, m.Touched)
}

func TestMoveTowardWalledIn(t *testing.T) {
	m := mockMap(t,
		"###..",
		"#.#..",
		"###..",
	)
	mv, ch := newTestMover(t, m, model.NewPoint(1, 1), nil)

	assert.False(t, mv.MoveToward(model.NewPoint(4, 1)))
	assert.Equal(t, model.NewPoint(1, 1), ch.Position())
	assert.Equal(t, model.DirRight, ch.Direction(), "turns toward the target")
}

func TestMoveTowardRespectsBudget(t *testing.T) {
	m := testutil.OpenMap(60, 60)
	ch := model.NewCharacter(1, "tester", model.NewPoint(0, 0))
	mv := NewMover(ch, m, testutil.NewSeqRandom(0), WithSearchBudget(5))

	require.True(t, mv.MoveToward(model.NewPoint(59, 59)))
	assert.Contains(t, []model.Point{model.NewPoint(1, 0), model.NewPoint(0, 1)}, ch.Position())
	// Five expansions with four neighbour queries each, plus the target check.
	assert.LessOrEqual(t, m.Queries, 5*4+2)
}

func TestMoveAwayFrom(t *testing.T) {
	tests := []struct {
		name   string
		pos    model.Point
		target model.Point
		rolls  []int
		want   model.Point
	}{
		{"vertical dominant", model.NewPoint(4, 4), model.NewPoint(4, 2), nil, model.NewPoint(4, 5)},
		{"horizontal dominant", model.NewPoint(4, 4), model.NewPoint(7, 3), nil, model.NewPoint(3, 4)},
		{"tie coin horizontal", model.NewPoint(4, 4), model.NewPoint(3, 3), []int{0}, model.NewPoint(5, 4)},
		{"tie coin vertical", model.NewPoint(4, 4), model.NewPoint(3, 3), []int{1}, model.NewPoint(4, 5)},
		{"primary blocked falls back", model.NewPoint(8, 4), model.NewPoint(6, 3), nil, model.NewPoint(8, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rolls := tt.rolls
			if rolls == nil {
				rolls = []int{0}
			}
			mv, ch := newTestMover(t, testutil.OpenMap(9, 9), tt.pos, testutil.NewSeqRandom(rolls...))
			require.True(t, mv.MoveAwayFrom(tt.target))
			assert.Equal(t, tt.want, ch.Position())
		})
	}
}

func TestMoveAwayFromSameAxisDoesNotSidestep(t *testing.T) {
	// Fleeing straight down into the map edge: the horizontal axis has no
	// separation, so no sideways step is attempted.
	m := testutil.OpenMap(9, 9)
	mv, ch := newTestMover(t, m, model.NewPoint(4, 8), nil)

	assert.False(t, mv.MoveAwayFrom(model.NewPoint(4, 6)))
	assert.Equal(t, model.NewPoint(4, 8), ch.Position())
	assert.Equal(t, model.DirDown, ch.Direction())
	assert.Len(t, m.Touched, 1)
}

func TestMoveAwayFromSameTile(t *testing.T) {
	m := testutil.OpenMap(3, 3)
	mv, ch := newTestMover(t, m, model.NewPoint(1, 1), nil)

	assert.False(t, mv.MoveAwayFrom(model.NewPoint(1, 1)))
	assert.Equal(t, model.NewPoint(1, 1), ch.Position())
	assert.Zero(t, m.Queries)
}

func TestMoveAwayFromNeverCloses(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	for i := range 500 {
		m := testutil.OpenMap(12, 12)
		pos := model.NewPoint(int32(r.IntN(12)), int32(r.IntN(12)))
		target := model.NewPoint(int32(r.IntN(12)), int32(r.IntN(12)))
		mv, ch := newTestMover(t, m, pos, r)

		before := pos.Manhattan(target)
		if mv.MoveAwayFrom(target) {
			assert.Equal(t, before+1, ch.Position().Manhattan(target), "case %d", i)
		} else {
			assert.Equal(t, pos, ch.Position(), "case %d", i)
		}
	}
}
