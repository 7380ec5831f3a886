package movement

import (
	"github.com/udisondev/gridwalk/internal/game/geo"
	"github.com/udisondev/gridwalk/internal/model"
)

// MoveToward takes one step along the most promising path to target.
//
// When the search returns no step the character turns toward the target;
// if the target was not reached (budget exhausted or walled in) it also
// nudges forward when the faced tile is open.
func (m *Mover) MoveToward(target model.Point) bool {
	pos := m.ch.Position()
	step := geo.NextStep(m.m, m.m.Width(), m.m.Height(), pos, m.ch.Direction(), target, m.budget)
	if step.Dir != model.DirNone {
		return m.MoveForward(step.Dir, false)
	}

	m.ch.TurnToward(target)
	if step.Reached {
		return false
	}
	facing := m.ch.Direction()
	if m.m.Passable(pos.X, pos.Y, facing) {
		return m.MoveForward(facing, false)
	}
	return false
}

// MoveAwayFrom takes one greedy step that increases the distance to target.
// The axis of larger separation goes first; equal separations are broken
// by a coin flip. If the primary step does not move the character, the
// other axis is tried when it has any separation at all.
func (m *Mover) MoveAwayFrom(target model.Point) bool {
	pos := m.ch.Position()
	sx := pos.X - target.X
	sy := pos.Y - target.Y
	if sx == 0 && sy == 0 {
		return false
	}

	absX, absY := abs32(sx), abs32(sy)
	if absX == absY {
		if m.rng.IntN(2) == 0 {
			absX++
		} else {
			absY++
		}
	}

	if absX > absY {
		if m.moveStraight(awayHorizontal(sx), true) {
			return true
		}
		if sy != 0 {
			return m.moveStraight(awayVertical(sy), true)
		}
		return false
	}

	if m.moveStraight(awayVertical(sy), true) {
		return true
	}
	if sx != 0 {
		return m.moveStraight(awayHorizontal(sx), true)
	}
	return false
}

func awayHorizontal(sx int32) model.Direction {
	if sx > 0 {
		return model.DirRight
	}
	return model.DirLeft
}

func awayVertical(sy int32) model.Direction {
	if sy > 0 {
		return model.DirDown
	}
	return model.DirUp
}
