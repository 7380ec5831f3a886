// Package movement implements tile-by-tile character movement: turning,
// cardinal and diagonal steps, jumps, random wandering, chasing via the
// bounded best-first search and fleeing.
package movement

import (
	"math"

	"github.com/udisondev/gridwalk/internal/game/geo"
	"github.com/udisondev/gridwalk/internal/model"
)

// Map is the map-side collaborator a Mover consults. Passability is
// expected to be bound to the moving character (it knows who is asking, so
// the character's own tile never blocks it).
type Map interface {
	// Passable reports whether a step from (x, y) in direction d is legal.
	// DirNone asks whether (x, y) can be entered from every side.
	Passable(x, y int32, d model.Direction) bool
	// TriggerTouch activates whatever stands on (x, y); reports whether
	// anything started.
	TriggerTouch(x, y int32) bool
	Valid(x, y int32) bool
	Width() int32
	Height() int32
}

// Random is the randomness source for random moves/turns and tie breaking.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}

// BlockedHandler is consulted when a cardinal step is refused. Returning
// true marks the refusal as handled and suppresses the touch trigger.
type BlockedHandler func(from model.Point, d model.Direction) bool

// Option configures a Mover.
type Option func(*Mover)

// WithSearchBudget sets the expansion budget used by MoveToward.
func WithSearchBudget(budget int) Option {
	return func(m *Mover) {
		if budget > 0 {
			m.budget = budget
		}
	}
}

// WithBlockedHandler installs a hook for refused cardinal steps.
func WithBlockedHandler(h BlockedHandler) Option {
	return func(m *Mover) { m.onBlocked = h }
}

// Mover drives one Character across one Map.
// Not safe for concurrent use; each call runs to completion within a tick.
type Mover struct {
	ch        *model.Character
	m         Map
	rng       Random
	budget    int
	onBlocked BlockedHandler
}

// NewMover creates a Mover for ch on m.
func NewMover(ch *model.Character, m Map, rng Random, opts ...Option) *Mover {
	mv := &Mover{
		ch:     ch,
		m:      m,
		rng:    rng,
		budget: geo.DefaultSearchBudget,
	}
	for _, opt := range opts {
		opt(mv)
	}
	return mv
}

// Character returns the moved character.
func (m *Mover) Character() *model.Character { return m.ch }

// Map returns the map the character currently walks on.
func (m *Mover) Map() Map { return m.m }

// SetMap rebinds the mover after a map switch.
func (m *Mover) SetMap(mp Map) { m.m = mp }

// Turn faces d (no-op while the direction is fixed).
func (m *Mover) Turn(d model.Direction) { m.ch.Turn(d) }

// TurnRight90 rotates 90° clockwise.
func (m *Mover) TurnRight90() { m.ch.TurnRight90() }

// TurnLeft90 rotates 90° counter-clockwise.
func (m *Mover) TurnLeft90() { m.ch.TurnLeft90() }

// Turn180 turns around.
func (m *Mover) Turn180() { m.ch.Turn180() }

// TurnToward faces target along the dominant axis (vertical on ties).
func (m *Mover) TurnToward(target model.Point) { m.ch.TurnToward(target) }

// TurnAwayFrom faces away from target along the dominant axis.
func (m *Mover) TurnAwayFrom(target model.Point) { m.ch.TurnAwayFrom(target) }

// TurnRandom faces a uniformly random cardinal direction.
func (m *Mover) TurnRandom() {
	switch m.rng.IntN(4) {
	case 0:
		m.ch.Turn(model.DirUp)
	case 1:
		m.ch.Turn(model.DirRight)
	case 2:
		m.ch.Turn(model.DirLeft)
	case 3:
		m.ch.Turn(model.DirDown)
	}
}

// TurnRightOrLeft90 rotates 90° either way on a coin flip.
func (m *Mover) TurnRightOrLeft90() {
	if m.rng.IntN(2) == 0 {
		m.ch.TurnRight90()
	} else {
		m.ch.TurnLeft90()
	}
}

// MoveForward steps one tile in direction d (the current facing when d is
// DirNone). turnAllowed lets a blocked character still turn toward d.
// Diagonal directions go through MoveDiagonal. Reports whether the
// character moved.
func (m *Mover) MoveForward(d model.Direction, turnAllowed bool) bool {
	if d == model.DirNone {
		d = m.ch.Direction()
	}
	switch {
	case d.IsCardinal():
		return m.moveStraight(d, turnAllowed)
	case d.IsDiagonal():
		return m.MoveDiagonal(d)
	}
	return false
}

// moveStraight performs a cardinal step. A legal step always turns the
// character toward d; a refused one turns only when turnAllowed and pokes
// the touch trigger of the tile in front.
func (m *Mover) moveStraight(d model.Direction, turnAllowed bool) bool {
	if turnAllowed {
		m.ch.Turn(d)
	}

	pos := m.ch.Position()
	if m.m.Passable(pos.X, pos.Y, d) {
		m.ch.Turn(d)
		m.ch.Relocate(pos.Step(d))
		return true
	}

	if m.onBlocked != nil && m.onBlocked(pos, d) {
		return false
	}
	front := pos.Step(d)
	m.m.TriggerTouch(front.X, front.Y)
	return false
}

// MoveBackward steps opposite to the facing without turning around.
func (m *Mover) MoveBackward() bool {
	back := m.ch.Direction().Reverse()
	if !back.IsCardinal() {
		return false
	}

	lastFixed := m.ch.DirectionFixed()
	m.ch.SetDirectionFixed(true)
	moved := m.moveStraight(back, false)
	m.ch.SetDirectionFixed(lastFixed)
	return moved
}

// MoveRandom steps in a uniformly random cardinal direction without
// turning when blocked.
func (m *Mover) MoveRandom() bool {
	var d model.Direction
	switch m.rng.IntN(4) {
	case 0:
		d = model.DirDown
	case 1:
		d = model.DirLeft
	case 2:
		d = model.DirRight
	default:
		d = model.DirUp
	}
	return m.moveStraight(d, false)
}

// Jump moves the character by (dx, dy) in one arc. The character first
// faces the dominant axis (vertical on ties). The jump lands only when the
// destination can be entered from every side, or when the offset is zero.
func (m *Mover) Jump(dx, dy int32) bool {
	if dx != 0 || dy != 0 {
		if abs32(dx) > abs32(dy) {
			if dx < 0 {
				m.ch.Turn(model.DirLeft)
			} else {
				m.ch.Turn(model.DirRight)
			}
		} else {
			if dy < 0 {
				m.ch.Turn(model.DirUp)
			} else {
				m.ch.Turn(model.DirDown)
			}
		}
	}

	dest := m.ch.Position().Add(dx, dy)
	if (dx != 0 || dy != 0) && !m.m.Passable(dest.X, dest.Y, model.DirNone) {
		return false
	}

	distance := int32(math.Round(math.Sqrt(float64(dx*dx + dy*dy))))
	m.ch.StartJump(dest, distance)
	return true
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
