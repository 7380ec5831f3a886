package sim

import (
	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/movement"
)

// DefaultTurnEvery - в среднем раз в столько тиков пилот меняет курс.
const DefaultTurnEvery = 8

// Pilot stands in for held keys: it keeps walking one way and picks a new
// cardinal direction when the last step failed or on a random whim. After
// a blocked step it presses action at whatever stopped it.
type Pilot struct {
	rng       movement.Random
	dir       model.Direction
	turnEvery int
}

// NewPilot creates a pilot. turnEvery below 1 uses DefaultTurnEvery.
func NewPilot(rng movement.Random, turnEvery int) *Pilot {
	if turnEvery < 1 {
		turnEvery = DefaultTurnEvery
	}
	return &Pilot{rng: rng, turnEvery: turnEvery}
}

// Next returns the direction to hold this tick.
func (p *Pilot) Next(lastMoved bool) model.Direction {
	if p.dir == model.DirNone || !lastMoved || p.rng.IntN(p.turnEvery) == 0 {
		p.dir = model.Cardinals[p.rng.IntN(len(model.Cardinals))]
	}
	return p.dir
}

// Action presses the action button whenever the step did not happen.
func (p *Pilot) Action(moved bool) bool {
	return !moved && p.dir != model.DirNone
}
