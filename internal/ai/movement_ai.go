package ai

import (
	"fmt"

	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/movement"
)

// DefaultChaseRange - дальше этого (Manhattan) NPC бродит вместо погони.
const DefaultChaseRange = 20

// WanderAI walks an NPC around at random. Each tick rolls six ways: four
// random steps, one step forward, one pause.
type WanderAI struct {
	baseAI
	rng movement.Random
}

// NewWanderAI creates a wandering controller.
func NewWanderAI(mover *movement.Mover, rng movement.Random) *WanderAI {
	return &WanderAI{baseAI: newBaseAI(mover, model.IntentionWander), rng: rng}
}

// Tick performs one wander decision.
func (ai *WanderAI) Tick() {
	if !ai.begin() || ai.CurrentIntention() != model.IntentionWander {
		return
	}
	switch ai.rng.IntN(6) {
	case 0, 1, 2, 3:
		ai.mover.MoveRandom()
	case 4:
		ai.mover.MoveForward(model.DirNone, false)
	}
}

// ChaseAI walks an NPC toward its target using the bounded search. When
// the target is farther than the chase range the NPC wanders instead.
type ChaseAI struct {
	baseAI
	target TargetFunc
	rangeN int32
}

// ChaseOption configures a ChaseAI.
type ChaseOption func(*ChaseAI)

// WithChaseRange sets the Manhattan distance beyond which the NPC gives up.
func WithChaseRange(n int32) ChaseOption {
	return func(ai *ChaseAI) {
		if n > 0 {
			ai.rangeN = n
		}
	}
}

// NewChaseAI creates a chasing controller.
func NewChaseAI(mover *movement.Mover, target TargetFunc, opts ...ChaseOption) *ChaseAI {
	ai := &ChaseAI{
		baseAI: newBaseAI(mover, model.IntentionChase),
		target: target,
		rangeN: DefaultChaseRange,
	}
	for _, opt := range opts {
		opt(ai)
	}
	return ai
}

// Tick performs one chase step.
func (ai *ChaseAI) Tick() {
	if !ai.begin() || ai.CurrentIntention() != model.IntentionChase {
		return
	}
	pos, ok := ai.target()
	if !ok {
		return
	}
	if ai.mover.Character().Position().Manhattan(pos) > ai.rangeN {
		ai.mover.MoveRandom()
		return
	}

	moved := ai.mover.MoveToward(pos)
	logStep("chase step", ai.mover.Character(), "target", pos, "moved", moved)
}

// FleeAI walks an NPC away from its target.
type FleeAI struct {
	baseAI
	target TargetFunc
}

// NewFleeAI creates a fleeing controller.
func NewFleeAI(mover *movement.Mover, target TargetFunc) *FleeAI {
	return &FleeAI{baseAI: newBaseAI(mover, model.IntentionFlee), target: target}
}

// Tick performs one flee step.
func (ai *FleeAI) Tick() {
	if !ai.begin() || ai.CurrentIntention() != model.IntentionFlee {
		return
	}
	pos, ok := ai.target()
	if !ok {
		return
	}
	moved := ai.mover.MoveAwayFrom(pos)
	logStep("flee step", ai.mover.Character(), "from", pos, "moved", moved)
}

// Behavior names accepted by NewController.
const (
	BehaviorIdle   = "idle"
	BehaviorWander = "wander"
	BehaviorChase  = "chase"
	BehaviorFlee   = "flee"
)

// NewController builds the controller for a behavior name. target is
// required for chase and flee; opts apply to chasers only.
func NewController(behavior string, mover *movement.Mover, rng movement.Random, target TargetFunc, opts ...ChaseOption) (Controller, error) {
	switch behavior {
	case BehaviorIdle:
		return NewIdleAI(mover), nil
	case BehaviorWander:
		return NewWanderAI(mover, rng), nil
	case BehaviorChase, BehaviorFlee:
		if target == nil {
			return nil, fmt.Errorf("creating %s controller for %s: no target", behavior, mover.Character().Name())
		}
		if behavior == BehaviorChase {
			return NewChaseAI(mover, target, opts...), nil
		}
		return NewFleeAI(mover, target), nil
	}
	return nil, fmt.Errorf("creating controller for %s: unknown behavior %q", mover.Character().Name(), behavior)
}
