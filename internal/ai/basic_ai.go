package ai

import (
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/movement"
)

// baseAI holds the state every movement controller shares: the mover, the
// running flag and the current intention.
type baseAI struct {
	mover     *movement.Mover
	rest      model.Intention // intention restored on Start
	intention atomic.Int32
	isRunning atomic.Bool
	tickCount atomic.Int32
}

func newBaseAI(mover *movement.Mover, rest model.Intention) baseAI {
	return baseAI{mover: mover, rest: rest}
}

func (ai *baseAI) name() string { return ai.mover.Character().Name() }

// Start starts AI controller
func (ai *baseAI) Start() {
	ai.isRunning.Store(true)
	ai.SetIntention(ai.rest)
	slog.Debug("AI started",
		"npc", ai.name(),
		"id", ai.mover.Character().ID(),
		"intention", ai.rest)
}

// Stop stops AI controller
func (ai *baseAI) Stop() {
	ai.isRunning.Store(false)
	ai.SetIntention(model.IntentionIdle)
	slog.Debug("AI stopped",
		"npc", ai.name(),
		"id", ai.mover.Character().ID())
}

// SetIntention sets AI intention
func (ai *baseAI) SetIntention(intention model.Intention) {
	old := model.Intention(ai.intention.Swap(int32(intention)))
	if old != intention && IsDebugEnabled() {
		slog.Debug("AI intention changed",
			"npc", ai.name(),
			"from", old,
			"to", intention)
	}
}

// CurrentIntention returns current AI intention
func (ai *baseAI) CurrentIntention() model.Intention {
	return model.Intention(ai.intention.Load())
}

// Mover returns the mover driven by the controller.
func (ai *baseAI) Mover() *movement.Mover { return ai.mover }

// Ticks returns how many ticks the controller acted on.
func (ai *baseAI) Ticks() int32 { return ai.tickCount.Load() }

// begin reports whether the controller should act this tick and counts it.
func (ai *baseAI) begin() bool {
	if !ai.isRunning.Load() {
		return false
	}
	ai.tickCount.Add(1)
	return true
}

// IdleAI keeps an NPC standing in place.
type IdleAI struct {
	baseAI
}

// NewIdleAI creates an idle controller.
func NewIdleAI(mover *movement.Mover) *IdleAI {
	return &IdleAI{baseAI: newBaseAI(mover, model.IntentionIdle)}
}

// Tick counts the tick; an idle NPC never moves.
func (ai *IdleAI) Tick() {
	ai.begin()
}
