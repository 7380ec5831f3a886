package ai

import "github.com/udisondev/gridwalk/internal/model"

// Controller represents AI controller interface for NPCs
type Controller interface {
	// Start starts AI controller
	Start()

	// Stop stops AI controller
	Stop()

	// SetIntention sets AI intention
	SetIntention(intention model.Intention)

	// CurrentIntention returns current AI intention
	CurrentIntention() model.Intention

	// Tick performs one movement decision (called once per world tick)
	Tick()
}

// TargetFunc locates the entity a chasing or fleeing NPC reacts to.
// ok is false when the target is not reachable (e.g. on another map).
type TargetFunc func() (pos model.Point, ok bool)
