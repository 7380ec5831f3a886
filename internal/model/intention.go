package model

// Intention represents the movement behaviour an AI controller pursues.
type Intention int32

const (
	// IntentionIdle - character stands still
	IntentionIdle Intention = iota
	// IntentionWander - character steps in a random direction every tick
	IntentionWander
	// IntentionChase - character walks toward its target
	IntentionChase
	// IntentionFlee - character walks away from its target
	IntentionFlee
)

// String returns human-readable intention name
func (i Intention) String() string {
	switch i {
	case IntentionIdle:
		return "IDLE"
	case IntentionWander:
		return "WANDER"
	case IntentionChase:
		return "CHASE"
	case IntentionFlee:
		return "FLEE"
	default:
		return "UNKNOWN"
	}
}
