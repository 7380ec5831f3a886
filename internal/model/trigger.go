package model

// TriggerKind says what starts a tile trigger. Queries combine kinds as a
// mask.
type TriggerKind uint8

const (
	// TriggerAction - started by the action button
	TriggerAction TriggerKind = 1 << iota
	// TriggerPlayerTouch - started when the player steps on or bumps it
	TriggerPlayerTouch
	// TriggerEventTouch - started when any character steps on or bumps it
	TriggerEventTouch
)

const (
	// TouchTriggers is what a bump or a finished step looks for.
	TouchTriggers = TriggerPlayerTouch | TriggerEventTouch
	// AnyTrigger matches every kind.
	AnyTrigger = TriggerAction | TouchTriggers
)

// Matches reports whether k is one of the kinds in mask.
func (k TriggerKind) Matches(mask TriggerKind) bool {
	return k&mask != 0
}

// String returns the dataset name of a single kind.
func (k TriggerKind) String() string {
	switch k {
	case TriggerAction:
		return "action"
	case TriggerPlayerTouch:
		return "touch"
	case TriggerEventTouch:
		return "event_touch"
	default:
		return "UNKNOWN"
	}
}

// ParseTriggerKind converts a dataset name back to a single kind.
func ParseTriggerKind(s string) (TriggerKind, bool) {
	for _, k := range []TriggerKind{TriggerAction, TriggerPlayerTouch, TriggerEventTouch} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}
