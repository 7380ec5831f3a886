package ai

import (
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/gridwalk/internal/model"
)

// stepLogging gates the per-step logs of NPC controllers. Steps run for
// every NPC on every tick, so the flag is read before slog is asked.
var stepLogging atomic.Bool

// EnableDebugLogging turns per-step controller logs on or off. gridsim
// sets it from the configured log level.
func EnableDebugLogging(enabled bool) {
	stepLogging.Store(enabled)
}

// IsDebugEnabled reports whether controllers log their steps.
func IsDebugEnabled() bool {
	return stepLogging.Load()
}

// logStep writes one controller step for ch at debug level.
func logStep(msg string, ch *model.Character, args ...any) {
	if !stepLogging.Load() {
		return
	}
	attrs := append([]any{"npc", ch.Name(), "id", ch.ID(), "pos", ch.Position()}, args...)
	slog.Debug(msg, attrs...)
}
