package ai

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/testutil"
)

// captureLogs routes the default logger into a buffer at debug level for
// the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(prev)
		EnableDebugLogging(false)
	})
	return &buf
}

func TestChaseAI_LogsStepsOnlyWhenEnabled(t *testing.T) {
	buf := captureLogs(t)
	mover := newNpc(model.NewPoint(0, 0), testutil.NewSeqRandom(0))
	ai := NewChaseAI(mover, fixed(model.NewPoint(5, 0)))
	ai.Start()

	EnableDebugLogging(false)
	ai.Tick()
	assert.NotContains(t, buf.String(), "chase step")

	EnableDebugLogging(true)
	ai.Tick()
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "chase step"))
	assert.Contains(t, out, "npc=Slime")
	assert.Contains(t, out, "moved=true")

	EnableDebugLogging(false)
	ai.Tick()
	assert.Equal(t, 1, strings.Count(buf.String(), "chase step"))
	assert.Equal(t, model.NewPoint(3, 0), mover.Character().Position())
}

func TestFleeAI_LogsSteps(t *testing.T) {
	buf := captureLogs(t)
	mover := newNpc(model.NewPoint(5, 5), testutil.NewSeqRandom(0))
	ai := NewFleeAI(mover, fixed(model.NewPoint(4, 5)))
	ai.Start()

	EnableDebugLogging(true)
	ai.Tick()
	assert.Contains(t, buf.String(), "flee step")
	assert.True(t, IsDebugEnabled())
}
