package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridwalk/internal/data"
	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/observer"
	"github.com/udisondev/gridwalk/internal/testutil"
	"github.com/udisondev/gridwalk/internal/world"
)

// held always presses the same direction.
type held model.Direction

func (h held) Next(bool) model.Direction { return model.Direction(h) }

// script plays directions in order, then stands still. It presses
// action whenever a step fails.
type script []model.Direction

func (s *script) Next(bool) model.Direction {
	if len(*s) == 0 {
		return model.DirNone
	}
	d := (*s)[0]
	*s = (*s)[1:]
	return d
}

func (s *script) Action(moved bool) bool { return !moved }

type recorder struct {
	mu       sync.Mutex
	ticks    []observer.TickMsg
	switches []model.MapSwitchRequest
	triggers []observer.TriggerMsg
}

func (r *recorder) PublishTick(msg observer.TickMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, msg)
}

func (r *recorder) PublishMapSwitch(_ uint64, req model.MapSwitchRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.switches = append(r.switches, req)
}

func (r *recorder) PublishTrigger(msg observer.TriggerMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, msg)
}

func (r *recorder) triggered(name string) []observer.TriggerMsg {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []observer.TriggerMsg
	for _, m := range r.triggers {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func loadWorld(t *testing.T) *data.Dataset {
	t.Helper()
	ds, err := data.LoadDataset("../data/testdata/world.yaml")
	require.NoError(t, err)
	return ds
}

func newSim(t *testing.T, input Input, pub Publisher) *Simulation {
	t.Helper()
	ds := loadWorld(t)
	idx, err := ds.Geography()
	require.NoError(t, err)

	s, err := New(ds, world.StaticGeography(idx), Options{
		Interval:  time.Millisecond,
		Input:     input,
		Rand:      testutil.NewSeqRandom(0),
		Publisher: pub,
	})
	require.NoError(t, err)
	return s
}

func TestNew_PlacesEverything(t *testing.T) {
	s := newSim(t, held(model.DirNone), nil)

	hero := s.Player().Character()
	assert.Equal(t, "Hero", hero.Name())
	assert.Equal(t, model.NewPoint(10, 5), hero.Position())
	assert.Equal(t, model.DirUp, hero.Direction())
	assert.Equal(t, int32(1), s.World().Current().ID())

	assert.Equal(t, 4, s.Spawns().Count())
	assert.Equal(t, 4, s.Manager().Count())

	statue, ok := s.Spawns().Npc(world.NpcIDBase + 4)
	require.True(t, ok)
	assert.True(t, statue.Character().DirectionFixed())
}

func TestSimulation_PlayerWalksAcrossSeam(t *testing.T) {
	rec := &recorder{}
	s := newSim(t, held(model.DirUp), rec)
	hero := s.Player().Character()

	for range 5 {
		s.Step()
	}
	assert.Equal(t, model.NewPoint(10, 0), hero.Position())

	s.Step()
	assert.True(t, s.Player().TransferPending())
	assert.Equal(t, int32(1), s.World().Current().ID())

	// Switch applies at the start of the next tick; the player keeps walking.
	s.Step()
	assert.False(t, s.Player().TransferPending())
	assert.Equal(t, int32(2), s.World().Current().ID())
	assert.Equal(t, model.NewPoint(20, 13), hero.Position())

	require.Len(t, rec.switches, 1)
	assert.Equal(t, model.MapSwitchRequest{MapID: 2, Pos: model.NewPoint(20, 14), Dir: model.DirUp, Transition: true}, rec.switches[0])

	require.Len(t, rec.ticks, 7)
	last := rec.ticks[6]
	assert.Equal(t, int32(2), last.CurrentMap)
	assert.Len(t, last.Characters, 5)
}

func TestSimulation_PlayerStepsOnPlate(t *testing.T) {
	rec := &recorder{}
	s := newSim(t, held(model.DirRight), rec)

	s.Step()
	assert.Empty(t, rec.triggered("plate"))

	s.Step()
	assert.Equal(t, model.NewPoint(12, 5), s.Player().Character().Position())
	want := observer.TriggerMsg{
		Type: observer.TypeTrigger, Tick: 2, MapID: 1, Name: "plate", Kind: "touch",
		X: 12, Y: 5, CharacterID: s.Player().Character().ID(), Character: "Hero",
	}
	assert.Equal(t, []observer.TriggerMsg{want}, rec.triggered("plate"))

	// Walking off does not fire it again.
	s.Step()
	assert.Len(t, rec.triggered("plate"), 1)
}

func TestSimulation_ActionAcrossCounter(t *testing.T) {
	rec := &recorder{}
	moves := script{model.DirUp, model.DirUp, model.DirRight, model.DirRight, model.DirRight, model.DirRight}
	s := newSim(t, &moves, rec)

	for range 5 {
		s.Step()
	}
	assert.Equal(t, model.NewPoint(13, 3), s.Player().Character().Position())
	assert.Empty(t, rec.triggered("sign"))

	// The counter blocks the step; action reaches the sign behind it.
	s.Step()
	assert.Equal(t, model.NewPoint(13, 3), s.Player().Character().Position())
	signs := rec.triggered("sign")
	require.Len(t, signs, 1)
	assert.Equal(t, uint64(6), signs[0].Tick)
	assert.Equal(t, "action", signs[0].Kind)
	assert.Equal(t, int32(15), signs[0].X)
}

func TestSimulation_ChaserLosesPlayerAcrossMaps(t *testing.T) {
	s := newSim(t, held(model.DirUp), nil)
	slime, ok := s.Spawns().Npc(world.NpcIDBase + 1)
	require.True(t, ok)
	hero := s.Player().Character()

	start := slime.Character().Position().Manhattan(hero.Position())
	s.Step()
	assert.Less(t, slime.Character().Position().Manhattan(hero.Position()), start+1,
		"chaser keeps pace with a fleeing player")

	for range 6 {
		s.Step()
	}
	require.Equal(t, int32(2), s.World().Current().ID())

	parked := slime.Character().Position()
	s.Step()
	s.Step()
	assert.Equal(t, parked, slime.Character().Position(), "target on another map")
}

func TestSimulation_EndTick(t *testing.T) {
	s := newSim(t, held(model.DirNone), nil)
	statue, _ := s.Spawns().Npc(world.NpcIDBase + 4)

	s.Step()
	s.Step()
	assert.False(t, statue.Character().Moving())
	assert.Equal(t, int32(2), statue.Character().StopCount())
}

func TestSimulation_RunStopsAtMaxTicks(t *testing.T) {
	ds := loadWorld(t)
	s, err := New(ds, nil, Options{
		Interval: time.Millisecond,
		MaxTicks: 3,
		Rand:     testutil.NewSeqRandom(1, 2, 3),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, uint64(3), s.Manager().Ticks())
}

func TestSimulation_NoGeographyKeepsSeamsClosed(t *testing.T) {
	ds := loadWorld(t)
	s, err := New(ds, nil, Options{Input: held(model.DirUp), Rand: testutil.NewSeqRandom(0)})
	require.NoError(t, err)

	for range 8 {
		s.Step()
	}
	assert.False(t, s.Player().TransferPending())
	assert.Equal(t, model.NewPoint(10, 0), s.Player().Character().Position())
	assert.Equal(t, int32(1), s.World().Current().ID())
}

func TestNew_Errors(t *testing.T) {
	ds := loadWorld(t)
	_, err := New(ds, nil, Options{})
	assert.Error(t, err, "no random source")

	ds.Player.Map = 42
	_, err = New(ds, nil, Options{Rand: testutil.NewSeqRandom(0)})
	assert.Error(t, err)
}

func TestPilot(t *testing.T) {
	// IntN(4) picks from Cardinals: down, left, right, up.
	p := NewPilot(testutil.NewSeqRandom(3, 1, 0, 0, 2), 2)

	assert.Equal(t, model.DirUp, p.Next(true), "first call picks a direction")
	assert.Equal(t, model.DirUp, p.Next(true), "roll 1 keeps course")
	assert.Equal(t, model.DirDown, p.Next(true), "roll 0 turns")
	assert.Equal(t, model.DirRight, p.Next(false), "blocked always turns")

	assert.True(t, p.Action(false))
	assert.False(t, p.Action(true))
	assert.False(t, NewPilot(testutil.NewSeqRandom(0), 0).Action(false), "no course yet")
}
