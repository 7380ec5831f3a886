// Package sim assembles a running world from a dataset: maps, the
// player, NPC controllers and the per-tick bookkeeping around them.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/gridwalk/internal/ai"
	"github.com/udisondev/gridwalk/internal/data"
	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/movement"
	"github.com/udisondev/gridwalk/internal/observer"
	"github.com/udisondev/gridwalk/internal/spawn"
	"github.com/udisondev/gridwalk/internal/world"
)

// Publisher receives what the simulation emits every tick.
type Publisher interface {
	PublishTick(msg observer.TickMsg)
	PublishMapSwitch(tick uint64, req model.MapSwitchRequest)
	PublishTrigger(msg observer.TriggerMsg)
}

// Input supplies the direction the player holds each tick.
type Input interface {
	Next(lastMoved bool) model.Direction
}

// ActionInput is an Input that can also press the action button. It is
// asked once per tick after the player moved or failed to.
type ActionInput interface {
	Input
	Action(moved bool) bool
}

// Options tune a Simulation.
type Options struct {
	Interval    time.Duration
	Budget      int
	ChaseRange  int32
	Passthrough bool
	// MaxTicks stops Run after that many ticks (0 = unlimited).
	MaxTicks uint64
	// Input drives the player; nil uses a Pilot.
	Input Input
	// TurnEvery is the pilot's average run length.
	TurnEvery int
	Rand      movement.Random
	Publisher Publisher
}

// Simulation is one world plus everything ticking inside it.
type Simulation struct {
	world   *world.World
	manager *ai.TickManager
	spawns  *spawn.Manager
	ids     *world.IDGenerator

	player    *movement.Player
	input     Input
	lastMoved bool

	pub      Publisher
	maxTicks uint64
	tick     uint64
}

// New builds the world described by ds. geography may be nil, in which
// case map seams are closed.
func New(ds *data.Dataset, geography *world.LazyGeography, opts Options) (*Simulation, error) {
	if opts.Rand == nil {
		return nil, fmt.Errorf("creating simulation: no random source")
	}

	s := &Simulation{
		world:    world.New(geography),
		ids:      world.NewIDGenerator(),
		pub:      opts.Publisher,
		maxTicks: opts.MaxTicks,
	}

	maps, err := ds.BuildMaps(s.onTrigger)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	for _, m := range maps {
		if err := s.world.AddMap(m); err != nil {
			return nil, fmt.Errorf("creating simulation: %w", err)
		}
	}

	moverOpts := []movement.Option{}
	if opts.Budget > 0 {
		moverOpts = append(moverOpts, movement.WithSearchBudget(opts.Budget))
	}

	if ds.Player != nil {
		if err := s.placePlayer(ds.Player, opts, moverOpts); err != nil {
			return nil, err
		}
	}

	s.manager = ai.NewTickManager(opts.Interval,
		ai.WithBeforeTick(s.beforeTick),
		ai.WithAfterTick(s.afterTick),
	)

	spawnOpts := []spawn.Option{
		spawn.WithTargets(s.playerTarget),
		spawn.WithMoverOptions(moverOpts...),
	}
	if opts.ChaseRange > 0 {
		spawnOpts = append(spawnOpts, spawn.WithChaseOptions(ai.WithChaseRange(opts.ChaseRange)))
	}
	s.spawns = spawn.NewManager(s.world, s.manager, s.ids, opts.Rand, spawnOpts...)
	if err := s.spawns.SpawnAll(ds.NPCs); err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	return s, nil
}

func (s *Simulation) placePlayer(def *data.PlayerDef, opts Options, moverOpts []movement.Option) error {
	gm, ok := s.world.Map(def.Map)
	if !ok {
		return fmt.Errorf("placing player: unknown map %d", def.Map)
	}
	if !gm.Valid(def.X, def.Y) {
		return fmt.Errorf("placing player: (%d,%d) outside map %d", def.X, def.Y, def.Map)
	}
	if err := s.world.SetCurrent(def.Map); err != nil {
		return fmt.Errorf("placing player: %w", err)
	}

	name := def.Name
	if name == "" {
		name = "player"
	}
	ch := model.NewCharacter(s.ids.NextPlayerID(), name, model.NewPoint(def.X, def.Y))
	ch.Turn(def.PlayerDirection())
	gm.AddCharacter(ch)

	passthrough := opts.Passthrough
	s.player = movement.NewPlayer(ch, gm.View(ch), s.world.Edges(def.Map), s.world, opts.Rand,
		movement.WithDebugPassthrough(func() bool { return passthrough }),
		movement.WithMoverOptions(moverOpts...),
	)
	s.input = opts.Input
	if s.input == nil {
		s.input = NewPilot(opts.Rand, opts.TurnEvery)
	}
	s.lastMoved = true

	slog.Info("player placed",
		"name", name,
		"map", gm.Name(),
		"location", ch.Position(),
		"direction", ch.Direction())
	return nil
}

// playerTarget is the chase/flee target for NPCs on mapID: the player,
// while it stands on the same map.
func (s *Simulation) playerTarget(mapID int32) ai.TargetFunc {
	if s.player == nil {
		return nil
	}
	id := s.player.Character().ID()
	return func() (model.Point, bool) {
		at, pos, ok := s.world.Locate(id)
		if !ok || at != mapID {
			return model.Point{}, false
		}
		return pos, true
	}
}

// onTrigger reports a dataset trigger that started during the current tick.
func (s *Simulation) onTrigger(mapID int32, def data.TriggerDef, by *model.Character) {
	kind, _ := model.ParseTriggerKind(def.Kind)
	pos := model.NewPoint(def.X, def.Y)
	attrs := []any{"tick", s.tick, "map", mapID, "trigger", def.Name, "kind", kind, "location", pos}
	if by != nil {
		attrs = append(attrs, "character", by.Name())
	}
	slog.Info("trigger started", attrs...)

	if s.pub != nil {
		s.pub.PublishTrigger(observer.NewTriggerMsg(s.tick, mapID, def.Name, kind, pos, by))
	}
}

// World returns the simulated world.
func (s *Simulation) World() *world.World { return s.world }

// Player returns the player, nil when the dataset places none.
func (s *Simulation) Player() *movement.Player { return s.player }

// Spawns returns the NPC spawn manager.
func (s *Simulation) Spawns() *spawn.Manager { return s.spawns }

// Manager returns the tick manager.
func (s *Simulation) Manager() *ai.TickManager { return s.manager }

// Step runs one tick synchronously and returns its number.
func (s *Simulation) Step() uint64 { return s.manager.TickOnce() }

// Run ticks until ctx is cancelled or MaxTicks is reached.
func (s *Simulation) Run(ctx context.Context) error {
	return s.manager.Start(ctx)
}

// beforeTick applies a map switch requested last tick, then moves the
// player. NPCs tick after this so they react to the new position.
func (s *Simulation) beforeTick(tick uint64) {
	s.tick = tick
	if s.player == nil {
		return
	}

	req, switched, err := s.world.ApplyPendingSwitch(s.player)
	if err != nil {
		slog.Error("map switch failed", "tick", tick, "err", err)
	}
	if switched {
		s.lastMoved = true
		if s.pub != nil {
			s.pub.PublishMapSwitch(tick, req)
		}
	}

	if s.player.TransferPending() {
		return
	}
	s.lastMoved = s.player.Update(s.input.Next(s.lastMoved))
	if in, ok := s.input.(ActionInput); ok && in.Action(s.lastMoved) {
		s.player.Action()
	}
}

// afterTick ends the tick for every character and publishes the frame.
func (s *Simulation) afterTick(tick uint64) {
	for _, m := range s.world.Maps() {
		for _, ch := range m.Characters() {
			ch.EndTick()
		}
	}

	if s.pub != nil {
		s.pub.PublishTick(observer.Snapshot(s.world, tick))
	}

	if s.maxTicks > 0 && tick >= s.maxTicks {
		slog.Info("tick limit reached", "ticks", tick)
		s.manager.Stop()
	}
}
