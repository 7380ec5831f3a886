package spawn

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/gridwalk/internal/ai"
	"github.com/udisondev/gridwalk/internal/data"
	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/movement"
	"github.com/udisondev/gridwalk/internal/world"
)

// TargetLocator returns the target an NPC on mapID chases or flees,
// or nil when there is none.
type TargetLocator func(mapID int32) ai.TargetFunc

// Npc is a spawned NPC.
type Npc struct {
	Def        data.NpcDef
	Mover      *movement.Mover
	Controller ai.Controller
}

// Character returns the NPC's character.
func (n *Npc) Character() *model.Character { return n.Mover.Character() }

// Manager places NPCs on world maps and registers their controllers.
type Manager struct {
	world     *world.World
	aiManager *ai.TickManager
	ids       *world.IDGenerator
	rng       movement.Random

	targets   TargetLocator
	moverOpts []movement.Option
	chaseOpts []ai.ChaseOption

	mu   sync.Mutex
	npcs map[uint32]*Npc
}

// Option configures a Manager.
type Option func(*Manager)

// WithTargets sets how chase and flee NPCs find their target.
func WithTargets(locate TargetLocator) Option {
	return func(m *Manager) { m.targets = locate }
}

// WithMoverOptions applies opts to every NPC mover.
func WithMoverOptions(opts ...movement.Option) Option {
	return func(m *Manager) { m.moverOpts = append(m.moverOpts, opts...) }
}

// WithChaseOptions applies opts to every chasing controller.
func WithChaseOptions(opts ...ai.ChaseOption) Option {
	return func(m *Manager) { m.chaseOpts = append(m.chaseOpts, opts...) }
}

// NewManager creates new spawn manager
func NewManager(
	w *world.World,
	aiManager *ai.TickManager,
	ids *world.IDGenerator,
	rng movement.Random,
	opts ...Option,
) *Manager {
	m := &Manager{
		world:     w,
		aiManager: aiManager,
		ids:       ids,
		rng:       rng,
		npcs:      make(map[uint32]*Npc),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DoSpawn places the NPC described by def and starts its controller.
func (m *Manager) DoSpawn(def data.NpcDef) (*Npc, error) {
	gm, ok := m.world.Map(def.Map)
	if !ok {
		return nil, fmt.Errorf("spawning %s: unknown map %d", def.Name, def.Map)
	}
	if !gm.Valid(def.X, def.Y) {
		return nil, fmt.Errorf("spawning %s: (%d,%d) outside map %d (%dx%d)",
			def.Name, def.X, def.Y, def.Map, gm.Width(), gm.Height())
	}

	ch := model.NewCharacter(m.ids.NextNpcID(), def.Name, model.NewPoint(def.X, def.Y))
	ch.SetThrough(def.Through)
	ch.SetDirectionFixed(def.DirectionFixed)

	mover := movement.NewMover(ch, gm.View(ch), m.rng, m.moverOpts...)

	var target ai.TargetFunc
	if m.targets != nil {
		target = m.targets(def.Map)
	}
	controller, err := ai.NewController(def.Behavior, mover, m.rng, target, m.chaseOpts...)
	if err != nil {
		return nil, fmt.Errorf("spawning %s: %w", def.Name, err)
	}

	gm.AddCharacter(ch)
	npc := &Npc{Def: def, Mover: mover, Controller: controller}

	m.mu.Lock()
	m.npcs[ch.ID()] = npc
	m.mu.Unlock()

	m.aiManager.Register(ch.ID(), controller)

	slog.Info("NPC spawned",
		"objectID", ch.ID(),
		"name", def.Name,
		"map", def.Map,
		"behavior", def.Behavior,
		"location", ch.Position())

	return npc, nil
}

// DespawnNpc removes the NPC from its map and stops its controller.
func (m *Manager) DespawnNpc(objectID uint32) {
	m.mu.Lock()
	npc, ok := m.npcs[objectID]
	delete(m.npcs, objectID)
	m.mu.Unlock()

	if !ok {
		slog.Warn("despawning unknown NPC", "objectID", objectID)
		return
	}

	m.aiManager.Unregister(objectID)
	if gm, ok := m.world.Map(npc.Def.Map); ok {
		gm.RemoveCharacter(objectID)
	}

	slog.Info("NPC despawned",
		"objectID", objectID,
		"name", npc.Def.Name)
}

// Npc returns a spawned NPC by object id.
func (m *Manager) Npc(objectID uint32) (*Npc, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	npc, ok := m.npcs[objectID]
	return npc, ok
}

// Count returns number of spawned NPCs
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.npcs)
}

// SpawnAll spawns every definition. A failed definition is logged and
// skipped; the first error is returned after the rest were tried.
func (m *Manager) SpawnAll(defs []data.NpcDef) error {
	count := 0
	var firstErr error

	for _, def := range defs {
		if _, err := m.DoSpawn(def); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Error("failed to spawn NPC",
				"name", def.Name,
				"map", def.Map,
				"error", err)
			continue
		}
		count++
	}

	if firstErr != nil {
		slog.Warn("SpawnAll completed with errors", "spawned", count, "error", firstErr)
		return fmt.Errorf("spawning all NPCs: %w", firstErr)
	}

	slog.Info("all NPCs spawned", "count", count)
	return nil
}
