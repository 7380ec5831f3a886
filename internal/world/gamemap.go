package world

import (
	"slices"
	"sync"

	"github.com/udisondev/gridwalk/internal/game/geo"
	"github.com/udisondev/gridwalk/internal/model"
)

// TriggerFunc runs when a character touches the tile the trigger sits on.
// Reports whether anything started. by is nil for anonymous views.
type TriggerFunc func(by *model.Character) bool

// Trigger is an interactive spot on a tile.
type Trigger struct {
	Name string
	Kind model.TriggerKind
	// Over triggers lie under the character and start on the same tile;
	// the others start when bumped from the neighbouring one.
	Over bool
	Fire TriggerFunc
}

// GameMap is one authored map: terrain, the characters standing on it and
// touch triggers. Passability is answered through a per-character View.
type GameMap struct {
	id   int32
	name string
	grid *geo.Grid

	mu         sync.RWMutex
	characters map[uint32]*model.Character
	triggers   map[model.Point][]Trigger
}

// NewGameMap creates a map with terrain grid.
func NewGameMap(id int32, name string, grid *geo.Grid) *GameMap {
	return &GameMap{
		id:         id,
		name:       name,
		grid:       grid,
		characters: make(map[uint32]*model.Character),
		triggers:   make(map[model.Point][]Trigger),
	}
}

func (m *GameMap) ID() int32       { return m.id }
func (m *GameMap) Name() string    { return m.name }
func (m *GameMap) Grid() *geo.Grid { return m.grid }
func (m *GameMap) Width() int32    { return m.grid.Width() }
func (m *GameMap) Height() int32   { return m.grid.Height() }

// Valid reports whether (x, y) lies on the map.
func (m *GameMap) Valid(x, y int32) bool { return m.grid.Valid(x, y) }

// Counter reports whether (x, y) is a counter tile.
func (m *GameMap) Counter(x, y int32) bool { return m.grid.Counter(x, y) }

// AddCharacter places ch on the map. Re-adding replaces the entry.
func (m *GameMap) AddCharacter(ch *model.Character) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[ch.ID()] = ch
}

// RemoveCharacter takes the character off the map.
func (m *GameMap) RemoveCharacter(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.characters, id)
}

// Character returns the character with id if it stands on this map.
func (m *GameMap) Character(id uint32) (*model.Character, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.characters[id]
	return ch, ok
}

// Characters returns the characters on the map ordered by id.
func (m *GameMap) Characters() []*model.Character {
	m.mu.RLock()
	out := make([]*model.Character, 0, len(m.characters))
	for _, ch := range m.characters {
		out = append(out, ch)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *model.Character) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	return out
}

// AddTrigger installs t on tile p. Several triggers may share a tile; a
// trigger without Fire is ignored.
func (m *GameMap) AddTrigger(p model.Point, t Trigger) {
	if t.Fire == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers[p] = append(m.triggers[p], t)
}

// ClearTriggers removes every trigger on tile p.
func (m *GameMap) ClearTriggers(p model.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.triggers, p)
}

// TriggerCount returns how many triggers are installed on the map.
func (m *GameMap) TriggerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, ts := range m.triggers {
		n += len(ts)
	}
	return n
}

// occupied reports whether a solid character other than self stands on p.
func (m *GameMap) occupied(p model.Point, self *model.Character) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.characters {
		if ch == self || ch.Through() {
			continue
		}
		if ch.Position() == p {
			return true
		}
	}
	return false
}

// View returns the map as seen by ch: ch's own tile never blocks it and a
// through character ignores terrain and occupants. A nil ch sees every
// occupant as solid.
func (m *GameMap) View(ch *model.Character) *View {
	return &View{m: m, self: ch}
}

// View is a GameMap bound to the character asking. It satisfies the
// movement map contracts.
type View struct {
	m    *GameMap
	self *model.Character
}

// Passable reports whether a step from (x, y) in direction d is legal.
// DirNone asks whether (x, y) can be entered from every side and is free.
func (v *View) Passable(x, y int32, d model.Direction) bool {
	dest := model.NewPoint(x, y).Step(d)
	if !v.m.Valid(dest.X, dest.Y) {
		return false
	}
	if v.self != nil && v.self.Through() {
		return true
	}
	if !v.m.grid.CanMove(x, y, d) {
		return false
	}
	return !v.m.occupied(dest, v.self)
}

// TriggerTouch fires the touch triggers bumped at (x, y).
func (v *View) TriggerTouch(x, y int32) bool {
	return v.TriggerAt(x, y, model.TouchTriggers, false)
}

// TriggerAt fires every trigger on (x, y) whose kind is in kinds and whose
// Over flag equals over. Reports whether any of them started.
func (v *View) TriggerAt(x, y int32, kinds model.TriggerKind, over bool) bool {
	v.m.mu.RLock()
	candidates := slices.Clone(v.m.triggers[model.NewPoint(x, y)])
	v.m.mu.RUnlock()

	started := false
	for _, t := range candidates {
		if !t.Kind.Matches(kinds) || t.Over != over {
			continue
		}
		if t.Fire(v.self) {
			started = true
		}
	}
	return started
}

func (v *View) Valid(x, y int32) bool   { return v.m.Valid(x, y) }
func (v *View) Counter(x, y int32) bool { return v.m.Counter(x, y) }
func (v *View) Width() int32            { return v.m.Width() }
func (v *View) Height() int32           { return v.m.Height() }

// Map returns the underlying map.
func (v *View) Map() *GameMap { return v.m }
