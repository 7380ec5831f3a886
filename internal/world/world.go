package world

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/movement"
)

// World holds every loaded map, the map the player is on, the overview
// geography and the pending map switch. One World per simulation; pass it
// explicitly instead of reaching for globals.
type World struct {
	mu      sync.RWMutex
	maps    map[int32]*GameMap
	current int32
	pending *model.MapSwitchRequest

	geography *LazyGeography
}

// New creates an empty world. geography may be nil when maps have no seams.
func New(geography *LazyGeography) *World {
	return &World{
		maps:      make(map[int32]*GameMap),
		geography: geography,
	}
}

// AddMap registers m. The first registered map becomes current.
func (w *World) AddMap(m *GameMap) error {
	if m.ID() <= 0 {
		return fmt.Errorf("adding map %q: id must be positive, got %d", m.Name(), m.ID())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.maps[m.ID()]; exists {
		return fmt.Errorf("adding map %q: id %d already registered", m.Name(), m.ID())
	}
	w.maps[m.ID()] = m
	if w.current == 0 {
		w.current = m.ID()
	}
	return nil
}

// Map returns the map with id.
func (w *World) Map(id int32) (*GameMap, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m, ok := w.maps[id]
	return m, ok
}

// Maps returns all maps ordered by id.
func (w *World) Maps() []*GameMap {
	w.mu.RLock()
	out := make([]*GameMap, 0, len(w.maps))
	for _, m := range w.maps {
		out = append(out, m)
	}
	w.mu.RUnlock()

	slices.SortFunc(out, func(a, b *GameMap) int { return int(a.ID() - b.ID()) })
	return out
}

// MapSize implements MapSizer.
func (w *World) MapSize(id int32) (width, height int32, ok bool) {
	m, ok := w.Map(id)
	if !ok {
		return 0, 0, false
	}
	return m.Width(), m.Height(), true
}

// Current returns the map the player is on, nil before any map is added.
func (w *World) Current() *GameMap {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.maps[w.current]
}

// SetCurrent switches the current map.
func (w *World) SetCurrent(id int32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.maps[id]; !ok {
		return fmt.Errorf("setting current map: unknown map %d", id)
	}
	w.current = id
	return nil
}

// Locate finds the map and tile character id stands on.
func (w *World) Locate(id uint32) (mapID int32, pos model.Point, ok bool) {
	for _, m := range w.Maps() {
		if ch, found := m.Character(id); found {
			return m.ID(), ch.Position(), true
		}
	}
	return 0, model.Point{}, false
}

// RequestMapSwitch records a map switch for the host to apply on the next
// tick. A newer request replaces an unapplied one.
func (w *World) RequestMapSwitch(req model.MapSwitchRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = &req
	slog.Debug("map switch requested",
		"map", req.MapID,
		"x", req.Pos.X,
		"y", req.Pos.Y,
		"direction", req.Dir,
		"transition", req.Transition)
}

// PendingSwitch returns the unapplied map switch, if any.
func (w *World) PendingSwitch() (model.MapSwitchRequest, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.pending == nil {
		return model.MapSwitchRequest{}, false
	}
	return *w.pending, true
}

// ApplyPendingSwitch moves the player to the map named by the pending
// request and makes it current. Reports false when nothing was pending.
// A request naming an unknown map is dropped and the player released.
func (w *World) ApplyPendingSwitch(p *movement.Player) (model.MapSwitchRequest, bool, error) {
	w.mu.Lock()
	if w.pending == nil {
		w.mu.Unlock()
		return model.MapSwitchRequest{}, false, nil
	}
	req := *w.pending
	w.pending = nil
	target, ok := w.maps[req.MapID]
	from := w.maps[w.current]
	if ok {
		w.current = req.MapID
	}
	w.mu.Unlock()

	if !ok {
		p.CancelTransfer()
		return req, false, fmt.Errorf("applying map switch: unknown map %d", req.MapID)
	}

	ch := p.Character()
	if from != nil {
		from.RemoveCharacter(ch.ID())
	}
	target.AddCharacter(ch)
	p.CompleteTransfer(target.View(ch), w.Edges(req.MapID), req)

	slog.Info("map switched",
		"character", ch.Name(),
		"map", target.Name(),
		"x", req.Pos.X,
		"y", req.Pos.Y)
	return req, true, nil
}

// Edges returns the seam resolver for map mapID.
func (w *World) Edges(mapID int32) movement.EdgeResolver {
	if w.geography == nil {
		return nil
	}
	return &edgeResolver{w: w, mapID: mapID}
}

type edgeResolver struct {
	w     *World
	mapID int32
}

func (e *edgeResolver) Correspond(from model.Point, d model.Direction) (model.MapSwitchRequest, bool) {
	idx, err := e.w.geography.Index()
	if err != nil {
		return model.MapSwitchRequest{}, false
	}
	return Correspond(idx, e.w, e.mapID, from, d)
}
