package observer

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/world"
)

// sessionBuffer is how many frames a slow client may lag before frames drop.
const sessionBuffer = 8

type session struct {
	id    string
	mapID int32
	out   chan []byte
}

// Hub fans world frames out to observer sessions. Publishing never
// blocks the tick loop: a full session buffer drops the frame.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*session
	dropped  uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*session)}
}

// Join registers a session and returns its frame channel.
func (h *Hub) Join(id string, mapID int32) <-chan []byte {
	s := &session{id: id, mapID: mapID, out: make(chan []byte, sessionBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.sessions[id]; ok {
		close(old.out)
	}
	h.sessions[id] = s
	return s.out
}

// Subscribe changes the map filter of a session.
func (h *Hub) Subscribe(id string, mapID int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok {
		s.mapID = mapID
	}
}

// Leave removes a session and closes its channel.
func (h *Hub) Leave(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok {
		close(s.out)
		delete(h.sessions, id)
	}
}

// Count returns number of connected sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Dropped returns how many frames were dropped for slow sessions.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// PublishTick sends a tick frame, filtered per session.
func (h *Hub) PublishTick(msg TickMsg) {
	h.mu.Lock()
	defer h.mu.Unlock()

	encoded := make(map[int32][]byte)
	for _, s := range h.sessions {
		b, ok := encoded[s.mapID]
		if !ok {
			var err error
			b, err = json.Marshal(msg.filter(s.mapID))
			if err != nil {
				slog.Error("encoding tick frame", "tick", msg.Tick, "err", err)
				return
			}
			encoded[s.mapID] = b
		}
		h.send(s, b)
	}
}

// PublishMapSwitch sends a map-switch notice to every session.
func (h *Hub) PublishMapSwitch(tick uint64, req model.MapSwitchRequest) {
	b, err := json.Marshal(NewMapSwitchMsg(tick, req))
	if err != nil {
		slog.Error("encoding map switch", "tick", tick, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.sessions {
		h.send(s, b)
	}
}

// PublishTrigger sends a trigger notice to sessions watching its map.
func (h *Hub) PublishTrigger(msg TriggerMsg) {
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("encoding trigger", "tick", msg.Tick, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.sessions {
		if s.mapID != 0 && s.mapID != msg.MapID {
			continue
		}
		h.send(s, b)
	}
}

func (h *Hub) send(s *session, b []byte) {
	select {
	case s.out <- b:
	default:
		h.dropped++
	}
}

// Snapshot builds the tick frame for the world. Characters are ordered by
// map, then by id. Must run on the tick goroutine.
func Snapshot(w *world.World, tick uint64) TickMsg {
	msg := TickMsg{Type: TypeTick, Tick: tick}
	if cur := w.Current(); cur != nil {
		msg.CurrentMap = cur.ID()
	}

	for _, m := range w.Maps() {
		for _, ch := range m.Characters() {
			msg.Characters = append(msg.Characters, characterState(m.ID(), ch))
		}
	}
	return msg
}

func characterState(mapID int32, ch *model.Character) CharacterState {
	pos := ch.Position()
	return CharacterState{
		ID:        ch.ID(),
		Name:      ch.Name(),
		MapID:     mapID,
		X:         pos.X,
		Y:         pos.Y,
		Direction: ch.Direction().String(),
		Jumping:   ch.Jumping(),
		Npc:       world.IsNpcID(ch.ID()),
	}
}
