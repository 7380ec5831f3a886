// Package observer streams world state to read-only websocket clients.
package observer

import "github.com/udisondev/gridwalk/internal/model"

// Version of the observer wire protocol.
const Version = "1"

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypeTick      = "TICK"
	TypeMapSwitch = "MAP_SWITCH"
	TypeTrigger   = "TRIGGER"
)

// SubscribeMsg is the first message a client sends.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// MapID limits tick frames to one map; 0 means all maps.
	MapID int32 `json:"map_id,omitempty"`
}

// CharacterState is one character in a tick frame.
type CharacterState struct {
	ID        uint32 `json:"id"`
	Name      string `json:"name"`
	MapID     int32  `json:"map_id"`
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	Direction string `json:"direction"`
	Jumping   bool   `json:"jumping,omitempty"`
	Npc       bool   `json:"npc,omitempty"`
}

// TickMsg carries every character after a world tick.
type TickMsg struct {
	Type       string           `json:"type"`
	Tick       uint64           `json:"tick"`
	CurrentMap int32            `json:"current_map"`
	Characters []CharacterState `json:"characters"`
}

// MapSwitchMsg announces a pending map switch.
type MapSwitchMsg struct {
	Type       string `json:"type"`
	Tick       uint64 `json:"tick"`
	MapID      int32  `json:"map_id"`
	X          int32  `json:"x"`
	Y          int32  `json:"y"`
	Direction  string `json:"direction"`
	Transition bool   `json:"transition"`
}

// NewMapSwitchMsg converts a switch request.
func NewMapSwitchMsg(tick uint64, req model.MapSwitchRequest) MapSwitchMsg {
	return MapSwitchMsg{
		Type:       TypeMapSwitch,
		Tick:       tick,
		MapID:      req.MapID,
		X:          req.Pos.X,
		Y:          req.Pos.Y,
		Direction:  req.Dir.String(),
		Transition: req.Transition,
	}
}

// TriggerMsg reports a tile trigger that started. Character is empty
// when nobody in particular set it off.
type TriggerMsg struct {
	Type        string `json:"type"`
	Tick        uint64 `json:"tick"`
	MapID       int32  `json:"map_id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	X           int32  `json:"x"`
	Y           int32  `json:"y"`
	CharacterID uint32 `json:"character_id,omitempty"`
	Character   string `json:"character,omitempty"`
}

// NewTriggerMsg describes a trigger at pos on mapID started by ch.
func NewTriggerMsg(tick uint64, mapID int32, name string, kind model.TriggerKind, pos model.Point, ch *model.Character) TriggerMsg {
	msg := TriggerMsg{
		Type:  TypeTrigger,
		Tick:  tick,
		MapID: mapID,
		Name:  name,
		Kind:  kind.String(),
		X:     pos.X,
		Y:     pos.Y,
	}
	if ch != nil {
		msg.CharacterID = ch.ID()
		msg.Character = ch.Name()
	}
	return msg
}

// filter returns the frame restricted to one map.
func (m TickMsg) filter(mapID int32) TickMsg {
	if mapID == 0 {
		return m
	}
	out := m
	out.Characters = make([]CharacterState, 0, len(m.Characters))
	for _, c := range m.Characters {
		if c.MapID == mapID {
			out.Characters = append(out.Characters, c)
		}
	}
	return out
}
