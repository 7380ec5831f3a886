package world

import "sync/atomic"

// IDGenerator hands out character ids.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Players
//	0x20000000 - 0x2FFFFFFF: NPCs
type IDGenerator struct {
	nextPlayerID atomic.Uint32
	nextNpcID    atomic.Uint32
}

const (
	PlayerIDBase uint32 = 0x10000000
	NpcIDBase    uint32 = 0x20000000
)

// NewIDGenerator creates a generator starting at the base of each range.
func NewIDGenerator() *IDGenerator {
	gen := &IDGenerator{}
	gen.nextPlayerID.Store(PlayerIDBase)
	gen.nextNpcID.Store(NpcIDBase)
	return gen
}

// NextPlayerID returns the next player id. Safe for concurrent use.
func (g *IDGenerator) NextPlayerID() uint32 {
	return g.nextPlayerID.Add(1)
}

// NextNpcID returns the next NPC id. Safe for concurrent use.
func (g *IDGenerator) NextNpcID() uint32 {
	return g.nextNpcID.Add(1)
}

// IsNpcID reports whether id lies in the NPC range.
func IsNpcID(id uint32) bool {
	return id >= NpcIDBase && id < NpcIDBase+0x10000000
}
