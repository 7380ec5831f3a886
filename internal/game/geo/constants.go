package geo

import "github.com/udisondev/gridwalk/internal/model"

// NSWE direction bitmask constants.
// 4-bit mask for tile movement permissions: a set bit means the tile can be
// left (and entered) through that side.
const (
	NSWEEast  byte = 1 << 0 // 0x01
	NSWEWest  byte = 1 << 1 // 0x02
	NSWESouth byte = 1 << 2 // 0x04
	NSWENorth byte = 1 << 3 // 0x08
	NSWEAll   byte = 0x0F
	NSWENone  byte = 0x00
)

// Search configuration.
const (
	// DefaultSearchBudget caps node expansions per NextStep call.
	DefaultSearchBudget = 350

	// stepCost is subtracted from the path cost for every tile walked.
	stepCost = 4
	// heuristicWeight scales Manhattan distance in the priority estimate.
	heuristicWeight = 4
	// heuristicBias is the constant term of the estimate.
	heuristicBias = 2
)

// SideMask returns the NSWE bit for a cardinal direction (0 otherwise).
func SideMask(d model.Direction) byte {
	switch d {
	case model.DirDown:
		return NSWESouth
	case model.DirUp:
		return NSWENorth
	case model.DirLeft:
		return NSWEWest
	case model.DirRight:
		return NSWEEast
	}
	return 0
}
