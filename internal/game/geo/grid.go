package geo

import (
	"fmt"

	"github.com/udisondev/gridwalk/internal/model"
)

// Tile symbols accepted by ParseGrid.
const (
	TileOpen       = '.'
	TileWall       = '#'
	TileCounter    = 'C' // impassable, but the action check reaches across it
	TileHorizontal = '-' // can only be crossed east-west
	TileVertical   = '|' // can only be crossed north-south
)

// Grid stores per-tile movement permissions of one map.
// Read-only after construction; safe for concurrent reads.
type Grid struct {
	width    int32
	height   int32
	nswe     []byte
	counters []bool
}

// NewGrid creates a width×height grid where every tile is open.
func NewGrid(width, height int32) *Grid {
	g := &Grid{
		width:    width,
		height:   height,
		nswe:     make([]byte, int(width)*int(height)),
		counters: make([]bool, int(width)*int(height)),
	}
	for i := range g.nswe {
		g.nswe[i] = NSWEAll
	}
	return g
}

// ParseGrid builds a grid from text rows (one rune per tile).
// All rows must have the same length.
func ParseGrid(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("parsing grid: no rows")
	}
	width := int32(len(rows[0]))
	if width == 0 {
		return nil, fmt.Errorf("parsing grid: empty first row")
	}

	g := NewGrid(width, int32(len(rows)))
	for y, row := range rows {
		if int32(len(row)) != width {
			return nil, fmt.Errorf("parsing grid: row %d has %d tiles, want %d", y, len(row), width)
		}
		for x := range len(row) {
			idx := y*int(width) + x
			switch row[x] {
			case TileOpen:
				g.nswe[idx] = NSWEAll
			case TileWall:
				g.nswe[idx] = NSWENone
			case TileCounter:
				g.nswe[idx] = NSWENone
				g.counters[idx] = true
			case TileHorizontal:
				g.nswe[idx] = NSWEEast | NSWEWest
			case TileVertical:
				g.nswe[idx] = NSWENorth | NSWESouth
			default:
				return nil, fmt.Errorf("parsing grid: unknown tile %q at (%d,%d)", row[x], x, y)
			}
		}
	}
	return g, nil
}

// Width returns number of columns.
func (g *Grid) Width() int32 { return g.width }

// Height returns number of rows.
func (g *Grid) Height() int32 { return g.height }

// Valid reports whether (x, y) lies inside the grid.
func (g *Grid) Valid(x, y int32) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) index(x, y int32) int {
	return int(y)*int(g.width) + int(x)
}

// NSWE returns the permission mask of a tile (NSWENone outside the grid).
func (g *Grid) NSWE(x, y int32) byte {
	if !g.Valid(x, y) {
		return NSWENone
	}
	return g.nswe[g.index(x, y)]
}

// SetNSWE overrides the permission mask of a tile.
func (g *Grid) SetNSWE(x, y int32, mask byte) {
	if g.Valid(x, y) {
		g.nswe[g.index(x, y)] = mask & NSWEAll
	}
}

// Counter reports whether the tile is a counter.
func (g *Grid) Counter(x, y int32) bool {
	if !g.Valid(x, y) {
		return false
	}
	return g.counters[g.index(x, y)]
}

// SetCounter marks a tile as a counter.
func (g *Grid) SetCounter(x, y int32, counter bool) {
	if g.Valid(x, y) {
		g.counters[g.index(x, y)] = counter
	}
}

// CanMove reports whether terrain allows leaving (x, y) through side d and
// entering the neighbouring tile through the opposite side.
// With DirNone it reports whether (x, y) is open from every side.
func (g *Grid) CanMove(x, y int32, d model.Direction) bool {
	if d == model.DirNone {
		return g.NSWE(x, y) == NSWEAll
	}
	side := SideMask(d)
	if side == 0 {
		return false
	}
	dx, dy := d.Delta()
	nx, ny := x+dx, y+dy
	if !g.Valid(x, y) || !g.Valid(nx, ny) {
		return false
	}
	if g.NSWE(x, y)&side == 0 {
		return false
	}
	return g.NSWE(nx, ny)&SideMask(d.Reverse()) != 0
}
