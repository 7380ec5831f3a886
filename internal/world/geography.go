package world

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Cell is one overview cell. MapID 0 means unclaimed.
// Through cells belong to a map but never take part in seam matching.
type Cell struct {
	MapID   int32
	Through bool
}

// Marker places a Cell on the overview grid.
type Marker struct {
	X, Y int32
	Cell
}

// GeographyIndex is the overview grid: which game map logically occupies
// each cell. Read-only after construction; safe for concurrent reads.
type GeographyIndex struct {
	width, height int32
	cells         []Cell
}

// NewGeographyIndex creates an empty width×height overview.
func NewGeographyIndex(width, height int32) *GeographyIndex {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &GeographyIndex{
		width:  width,
		height: height,
		cells:  make([]Cell, int(width)*int(height)),
	}
}

// BuildGeography creates an index and applies markers in order; a later
// marker on the same cell wins.
func BuildGeography(width, height int32, markers []Marker) (*GeographyIndex, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("building geography: invalid overview size %dx%d", width, height)
	}
	g := NewGeographyIndex(width, height)
	for i, m := range markers {
		if !g.Valid(m.X, m.Y) {
			return nil, fmt.Errorf("building geography: marker %d at (%d,%d) outside %dx%d overview", i, m.X, m.Y, width, height)
		}
		if m.MapID < 0 {
			return nil, fmt.Errorf("building geography: marker %d has negative map id %d", i, m.MapID)
		}
		g.cells[g.index(m.X, m.Y)] = m.Cell
	}
	return g, nil
}

func (g *GeographyIndex) Width() int32  { return g.width }
func (g *GeographyIndex) Height() int32 { return g.height }

// Valid reports whether (x, y) lies on the overview.
func (g *GeographyIndex) Valid(x, y int32) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the cell at (x, y); ok is false outside the overview.
func (g *GeographyIndex) At(x, y int32) (Cell, bool) {
	if !g.Valid(x, y) {
		return Cell{}, false
	}
	return g.cells[g.index(x, y)], true
}

// Markers returns every claimed cell in row-major order.
func (g *GeographyIndex) Markers() []Marker {
	var out []Marker
	for y := range g.height {
		for x := range g.width {
			c := g.cells[g.index(x, y)]
			if c.MapID != 0 {
				out = append(out, Marker{X: x, Y: y, Cell: c})
			}
		}
	}
	return out
}

func (g *GeographyIndex) index(x, y int32) int {
	return int(y)*int(g.width) + int(x)
}

// Footprint is the set of overview columns and rows a map occupies,
// both sorted ascending.
type Footprint struct {
	Cols []int32
	Rows []int32
}

// Empty reports whether the map claims no overview cell.
func (f Footprint) Empty() bool { return len(f.Cols) == 0 }

func (f Footprint) MinX() int32 { return f.Cols[0] }
func (f Footprint) MaxX() int32 { return f.Cols[len(f.Cols)-1] }
func (f Footprint) MinY() int32 { return f.Rows[0] }
func (f Footprint) MaxY() int32 { return f.Rows[len(f.Rows)-1] }

// Contiguous reports whether the columns and the rows each form one run.
func (f Footprint) Contiguous() bool {
	if f.Empty() {
		return true
	}
	return int(f.MaxX()-f.MinX())+1 == len(f.Cols) && int(f.MaxY()-f.MinY())+1 == len(f.Rows)
}

// Footprint collects the columns and rows claimed by mapID. Through cells
// are skipped.
func (g *GeographyIndex) Footprint(mapID int32) Footprint {
	var f Footprint
	if mapID == 0 {
		return f
	}
	for y := range g.height {
		for x := range g.width {
			c := g.cells[g.index(x, y)]
			if c.MapID != mapID || c.Through {
				continue
			}
			if !slices.Contains(f.Cols, x) {
				f.Cols = append(f.Cols, x)
			}
			if !slices.Contains(f.Rows, y) {
				f.Rows = append(f.Rows, y)
			}
		}
	}
	slices.Sort(f.Cols)
	slices.Sort(f.Rows)
	return f
}

// span scans from (x, y) along one axis and returns the first coordinate
// and length of the contiguous run of non-through cells claimed by mapID.
func (g *GeographyIndex) span(x, y, mapID int32, horizontal bool) (min, length int32) {
	claimed := func(x, y int32) bool {
		c, ok := g.At(x, y)
		return ok && c.MapID == mapID && !c.Through
	}
	if !claimed(x, y) {
		return 0, 0
	}

	if horizontal {
		lo, hi := x, x
		for claimed(lo-1, y) {
			lo--
		}
		for claimed(hi+1, y) {
			hi++
		}
		return lo, hi - lo + 1
	}

	lo, hi := y, y
	for claimed(x, lo-1) {
		lo--
	}
	for claimed(x, hi+1) {
		hi++
	}
	return lo, hi - lo + 1
}

// GeographyLoader produces the overview index; called at most once.
type GeographyLoader func() (*GeographyIndex, error)

// LazyGeography builds the overview index on first use and caches the
// result (or the error) for the lifetime of the value.
type LazyGeography struct {
	once sync.Once
	load GeographyLoader

	idx *GeographyIndex
	err error
}

// NewLazyGeography wraps load.
func NewLazyGeography(load GeographyLoader) *LazyGeography {
	return &LazyGeography{load: load}
}

// StaticGeography wraps an already built index.
func StaticGeography(idx *GeographyIndex) *LazyGeography {
	return NewLazyGeography(func() (*GeographyIndex, error) { return idx, nil })
}

// Index returns the cached index, building it on the first call.
func (l *LazyGeography) Index() (*GeographyIndex, error) {
	l.once.Do(func() {
		if l.load == nil {
			l.err = fmt.Errorf("loading geography: no loader configured")
			return
		}
		l.idx, l.err = l.load()
		if l.err != nil {
			slog.Error("geography index unavailable, map seams disabled", "err", l.err)
			return
		}
		if l.idx == nil {
			l.err = fmt.Errorf("loading geography: loader returned no index")
			return
		}
		slog.Info("geography index loaded",
			"width", l.idx.Width(),
			"height", l.idx.Height(),
			"markers", len(l.idx.Markers()))
	})
	return l.idx, l.err
}
