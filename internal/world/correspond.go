package world

import (
	"log/slog"

	"github.com/udisondev/gridwalk/internal/model"
)

// MapSizer reports the tile size of a registered map.
type MapSizer interface {
	MapSize(mapID int32) (width, height int32, ok bool)
}

// Correspond resolves a step off the edge of map mapID: a character on pos
// stepping in cardinal direction d leaves the map, and the overview index
// decides which map it enters and where.
//
// The exit tile is projected onto the overview through the current map's
// footprint, the cell just beyond the footprint edge names the adjoining
// map, and the tile is remapped proportionally onto that map's span along
// the seam. The perpendicular coordinate lands on the near edge of the new
// map. Returns false when the edge is a hard boundary.
func Correspond(idx *GeographyIndex, maps MapSizer, mapID int32, pos model.Point, d model.Direction) (model.MapSwitchRequest, bool) {
	if idx == nil || maps == nil || !d.IsCardinal() {
		return model.MapSwitchRequest{}, false
	}
	oldW, oldH, ok := maps.MapSize(mapID)
	if !ok {
		return model.MapSwitchRequest{}, false
	}
	dest := pos.Step(d)
	if dest.X >= 0 && dest.X < oldW && dest.Y >= 0 && dest.Y < oldH {
		return model.MapSwitchRequest{}, false // not an edge
	}

	fp := idx.Footprint(mapID)
	if fp.Empty() {
		return model.MapSwitchRequest{}, false
	}
	if !fp.Contiguous() {
		slog.Warn("map footprint is not contiguous",
			"map", mapID,
			"cols", fp.Cols,
			"rows", fp.Rows)
	}

	vertical := d.Vertical()

	// Overview cell just beyond the footprint edge.
	var col, row int32
	var oldMin, oldLen, oldSize, c int32
	if vertical {
		oldMin, oldLen, oldSize, c = fp.MinX(), int32(len(fp.Cols)), oldW, pos.X
		col = TileToOverview(oldMin, oldLen, oldSize, c)
		if d == model.DirUp {
			row = fp.MinY() - 1
		} else {
			row = fp.MaxY() + 1
		}
	} else {
		oldMin, oldLen, oldSize, c = fp.MinY(), int32(len(fp.Rows)), oldH, pos.Y
		row = TileToOverview(oldMin, oldLen, oldSize, c)
		if d == model.DirLeft {
			col = fp.MinX() - 1
		} else {
			col = fp.MaxX() + 1
		}
	}

	cell, ok := idx.At(col, row)
	if !ok || cell.MapID == 0 || cell.Through {
		slog.Debug("no adjoining map", "map", mapID, "direction", d, "col", col, "row", row)
		return model.MapSwitchRequest{}, false
	}
	newW, newH, ok := maps.MapSize(cell.MapID)
	if !ok {
		slog.Warn("overview names an unknown map", "map", cell.MapID, "col", col, "row", row)
		return model.MapSwitchRequest{}, false
	}

	newMin, newLen := idx.span(col, row, cell.MapID, vertical)

	var entry model.Point
	switch d {
	case model.DirUp:
		entry = model.NewPoint(clamp(Remap(oldMin, newMin, oldSize, oldLen, newW, newLen, c), newW), newH-1)
	case model.DirDown:
		entry = model.NewPoint(clamp(Remap(oldMin, newMin, oldSize, oldLen, newW, newLen, c), newW), 0)
	case model.DirLeft:
		entry = model.NewPoint(newW-1, clamp(Remap(oldMin, newMin, oldSize, oldLen, newH, newLen, c), newH))
	case model.DirRight:
		entry = model.NewPoint(0, clamp(Remap(oldMin, newMin, oldSize, oldLen, newH, newLen, c), newH))
	}

	return model.MapSwitchRequest{
		MapID:      cell.MapID,
		Pos:        entry,
		Dir:        d,
		Transition: true,
	}, true
}
