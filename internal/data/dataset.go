// Package data loads the authored dataset: map layouts, the overview
// geography and the initial placement of the player and NPCs.
package data

import (
	"fmt"

	"github.com/udisondev/gridwalk/internal/game/geo"
	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/world"
)

// Dataset is the decoded dataset file.
type Dataset struct {
	Overview Overview    `yaml:"overview"`
	Markers  []MarkerDef `yaml:"markers"`
	Maps     []MapDef    `yaml:"maps"`
	Player   *PlayerDef  `yaml:"player"`
	NPCs     []NpcDef    `yaml:"npcs"`

	// Digest - blake2b-256 исходных (несжатых) байт.
	Digest string `yaml:"-"`
}

// Overview is the size of the overview grid.
type Overview struct {
	Width  int32 `yaml:"width"`
	Height int32 `yaml:"height"`
}

// MarkerDef claims one overview cell for a map.
type MarkerDef struct {
	X       int32 `yaml:"x"`
	Y       int32 `yaml:"y"`
	Map     int32 `yaml:"map"`
	Through bool  `yaml:"through"`
}

// MapDef describes one map. Layout rows use the geo tile symbols.
type MapDef struct {
	ID       int32        `yaml:"id"`
	Name     string       `yaml:"name"`
	Layout   []string     `yaml:"layout"`
	Counters [][2]int32   `yaml:"counters"`
	Triggers []TriggerDef `yaml:"triggers"`
}

// TriggerDef places an interactive spot on a map tile.
type TriggerDef struct {
	Name string `yaml:"name"`
	X    int32  `yaml:"x"`
	Y    int32  `yaml:"y"`
	// Kind is action, touch or event_touch.
	Kind string `yaml:"kind"`
	// Over triggers are stepped on; the others are bumped into.
	Over bool `yaml:"over"`
}

// TriggerSink receives every dataset trigger that starts.
type TriggerSink func(mapID int32, def TriggerDef, by *model.Character)

// PlayerDef is the player's starting position.
type PlayerDef struct {
	Name      string `yaml:"name"`
	Map       int32  `yaml:"map"`
	X         int32  `yaml:"x"`
	Y         int32  `yaml:"y"`
	Direction string `yaml:"direction"`
}

// Behaviors accepted in NpcDef.Behavior.
const (
	BehaviorIdle   = "idle"
	BehaviorWander = "wander"
	BehaviorChase  = "chase"
	BehaviorFlee   = "flee"
)

// NpcDef places one NPC.
type NpcDef struct {
	Name           string `yaml:"name"`
	Map            int32  `yaml:"map"`
	X              int32  `yaml:"x"`
	Y              int32  `yaml:"y"`
	Behavior       string `yaml:"behavior"`
	Through        bool   `yaml:"through"`
	DirectionFixed bool   `yaml:"direction_fixed"`
}

// HasGeography reports whether the dataset carries an overview.
func (ds *Dataset) HasGeography() bool {
	return ds.Overview.Width > 0 && ds.Overview.Height > 0
}

// Geography builds the overview index from the markers.
func (ds *Dataset) Geography() (*world.GeographyIndex, error) {
	markers := make([]world.Marker, len(ds.Markers))
	for i, m := range ds.Markers {
		markers[i] = world.Marker{X: m.X, Y: m.Y, Cell: world.Cell{MapID: m.Map, Through: m.Through}}
	}
	idx, err := world.BuildGeography(ds.Overview.Width, ds.Overview.Height, markers)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", shortDigest(ds.Digest), err)
	}
	return idx, nil
}

// BuildMaps parses every map layout and installs its triggers. Started
// triggers are reported to sink, which may be nil.
func (ds *Dataset) BuildMaps(sink TriggerSink) ([]*world.GameMap, error) {
	maps := make([]*world.GameMap, 0, len(ds.Maps))
	for _, def := range ds.Maps {
		grid, err := geo.ParseGrid(def.Layout)
		if err != nil {
			return nil, fmt.Errorf("building map %d (%s): %w", def.ID, def.Name, err)
		}
		for _, c := range def.Counters {
			if !grid.Valid(c[0], c[1]) {
				return nil, fmt.Errorf("building map %d (%s): counter (%d,%d) outside %dx%d", def.ID, def.Name, c[0], c[1], grid.Width(), grid.Height())
			}
			grid.SetCounter(c[0], c[1], true)
		}
		name := def.Name
		if name == "" {
			name = fmt.Sprintf("map-%d", def.ID)
		}
		gm := world.NewGameMap(def.ID, name, grid)
		for _, td := range def.Triggers {
			t, err := buildTrigger(def.ID, td, grid, sink)
			if err != nil {
				return nil, fmt.Errorf("building map %d (%s): %w", def.ID, name, err)
			}
			gm.AddTrigger(model.NewPoint(td.X, td.Y), t)
		}
		maps = append(maps, gm)
	}
	return maps, nil
}

func buildTrigger(mapID int32, td TriggerDef, grid *geo.Grid, sink TriggerSink) (world.Trigger, error) {
	if !grid.Valid(td.X, td.Y) {
		return world.Trigger{}, fmt.Errorf("trigger %q at (%d,%d) outside %dx%d", td.Name, td.X, td.Y, grid.Width(), grid.Height())
	}
	kind, ok := model.ParseTriggerKind(td.Kind)
	if !ok {
		return world.Trigger{}, fmt.Errorf("trigger %q: unknown kind %q", td.Name, td.Kind)
	}
	return world.Trigger{
		Name: td.Name,
		Kind: kind,
		Over: td.Over,
		Fire: func(by *model.Character) bool {
			if sink != nil {
				sink(mapID, td, by)
			}
			return true
		},
	}, nil
}

// PlayerDirection returns the configured starting facing (Down by default).
func (p *PlayerDef) PlayerDirection() model.Direction {
	d, ok := model.ParseDirection(p.Direction)
	if !ok || !d.IsCardinal() {
		return model.DirDown
	}
	return d
}

// validate checks references the schema cannot express.
func (ds *Dataset) validate() error {
	ids := make(map[int32]bool, len(ds.Maps))
	for _, m := range ds.Maps {
		if ids[m.ID] {
			return fmt.Errorf("duplicate map id %d", m.ID)
		}
		ids[m.ID] = true
	}
	if len(ds.Markers) > 0 && !ds.HasGeography() {
		return fmt.Errorf("markers present but overview size missing")
	}
	if ds.Player != nil && !ids[ds.Player.Map] {
		return fmt.Errorf("player starts on unknown map %d", ds.Player.Map)
	}
	for i, n := range ds.NPCs {
		if !ids[n.Map] {
			return fmt.Errorf("npc %d (%s) placed on unknown map %d", i, n.Name, n.Map)
		}
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	if d == "" {
		return "<inline>"
	}
	return d
}
