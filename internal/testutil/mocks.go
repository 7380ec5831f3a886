package testutil

import (
	"sync"

	"github.com/udisondev/gridwalk/internal/game/geo"
	"github.com/udisondev/gridwalk/internal/model"
)

// MockMap - in-memory карта поверх geo.Grid для unit тестов.
// Records every TriggerTouch, TriggerAt and Passable call.
type MockMap struct {
	Grid *geo.Grid

	// Blocked tiles cannot be entered (simulates occupants).
	Blocked map[model.Point]bool
	// Triggers lists tiles whose triggers report activation.
	Triggers map[model.Point]bool

	// Touched collects bumps (TriggerTouch).
	Touched []model.Point
	// Checks collects filtered trigger checks (TriggerAt).
	Checks  []TriggerCheck
	Queries int
}

// TriggerCheck is one recorded TriggerAt call.
type TriggerCheck struct {
	Pos   model.Point
	Kinds model.TriggerKind
	Over  bool
}

// NewMockMap creates a MockMap over g.
func NewMockMap(g *geo.Grid) *MockMap {
	return &MockMap{
		Grid:     g,
		Blocked:  make(map[model.Point]bool),
		Triggers: make(map[model.Point]bool),
	}
}

// OpenMap creates a MockMap over an open width×height grid.
func OpenMap(width, height int32) *MockMap {
	return NewMockMap(geo.NewGrid(width, height))
}

// Passable checks terrain first, then blocked tiles.
func (m *MockMap) Passable(x, y int32, d model.Direction) bool {
	m.Queries++
	if !m.Grid.CanMove(x, y, d) {
		return false
	}
	return !m.Blocked[model.NewPoint(x, y).Step(d)]
}

// TriggerTouch records the touch.
func (m *MockMap) TriggerTouch(x, y int32) bool {
	p := model.NewPoint(x, y)
	m.Touched = append(m.Touched, p)
	return m.Triggers[p]
}

// TriggerAt records the check.
func (m *MockMap) TriggerAt(x, y int32, kinds model.TriggerKind, over bool) bool {
	p := model.NewPoint(x, y)
	m.Checks = append(m.Checks, TriggerCheck{Pos: p, Kinds: kinds, Over: over})
	return m.Triggers[p]
}

func (m *MockMap) Valid(x, y int32) bool   { return m.Grid.Valid(x, y) }
func (m *MockMap) Width() int32            { return m.Grid.Width() }
func (m *MockMap) Height() int32           { return m.Grid.Height() }
func (m *MockMap) Counter(x, y int32) bool { return m.Grid.Counter(x, y) }

// SeqRandom returns scripted values from IntN, cycling when exhausted.
type SeqRandom struct {
	Values []int
	next   int
}

// NewSeqRandom creates a SeqRandom returning values in order.
func NewSeqRandom(values ...int) *SeqRandom {
	return &SeqRandom{Values: values}
}

// IntN returns the next scripted value modulo n.
func (r *SeqRandom) IntN(n int) int {
	if len(r.Values) == 0 {
		return 0
	}
	v := r.Values[r.next%len(r.Values)]
	r.next++
	return v % n
}

// SwitchRecorder collects map-switch requests.
type SwitchRecorder struct {
	mu       sync.Mutex
	Requests []model.MapSwitchRequest
}

// RequestMapSwitch records req.
func (r *SwitchRecorder) RequestMapSwitch(req model.MapSwitchRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Requests = append(r.Requests, req)
}

// Last returns the most recent request.
func (r *SwitchRecorder) Last() (model.MapSwitchRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Requests) == 0 {
		return model.MapSwitchRequest{}, false
	}
	return r.Requests[len(r.Requests)-1], true
}

// StaticEdges resolves every edge crossing to the same request.
type StaticEdges struct {
	Req   model.MapSwitchRequest
	OK    bool
	Calls int
}

// Correspond returns the configured request.
func (e *StaticEdges) Correspond(from model.Point, d model.Direction) (model.MapSwitchRequest, bool) {
	e.Calls++
	return e.Req, e.OK
}
