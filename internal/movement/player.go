package movement

import (
	"log/slog"

	"github.com/udisondev/gridwalk/internal/model"
)

// PlayerMap is the map view a Player needs on top of Map.
type PlayerMap interface {
	Map
	// Counter reports whether (x, y) is a counter tile: the action check
	// reaches across it to the tile behind.
	Counter(x, y int32) bool
	// TriggerAt fires the triggers on (x, y) with a kind in kinds whose
	// over flag equals over. Reports whether anything started.
	TriggerAt(x, y int32, kinds model.TriggerKind, over bool) bool
}

// EdgeResolver finds where a character leaving the current map through the
// edge at `from` in direction d would enter the adjoining map.
type EdgeResolver interface {
	Correspond(from model.Point, d model.Direction) (model.MapSwitchRequest, bool)
}

// MapSwitcher receives map-switch requests. Requests are signals; the host
// performs the switch later.
type MapSwitcher interface {
	RequestMapSwitch(req model.MapSwitchRequest)
}

// Player is the user-controlled variant of a Mover. It adds a debug
// passthrough and carries the character across map edges; all ordinary
// movement is delegated to the embedded Mover.
type Player struct {
	*Mover

	base    PlayerMap
	edges   EdgeResolver
	sink    MapSwitcher
	debug   func() bool
	pending bool

	moverOpts []Option
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithDebugPassthrough lets the player walk through anything inside the map
// while enabled() returns true.
func WithDebugPassthrough(enabled func() bool) PlayerOption {
	return func(p *Player) { p.debug = enabled }
}

// WithMoverOptions passes options through to the underlying Mover.
func WithMoverOptions(opts ...Option) PlayerOption {
	return func(p *Player) { p.moverOpts = append(p.moverOpts, opts...) }
}

// NewPlayer creates a Player for ch on m. edges may be nil when the map has
// no seams.
func NewPlayer(ch *model.Character, m PlayerMap, edges EdgeResolver, sink MapSwitcher, rng Random, opts ...PlayerOption) *Player {
	p := &Player{
		base:  m,
		edges: edges,
		sink:  sink,
	}
	for _, opt := range opts {
		opt(p)
	}
	moverOpts := append(p.moverOpts, WithBlockedHandler(p.crossEdge))
	p.Mover = NewMover(ch, &playerView{p: p}, rng, moverOpts...)
	return p
}

// TransferPending reports whether a map switch was requested and has not
// been completed yet.
func (p *Player) TransferPending() bool { return p.pending }

// CompleteTransfer rebinds the player to the map it was switched to and
// places it on the entry tile.
func (p *Player) CompleteTransfer(m PlayerMap, edges EdgeResolver, req model.MapSwitchRequest) {
	p.base = m
	p.edges = edges
	p.pending = false
	p.ch.MoveTo(req.Pos)
	p.ch.Turn(req.Dir)
}

// CancelTransfer drops a pending transfer the host could not complete so
// input is accepted again.
func (p *Player) CancelTransfer() { p.pending = false }

// Update performs the per-tick input step. input is the held direction
// (DirNone when nothing is pressed). Nothing moves while a transfer is
// pending. A finished step starts the touch triggers lying on the new tile.
func (p *Player) Update(input model.Direction) bool {
	if p.pending || input == model.DirNone {
		return false
	}
	if !p.MoveForward(input, true) {
		return false
	}
	p.CheckTriggerHere(model.TouchTriggers)
	return true
}

// Action presses the action button: action triggers on the player's tile,
// then anything in front of it.
func (p *Player) Action() bool {
	if p.pending {
		return false
	}
	here := p.CheckTriggerHere(model.TriggerAction)
	there := p.CheckTriggerThere(model.AnyTrigger)
	return here || there
}

// CheckTriggerHere starts the triggers of the given kinds lying on the
// player's tile.
func (p *Player) CheckTriggerHere(kinds model.TriggerKind) bool {
	pos := p.ch.Position()
	return p.base.TriggerAt(pos.X, pos.Y, kinds, true)
}

// CheckTriggerThere starts the triggers of the given kinds standing in
// front of the player; a counter tile in front extends the reach by one
// tile.
func (p *Player) CheckTriggerThere(kinds model.TriggerKind) bool {
	d := p.ch.Direction()
	front := p.ch.Position().Step(d)
	if p.base.TriggerAt(front.X, front.Y, kinds, false) {
		return true
	}
	if !p.base.Counter(front.X, front.Y) {
		return false
	}
	behind := front.Step(d)
	return p.base.TriggerAt(behind.X, behind.Y, kinds, false)
}

// crossEdge handles a refused cardinal step: when the step would leave the
// map it asks the edge resolver for an adjoining map.
func (p *Player) crossEdge(from model.Point, d model.Direction) bool {
	if p.edges == nil || p.pending || !d.IsCardinal() {
		return false
	}
	dest := from.Step(d)
	if p.base.Valid(dest.X, dest.Y) {
		return false // ordinary obstacle
	}

	req, ok := p.edges.Correspond(from, d)
	if !ok {
		return false
	}
	p.pending = true
	p.sink.RequestMapSwitch(req)
	slog.Debug("edge transfer requested",
		"character", p.ch.Name(),
		"from", from,
		"direction", d,
		"map", req.MapID,
		"entry", req.Pos)
	return true
}

// playerView applies the debug passthrough on top of the bound map.
type playerView struct {
	p *Player
}

func (v *playerView) Passable(x, y int32, d model.Direction) bool {
	if v.p.debug != nil && v.p.debug() {
		dest := model.NewPoint(x, y).Step(d)
		return v.p.base.Valid(dest.X, dest.Y)
	}
	return v.p.base.Passable(x, y, d)
}

func (v *playerView) TriggerTouch(x, y int32) bool { return v.p.base.TriggerTouch(x, y) }
func (v *playerView) Valid(x, y int32) bool        { return v.p.base.Valid(x, y) }
func (v *playerView) Width() int32                 { return v.p.base.Width() }
func (v *playerView) Height() int32                { return v.p.base.Height() }
