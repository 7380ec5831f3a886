package movement

import "github.com/udisondev/gridwalk/internal/model"

// MoveDiagonal steps one tile diagonally. The step is legal when either
// ordering of its two orthogonal halves is clear: vertical then horizontal,
// or horizontal then vertical. A blocked diagonal triggers nothing.
func (m *Mover) MoveDiagonal(d model.Direction) bool {
	if !d.IsDiagonal() {
		return false
	}
	m.ch.FaceDiagonal(d)

	if !m.DiagonalClear(m.ch.Position(), d) {
		return false
	}
	m.ch.Relocate(m.ch.Position().Step(d))
	return true
}

// DiagonalClear reports whether a diagonal step from p is legal.
func (m *Mover) DiagonalClear(p model.Point, d model.Direction) bool {
	h, v := d.Components()
	vp := p.Step(v)
	hp := p.Step(h)

	if m.m.Passable(p.X, p.Y, v) && m.m.Passable(vp.X, vp.Y, h) {
		return true
	}
	return m.m.Passable(p.X, p.Y, h) && m.m.Passable(hp.X, hp.Y, v)
}
