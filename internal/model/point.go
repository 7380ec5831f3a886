package model

// Point is an integer tile coordinate.
// Value type, передаётся по значению (immutable).
type Point struct {
	X int32
	Y int32
}

// NewPoint создаёт Point с указанными координатами.
func NewPoint(x, y int32) Point {
	return Point{X: x, Y: y}
}

// Step returns the neighbouring point one tile away in direction d.
func (p Point) Step(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Add returns p shifted by (dx, dy).
func (p Point) Add(dx, dy int32) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Manhattan returns |dx| + |dy| to other.
func (p Point) Manhattan(other Point) int32 {
	return abs32(p.X-other.X) + abs32(p.Y-other.Y)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
