package model

// Direction is a facing/movement direction in numpad encoding:
//
//	7 8 9
//	4 . 6
//	1 2 3
//
// None (0) means "no direction"; for passability checks it asks whether a
// tile can be entered from every side.
type Direction uint8

const (
	DirNone      Direction = 0
	DirDownLeft  Direction = 1
	DirDown      Direction = 2
	DirDownRight Direction = 3
	DirLeft      Direction = 4
	DirRight     Direction = 6
	DirUpLeft    Direction = 7
	DirUp        Direction = 8
	DirUpRight   Direction = 9
)

// Cardinals lists the four cardinal directions in search expansion order.
var Cardinals = [4]Direction{DirDown, DirLeft, DirRight, DirUp}

// IsCardinal reports whether d is one of down, left, right, up.
func (d Direction) IsCardinal() bool {
	return d == DirDown || d == DirLeft || d == DirRight || d == DirUp
}

// IsDiagonal reports whether d is one of the four corner directions.
func (d Direction) IsDiagonal() bool {
	return d == DirDownLeft || d == DirDownRight || d == DirUpLeft || d == DirUpRight
}

// Valid reports whether d is None or one of the eight directions.
func (d Direction) Valid() bool {
	return d == DirNone || d.IsCardinal() || d.IsDiagonal()
}

// Reverse returns the opposite direction. None stays None.
func (d Direction) Reverse() Direction {
	if d == DirNone || !d.Valid() {
		return DirNone
	}
	return 10 - d
}

// RotateRight90 returns d turned 90° clockwise (cardinals only).
func (d Direction) RotateRight90() Direction {
	switch d {
	case DirDown:
		return DirLeft
	case DirLeft:
		return DirUp
	case DirRight:
		return DirDown
	case DirUp:
		return DirRight
	}
	return d
}

// RotateLeft90 returns d turned 90° counter-clockwise (cardinals only).
func (d Direction) RotateLeft90() Direction {
	switch d {
	case DirDown:
		return DirRight
	case DirLeft:
		return DirDown
	case DirRight:
		return DirUp
	case DirUp:
		return DirLeft
	}
	return d
}

// Rotate180 is Reverse restricted to cardinals.
func (d Direction) Rotate180() Direction {
	if !d.IsCardinal() {
		return d
	}
	return d.Reverse()
}

// Delta returns the one-step coordinate offset for d.
func (d Direction) Delta() (dx, dy int32) {
	switch d {
	case DirDownLeft:
		return -1, 1
	case DirDown:
		return 0, 1
	case DirDownRight:
		return 1, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	case DirUpLeft:
		return -1, -1
	case DirUp:
		return 0, -1
	case DirUpRight:
		return 1, -1
	}
	return 0, 0
}

// Components splits a diagonal into its horizontal and vertical parts.
// Cardinals return themselves on their own axis and None on the other.
func (d Direction) Components() (h, v Direction) {
	switch d {
	case DirDownLeft:
		return DirLeft, DirDown
	case DirDownRight:
		return DirRight, DirDown
	case DirUpLeft:
		return DirLeft, DirUp
	case DirUpRight:
		return DirRight, DirUp
	case DirLeft, DirRight:
		return d, DirNone
	case DirDown, DirUp:
		return DirNone, d
	}
	return DirNone, DirNone
}

// Vertical reports whether d is up or down.
func (d Direction) Vertical() bool {
	return d == DirUp || d == DirDown
}

// String returns human-readable direction name
func (d Direction) String() string {
	switch d {
	case DirNone:
		return "NONE"
	case DirDownLeft:
		return "DOWN_LEFT"
	case DirDown:
		return "DOWN"
	case DirDownRight:
		return "DOWN_RIGHT"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	case DirUpLeft:
		return "UP_LEFT"
	case DirUp:
		return "UP"
	case DirUpRight:
		return "UP_RIGHT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection converts a name produced by String (case-sensitive) back
// to a Direction.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range []Direction{DirNone, DirDownLeft, DirDown, DirDownRight, DirLeft, DirRight, DirUpLeft, DirUp, DirUpRight} {
		if d.String() == s {
			return d, true
		}
	}
	return DirNone, false
}
