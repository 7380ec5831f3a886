package model

// Character holds the movement state of one on-map entity (player or NPC).
// Not safe for concurrent use: every mutation happens inside the owning tick.
//
// Facing changes only through Turn (and the diagonal facing rule in
// FaceDiagonal); both are no-ops while the direction is fixed.
type Character struct {
	id   uint32
	name string

	pos            Point
	dir            Direction
	directionFixed bool
	through        bool

	moving    bool
	steps     int32
	stopCount int32
	moveSpeed int32
	pattern   int32

	jumpPeak  int32
	jumpCount int32
}

// DefaultMoveSpeed matches the authoring tool's "normal" speed.
const DefaultMoveSpeed = 4

// NewCharacter создаёт персонажа в позиции pos, смотрящего вниз.
func NewCharacter(id uint32, name string, pos Point) *Character {
	return &Character{
		id:        id,
		name:      name,
		pos:       pos,
		dir:       DirDown,
		moveSpeed: DefaultMoveSpeed,
	}
}

func (c *Character) ID() uint32           { return c.id }
func (c *Character) Name() string         { return c.name }
func (c *Character) Position() Point      { return c.pos }
func (c *Character) Direction() Direction { return c.dir }
func (c *Character) DirectionFixed() bool { return c.directionFixed }
func (c *Character) Through() bool        { return c.through }
func (c *Character) Moving() bool         { return c.moving }
func (c *Character) Steps() int32         { return c.steps }
func (c *Character) StopCount() int32     { return c.stopCount }
func (c *Character) MoveSpeed() int32     { return c.moveSpeed }
func (c *Character) Pattern() int32       { return c.pattern }
func (c *Character) JumpPeak() int32      { return c.jumpPeak }
func (c *Character) JumpCount() int32     { return c.jumpCount }

// SetDirectionFixed toggles the facing lock.
func (c *Character) SetDirectionFixed(fixed bool) { c.directionFixed = fixed }

// SetThrough makes the character ignore passability (ghost mode).
func (c *Character) SetThrough(through bool) { c.through = through }

// SetMoveSpeed sets the speed used by jump arc calculation (1..6).
func (c *Character) SetMoveSpeed(speed int32) { c.moveSpeed = speed }

// SetPattern sets the animation frame index; Straighten resets it.
func (c *Character) SetPattern(pattern int32) { c.pattern = pattern }

// Turn faces d unless the direction is fixed, and resets the idle counter.
// Only cardinal directions are accepted.
func (c *Character) Turn(d Direction) {
	if c.directionFixed || !d.IsCardinal() {
		return
	}
	c.dir = d
	c.stopCount = 0
}

// TurnRight90 rotates facing 90° clockwise.
func (c *Character) TurnRight90() { c.Turn(c.dir.RotateRight90()) }

// TurnLeft90 rotates facing 90° counter-clockwise.
func (c *Character) TurnLeft90() { c.Turn(c.dir.RotateLeft90()) }

// Turn180 faces the opposite way.
func (c *Character) Turn180() { c.Turn(c.dir.Rotate180()) }

// DirectionToward returns the cardinal direction that faces target along
// the axis of larger separation; equal separations pick the vertical axis.
// Returns DirNone when target is the character's own tile.
func (c *Character) DirectionToward(target Point) Direction {
	sx := c.pos.X - target.X
	sy := c.pos.Y - target.Y
	if sx == 0 && sy == 0 {
		return DirNone
	}
	if abs32(sx) > abs32(sy) {
		if sx > 0 {
			return DirLeft
		}
		return DirRight
	}
	if sy > 0 {
		return DirUp
	}
	return DirDown
}

// TurnToward faces target.
func (c *Character) TurnToward(target Point) {
	if d := c.DirectionToward(target); d != DirNone {
		c.Turn(d)
	}
}

// TurnAwayFrom faces directly away from target.
func (c *Character) TurnAwayFrom(target Point) {
	if d := c.DirectionToward(target); d != DirNone {
		c.Turn(d.Reverse())
	}
}

// FaceDiagonal applies the diagonal facing rule: a character facing the
// reverse of the horizontal component turns to it, otherwise one facing the
// reverse of the vertical component turns to that; any other facing is kept.
// The idle counter is not reset.
func (c *Character) FaceDiagonal(d Direction) {
	if c.directionFixed || !d.IsDiagonal() {
		return
	}
	h, v := d.Components()
	switch c.dir {
	case h.Reverse():
		c.dir = h
	case v.Reverse():
		c.dir = v
	}
}

// MoveTo places the character on p without counting a step.
func (c *Character) MoveTo(p Point) {
	c.pos = p
	c.moving = false
}

// Relocate moves the character to p as the result of a step and counts it.
func (c *Character) Relocate(p Point) {
	c.pos = p
	c.moving = true
	c.steps++
	c.stopCount = 0
}

// Straighten resets the walking animation pose.
func (c *Character) Straighten() {
	c.pattern = 0
}

// StartJump lands the character on p and starts an arc whose peak depends
// on the jump distance and the move speed.
func (c *Character) StartJump(p Point, distance int32) {
	c.Straighten()
	c.pos = p
	c.jumpPeak = 10 + distance - c.moveSpeed
	c.jumpCount = c.jumpPeak * 2
	c.stopCount = 0
	c.moving = true
}

// Jumping reports whether a jump arc is still in progress.
func (c *Character) Jumping() bool { return c.jumpCount > 0 }

// AdvanceJump counts the jump arc down by one frame.
func (c *Character) AdvanceJump() {
	if c.jumpCount > 0 {
		c.jumpCount--
	}
}

// EndTick finishes the current tick: the character is no longer mid-step
// and the idle counter grows.
func (c *Character) EndTick() {
	c.AdvanceJump()
	if c.Jumping() {
		return
	}
	c.moving = false
	c.stopCount++
}
