package model

// MapSwitchRequest asks the host to move a character onto another map.
// It is a signal only: the request is recorded and consumed on a later tick.
type MapSwitchRequest struct {
	MapID      int32
	Pos        Point
	Dir        Direction
	Transition bool // fade out/in when switching
}
