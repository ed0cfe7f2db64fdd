package match

import (
	"curling/stone"
	"curling/vector2"
)

// Move is the tagged union of actions a player can submit to ApplyMove.
// Concrete types are Shot, Concede and TimeLimit; TimeLimit is
// engine-internal and is never submitted directly by a caller — ApplyMove
// reinterprets a Shot or Concede as TimeLimit when the delivering team's
// thinking time runs out.
type Move interface {
	isMove()
}

// Shot is an intended delivery: an initial velocity and spin direction.
type Shot struct {
	Velocity vector2.Vector2
	Rotation stone.Rotation
}

func (Shot) isMove() {}

// Concede ends the game immediately in the opponent's favour.
type Concede struct{}

func (Concede) isMove() {}

// TimeLimit ends the game immediately in the opponent's favour because the
// delivering team exceeded its thinking time budget.
type TimeLimit struct{}

func (TimeLimit) isMove() {}
