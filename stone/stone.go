// Package stone defines the per-stone kinematic state and the fixed-size
// board snapshot carried by match.State and manipulated by a Simulator.
package stone

import "curling/vector2"

// Rotation is the delivered spin direction of a shot.
type Rotation int

const (
	CCW Rotation = iota
	CW
)

// Kinematic is one stone's position, angle and velocities, expressed in
// whatever frame the owning structure documents (simulator frame inside a
// Simulator, shot-side frame inside match.State).
type Kinematic struct {
	Position        vector2.Vector2
	Angle           float32
	LinearVelocity  vector2.Vector2
	AngularVelocity float32
}

// SlotCount is the number of stone slots per end: 8 per team.
const SlotCount = 16

// Board is a fixed-length array of 16 slots, one per stone delivered in an
// end, in delivery order. Ownership alternates by shot order rather than
// splitting into fixed halves; see team.SlotTeam. A present slot pointer
// is non-nil; nil means empty (not yet delivered, or removed from play).
type Board [SlotCount]*Kinematic

// Clone returns a deep copy of the board: present slots are copied, not
// aliased, so mutating the clone never affects the original.
func (b Board) Clone() Board {
	var out Board
	for i, k := range b {
		if k == nil {
			continue
		}
		copied := *k
		out[i] = &copied
	}
	return out
}

// Collision is a single contact resolved during one simulator Step.
// Contact point is the average of the two stones' centres, and is derived
// from the two post-substep transforms by the caller if needed; the solver
// records the raw transforms and impulses.
type Collision struct {
	AID, BID           int
	ATransform         Transform
	BTransform         Transform
	NormalImpulse      float32
	TangentImpulse     float32
}

// Transform is a position+angle pair, matching the original source's
// lightweight Transform struct (position, angle).
type Transform struct {
	Position vector2.Vector2
	Angle    float32
}

// ContactPoint returns the average of the two stones' centres for c.
func (c Collision) ContactPoint() vector2.Vector2 {
	return c.ATransform.Position.Add(c.BTransform.Position).Scale(0.5)
}
