// Package fcv1 implements the FCV1 curling stone physics model: a
// frame-stepped rigid-body world of up to stone.SlotCount discs with
// velocity-dependent longitudinal friction, curl, and elastic pairwise
// collisions. See spec section 4.4.1 for the per-step kinematics this
// package follows.
package fcv1

import (
	"math"

	"curling/simulator"
	"curling/stone"
	"curling/vector2"
)

const (
	gravity          float32 = 9.80665
	decelFactorA     float32 = 0.00200985
	decelFactorB     float32 = 0.06385782
	decelFactorC     float32 = 0.00626286
	curlCoefficient  float32 = 0.00820
	curlExponent     float32 = -0.8
	angularDampCoeff float32 = -0.025
	angularDampFloor float32 = 0.001

	// Mass is every stone's rigid-body mass in kilograms.
	Mass float32 = 19.96
	// Restitution is the pairwise collision restitution coefficient.
	Restitution float32 = 1.0
	// Friction is the pairwise collision friction coefficient.
	Friction float32 = 0.2

	// epsilon is f32::EPSILON, the machine epsilon for 32-bit floats,
	// used for both the "is this speed/spin negligible" gate in the
	// per-step kinematics and the AreAllStonesStopped rest check.
	epsilon float32 = 1.1920929e-07

	// DefaultSecondsPerFrame is the default simulator step size.
	DefaultSecondsPerFrame float32 = 0.001
)

// Simulator is the FCV1 rigid-body world. It is not safe for concurrent
// use; callers that want parallelism create one Simulator per worker.
type Simulator struct {
	secondsPerFrame float32
	stones          stone.Board
	collisions      []stone.Collision
}

var _ simulator.Simulator = (*Simulator)(nil)

// New creates an FCV1 simulator with the given fixed step size. A zero
// secondsPerFrame is replaced with DefaultSecondsPerFrame.
func New(secondsPerFrame float32) *Simulator {
	if secondsPerFrame <= 0 {
		secondsPerFrame = DefaultSecondsPerFrame
	}
	return &Simulator{secondsPerFrame: secondsPerFrame}
}

// SetStones implements simulator.Simulator.
func (s *Simulator) SetStones(board stone.Board) {
	s.stones = board.Clone()
}

// GetStones implements simulator.Simulator.
func (s *Simulator) GetStones() stone.Board {
	return s.stones
}

// GetCollisions implements simulator.Simulator.
func (s *Simulator) GetCollisions() []stone.Collision {
	return s.collisions
}

// SecondsPerFrame implements simulator.Simulator.
func (s *Simulator) SecondsPerFrame() float32 {
	return s.secondsPerFrame
}

// AreAllStonesStopped implements simulator.Simulator.
func (s *Simulator) AreAllStonesStopped() bool {
	for _, k := range s.stones {
		if k == nil {
			continue
		}
		speedSq := k.LinearVelocity.X*k.LinearVelocity.X + k.LinearVelocity.Y*k.LinearVelocity.Y
		if speedSq > epsilon || absf32(k.AngularVelocity) > epsilon {
			return false
		}
	}
	return true
}

// Step implements simulator.Simulator, advancing the world by
// SecondsPerFrame following the per-step kinematics in spec section 4.4.1:
// per-stone longitudinal deceleration and curl, angular damping, then a
// single pairwise elastic-collision substep.
func (s *Simulator) Step() {
	dt := s.secondsPerFrame
	s.collisions = s.collisions[:0]

	for _, k := range s.stones {
		if k == nil {
			continue
		}
		stepKinematic(k, dt)
	}

	for _, k := range s.stones {
		if k == nil {
			continue
		}
		k.Position = k.Position.Add(k.LinearVelocity.Scale(dt))
		k.Angle += k.AngularVelocity * dt
	}

	s.resolveCollisions()
}

// stepKinematic applies the longitudinal deceleration/curl and angular
// damping updates to a single stone, in the order spec section 4.4.1
// requires: speed first, then spin.
func stepKinematic(k *stone.Kinematic, dt float32) {
	v := k.LinearVelocity
	speed := v.Length()
	w := k.AngularVelocity

	if speed > epsilon {
		a := -(decelFactorA/(speed+decelFactorB) + decelFactorC) * gravity
		newSpeed := speed + a*dt
		if newSpeed <= 0 {
			k.LinearVelocity = vector2.Vector2{}
		} else {
			var yawRate float32
			if absf32(w) > epsilon {
				yawRate = signf32(w) * curlCoefficient * powf32(speed, curlExponent)
			}
			yaw := yawRate * dt
			tangent := v.Div(speed)
			normal := tangent.Rotated90()
			cosYaw := float32(math.Cos(float64(yaw)))
			sinYaw := float32(math.Sin(float64(yaw)))
			k.LinearVelocity = tangent.Scale(newSpeed * cosYaw).Add(normal.Scale(newSpeed * sinYaw))
		}
	}

	if absf32(w) > epsilon {
		denom := speed
		if denom < angularDampFloor {
			denom = angularDampFloor
		}
		alpha := angularDampCoeff / denom
		dOmega := alpha * dt
		if absf32(w) <= absf32(dOmega) {
			k.AngularVelocity = 0
		} else {
			k.AngularVelocity = w + dOmega*signf32(w)
		}
	}
}

// resolveCollisions runs the pairwise elastic-collision substep over every
// present stone, recording one stone.Collision per resolved contact.
func (s *Simulator) resolveCollisions() {
	minDist := 2 * vector2.StoneRadius
	for i := 0; i < stone.SlotCount; i++ {
		a := s.stones[i]
		if a == nil {
			continue
		}
		for j := i + 1; j < stone.SlotCount; j++ {
			b := s.stones[j]
			if b == nil {
				continue
			}

			diff := b.Position.Sub(a.Position)
			dist := diff.Length()
			if dist >= minDist || dist <= 0 {
				continue
			}

			normal := diff.Div(dist)
			tangent := normal.Rotated90()

			overlap := minDist - dist
			correction := normal.Scale(overlap / 2)
			a.Position = a.Position.Sub(correction)
			b.Position = b.Position.Add(correction)

			relVel := b.LinearVelocity.Sub(a.LinearVelocity)
			vn := relVel.Dot(normal)
			if vn >= 0 {
				// Already separating; positional correction only.
				continue
			}

			jn := -(1 + Restitution) * vn * Mass / 2
			impulseN := normal.Scale(jn / Mass)
			a.LinearVelocity = a.LinearVelocity.Sub(impulseN)
			b.LinearVelocity = b.LinearVelocity.Add(impulseN)

			vt := relVel.Dot(tangent)
			jt := -vt * Mass / 2
			maxJt := Friction * absf32(jn)
			if jt > maxJt {
				jt = maxJt
			} else if jt < -maxJt {
				jt = -maxJt
			}
			impulseT := tangent.Scale(jt / Mass)
			a.LinearVelocity = a.LinearVelocity.Sub(impulseT)
			b.LinearVelocity = b.LinearVelocity.Add(impulseT)

			s.collisions = append(s.collisions, stone.Collision{
				AID:            i,
				BID:            j,
				ATransform:     stone.Transform{Position: a.Position, Angle: a.Angle},
				BTransform:     stone.Transform{Position: b.Position, Angle: b.Angle},
				NormalImpulse:  jn,
				TangentImpulse: jt,
			})
		}
	}
}

// CreateStorage implements simulator.Simulator.
func (s *Simulator) CreateStorage() *simulator.Storage {
	return &simulator.Storage{Kind: simulator.FCV1}
}

// Save implements simulator.Simulator.
func (s *Simulator) Save(dst *simulator.Storage) {
	dst.Kind = simulator.FCV1
	dst.Params = simulator.Params{SecondsPerFrame: s.secondsPerFrame}
	dst.Stones = s.stones.Clone()
	dst.Collisions = append(dst.Collisions[:0], s.collisions...)
}

// Load implements simulator.Simulator. On a kind mismatch the simulator's
// state is left untouched and ErrWrongKind is returned.
func (s *Simulator) Load(src *simulator.Storage) error {
	if src.Kind != simulator.FCV1 {
		return simulator.ErrWrongKind
	}
	s.secondsPerFrame = src.Params.SecondsPerFrame
	if s.secondsPerFrame <= 0 {
		s.secondsPerFrame = DefaultSecondsPerFrame
	}
	s.stones = src.Stones.Clone()
	s.collisions = append([]stone.Collision(nil), src.Collisions...)
	return nil
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func signf32(v float32) float32 {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}

func powf32(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
