package fcv1

import (
	"errors"
	"math"

	"curling/simulator"
	"curling/stone"
	"curling/vector2"
)

// ErrUnreachableTarget is returned by CalculateShot when none of the
// launch speeds tried by the doubling search (targetSpeed*2 up to
// targetSpeed*2^20) makes the stone reach the target's along-track
// distance before stopping or before invertMaxSteps steps elapse.
var ErrUnreachableTarget = errors.New("fcv1: target unreachable from this rotation")

// ErrInvalidTarget is returned when targetPosition coincides with the
// launch origin or targetSpeed is non-positive.
var ErrInvalidTarget = errors.New("fcv1: invalid target")

const (
	invertMaxSteps      = 200_000
	invertSpeedSearches = 40
	invertAngleCorrections = 6
)

// CalculateShot implements simulator.Invertible for the FCV1 model. It
// searches for a launch velocity, fired from the origin, that passes
// through targetPosition at targetSpeed while spinning at angularVelocity.
// Curl bends the trajectory away from the straight line to the target, so
// the search alternates: bisect launch speed to match the crossing speed
// at the target's along-track distance, then nudge the aim direction to
// cancel the resulting cross-track miss. It is a numerical fit, not a
// closed-form inverse, and converges only approximately.
func (s *Simulator) CalculateShot(targetPosition vector2.Vector2, targetSpeed float32, angularVelocity float32) (simulator.Shot, error) {
	dist := targetPosition.Length()
	if dist <= 0 || targetSpeed <= 0 {
		return simulator.Shot{}, ErrInvalidTarget
	}

	rotation := stone.CCW
	if angularVelocity < 0 {
		rotation = stone.CW
	}

	aim := targetPosition.Div(dist)
	var speed float32

	for i := 0; i < invertAngleCorrections; i++ {
		along := targetPosition.Dot(aim)
		perpTarget := targetPosition.Dot(aim.Rotated90())

		found, crossPerp, err := s.solveLaunchSpeed(aim, angularVelocity, along, targetSpeed)
		if err != nil {
			return simulator.Shot{}, err
		}
		speed = found

		perpError := crossPerp - perpTarget
		if absf32(perpError) < 1e-4 {
			break
		}
		// Rotate aim by a small angle opposing the cross-track miss,
		// scaled down so successive corrections don't overshoot.
		correction := -perpError / dist * 0.5
		aim = rotateUnit(aim, correction)
	}

	return simulator.Shot{Velocity: aim.Scale(speed), Rotation: rotation}, nil
}

// solveLaunchSpeed bisects the initial speed along aim so the stone's
// speed when it crosses the target's along-track coordinate matches
// targetSpeed, returning that speed and the cross-track position at the
// crossing.
func (s *Simulator) solveLaunchSpeed(aim vector2.Vector2, angularVelocity, along, targetSpeed float32) (float32, float32, error) {
	lo := targetSpeed
	hi := targetSpeed

	var reached bool
	for i := 0; i < 20; i++ {
		hi *= 2
		if _, _, ok := s.simulateToAlong(aim, hi, angularVelocity, along); ok {
			reached = true
			break
		}
	}
	if !reached {
		return 0, 0, ErrUnreachableTarget
	}

	var crossSpeed, crossPerp float32
	for i := 0; i < invertSpeedSearches; i++ {
		mid := (lo + hi) / 2
		cs, cp, ok := s.simulateToAlong(aim, mid, angularVelocity, along)
		if !ok || cs < targetSpeed {
			lo = mid
		} else {
			hi = mid
			crossSpeed, crossPerp = cs, cp
		}
	}
	_ = crossSpeed
	return hi, crossPerp, nil
}

// simulateToAlong launches a standalone stone (no collisions) from the
// origin with the given initial speed along aim and angularVelocity, and
// steps it with this simulator's own kinematics until its position
// crosses the along-track coordinate along, or it stops first. It reports
// the crossing speed and cross-track offset, and whether it reached.
func (s *Simulator) simulateToAlong(aim vector2.Vector2, speed, angularVelocity, along float32) (crossSpeed, crossPerp float32, reached bool) {
	dt := s.secondsPerFrame
	normal := aim.Rotated90()

	k := &stone.Kinematic{
		LinearVelocity:  aim.Scale(speed),
		AngularVelocity: angularVelocity,
	}

	for step := 0; step < invertMaxSteps; step++ {
		stepKinematic(k, dt)
		k.Position = k.Position.Add(k.LinearVelocity.Scale(dt))
		k.Angle += k.AngularVelocity * dt

		if k.LinearVelocity.Length() <= epsilon {
			return 0, 0, false
		}
		if k.Position.Dot(aim) >= along {
			return k.LinearVelocity.Length(), k.Position.Dot(normal), true
		}
	}
	return 0, 0, false
}

func rotateUnit(v vector2.Vector2, angle float32) vector2.Vector2 {
	cos := float32(math.Cos(float64(angle)))
	sin := float32(math.Sin(float64(angle)))
	return vector2.Vector2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}
