// Package simulator defines the Simulator trait (a frame-stepped
// rigid-body world of curling stones) and its save/restore contract.
// Concrete physics models live in subpackages (see simulator/fcv1).
package simulator

import (
	"errors"

	"curling/stone"
	"curling/vector2"
)

// ErrWrongKind is returned by Load when the given Storage was produced by
// a different kind of simulator.
var ErrWrongKind = errors.New("simulator: storage kind mismatch")

// Kind tags which concrete simulator implementation produced a Storage.
type Kind string

// FCV1 is the only kind implemented by this module.
const FCV1 Kind = "fcv1"

// Simulator is a 2D rigid-body world of up to stone.SlotCount disc bodies.
// A Simulator is not safe for concurrent use; each caller owns one.
type Simulator interface {
	// SetStones installs positions/velocities verbatim, replacing
	// whatever the simulator currently holds.
	SetStones(board stone.Board)

	// Step advances the world by SecondsPerFrame, updating stone
	// kinematics and recording any collisions resolved during the step.
	Step()

	// GetStones returns the current stone snapshot.
	GetStones() stone.Board

	// GetCollisions returns the collisions resolved in the most recent
	// Step only; the list is cleared at the start of every Step.
	GetCollisions() []stone.Collision

	// AreAllStonesStopped reports whether every present stone satisfies
	// the rest epsilon on both linear and angular velocity.
	AreAllStonesStopped() bool

	// SecondsPerFrame returns the simulator's fixed step size.
	SecondsPerFrame() float32

	// CreateStorage returns a fresh, empty snapshot container sized for
	// this simulator's kind.
	CreateStorage() *Storage

	// Save overwrites dst with this simulator's current state.
	Save(dst *Storage)

	// Load restores this simulator's state from src. It returns
	// ErrWrongKind if src was produced by a different simulator kind,
	// leaving the simulator's state unchanged.
	Load(src *Storage) error
}

// Invertible is an optional capability: a simulator whose shot physics can
// be approximately inverted to hit a target position and speed. Precision
// is a regression fit, not an analytic solution.
type Invertible interface {
	CalculateShot(targetPosition vector2.Vector2, targetSpeed float32, angularVelocity float32) (Shot, error)
}

// Shot is an initial velocity/rotation pair ready to be handed to
// match.Shot.
type Shot struct {
	Velocity vector2.Vector2
	Rotation stone.Rotation
}

// Storage captures everything needed to reproduce bit-identical future
// stepping: the simulator kind tag, its factory parameters, the complete
// per-stone kinematic array, and the most recent collision list.
type Storage struct {
	Kind        Kind
	Params      Params
	Stones      stone.Board
	Collisions  []stone.Collision
}

// Params is the factory configuration captured alongside stone state.
// FCV1's only parameter today is its fixed step size; the struct exists so
// additional simulator kinds can grow their own parameter sets without
// changing the Storage shape.
type Params struct {
	SecondsPerFrame float32
}
