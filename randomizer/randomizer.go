// Package randomizer implements the polymorphic shot-velocity perturbation
// described in spec section 4.3: every implementation must be safe for
// concurrent use and must expose enough state to be snapshotted so that
// save/restore of a match reproduces identical future shots.
package randomizer

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand"
	"sync"
	"time"

	"curling/vector2"
)

// Randomizer perturbs an intended initial shot velocity. Implementations
// must not error in normal operation.
type Randomizer interface {
	Randomize(v vector2.Vector2) vector2.Vector2
}

// Identity returns the input velocity verbatim. It requires no locking
// since it has no internal state.
type Identity struct{}

// Randomize implements Randomizer.
func (Identity) Randomize(v vector2.Vector2) vector2.Vector2 { return v }

// Normal independently perturbs a shot's speed and angle by
// N(0, SpeedStddev) and N(0, AngleStddev). Its internal generator is
// reseeded deterministically after every draw, so the current seed alone
// is enough to snapshot and restore future draws.
type Normal struct {
	mu          sync.Mutex
	rng         *rand.Rand
	seed        int64
	SpeedStddev float32
	AngleStddev float32
}

// NewNormal builds a Normal randomizer with a fixed, reproducible seed.
func NewNormal(seed int64, speedStddev, angleStddev float32) *Normal {
	return &Normal{
		rng:         rand.New(rand.NewSource(seed)),
		seed:        seed,
		SpeedStddev: speedStddev,
		AngleStddev: angleStddev,
	}
}

// NewNormalFromEntropy builds a Normal randomizer seeded from a system
// entropy source at construction time. The resulting seed is still
// recorded and can be recovered via SaveState for reproducible replay.
// The seed is read from crypto/rand; if that source fails, the current
// time in nanoseconds is used instead.
func NewNormalFromEntropy(speedStddev, angleStddev float32) *Normal {
	var buf [8]byte
	seed := time.Now().UnixNano()
	if _, err := cryptorand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	}
	return NewNormal(seed, speedStddev, angleStddev)
}

// Randomize implements Randomizer. It serialises access to the internal
// generator so a single Normal instance can be shared across workers.
func (n *Normal) Randomize(v vector2.Vector2) vector2.Vector2 {
	n.mu.Lock()
	defer n.mu.Unlock()

	speed := float64(v.Length())
	angle := math.Atan2(float64(v.Y), float64(v.X))

	speed += n.rng.NormFloat64() * float64(n.SpeedStddev)
	if speed < 0 {
		speed = 0
	}
	angle += n.rng.NormFloat64() * float64(n.AngleStddev)

	result := vector2.Vector2{
		X: float32(speed * math.Cos(angle)),
		Y: float32(speed * math.Sin(angle)),
	}

	// Advance the seed deterministically so that State() taken after
	// this call reproduces every subsequent draw bit-for-bit.
	n.seed = n.rng.Int63()
	n.rng.Seed(n.seed)

	return result
}

// State is the snapshot of a Normal randomizer's reproducible position in
// its draw sequence.
type State struct {
	Seed        int64
	SpeedStddev float32
	AngleStddev float32
}

// SaveState captures n's current reproducible state.
func (n *Normal) SaveState() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return State{Seed: n.seed, SpeedStddev: n.SpeedStddev, AngleStddev: n.AngleStddev}
}

// LoadState restores n to a previously captured state.
func (n *Normal) LoadState(s State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seed = s.Seed
	n.SpeedStddev = s.SpeedStddev
	n.AngleStddev = s.AngleStddev
	n.rng = rand.New(rand.NewSource(s.Seed))
}
