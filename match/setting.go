package match

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"curling/eventlog"
	"curling/randomizer"
	"curling/simulator"
)

// RuleType selects the player-count variant the match is played under.
// Carried for informational/logging purposes only: it does not change the
// FGZ/No-Tick semantics implemented in package rules.
type RuleType int

const (
	RuleStandard RuleType = iota
	RuleMixed
	RuleMixedDoubles
)

// MaxEnds is a generous upper bound on match length, not a rules limit.
// NewState does not use it: it sizes State.Scores from EndCount plus
// ExtraEndLimit.
const MaxEnds = 32

// ExtraEndLimit is how many ends may be played past Setting.EndCount
// before a persistent tie is declared a Draw.
const ExtraEndLimit = 8

// Limits bounds runtime resource use so a malformed or adversarial shot
// cannot spin the turn engine forever.
type Limits struct {
	// MaxStepsPerShot caps how many simulator.Step calls a single shot's
	// simulation loop may take. Zero means DefaultMaxStepsPerShot.
	MaxStepsPerShot int
}

// DefaultMaxStepsPerShot is two minutes of stepping at the default 1ms
// frame: comfortably more than any legal shot needs to come to rest.
const DefaultMaxStepsPerShot = 120_000

func (l Limits) maxSteps() int {
	if l.MaxStepsPerShot <= 0 {
		return DefaultMaxStepsPerShot
	}
	return l.MaxStepsPerShot
}

// OnStepFunc is invoked once per simulator step from inside ApplyMove's
// simulation loop. It must not call back into the simulator it is given;
// implementations that need to record a trajectory should copy out of
// GetStones on every call, since the returned slice is invalidated by the
// next Step.
type OnStepFunc func(simulator.Simulator)

// Setting is static, per-match configuration. It is read-only once
// constructed and may be shared across concurrently running engines.
type Setting struct {
	EndCount      int
	SheetWidth    float32
	MaxShotSpeed  float32
	FiveRockRule  bool
	NoTickRule    bool
	Randomizer    randomizer.Randomizer
	OnStep        OnStepFunc
	RuleType      RuleType
	Limits        Limits
	Logger        *zerolog.Logger
	Recorder      Recorder

	// Events receives an audit-trail record of every shot, foul, end
	// score and game result. Nil disables event logging entirely.
	Events *eventlog.EventLog

	// ExtraEndThinkingTime is each team's thinking time budget for every
	// extra end played past EndCount. Zero means
	// DefaultExtraEndThinkingTime.
	ExtraEndThinkingTime time.Duration
}

// DefaultExtraEndThinkingTime mirrors the World Curling Federation's
// extra-end allowance.
const DefaultExtraEndThinkingTime = 4*time.Minute + 30*time.Second

func (s Setting) extraEndThinkingTime() time.Duration {
	if s.ExtraEndThinkingTime <= 0 {
		return DefaultExtraEndThinkingTime
	}
	return s.ExtraEndThinkingTime
}

// Recorder receives turn-level telemetry events. It is optional; a nil
// Recorder (the zero value of the interface) is never invoked. See
// package curling/telemetry for the Prometheus-backed implementation.
type Recorder interface {
	ObserveTurn(reason string)
	ObserveFoul(rule string)
	ObserveSimulationSteps(n int)
	ObserveStepBudgetExceeded()
}

func (s Setting) logger() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return &log.Logger
}

// fgzApplyCount returns how many shots per end the Free Guard Zone rule
// applies to under this setting.
func (s Setting) fgzApplyCount() int {
	if s.FiveRockRule {
		return 5
	}
	return 4
}

func (s Setting) extraEndLimit() int {
	return s.EndCount + ExtraEndLimit
}
