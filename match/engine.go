// Package match implements the turn-by-turn curling rules engine: the
// single ApplyMove operation that injects a shot, drives a Simulator to
// rest, enforces the Free Guard Zone and No-Tick rules, scores ends, and
// resolves game termination.
package match

import (
	"math"
	"time"

	"curling/eventlog"
	"curling/rules"
	"curling/scoring"
	"curling/simulator"
	"curling/stone"
	"curling/team"
	"curling/vector2"
)

// positionEpsilon is the tolerance used when deciding whether a
// rebuilt stone's position matches the simulator's cached position for
// that slot closely enough to preserve its rotation angle (spec 4.7 step
// 3), rather than restarting it at angle zero.
const positionEpsilon float32 = 1e-4

// ApplyMoveResult reports which rule, if any, fouled this shot.
type ApplyMoveResult struct {
	FreeGuardZoneFoul bool
	NoTickFoul        bool
	// FouledRule names the rule that fouled ("free_guard_zone",
	// "no_tick") or is empty if the shot was clean.
	FouledRule string
}

// ApplyMove advances state by one turn: it validates preconditions,
// injects move into simulator, steps the simulation to rest, prunes
// stones that left the play area, enforces FGZ/No-Tick, scores at end
// boundaries, and resolves game termination. On any precondition
// violation it returns an error and leaves state unchanged; otherwise it
// either completes the whole transition or (on InvalidMoveForState)
// makes no mutation at all.
func ApplyMove(setting Setting, state *State, sim simulator.Simulator, move Move, thinkingTimeUsed time.Duration) (ApplyMoveResult, error) {
	logger := setting.logger()

	if state.Result != nil {
		return ApplyMoveResult{}, ErrInvalidMoveForState
	}
	if state.Hammer == team.Invalid {
		return ApplyMoveResult{}, ErrInvalidArgument
	}
	if cap(state.Scores[0]) < setting.EndCount+1 || cap(state.Scores[1]) < setting.EndCount+1 {
		return ApplyMoveResult{}, ErrScoresOutOfRange
	}
	if shot, ok := move.(Shot); ok && !isFinite(shot.Velocity) {
		return ApplyMoveResult{}, ErrInvalidArgument
	}

	shotSide := vector2.ShotSide(state.End)
	firstTeam := state.FirstTeam()
	deliveringTeam := state.CurrentTeam()

	// Thinking time: exceeding budget reinterprets the move as TimeLimit.
	state.ThinkingTimeRemaining[deliveringTeam] -= thinkingTimeUsed
	if state.ThinkingTimeRemaining[deliveringTeam] <= 0 {
		move = TimeLimit{}
	}

	// Build the pre-shot board in simulator frame from slots already
	// delivered this end, preserving cached rotation where positions
	// still match.
	cachedSimBoard := sim.GetStones()
	var preShotBoard stone.Board
	for i := 0; i < state.Shot; i++ {
		k := state.Stones[i]
		if k == nil {
			continue
		}
		simPos := vector2.TransformPosition(k.Position, shotSide, vector2.Simulation)
		var angle float32
		if cached := cachedSimBoard[i]; cached != nil && cached.Position.Sub(simPos).Length() < positionEpsilon {
			angle = cached.Angle
		}
		preShotBoard[i] = &stone.Kinematic{Position: simPos, Angle: angle}
	}

	initialBoard := preShotBoard.Clone()

	shot, isShot := move.(Shot)
	if isShot {
		initialBoard[state.Shot] = buildDeliveredStone(setting, shotSide, shot)
	}

	sim.SetStones(initialBoard)

	stepBudget := setting.Limits.maxSteps()
	stepsUsed := 0
	budgetExceeded := false

	if isShot {
		for {
			current := sim.GetStones()
			changed := false
			for i := 0; i <= state.Shot; i++ {
				k := current[i]
				if k == nil {
					continue
				}
				canon := vector2.CanonicalizePositionOnSheet(k.Position, shotSide)
				if !isValidWhileSimulation(canon, setting.SheetWidth) {
					current[i] = nil
					changed = true
				}
			}
			if changed {
				sim.SetStones(current)
			}
			if setting.OnStep != nil {
				setting.OnStep(sim)
			}
			if sim.AreAllStonesStopped() {
				break
			}
			if stepsUsed >= stepBudget {
				budgetExceeded = true
				break
			}
			sim.Step()
			stepsUsed++
		}
	}

	if setting.Recorder != nil {
		setting.Recorder.ObserveSimulationSteps(stepsUsed)
		if budgetExceeded {
			setting.Recorder.ObserveStepBudgetExceeded()
		}
	}

	restBoard := sim.GetStones()
	pruned := false
	for i, k := range restBoard {
		if k == nil {
			continue
		}
		canon := vector2.CanonicalizePositionOnSheet(k.Position, shotSide)
		if !isInPlayArea(canon) {
			restBoard[i] = nil
			pruned = true
		}
	}
	if pruned {
		sim.SetStones(restBoard)
		restBoard = sim.GetStones()
	}

	result := ApplyMoveResult{}
	if isShot {
		beforeCanonical := toCanonicalBoard(preShotBoard, shotSide)
		afterCanonical := toCanonicalBoard(restBoard, shotSide)
		applyCount := setting.fgzApplyCount()

		fgzFoul := rules.FreeGuardZoneFoul(state.Shot, deliveringTeam, firstTeam, applyCount, beforeCanonical, afterCanonical)
		var noTickFoul bool
		if setting.NoTickRule {
			noTickFoul = rules.NoTickFoul(state.Shot, deliveringTeam, firstTeam, applyCount, beforeCanonical, afterCanonical)
		}

		if fgzFoul || noTickFoul {
			sim.SetStones(preShotBoard)
			restBoard = sim.GetStones()
			result.FreeGuardZoneFoul = fgzFoul
			result.NoTickFoul = noTickFoul
			if fgzFoul {
				result.FouledRule = "free_guard_zone"
			} else {
				result.FouledRule = "no_tick"
			}
			if setting.Recorder != nil {
				setting.Recorder.ObserveFoul(result.FouledRule)
			}
			if setting.Events != nil {
				setting.Events.EmitSimple(eventlog.EventTypeFoul, state.End, deliveringTeam.String(),
					eventlog.FoulPayload{Shot: state.Shot, Rule: result.FouledRule})
			}
		}
	}

	canonicalRestBoard := toCanonicalBoard(restBoard, shotSide)
	state.Stones = toShotSideBoard(restBoard, shotSide)

	logger.Debug().
		Int("end", state.End).
		Int("shot", state.Shot).
		Str("team", deliveringTeam.String()).
		Str("foul", result.FouledRule).
		Int("steps", stepsUsed).
		Msg("applied move")

	if !isShot {
		reason := ReasonConcede
		if _, ok := move.(TimeLimit); ok {
			reason = ReasonTimeLimit
		}
		state.Result = &Result{Winner: deliveringTeam.Opponent(), Reason: reason}
		state.Hammer = team.Invalid
		if setting.Recorder != nil {
			setting.Recorder.ObserveTurn(reason.String())
		}
		emitGameOver(setting, state)
		return result, nil
	}

	if setting.Recorder != nil {
		setting.Recorder.ObserveTurn("shot")
	}
	if setting.Events != nil {
		setting.Events.EmitSimple(eventlog.EventTypeShot, state.End, deliveringTeam.String(), eventlog.ShotPayload{
			Shot:              state.Shot,
			SimulationSteps:   stepsUsed,
			StepBudgetHit:     budgetExceeded,
			FreeGuardZoneFoul: result.FreeGuardZoneFoul,
			NoTickFoul:        result.NoTickFoul,
		})
	}

	if state.Shot == 15 {
		finishEnd(setting, state, firstTeam, canonicalRestBoard)
	} else {
		state.Shot++
	}

	return result, nil
}

func emitGameOver(setting Setting, state *State) {
	if setting.Events == nil || state.Result == nil {
		return
	}
	setting.Events.EmitSimple(eventlog.EventTypeGameOver, state.End, "", eventlog.GameOverPayload{
		Winner: state.Result.Winner.String(),
		Reason: state.Result.Reason.String(),
	})
}

// finishEnd scores the just-completed end, rotates the hammer, clears the
// board for the next end, and evaluates game-over conditions. canonicalBoard
// is the final rest board canonicalised per vector2.CanonicalizePositionOnSheet,
// the frame scoring.Score expects.
func finishEnd(setting Setting, state *State, firstTeam team.Team, canonicalBoard stone.Board) {
	signed, blank := scoring.Score(canonicalBoard, firstTeam)
	if setting.Events != nil {
		setting.Events.EmitSimple(eventlog.EventTypeEndScored, state.End, "", eventlog.EndScoredPayload{
			Signed: signed, Blank: blank,
		})
	}

	var team0Score, team1Score int8
	if signed >= 0 {
		team0Score = int8(signed)
	} else {
		team1Score = int8(-signed)
	}
	state.Scores[team.Team0] = setScore(state.Scores[team.Team0], state.End, team0Score)
	state.Scores[team.Team1] = setScore(state.Scores[team.Team1], state.End, team1Score)

	if state.End >= setting.EndCount {
		v := int8(signed)
		state.ExtraEndScore = &v
	}

	switch {
	case signed > 0:
		state.Hammer = team.Team1
	case signed < 0:
		state.Hammer = team.Team0
	default:
		// Blank end: hammer unchanged.
	}

	state.Stones = stone.Board{}
	state.Shot = 0
	state.End++

	if state.End >= setting.EndCount {
		total0, total1 := totalScores(state)
		switch {
		case total0 != total1:
			winner := team.Team0
			if total1 > total0 {
				winner = team.Team1
			}
			state.Result = &Result{Winner: winner, Reason: ReasonScore}
			state.Hammer = team.Invalid
			emitGameOver(setting, state)
		case state.End >= setting.extraEndLimit():
			state.Result = &Result{Winner: team.Invalid, Reason: ReasonDraw}
			state.Hammer = team.Invalid
			emitGameOver(setting, state)
		default:
			extra := setting.extraEndThinkingTime()
			state.ThinkingTimeRemaining[team.Team0] = extra
			state.ThinkingTimeRemaining[team.Team1] = extra
		}
	}
}

func totalScores(state *State) (int, int) {
	var t0, t1 int
	for _, s := range state.Scores[team.Team0] {
		if s != nil {
			t0 += int(*s)
		}
	}
	for _, s := range state.Scores[team.Team1] {
		if s != nil {
			t1 += int(*s)
		}
	}
	return t0, t1
}

// buildDeliveredStone computes the just-thrown stone's initial simulator-
// frame kinematics: clamped, randomized velocity from the hack, and a
// fixed-magnitude spin matching the requested rotation.
func buildDeliveredStone(setting Setting, shotSide vector2.Frame, shot Shot) *stone.Kinematic {
	velocity := shot.Velocity
	if setting.MaxShotSpeed > 0 {
		if speed := velocity.Length(); speed > setting.MaxShotSpeed {
			velocity = velocity.Scale(setting.MaxShotSpeed / speed)
		}
	}
	if setting.Randomizer != nil {
		velocity = setting.Randomizer.Randomize(velocity)
	}

	hackPosition := vector2.TransformPosition(vector2.Vector2{}, shotSide, vector2.Simulation)
	initialVelocity := vector2.TransformVelocity(velocity, shotSide, vector2.Simulation)

	angularSpeed := float32(math.Pi / 2)
	if shot.Rotation == stone.CW {
		angularSpeed = -angularSpeed
	}

	return &stone.Kinematic{
		Position:        hackPosition,
		LinearVelocity:  initialVelocity,
		AngularVelocity: vector2.TransformAngularVelocity(angularSpeed),
	}
}

func isFinite(v vector2.Vector2) bool {
	return !math.IsNaN(float64(v.X)) && !math.IsInf(float64(v.X), 0) &&
		!math.IsNaN(float64(v.Y)) && !math.IsInf(float64(v.Y), 0)
}

// isValidWhileSimulation reports whether a shot-side-canonicalised
// position is still within the simulation bounds: crossing the side
// boundary, the back line, or the far backboard removes the stone
// immediately rather than waiting for it to come to rest.
func isValidWhileSimulation(canon vector2.Vector2, sheetWidth float32) bool {
	absX := canon.X
	if absX < 0 {
		absX = -absX
	}
	return absX+vector2.StoneRadius < sheetWidth/2 &&
		canon.Y-vector2.StoneRadius < vector2.BackY &&
		canon.Y-vector2.StoneRadius > -vector2.BackboardY
}

// isInPlayArea reports whether a shot-side-canonicalised resting position
// is beyond the near hog line; stones short of it are removed at rest.
func isInPlayArea(canon vector2.Vector2) bool {
	return canon.Y-vector2.StoneRadius > vector2.HogY
}

func toShotSideBoard(simBoard stone.Board, shotSide vector2.Frame) stone.Board {
	var out stone.Board
	for i, k := range simBoard {
		if k == nil {
			continue
		}
		out[i] = &stone.Kinematic{
			Position: vector2.TransformPosition(k.Position, vector2.Simulation, shotSide),
			Angle:    vector2.TransformAngle(k.Angle, vector2.Simulation, shotSide),
		}
	}
	return out
}

// toCanonicalBoard maps a simulator-frame board onto shotSide's canonical
// orientation (vector2.CanonicalizePositionOnSheet): identity for Shot0,
// negate-both-axes for Shot1, no hack offset. This is the frame rules.
// FreeGuardZoneFoul, rules.NoTickFoul and scoring.Score expect, and is
// distinct from the hack-origin shot-side frame toShotSideBoard produces
// for state.Stones.
func toCanonicalBoard(simBoard stone.Board, shotSide vector2.Frame) stone.Board {
	var out stone.Board
	for i, k := range simBoard {
		if k == nil {
			continue
		}
		out[i] = &stone.Kinematic{
			Position: vector2.CanonicalizePositionOnSheet(k.Position, shotSide),
		}
	}
	return out
}
