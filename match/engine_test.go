package match

import (
	"testing"
	"time"

	"curling/simulator"
	"curling/stone"
	"curling/team"
	"curling/vector2"
)

// scriptedSimulator is a test double for simulator.Simulator: it reports
// AreAllStonesStopped immediately at a caller-chosen step count and snaps
// the board straight to a scripted rest position on that step, instead of
// integrating real per-frame kinematics. This lets the engine tests pin
// down exact rest positions without depending on fcv1's physics constants.
// An empty result board means no snap: the stones are left where they are.
type scriptedSimulator struct {
	stones          stone.Board
	result          stone.Board
	stepCount       int
	stepsBeforeStop int
}

var _ simulator.Simulator = (*scriptedSimulator)(nil)

func (s *scriptedSimulator) SetStones(b stone.Board) { s.stones = b.Clone() }
func (s *scriptedSimulator) GetStones() stone.Board  { return s.stones }
func (s *scriptedSimulator) GetCollisions() []stone.Collision { return nil }
func (s *scriptedSimulator) SecondsPerFrame() float32 { return 0.001 }
func (s *scriptedSimulator) AreAllStonesStopped() bool {
	return s.stepCount >= s.stepsBeforeStop
}
func (s *scriptedSimulator) Step() {
	s.stepCount++
	if s.stepCount == s.stepsBeforeStop && s.result != (stone.Board{}) {
		s.stones = s.result.Clone()
	}
}
func (s *scriptedSimulator) CreateStorage() *simulator.Storage {
	return &simulator.Storage{Kind: "scripted"}
}
func (s *scriptedSimulator) Save(dst *simulator.Storage) {
	dst.Kind = "scripted"
	dst.Stones = s.stones.Clone()
}
func (s *scriptedSimulator) Load(src *simulator.Storage) error {
	s.stones = src.Stones.Clone()
	return nil
}

func newScriptedSimulator(result stone.Board) *scriptedSimulator {
	return &scriptedSimulator{result: result, stepsBeforeStop: 1}
}

// testSetting uses a standard 4.75 m sheet width; with a zero width every
// stone would fail isValidWhileSimulation and be removed from play.
func testSetting(endCount int) Setting {
	return Setting{EndCount: endCount, SheetWidth: 4.75}
}

// canonicalPosition returns a simulation-frame kinematic whose
// canonicalised position (vector2.CanonicalizePositionOnSheet) is (x, y):
// a physically meaningful sheet coordinate measured the same way
// vector2.TeeY/HogY/BackY are. Negate-both-axes is its own inverse, so this
// doubles as the canonical-to-simulation conversion regardless of
// shotSide. Use this to build scriptedSimulator rest boards, which the
// engine always reads as simulation-frame.
func canonicalPosition(shotSide vector2.Frame, x, y float32) *stone.Kinematic {
	pos := vector2.Vector2{X: x, Y: y}
	if shotSide == vector2.Shot1 {
		pos = vector2.Vector2{X: -x, Y: -y}
	}
	return &stone.Kinematic{Position: pos}
}

// shotFramePosition returns the shot-frame (hack-origin) kinematic for the
// same canonicalised position canonicalPosition uses: the representation
// state.Stones is documented to hold between shots.
func shotFramePosition(shotSide vector2.Frame, x, y float32) *stone.Kinematic {
	sim := canonicalPosition(shotSide, x, y).Position
	return &stone.Kinematic{
		Position: vector2.TransformPosition(sim, vector2.Simulation, shotSide),
	}
}

func TestApplyMoveCleanShotEntersHouseAndAdvances(t *testing.T) {
	setting := testSetting(8)
	state := NewState(setting, team.Team1, time.Hour) // firstTeam = Team0
	shotSide := vector2.ShotSide(state.End)

	var result stone.Board
	result[0] = canonicalPosition(shotSide, 0, vector2.TeeY)

	sim := newScriptedSimulator(result)

	res, err := ApplyMove(setting, state, sim, Shot{Velocity: vector2.Vector2{X: 0, Y: 2.4}}, time.Second)
	if err != nil {
		t.Fatalf("ApplyMove returned error: %v", err)
	}
	if res.FreeGuardZoneFoul || res.NoTickFoul || res.FouledRule != "" {
		t.Errorf("expected a clean shot, got %+v", res)
	}
	if state.Shot != 1 {
		t.Errorf("state.Shot = %d, want 1", state.Shot)
	}
	if state.Stones[0] == nil {
		t.Fatal("expected the delivered stone to be recorded at slot 0")
	}
	want := shotFramePosition(shotSide, 0, vector2.TeeY).Position
	if diff := state.Stones[0].Position.Sub(want).Length(); diff > 1e-3 {
		t.Errorf("delivered stone position = %v, want near %v", state.Stones[0].Position, want)
	}
}

func TestApplyMoveFreeGuardZoneFoulRestoresPreShotBoard(t *testing.T) {
	setting := testSetting(8)
	state := NewState(setting, team.Team1, time.Hour) // firstTeam = Team0
	shotSide := vector2.ShotSide(state.End)

	guardY := vector2.TeeY - vector2.HouseRadius - 2
	state.Stones[0] = shotFramePosition(shotSide, 0, guardY)
	state.Shot = 1 // slot 1 delivers next; slot 0 (team0) is the standing guard

	// The shot knocks the guard out of play entirely (simulated as the
	// guard's slot going missing from the rest board) while the delivered
	// stone lands deep in the house - an uncontested free guard zone foul.
	var result stone.Board
	result[1] = canonicalPosition(shotSide, 0, vector2.TeeY)
	// slot 0 is absent from result: the guard left the simulator's board.

	sim := newScriptedSimulator(result)

	res, err := ApplyMove(setting, state, sim, Shot{Velocity: vector2.Vector2{X: 0, Y: 2.6}}, time.Second)
	if err != nil {
		t.Fatalf("ApplyMove returned error: %v", err)
	}
	if !res.FreeGuardZoneFoul {
		t.Fatal("expected a free guard zone foul")
	}
	if res.FouledRule != "free_guard_zone" {
		t.Errorf("FouledRule = %q, want %q", res.FouledRule, "free_guard_zone")
	}
	if state.Stones[0] == nil {
		t.Fatal("expected the guard to be restored at slot 0")
	}
	wantGuard := shotFramePosition(shotSide, 0, guardY).Position
	if diff := state.Stones[0].Position.Sub(wantGuard).Length(); diff > 1e-3 {
		t.Errorf("restored guard position = %v, want near %v", state.Stones[0].Position, wantGuard)
	}
	if state.Stones[1] != nil {
		t.Error("expected the fouling shot to be discarded (slot 1 empty), board treated as pre-shot")
	}
	if state.Shot != 2 {
		t.Errorf("state.Shot = %d, want 2 (the shot still counts even though it fouled)", state.Shot)
	}
}

func TestApplyMoveConcedeEndsGame(t *testing.T) {
	setting := testSetting(8)
	state := NewState(setting, team.Team1, time.Hour)
	sim := newScriptedSimulator(stone.Board{})

	deliveringTeam := state.CurrentTeam()
	res, err := ApplyMove(setting, state, sim, Concede{}, time.Second)
	if err != nil {
		t.Fatalf("ApplyMove returned error: %v", err)
	}
	if res.FouledRule != "" {
		t.Errorf("concede should not report a foul, got %q", res.FouledRule)
	}
	if state.Result == nil {
		t.Fatal("expected state.Result to be set")
	}
	if state.Result.Winner != deliveringTeam.Opponent() {
		t.Errorf("Winner = %v, want %v", state.Result.Winner, deliveringTeam.Opponent())
	}
	if state.Result.Reason != ReasonConcede {
		t.Errorf("Reason = %v, want ReasonConcede", state.Result.Reason)
	}
	if state.Hammer != team.Invalid {
		t.Errorf("Hammer = %v, want Invalid once the game has ended", state.Hammer)
	}
}

func TestApplyMoveTimeLimitExhaustion(t *testing.T) {
	setting := testSetting(8)
	state := NewState(setting, team.Team1, time.Hour)
	deliveringTeam := state.CurrentTeam()
	state.ThinkingTimeRemaining[deliveringTeam] = time.Second

	sim := newScriptedSimulator(stone.Board{})
	res, err := ApplyMove(setting, state, sim, Shot{Velocity: vector2.Vector2{X: 0, Y: 2.4}}, 2*time.Second)
	if err != nil {
		t.Fatalf("ApplyMove returned error: %v", err)
	}
	if res.FouledRule != "" {
		t.Errorf("expected no foul on a time-limit termination, got %q", res.FouledRule)
	}
	if state.Result == nil || state.Result.Reason != ReasonTimeLimit {
		t.Fatalf("expected ReasonTimeLimit, got %+v", state.Result)
	}
	if state.Result.Winner != deliveringTeam.Opponent() {
		t.Errorf("Winner = %v, want %v", state.Result.Winner, deliveringTeam.Opponent())
	}
}

func TestApplyMovePreconditionErrors(t *testing.T) {
	t.Run("already finished", func(t *testing.T) {
		setting := testSetting(8)
		state := NewState(setting, team.Team1, time.Hour)
		state.Result = &Result{Winner: team.Team0, Reason: ReasonScore}
		sim := newScriptedSimulator(stone.Board{})

		_, err := ApplyMove(setting, state, sim, Shot{}, time.Second)
		if err != ErrInvalidMoveForState {
			t.Errorf("got %v, want ErrInvalidMoveForState", err)
		}
	})

	t.Run("invalid hammer", func(t *testing.T) {
		setting := testSetting(8)
		state := NewState(setting, team.Invalid, time.Hour)
		sim := newScriptedSimulator(stone.Board{})

		_, err := ApplyMove(setting, state, sim, Shot{}, time.Second)
		if err != ErrInvalidArgument {
			t.Errorf("got %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("scores out of range", func(t *testing.T) {
		setting := testSetting(8)
		state := NewState(setting, team.Team1, time.Hour)
		state.Scores[0] = make([]*int8, 0, 1)
		state.Scores[1] = make([]*int8, 0, 1)
		sim := newScriptedSimulator(stone.Board{})

		_, err := ApplyMove(setting, state, sim, Shot{}, time.Second)
		if err != ErrScoresOutOfRange {
			t.Errorf("got %v, want ErrScoresOutOfRange", err)
		}
	})

	t.Run("non-finite velocity", func(t *testing.T) {
		setting := testSetting(8)
		state := NewState(setting, team.Team1, time.Hour)
		sim := newScriptedSimulator(stone.Board{})

		nan := float32(0)
		nan = nan / nan // NaN without importing math for a single literal
		_, err := ApplyMove(setting, state, sim, Shot{Velocity: vector2.Vector2{X: nan, Y: 0}}, time.Second)
		if err != ErrInvalidArgument {
			t.Errorf("got %v, want ErrInvalidArgument", err)
		}
	})
}

func TestApplyMoveFinishesEndAndRotatesHammer(t *testing.T) {
	setting := testSetting(8)
	state := NewState(setting, team.Team1, time.Hour) // firstTeam = Team0
	shotSide := vector2.ShotSide(state.End)

	// Team0's only stone sits right on the tee; nothing else is in play.
	state.Stones[0] = shotFramePosition(shotSide, 0, vector2.TeeY)
	state.Shot = 15

	// The final shot falls short of the hog line and gets pruned at rest,
	// leaving only the pre-existing stone to be scored.
	var result stone.Board
	result[0] = canonicalPosition(shotSide, 0, vector2.TeeY)
	result[15] = canonicalPosition(shotSide, 0, 5)

	sim := newScriptedSimulator(result)
	_, err := ApplyMove(setting, state, sim, Shot{Velocity: vector2.Vector2{X: 0, Y: 1.0}}, time.Second)
	if err != nil {
		t.Fatalf("ApplyMove returned error: %v", err)
	}

	if state.End != 1 {
		t.Errorf("End = %d, want 1", state.End)
	}
	if state.Shot != 0 {
		t.Errorf("Shot = %d, want 0 (reset for the next end)", state.Shot)
	}
	for i, k := range state.Stones {
		if k != nil {
			t.Errorf("slot %d not cleared after finishEnd: %v", i, k)
		}
	}
	if len(state.Scores[team.Team0]) == 0 || state.Scores[team.Team0][0] == nil || *state.Scores[team.Team0][0] != 1 {
		t.Errorf("team0 score for end 0 = %v, want 1", state.Scores[team.Team0])
	}
	if len(state.Scores[team.Team1]) == 0 || state.Scores[team.Team1][0] == nil || *state.Scores[team.Team1][0] != 0 {
		t.Errorf("team1 score for end 0 = %v, want 0", state.Scores[team.Team1])
	}
	if state.Hammer != team.Team1 {
		t.Errorf("Hammer = %v, want Team1 (the team that was scored against)", state.Hammer)
	}
}

func TestApplyMoveGameEndsOnScoreDifference(t *testing.T) {
	setting := testSetting(1) // a one-end match for a fast, deterministic finish
	state := NewState(setting, team.Team1, time.Hour)
	shotSide := vector2.ShotSide(state.End)

	state.Stones[0] = shotFramePosition(shotSide, 0, vector2.TeeY)
	state.Shot = 15

	var result stone.Board
	result[0] = canonicalPosition(shotSide, 0, vector2.TeeY)
	result[15] = canonicalPosition(shotSide, 0, 5)

	sim := newScriptedSimulator(result)
	_, err := ApplyMove(setting, state, sim, Shot{Velocity: vector2.Vector2{X: 0, Y: 1.0}}, time.Second)
	if err != nil {
		t.Fatalf("ApplyMove returned error: %v", err)
	}

	if state.Result == nil {
		t.Fatal("expected the game to end after its only end is scored")
	}
	if state.Result.Reason != ReasonScore {
		t.Errorf("Reason = %v, want ReasonScore", state.Result.Reason)
	}
	if state.Result.Winner != team.Team0 {
		t.Errorf("Winner = %v, want Team0", state.Result.Winner)
	}
	if state.Hammer != team.Invalid {
		t.Errorf("Hammer = %v, want Invalid once the game has ended", state.Hammer)
	}
}

func TestApplyMoveDrawAtExtraEndLimit(t *testing.T) {
	setting := testSetting(1)
	state := NewState(setting, team.Team1, time.Hour)

	const maxIterations = 20
	iterations := 0
	for state.Result == nil {
		iterations++
		if iterations > maxIterations {
			t.Fatal("match never reached a draw within the expected number of blank ends")
		}
		state.Shot = 15
		sim := newScriptedSimulator(stone.Board{}) // no stones land in the house: every end is blank
		if _, err := ApplyMove(setting, state, sim, Shot{Velocity: vector2.Vector2{X: 0, Y: 1.0}}, time.Second); err != nil {
			t.Fatalf("ApplyMove returned error: %v", err)
		}
	}

	if state.Result.Reason != ReasonDraw {
		t.Errorf("Reason = %v, want ReasonDraw", state.Result.Reason)
	}
	if state.Result.Winner != team.Invalid {
		t.Errorf("Winner = %v, want Invalid for a draw", state.Result.Winner)
	}
	if state.End != setting.extraEndLimit() {
		t.Errorf("End = %d, want %d (EndCount + ExtraEndLimit)", state.End, setting.extraEndLimit())
	}
}
