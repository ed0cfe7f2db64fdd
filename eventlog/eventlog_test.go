package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmitBeforeStartIsDropped(t *testing.T) {
	el := NewEventLog()
	if el.Emit(NewEvent(EventTypeShot, 0, "team0", ShotPayload{Shot: 0})) {
		t.Error("Emit before Start should return false")
	}
}

func TestEmitInMemoryModeCountsEvents(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer el.Stop()

	for i := 0; i < 5; i++ {
		if !el.Emit(NewEvent(EventTypeShot, 0, "team0", ShotPayload{Shot: i})) {
			t.Fatalf("Emit %d unexpectedly dropped", i)
		}
	}

	stats := el.GetStats()
	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if !stats.Running {
		t.Error("expected Running to be true after Start")
	}
}

func TestEmitAfterStopIsDropped(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	el.Stop()

	if el.Emit(NewEvent(EventTypeShot, 0, "team0", ShotPayload{})) {
		t.Error("Emit after Stop should return false")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	el.Stop()
	el.Stop() // must not panic or deadlock
}

func TestGlobalRateLimitDropsBurst(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer el.Stop()

	accepted := 0
	for i := 0; i < MaxEventsPerSec*2; i++ {
		if el.Emit(NewEvent(EventTypeShot, 0, "team0", ShotPayload{Shot: i})) {
			accepted++
		}
	}

	if accepted >= MaxEventsPerSec*2 {
		t.Errorf("expected the global rate limiter to drop some of a %d-event burst, all were accepted", MaxEventsPerSec*2)
	}
	if el.GetStats().Dropped == 0 {
		t.Error("expected Dropped to be nonzero after exceeding the global burst allowance")
	}
}

func TestPerTeamRateLimitIsIndependentPerTeam(t *testing.T) {
	el := NewEventLog()

	// Exercise the per-team limiters directly (bypassing Emit's global
	// limiter, which shares the same token bucket across teams and would
	// make this test's timing-sensitive).
	team0 := el.teamLimiter("team0")
	for i := 0; i < MaxEventsPerTeam/10; i++ {
		if !team0.Allow() {
			t.Fatalf("team0 limiter denied within its own burst allowance at draw %d", i)
		}
	}
	// team0's burst is now exhausted; immediately retrying should deny.
	if team0.Allow() {
		t.Error("expected team0's limiter to deny once its burst allowance is exhausted")
	}

	team1 := el.teamLimiter("team1")
	if !team1.Allow() {
		t.Error("expected team1's independent limiter to still have its own allowance")
	}
}

func TestTeamLimiterReusesSameLimiterPerTeam(t *testing.T) {
	el := NewEventLog()
	a := el.teamLimiter("team0")
	b := el.teamLimiter("team0")
	if a != b {
		t.Error("expected repeated calls for the same team to return the same limiter instance")
	}
}

func TestFlushWritesNewlineDelimitedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")

	el := NewEventLog()
	if err := el.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	el.EmitSimple(EventTypeShot, 2, "team0", ShotPayload{Shot: 3, SimulationSteps: 100})
	el.EmitSimple(EventTypeEndScored, 2, "", EndScoredPayload{Signed: 1})

	// Let the periodic flush run, then stop (which flushes whatever
	// remains) to guarantee both events have reached disk.
	time.Sleep(2 * BatchFlushInterval)
	el.Stop()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening event log file: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 flushed lines, got %d: %v", len(lines), lines)
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshalling first line: %v", err)
	}
	if first.Type != EventTypeShot || first.End != 2 || first.Team != "team0" {
		t.Errorf("first event = %+v, want type=shot end=2 team=team0", first)
	}
}

func TestNewEventSetsVersionAndPayload(t *testing.T) {
	e := NewEvent(EventTypeFoul, 3, "team1", FoulPayload{Shot: 2, Rule: "free_guard_zone"})
	if e.Version != EventVersion {
		t.Errorf("Version = %d, want %d", e.Version, EventVersion)
	}
	if e.Type != EventTypeFoul {
		t.Errorf("Type = %v, want EventTypeFoul", e.Type)
	}

	var payload FoulPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		t.Fatalf("unmarshalling payload: %v", err)
	}
	if payload.Rule != "free_guard_zone" {
		t.Errorf("payload.Rule = %q, want %q", payload.Rule, "free_guard_zone")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		et   EventType
		want string
	}{
		{EventTypeShot, "shot"},
		{EventTypeFoul, "foul"},
		{EventTypeEndScored, "end_scored"},
		{EventTypeGameOver, "game_over"},
		{EventTypeUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}
