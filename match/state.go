package match

import (
	"time"

	"curling/stone"
	"curling/team"
)

// State is the engine's mutable per-match state. Every exported field is
// part of the documented contract; callers may read it freely but should
// only mutate it through ApplyMove.
type State struct {
	End   int
	Shot  int
	Hammer team.Team

	// Stones is expressed in the shot-side frame of the current end (see
	// vector2.ShotSide).
	Stones stone.Board

	// Scores[t][e] is team t's points for end e; nil means not yet
	// scored. A blank end is recorded as a pointer to 0, not nil.
	Scores [2][]*int8

	// ExtraEndScore is the signed result (+ for team 0) of the most
	// recently scored extra end (an end at index >= Setting.EndCount),
	// blank extra ends included; nil until an extra end has been scored.
	ExtraEndScore *int8

	ThinkingTimeRemaining [2]time.Duration

	Result *Result
}

// NewState constructs a fresh State for the start of a match: end 0, shot
// 0, the given starting hammer, every stone slot empty, and scores sized
// to the setting's end count plus its extra-end allowance.
func NewState(setting Setting, hammer team.Team, thinkingTime time.Duration) *State {
	capacity := setting.extraEndLimit() + 1
	s := &State{
		Hammer: hammer,
	}
	s.Scores[0] = make([]*int8, 0, capacity)
	s.Scores[1] = make([]*int8, 0, capacity)
	s.ThinkingTimeRemaining[team.Team0] = thinkingTime
	s.ThinkingTimeRemaining[team.Team1] = thinkingTime
	return s
}

// FirstTeam is the team that shot first in the current end: the hammer's
// opponent.
func (s *State) FirstTeam() team.Team {
	return s.Hammer.Opponent()
}

// CurrentTeam returns the team delivering the current shot, or
// team.Invalid once the game has ended.
func (s *State) CurrentTeam() team.Team {
	if s.Result != nil {
		return team.Invalid
	}
	return team.SlotTeam(s.Shot, s.FirstTeam())
}

func setScore(scores []*int8, end int, value int8) []*int8 {
	for len(scores) <= end {
		scores = append(scores, nil)
	}
	v := value
	scores[end] = &v
	return scores
}
