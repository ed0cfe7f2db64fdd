// Package live serves a read-only HTTP/WebSocket view of a running match,
// adapted from the teacher's API/WebSocket layer (internal/api) onto the
// curling domain's match.State instead of a game.Engine.
package live

import (
	"curling/match"
	"curling/stone"
	"curling/team"
)

// StoneView is a JSON-friendly rendering of one occupied board slot.
type StoneView struct {
	Slot  int     `json:"slot"`
	Team  string  `json:"team"`
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Angle float32 `json:"angle"`
}

// StateView is a JSON-friendly snapshot of match.State for the browser.
type StateView struct {
	End    int         `json:"end"`
	Shot   int         `json:"shot"`
	Hammer string      `json:"hammer"`
	Stones []StoneView `json:"stones"`
	Scores [2][]*int8  `json:"scores"`
	Result *ResultView `json:"result,omitempty"`
}

// ResultView mirrors match.Result for JSON encoding.
type ResultView struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

// NewStateView builds a StateView from live match state. Each occupied
// slot is labelled with its team, derived from state.FirstTeam() (the
// team that shot first this end).
func NewStateView(state *match.State) StateView {
	firstTeam := state.FirstTeam()

	view := StateView{
		End:    state.End,
		Shot:   state.Shot,
		Hammer: state.Hammer.String(),
		Scores: state.Scores,
	}

	for i := 0; i < stone.SlotCount; i++ {
		k := state.Stones[i]
		if k == nil {
			continue
		}
		view.Stones = append(view.Stones, StoneView{
			Slot:  i,
			Team:  team.SlotTeam(i, firstTeam).String(),
			X:     k.Position.X,
			Y:     k.Position.Y,
			Angle: k.Angle,
		})
	}

	if state.Result != nil {
		view.Result = &ResultView{
			Winner: state.Result.Winner.String(),
			Reason: state.Result.Reason.String(),
		}
	}

	return view
}
