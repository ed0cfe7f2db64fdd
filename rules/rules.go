// Package rules implements the Free Guard Zone and No-Tick predicates
// (spec section 4.5). Both are pure functions of the board before and
// after a shot, expressed in the canonical frame
// (vector2.CanonicalizePositionOnSheet).
package rules

import (
	"curling/stone"
	"curling/team"
	"curling/vector2"
)

// DefaultFGZCount is the number of shots per end the Free Guard Zone
// applies to when the five-rock rule is disabled.
const DefaultFGZCount = 4

// FiveRockFGZCount is the FGZ window when the five-rock rule is enabled.
const FiveRockFGZCount = 5

var tee = vector2.Vector2{X: 0, Y: vector2.TeeY}

func inHouse(p vector2.Vector2) bool {
	return p.Sub(tee).Length() < vector2.HouseRadius+vector2.StoneRadius
}

func inFreeGuardZone(p vector2.Vector2) bool {
	return !inHouse(p) && p.Y+vector2.StoneRadius < vector2.TeeY
}

func onCentreLine(p vector2.Vector2) bool {
	x := p.X
	if x < 0 {
		x = -x
	}
	return x < vector2.StoneRadius
}

// FreeGuardZoneFoul reports whether the shot at shotInEnd (0-based, by the
// delivering team) fouled the Free Guard Zone rule: any opponent stone
// that was in the FGZ before the shot and is, after the shot, either
// missing or no longer in the FGZ.
func FreeGuardZoneFoul(shotInEnd int, deliveringTeam, firstTeam team.Team, applyCount int, before, after stone.Board) bool {
	if shotInEnd >= applyCount {
		return false
	}
	opponent := deliveringTeam.Opponent()

	for i, b := range before {
		if b == nil {
			continue
		}
		if team.SlotTeam(i, firstTeam) != opponent {
			continue
		}
		if !inFreeGuardZone(b.Position) {
			continue
		}
		a := after[i]
		if a == nil || !inFreeGuardZone(a.Position) {
			return true
		}
	}
	return false
}

// NoTickFoul reports whether the shot fouled the optional No-Tick rule:
// among opponent stones that were in the FGZ and straddled the centre
// line before the shot, any that left the centre-line band or disappeared
// is a foul.
func NoTickFoul(shotInEnd int, deliveringTeam, firstTeam team.Team, applyCount int, before, after stone.Board) bool {
	if shotInEnd >= applyCount {
		return false
	}
	opponent := deliveringTeam.Opponent()

	for i, b := range before {
		if b == nil {
			continue
		}
		if team.SlotTeam(i, firstTeam) != opponent {
			continue
		}
		if !inFreeGuardZone(b.Position) || !onCentreLine(b.Position) {
			continue
		}
		a := after[i]
		if a == nil || !onCentreLine(a.Position) {
			return true
		}
	}
	return false
}
