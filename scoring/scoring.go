// Package scoring implements the distance-to-tee scoring procedure run at
// the end of every end (spec section 4.6).
package scoring

import (
	"math"

	"curling/stone"
	"curling/team"
	"curling/vector2"
)

// sentinelDistance is the "no stone in the house" value used for near[t]:
// a distance no in-house stone can ever reach, so a team with no stone in
// the house never outscores one with any stone in the house.
const sentinelDistance = vector2.HouseRadius + vector2.StoneRadius

var tee = vector2.Vector2{X: 0, Y: vector2.TeeY}

func distanceFromTee(p vector2.Vector2) float32 {
	return p.Sub(tee).Length()
}

// Score computes the signed end result for board (already canonicalised via
// vector2.CanonicalizePositionOnSheet), given which team shot first in the
// end. A positive result is points for team 0; negative is points for team
// 1; zero is a blank end.
func Score(board stone.Board, firstTeam team.Team) (signed int, blank bool) {
	var dist [stone.SlotCount]float32
	near := [2]float32{sentinelDistance, sentinelDistance}

	for i := 0; i < stone.SlotCount; i++ {
		k := board[i]
		if k == nil {
			dist[i] = float32(math.Inf(1))
			continue
		}
		d := distanceFromTee(k.Position)
		dist[i] = d
		if d >= sentinelDistance {
			continue // not in the house; cannot set near[t]
		}
		t := team.SlotTeam(i, firstTeam)
		if d < near[t] {
			near[t] = d
		}
	}

	switch {
	case near[0] < near[1]:
		return countCloserThan(dist, firstTeam, team.Team0, near[1]), false
	case near[1] < near[0]:
		return -countCloserThan(dist, firstTeam, team.Team1, near[0]), false
	default:
		return 0, true
	}
}

func countCloserThan(dist [stone.SlotCount]float32, firstTeam, scoringTeam team.Team, threshold float32) int {
	count := 0
	for i, d := range dist {
		if team.SlotTeam(i, firstTeam) == scoringTeam && d < threshold {
			count++
		}
	}
	return count
}
