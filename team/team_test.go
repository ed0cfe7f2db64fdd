package team

import "testing"

func TestOpponent(t *testing.T) {
	tests := []struct {
		name string
		t    Team
		want Team
	}{
		{"team0", Team0, Team1},
		{"team1", Team1, Team0},
		{"invalid", Invalid, Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.Opponent(); got != tt.want {
				t.Errorf("Opponent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		t    Team
		want string
	}{
		{Team0, "team0"},
		{Team1, "team1"},
		{Invalid, "invalid"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestSlotTeam(t *testing.T) {
	tests := []struct {
		slot      int
		firstTeam Team
		want      Team
	}{
		{0, Team0, Team0},
		{1, Team0, Team1},
		{0, Team1, Team1},
		{1, Team1, Team0},
		{15, Team0, Team1},
		{15, Team1, Team0},
	}

	for _, tt := range tests {
		if got := SlotTeam(tt.slot, tt.firstTeam); got != tt.want {
			t.Errorf("SlotTeam(%d, %v) = %v, want %v", tt.slot, tt.firstTeam, got, tt.want)
		}
	}
}

func TestSlotTeamAlternates(t *testing.T) {
	for i := 0; i < 15; i++ {
		if SlotTeam(i, Team0) == SlotTeam(i+1, Team0) {
			t.Errorf("slots %d and %d should alternate teams, both got %v", i, i+1, SlotTeam(i, Team0))
		}
	}
}
