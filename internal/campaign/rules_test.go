package campaign

import (
	"testing"

	"github.com/crusade-dev/crusaded/internal/models"
)

func TestClampCP(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0}, {6, 6}, {-6, -6}, {7, 6}, {-7, -6}, {100, 6}, {-100, -6}, {3, 3},
	}
	for _, tt := range tests {
		if got := ClampCP(tt.in); got != tt.want {
			t.Errorf("ClampCP(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSideSign(t *testing.T) {
	tests := []struct {
		side string
		want int
	}{
		{models.SideLoyalist, 1},
		{models.SideTraitor, -1},
		{models.SideDraw, 0},
		{"nonsense", 0},
	}
	for _, tt := range tests {
		if got := SideSign(tt.side); got != tt.want {
			t.Errorf("SideSign(%q) = %d, want %d", tt.side, got, tt.want)
		}
	}
}

func TestStatusFromCP(t *testing.T) {
	tests := []struct {
		cp   int
		want string
	}{
		{0, StatusContested},
		{2, StatusContested},
		{-2, StatusContested},
		{3, StatusHeld},
		{5, StatusHeld},
		{-5, StatusHeld},
		{6, StatusSecure},
		{-6, StatusSecure},
	}
	for _, tt := range tests {
		if got := StatusFromCP(tt.cp); got != tt.want {
			t.Errorf("StatusFromCP(%d) = %q, want %q", tt.cp, got, tt.want)
		}
	}
}

func TestSideFromCP(t *testing.T) {
	tests := []struct {
		cp   int
		want string
	}{
		{4, "Loyalist"},
		{-4, "Traitor"},
		{0, "Neutral"},
	}
	for _, tt := range tests {
		if got := SideFromCP(tt.cp); got != tt.want {
			t.Errorf("SideFromCP(%d) = %q, want %q", tt.cp, got, tt.want)
		}
	}
}

func TestBaseImpact(t *testing.T) {
	tests := []struct {
		battleType string
		want       int
	}{
		{models.BattleTypeHeresy30k, 2},
		{models.BattleTypeLegions, 3},
		{models.BattleTypeTitanicus, 3},
		{models.BattleTypeGothicArmada, 2},
		{"unknown", 0},
	}
	for _, tt := range tests {
		if got := BaseImpact(tt.battleType); got != tt.want {
			t.Errorf("BaseImpact(%q) = %d, want %d", tt.battleType, got, tt.want)
		}
	}
}

func TestImpactWithCrushing(t *testing.T) {
	tests := []struct {
		name       string
		base       int
		isCrushing bool
		want       int
	}{
		{"no crushing", 2, false, 2},
		{"crushing even base", 2, true, 3},
		{"crushing odd base rounds half to even", 3, true, 4},
		{"zero base", 0, true, 0},
		{"crushing never below one", 1, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImpactWithCrushing(tt.base, tt.isCrushing); got != tt.want {
				t.Errorf("ImpactWithCrushing(%d, %v) = %d, want %d", tt.base, tt.isCrushing, got, tt.want)
			}
		})
	}
}

func TestIsControlled(t *testing.T) {
	tests := []struct {
		cp   int
		want bool
	}{
		{0, false}, {2, false}, {-2, false}, {3, true}, {-3, true}, {6, true},
	}
	for _, tt := range tests {
		if got := IsControlled(tt.cp); got != tt.want {
			t.Errorf("IsControlled(%d) = %v, want %v", tt.cp, got, tt.want)
		}
	}
}

func TestNeighbors(t *testing.T) {
	got := Neighbors(0, 0)
	want := map[[2]int]bool{
		{1, 0}: true, {-1, 0}: true,
		{0, 1}: true, {0, -1}: true,
		{1, -1}: true, {-1, 1}: true,
	}
	for _, n := range got {
		if !want[n] {
			t.Errorf("unexpected neighbor %v", n)
		}
		delete(want, n)
	}
	if len(want) != 0 {
		t.Errorf("missing neighbors: %v", want)
	}
}

func TestTileScore(t *testing.T) {
	tests := []struct {
		name     string
		isPlanet bool
		cp       int
		want     int
	}{
		{"contested planet", true, 2, 0},
		{"held planet", true, 4, 2},
		{"secure planet", true, 6, 3},
		{"held space", false, -3, 1},
		{"secure space", false, -6, 2},
		{"neutral space", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TileScore(tt.isPlanet, tt.cp); got != tt.want {
				t.Errorf("TileScore(%v, %d) = %d, want %d", tt.isPlanet, tt.cp, got, tt.want)
			}
		})
	}
}
