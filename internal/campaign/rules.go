// Package campaign implements the control-point engine: battle resolution,
// campaign scoring, and full map recalculation by battle replay.
package campaign

import (
	"math"

	"github.com/crusade-dev/crusaded/internal/models"
)

// Control point bounds per tile
const (
	CPMin = -6
	CPMax = 6
)

// Territory statuses derived from CP magnitude
const (
	StatusContested = "Contested"
	StatusHeld      = "Held"
	StatusSecure    = "Secure"
)

// ClampCP clamps a control point value to the legal range
func ClampCP(cp int) int {
	return max(CPMin, min(CPMax, cp))
}

// SideSign maps a winning side to its CP direction. Draws move nothing.
func SideSign(side string) int {
	switch side {
	case models.SideLoyalist:
		return 1
	case models.SideTraitor:
		return -1
	}
	return 0
}

// CPSign returns the controlling side's sign for a CP value
func CPSign(cp int) int {
	switch {
	case cp > 0:
		return 1
	case cp < 0:
		return -1
	}
	return 0
}

// StatusFromCP derives the tile status from CP magnitude
func StatusFromCP(cp int) string {
	a := cp
	if a < 0 {
		a = -a
	}
	switch {
	case a <= 2:
		return StatusContested
	case a <= 5:
		return StatusHeld
	}
	return StatusSecure
}

// SideFromCP names the side holding a tile
func SideFromCP(cp int) string {
	switch {
	case cp > 0:
		return "Loyalist"
	case cp < 0:
		return "Traitor"
	}
	return "Neutral"
}

// BaseImpact returns the base impact points for a battle type. Unknown
// types score zero.
func BaseImpact(battleType string) int {
	switch battleType {
	case models.BattleTypeHeresy30k:
		return 2
	case models.BattleTypeLegions:
		return 3
	case models.BattleTypeTitanicus:
		return 3
	case models.BattleTypeGothicArmada:
		return 2
	}
	return 0
}

// ImpactWithCrushing applies the crushing-victory multiplier: x1.5 rounded
// to nearest, never below 1 for a positive base.
func ImpactWithCrushing(base int, isCrushing bool) int {
	if base <= 0 {
		return 0
	}
	if !isCrushing {
		return base
	}
	// Round half to even: a crushing base-3 win scores 4, not 5.
	v := int(math.RoundToEven(float64(base) * 1.5))
	return max(1, v)
}

// IsControlled reports whether a tile counts as controlled (Held or Secure)
func IsControlled(cp int) bool {
	return cp >= 3 || cp <= -3
}

// Neighbors returns the six axial hex coordinates adjacent to (q, r)
func Neighbors(q, r int) [6][2]int {
	return [6][2]int{
		{q + 1, r}, {q - 1, r},
		{q, r + 1}, {q, r - 1},
		{q + 1, r - 1}, {q - 1, r + 1},
	}
}

// TileScore returns the campaign points a controlled tile is worth.
// Planets weigh more than space; Secure weighs more than Held.
func TileScore(isPlanet bool, cp int) int {
	if !IsControlled(cp) {
		return 0
	}
	secure := StatusFromCP(cp) == StatusSecure
	if isPlanet {
		if secure {
			return 3
		}
		return 2
	}
	if secure {
		return 2
	}
	return 1
}
