package campaign

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crusade-dev/crusaded/internal/models"
)

var (
	ErrUnknownBattleType  = errors.New("unknown battle type")
	ErrUnknownLocation    = errors.New("unknown location territory")
	ErrVoidBattleOnPlanet = errors.New("gothic armada battles must be logged in a space tile")
	ErrPlanetBattleInVoid = errors.New("planetary battles must be logged on a planet")
)

// Score is the campaign score tally. Lead is loyalist minus traitor.
type Score struct {
	Loyalist int `json:"loyalist"`
	Traitor  int `json:"traitor"`
	Lead     int `json:"lead"`
}

// LogBattleParams describes one battle to record and resolve
type LogBattleParams struct {
	CreatedByID      string
	CreatedByEmail   string
	BattleType       string
	LocationID       string
	WinningSide      string
	IsCrushing       bool
	SplashTargetID   *string
	PressureTargetID *string
	Notes            string
}

// Service owns battle resolution and map recalculation
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a campaign service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// CurrentScore tallies the campaign score from current territory CP
func (s *Service) CurrentScore() (Score, error) {
	return scoreIn(s.db)
}

func scoreIn(tx *gorm.DB) (Score, error) {
	var territories []models.Territory
	if err := tx.Find(&territories).Error; err != nil {
		return Score{}, err
	}

	var score Score
	for _, t := range territories {
		pts := TileScore(t.IsPlanet, t.CP)
		if pts == 0 {
			continue
		}
		if t.CP > 0 {
			score.Loyalist += pts
		} else {
			score.Traitor += pts
		}
	}
	score.Lead = score.Loyalist - score.Traitor
	return score, nil
}

// LogBattle records a battle and applies its CP effects in one transaction.
// Returns the created battle and the score movement it caused.
func (s *Service) LogBattle(params LogBattleParams) (*models.Battle, Score, error) {
	battle := &models.Battle{
		CreatedByID:               params.CreatedByID,
		CreatedByEmail:            params.CreatedByEmail,
		BattleType:                params.BattleType,
		LocationTerritoryID:       params.LocationID,
		WinningSide:               params.WinningSide,
		IsCrushing:                params.IsCrushing,
		SplashTargetTerritoryID:   params.SplashTargetID,
		PressureTargetTerritoryID: params.PressureTargetID,
		Notes:                     params.Notes,
		Status:                    models.BattleStatusApproved,
	}

	var delta Score
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Validated before the insert so a bad location surfaces as a
		// domain error, not a foreign key violation.
		if _, err := checkPlacement(tx, battle.BattleType, battle.LocationTerritoryID); err != nil {
			return err
		}

		before, err := scoreIn(tx)
		if err != nil {
			return err
		}

		if err := tx.Create(battle).Error; err != nil {
			return err
		}

		if err := resolveBattle(tx, battle); err != nil {
			return err
		}

		after, err := scoreIn(tx)
		if err != nil {
			return err
		}
		delta = Score{
			Loyalist: after.Loyalist - before.Loyalist,
			Traitor:  after.Traitor - before.Traitor,
			Lead:     after.Lead - before.Lead,
		}
		return nil
	})
	if err != nil {
		return nil, Score{}, err
	}

	s.logger.Info().
		Str("battle_id", battle.ID).
		Str("battle_type", battle.BattleType).
		Str("winning_side", battle.WinningSide).
		Int("lead_delta", delta.Lead).
		Msg("Battle logged")

	return battle, delta, nil
}

// DeleteBattles removes the given battles and replays the remainder to
// rebuild territory CP. All-or-nothing within one transaction.
func (s *Service) DeleteBattles(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Delete(&models.Battle{}).Error; err != nil {
			return err
		}
		return replayAll(tx)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int("deleted", len(ids)).Msg("Battles deleted, map recalculated")
	return nil
}

// Recalculate rebuilds all territory CP from scratch by replaying every
// approved battle in creation order.
func (s *Service) Recalculate() error {
	return s.db.Transaction(replayAll)
}

func replayAll(tx *gorm.DB) error {
	// ULIDs sort lexicographically by creation time, so id order is
	// creation order.
	if err := tx.Model(&models.Territory{}).Where("1 = 1").Update("cp", 0).Error; err != nil {
		return err
	}

	var battles []models.Battle
	if err := tx.Where("status = ?", models.BattleStatusApproved).Order("id ASC").Find(&battles).Error; err != nil {
		return err
	}

	for i := range battles {
		if err := resolveBattle(tx, &battles[i]); err != nil {
			return fmt.Errorf("replay battle %s: %w", battles[i].ID, err)
		}
	}
	return nil
}

// checkPlacement validates the battle type against its location: void
// battles in space, planetary battles on planets. Returns the location.
func checkPlacement(tx *gorm.DB, battleType, locationID string) (*models.Territory, error) {
	if BaseImpact(battleType) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBattleType, battleType)
	}

	var loc models.Territory
	if err := tx.Where("id = ?", locationID).First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownLocation
		}
		return nil, err
	}

	if battleType == models.BattleTypeGothicArmada {
		if loc.IsPlanet {
			return nil, ErrVoidBattleOnPlanet
		}
	} else if !loc.IsPlanet {
		return nil, ErrPlanetBattleInVoid
	}
	return &loc, nil
}

// resolveBattle applies one battle's CP effects inside tx
func resolveBattle(tx *gorm.DB, battle *models.Battle) error {
	loc, err := checkPlacement(tx, battle.BattleType, battle.LocationTerritoryID)
	if err != nil {
		return err
	}

	sign := SideSign(battle.WinningSide)
	if sign == 0 {
		// Draws move no CP
		return nil
	}

	mainImpact := ImpactWithCrushing(BaseImpact(battle.BattleType), battle.IsCrushing)
	if err := applyCPDelta(tx, loc.ID, mainImpact*sign); err != nil {
		return err
	}

	if battle.BattleType == models.BattleTypeGothicArmada {
		if battle.PressureTargetTerritoryID != nil {
			return applyCPDelta(tx, *battle.PressureTargetTerritoryID, sign)
		}
	} else if battle.SplashTargetTerritoryID != nil {
		return applyCPDelta(tx, *battle.SplashTargetTerritoryID, sign)
	}
	return nil
}

// applyCPDelta shifts one territory's CP, honoring planetary defenses:
// a Secure planet blunts attacks unless orbit is hostile, and a planet
// cannot become Secure while the enemy holds two or more adjacent space
// tiles.
func applyCPDelta(tx *gorm.DB, territoryID string, delta int) error {
	if delta == 0 {
		return nil
	}

	var t models.Territory
	if err := tx.Where("id = ?", territoryID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	adjusted := delta

	// Secure resistance (planets only): incoming enemy impact drops by 1
	// (min 1) unless the attacker holds an adjacent space tile.
	if t.IsPlanet && (t.CP == CPMax || t.CP == CPMin) {
		deltaSign := CPSign(adjusted)
		if deltaSign != CPSign(t.CP) {
			hostile, err := countAdjacentEnemySpaceControl(tx, t.Q, t.R, deltaSign)
			if err != nil {
				return err
			}
			if hostile == 0 {
				mag := adjusted
				if mag < 0 {
					mag = -mag
				}
				adjusted = max(1, mag-1) * deltaSign
			}
		}
	}

	newCP := ClampCP(t.CP + adjusted)

	// Orbital pressure: a planet under 2+ hostile space tiles caps at +-5
	if t.IsPlanet && (newCP == CPMax || newCP == CPMin) {
		newSign := CPSign(newCP)
		hostile, err := countAdjacentEnemySpaceControl(tx, t.Q, t.R, -newSign)
		if err != nil {
			return err
		}
		if hostile >= 2 {
			newCP = 5 * newSign
		}
	}

	return tx.Model(&models.Territory{}).Where("id = ?", t.ID).Update("cp", newCP).Error
}

// countAdjacentEnemySpaceControl counts adjacent space tiles controlled by
// the side with the given sign
func countAdjacentEnemySpaceControl(tx *gorm.DB, q, r, enemySign int) (int, error) {
	count := 0
	for _, n := range Neighbors(q, r) {
		var t models.Territory
		err := tx.Where("q = ? AND r = ?", n[0], n[1]).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if t.IsPlanet {
			continue
		}
		if IsControlled(t.CP) && CPSign(t.CP) == enemySign {
			count++
		}
	}
	return count, nil
}
