package campaign

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crusade-dev/crusaded/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// miniMap is a planet at origin ringed by six space tiles
type miniMap struct {
	planet models.Territory
	spaces []models.Territory // indexed in Neighbors order
}

func seedMiniMap(t *testing.T, db *gorm.DB) miniMap {
	t.Helper()

	m := miniMap{
		planet: models.Territory{Q: 0, R: 0, Name: "Molech", IsPlanet: true},
	}
	if err := db.Create(&m.planet).Error; err != nil {
		t.Fatalf("create planet: %v", err)
	}

	for i, n := range Neighbors(0, 0) {
		space := models.Territory{Q: n[0], R: n[1], Name: "Void"}
		if err := db.Create(&space).Error; err != nil {
			t.Fatalf("create space %d: %v", i, err)
		}
		m.spaces = append(m.spaces, space)
	}
	return m
}

func setCP(t *testing.T, db *gorm.DB, territoryID string, cp int) {
	t.Helper()
	if err := db.Model(&models.Territory{}).Where("id = ?", territoryID).Update("cp", cp).Error; err != nil {
		t.Fatalf("set cp: %v", err)
	}
}

func getCP(t *testing.T, db *gorm.DB, territoryID string) int {
	t.Helper()
	var territory models.Territory
	if err := db.Where("id = ?", territoryID).First(&territory).Error; err != nil {
		t.Fatalf("get territory: %v", err)
	}
	return territory.CP
}

func newTestService(t *testing.T) (*Service, *gorm.DB, miniMap) {
	t.Helper()
	db := newTestDB(t)
	m := seedMiniMap(t, db)
	return NewService(db, zerolog.Nop()), db, m
}

func logTestBattle(t *testing.T, svc *Service, params LogBattleParams) *models.Battle {
	t.Helper()
	if params.CreatedByID == "" {
		params.CreatedByID = "user-1"
		params.CreatedByEmail = "a@x.com"
	}
	battle, _, err := svc.LogBattle(params)
	if err != nil {
		t.Fatalf("LogBattle: %v", err)
	}
	return battle
}

func TestLogBattlePlanetary(t *testing.T) {
	svc, db, m := newTestService(t)

	logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeHeresy30k,
		LocationID:  m.planet.ID,
		WinningSide: models.SideLoyalist,
	})

	if cp := getCP(t, db, m.planet.ID); cp != 2 {
		t.Errorf("planet CP = %d, want 2", cp)
	}
}

func TestLogBattleCrushing(t *testing.T) {
	svc, db, m := newTestService(t)

	logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeLegions,
		LocationID:  m.planet.ID,
		WinningSide: models.SideTraitor,
		IsCrushing:  true,
	})

	// Crushing base-3: round half to even gives 4
	if cp := getCP(t, db, m.planet.ID); cp != -4 {
		t.Errorf("planet CP = %d, want -4", cp)
	}
}

func TestLogBattleDraw(t *testing.T) {
	svc, db, m := newTestService(t)

	battle := logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeHeresy30k,
		LocationID:  m.planet.ID,
		WinningSide: models.SideDraw,
	})

	if battle.ID == "" {
		t.Fatal("draw battle not recorded")
	}
	if cp := getCP(t, db, m.planet.ID); cp != 0 {
		t.Errorf("draw moved CP to %d", cp)
	}
}

func TestLogBattlePlacementRules(t *testing.T) {
	svc, _, m := newTestService(t)

	tests := []struct {
		name       string
		battleType string
		locationID string
		wantErr    error
	}{
		{"void battle on planet", models.BattleTypeGothicArmada, m.planet.ID, ErrVoidBattleOnPlanet},
		{"planetary battle in void", models.BattleTypeHeresy30k, m.spaces[0].ID, ErrPlanetBattleInVoid},
		{"unknown location", models.BattleTypeHeresy30k, "01ARZ3NDEKTSV4RRFFQ69G5FAV", ErrUnknownLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.LogBattle(LogBattleParams{
				CreatedByID:    "user-1",
				CreatedByEmail: "a@x.com",
				BattleType:     tt.battleType,
				LocationID:     tt.locationID,
				WinningSide:    models.SideLoyalist,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogBattleSplash(t *testing.T) {
	svc, db, m := newTestService(t)

	logTestBattle(t, svc, LogBattleParams{
		BattleType:     models.BattleTypeHeresy30k,
		LocationID:     m.planet.ID,
		WinningSide:    models.SideLoyalist,
		SplashTargetID: &m.spaces[0].ID,
	})

	if cp := getCP(t, db, m.spaces[0].ID); cp != 1 {
		t.Errorf("splash target CP = %d, want 1", cp)
	}
}

func TestLogBattlePressure(t *testing.T) {
	svc, db, m := newTestService(t)

	logTestBattle(t, svc, LogBattleParams{
		BattleType:       models.BattleTypeGothicArmada,
		LocationID:       m.spaces[0].ID,
		WinningSide:      models.SideTraitor,
		PressureTargetID: &m.planet.ID,
	})

	if cp := getCP(t, db, m.spaces[0].ID); cp != -2 {
		t.Errorf("space CP = %d, want -2", cp)
	}
	if cp := getCP(t, db, m.planet.ID); cp != -1 {
		t.Errorf("pressured planet CP = %d, want -1", cp)
	}
}

func TestSecureResistance(t *testing.T) {
	svc, db, m := newTestService(t)
	setCP(t, db, m.planet.ID, 6)

	// No traitor-held orbit: base-2 attack blunted to 1
	logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeHeresy30k,
		LocationID:  m.planet.ID,
		WinningSide: models.SideTraitor,
	})

	if cp := getCP(t, db, m.planet.ID); cp != 5 {
		t.Errorf("planet CP = %d, want 5 (resisted)", cp)
	}
}

func TestSecureResistanceBypassedByOrbit(t *testing.T) {
	svc, db, m := newTestService(t)
	setCP(t, db, m.planet.ID, 6)
	setCP(t, db, m.spaces[0].ID, -3) // traitors hold one adjacent space tile

	logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeHeresy30k,
		LocationID:  m.planet.ID,
		WinningSide: models.SideTraitor,
	})

	if cp := getCP(t, db, m.planet.ID); cp != 4 {
		t.Errorf("planet CP = %d, want 4 (full impact)", cp)
	}
}

func TestOrbitalPressureCap(t *testing.T) {
	svc, db, m := newTestService(t)
	setCP(t, db, m.planet.ID, 5)
	setCP(t, db, m.spaces[0].ID, -3)
	setCP(t, db, m.spaces[1].ID, -4)

	logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeHeresy30k,
		LocationID:  m.planet.ID,
		WinningSide: models.SideLoyalist,
	})

	// Two hostile space tiles block Secure: capped at 5
	if cp := getCP(t, db, m.planet.ID); cp != 5 {
		t.Errorf("planet CP = %d, want 5 (capped)", cp)
	}
}

func TestCPClamped(t *testing.T) {
	svc, db, m := newTestService(t)
	setCP(t, db, m.spaces[0].ID, 5)

	logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeGothicArmada,
		LocationID:  m.spaces[0].ID,
		WinningSide: models.SideLoyalist,
		IsCrushing:  true,
	})

	if cp := getCP(t, db, m.spaces[0].ID); cp != 6 {
		t.Errorf("space CP = %d, want 6 (clamped)", cp)
	}
}

func TestDeleteBattlesReplaysRemainder(t *testing.T) {
	svc, db, m := newTestService(t)

	first := logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeHeresy30k,
		LocationID:  m.planet.ID,
		WinningSide: models.SideLoyalist,
	})
	logTestBattle(t, svc, LogBattleParams{
		BattleType:  models.BattleTypeLegions,
		LocationID:  m.planet.ID,
		WinningSide: models.SideLoyalist,
	})

	if cp := getCP(t, db, m.planet.ID); cp != 5 {
		t.Fatalf("planet CP = %d, want 5 before deletion", cp)
	}

	if err := svc.DeleteBattles([]string{first.ID}); err != nil {
		t.Fatalf("DeleteBattles: %v", err)
	}

	// Only the legions battle remains after replay
	if cp := getCP(t, db, m.planet.ID); cp != 3 {
		t.Errorf("planet CP = %d, want 3 after replay", cp)
	}

	var count int64
	if err := db.Model(&models.Battle{}).Count(&count).Error; err != nil {
		t.Fatalf("count battles: %v", err)
	}
	if count != 1 {
		t.Errorf("battle count = %d, want 1", count)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	svc, db, m := newTestService(t)

	logTestBattle(t, svc, LogBattleParams{
		BattleType:     models.BattleTypeHeresy30k,
		LocationID:     m.planet.ID,
		WinningSide:    models.SideLoyalist,
		SplashTargetID: &m.spaces[2].ID,
	})

	before := getCP(t, db, m.planet.ID)
	beforeSplash := getCP(t, db, m.spaces[2].ID)

	for i := 0; i < 2; i++ {
		if err := svc.Recalculate(); err != nil {
			t.Fatalf("Recalculate: %v", err)
		}
	}

	if cp := getCP(t, db, m.planet.ID); cp != before {
		t.Errorf("planet CP drifted: %d -> %d", before, cp)
	}
	if cp := getCP(t, db, m.spaces[2].ID); cp != beforeSplash {
		t.Errorf("splash CP drifted: %d -> %d", beforeSplash, cp)
	}
}

func TestCurrentScore(t *testing.T) {
	svc, db, m := newTestService(t)

	// Secure planet (3) + held space (1) for the loyalists, one secure
	// traitor space (2), one contested tile worth nothing.
	setCP(t, db, m.planet.ID, 6)
	setCP(t, db, m.spaces[0].ID, 4)
	setCP(t, db, m.spaces[1].ID, -6)
	setCP(t, db, m.spaces[2].ID, 2)

	score, err := svc.CurrentScore()
	if err != nil {
		t.Fatalf("CurrentScore: %v", err)
	}

	if score.Loyalist != 4 {
		t.Errorf("Loyalist = %d, want 4", score.Loyalist)
	}
	if score.Traitor != 2 {
		t.Errorf("Traitor = %d, want 2", score.Traitor)
	}
	if score.Lead != 2 {
		t.Errorf("Lead = %d, want 2", score.Lead)
	}
}
