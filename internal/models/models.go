package models

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Battle types recognized by the campaign engine
const (
	BattleTypeHeresy30k    = "heresy30k"
	BattleTypeLegions      = "legions_imperialis"
	BattleTypeTitanicus    = "adeptus_titanicus"
	BattleTypeGothicArmada = "gothic_armada"
)

// Winning sides
const (
	SideLoyalist = "loyalist"
	SideTraitor  = "traitor"
	SideDraw     = "draw"
)

// BattleTypeLabels maps battle type keys to display labels
var BattleTypeLabels = map[string]string{
	BattleTypeHeresy30k:    "Heresy (30k) — Planetary",
	BattleTypeLegions:      "Legions Imperialis — Planetary",
	BattleTypeTitanicus:    "Adeptus Titanicus — Planetary",
	BattleTypeGothicArmada: "Gothic Armada — Void (Space)",
}

// SideLabels maps winning side keys to display labels
var SideLabels = map[string]string{
	SideLoyalist: "Loyalist",
	SideTraitor:  "Traitor",
	SideDraw:     "Draw",
}

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a local player account (self-hosted, no external auth)
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name" gorm:"not null"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate normalizes the email before the ULID hook runs
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return u.BaseModel.BeforeCreate(tx)
}

// Territory is one hex tile on the campaign map. Planets and void (space)
// tiles share the table; CP tracks which side controls the tile.
type Territory struct {
	BaseModel
	Q         int       `json:"q" gorm:"not null;uniqueIndex:idx_territories_qr"`
	R         int       `json:"r" gorm:"not null;uniqueIndex:idx_territories_qr"`
	Name      string    `json:"name" gorm:"not null"`
	IsPlanet  bool      `json:"is_planet" gorm:"not null;default:false"`
	CP        int       `json:"cp" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Battle statuses
const (
	BattleStatusApproved = "approved"
)

// Battle is one logged battle result. Deleting battles triggers a full map
// recalculation by replaying the remaining battles in creation order.
type Battle struct {
	BaseModel
	CreatedByID    string `json:"created_by_id" gorm:"not null"`
	CreatedByEmail string `json:"created_by_email" gorm:"not null"`

	BattleType          string `json:"battle_type" gorm:"not null"`
	LocationTerritoryID string `json:"location_territory_id" gorm:"not null"`

	WinningSide string `json:"winning_side" gorm:"not null"`
	IsCrushing  bool   `json:"is_crushing" gorm:"not null;default:false"`

	// Optional secondary targets: planetary battles may splash an adjacent
	// space tile, void battles may pressure an adjacent planet.
	SplashTargetTerritoryID   *string `json:"splash_target_territory_id"`
	PressureTargetTerritoryID *string `json:"pressure_target_territory_id"`

	Notes  string `json:"notes"`
	Status string `json:"status" gorm:"not null;default:'approved'"`

	// Relationships
	Location  Territory `json:"location,omitzero" gorm:"foreignKey:LocationTerritoryID"`
	CreatedBy *User     `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:SET NULL"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Territory{}, &Battle{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
