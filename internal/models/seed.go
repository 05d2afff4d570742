package models

import (
	"fmt"

	"gorm.io/gorm"
)

// defaultMapRadius is the hex radius of the seeded campaign map
const defaultMapRadius = 4

// defaultPlanets maps axial coordinates to named planets on the seeded map.
// Every other tile inside the radius is a void (space) tile.
var defaultPlanets = map[[2]int]string{
	{0, 0}:  "Terra (Anchor)",
	{2, -1}: "Cthonia",
	{-2, 1}: "Isstvan System",
	{1, 2}:  "Paramar",
	{-3, 0}: "Beta-Garmon",
	{0, -3}: "Molech",
}

// SeedDefaultMap inserts the default hex map if no territories exist.
// Idempotent: a populated territories table is left untouched.
func SeedDefaultMap(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Territory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for q := -defaultMapRadius; q <= defaultMapRadius; q++ {
			r1 := max(-defaultMapRadius, -q-defaultMapRadius)
			r2 := min(defaultMapRadius, -q+defaultMapRadius)
			for r := r1; r <= r2; r++ {
				name, isPlanet := defaultPlanets[[2]int{q, r}]
				if !isPlanet {
					name = voidName(q, r)
				}
				t := Territory{Q: q, R: r, Name: name, IsPlanet: isPlanet}
				if err := tx.Create(&t).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func voidName(q, r int) string {
	return fmt.Sprintf("Void %d,%d", q, r)
}
