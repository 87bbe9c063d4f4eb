package db

import (
	"fmt"

	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"gorm.io/gorm"
)

// StartWeekIndex keeps week_number unique across start markers. Rows with
// week_number 0 are ordinary records and stay outside it.
const StartWeekIndex = "idx_meals_start_week"

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&meals.Meal{},
		&meals.Counter{},
		&meals.Alias{},
	)
}

// EnsureMealIndexes adds the secondary indexes the cycle and range queries lean on.
// Both dialects accept IF NOT EXISTS, so this is safe on every start.
func EnsureMealIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_meals_timestamp ON meals(timestamp);`).Error; err != nil {
		return fmt.Errorf("create idx_meals_timestamp: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_meal_counters_total ON meal_counters(count_total);`).Error; err != nil {
		return fmt.Errorf("create idx_meal_counters_total: %w", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ` + StartWeekIndex + ` ON meals(week_number) WHERE week_number > 0;`).Error; err != nil {
		return fmt.Errorf("create %s: %w", StartWeekIndex, err)
	}
	return nil
}

// Bootstrap creates tables and indexes if absent.
func Bootstrap(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureMealIndexes(db)
}
