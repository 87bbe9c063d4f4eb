package repos

import (
	"github.com/yungbote/mealcycle-backend/internal/data/repos/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type MealRepo = meals.MealRepo
type CounterRepo = meals.CounterRepo
type AliasRepo = meals.AliasRepo

func NewMealRepo(db *gorm.DB, baseLog *logger.Logger) MealRepo { return meals.NewMealRepo(db, baseLog) }
func NewCounterRepo(db *gorm.DB, baseLog *logger.Logger) CounterRepo {
	return meals.NewCounterRepo(db, baseLog)
}
func NewAliasRepo(db *gorm.DB, baseLog *logger.Logger) AliasRepo {
	return meals.NewAliasRepo(db, baseLog)
}

// Set bundles every table repo so wiring code can pass them around together.
type Set struct {
	Meals    MealRepo
	Counters CounterRepo
	Aliases  AliasRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Meals:    NewMealRepo(db, baseLog),
		Counters: NewCounterRepo(db, baseLog),
		Aliases:  NewAliasRepo(db, baseLog),
	}
}
