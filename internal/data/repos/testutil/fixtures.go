package testutil

import (
	"context"
	"testing"

	types "github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"gorm.io/gorm"
)

// SeedMeal inserts a record straight into the meals table, bypassing the counter.
func SeedMeal(tb testing.TB, ctx context.Context, tx *gorm.DB, in types.NewMealInput) *types.Meal {
	tb.Helper()
	m, err := in.Build()
	if err != nil {
		tb.Fatalf("build meal: %v", err)
	}
	if m.MealID == "" {
		m.MealID = types.DeriveMealID(m.MealName)
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed meal: %v", err)
	}
	return m
}

// SeedMarker inserts a start marker with an explicit week number at a raw timestamp.
func SeedMarker(tb testing.TB, ctx context.Context, tx *gorm.DB, timestamp int64, weekNumber int) *types.Meal {
	tb.Helper()
	m := &types.Meal{
		Timestamp:    timestamp,
		Participants: types.Both,
		WeekNumber:   weekNumber,
		MealType:     types.Lunch,
		MealName:     "marker",
		MealID:       types.DeriveMealID("marker"),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed marker: %v", err)
	}
	return m
}
