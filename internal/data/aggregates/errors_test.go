package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yungbote/mealcycle-backend/internal/data/db"
	repotest "github.com/yungbote/mealcycle-backend/internal/data/repos/testutil"
	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want meals.ErrorCode
	}{
		{name: "validation", err: ValidationError("bad input"), want: meals.CodeValidation},
		{name: "invariant", err: InvariantError("broken"), want: meals.CodeIntegrityViolation},
		{name: "not found", err: gorm.ErrRecordNotFound, want: meals.CodeMealNotFound},
		{name: "translated duplicate", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: meals.CodeDuplicateMeal},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}, want: meals.CodeDuplicateMeal},
		{name: "sqlite unique message", err: errors.New("UNIQUE constraint failed: meals.timestamp, meals.participants"), want: meals.CodeDuplicateMeal},
		{name: "pg start week index", err: &pgconn.PgError{Code: "23505", ConstraintName: db.StartWeekIndex}, want: meals.CodeRetryable},
		{name: "pg primary key", err: &pgconn.PgError{Code: "23505", ConstraintName: "meals_pkey"}, want: meals.CodeDuplicateMeal},
		{name: "sqlite start week index", err: errors.New("UNIQUE constraint failed: meals.week_number"), want: meals.CodeRetryable},
		{name: "pg serialization", err: &pgconn.PgError{Code: "40001"}, want: meals.CodeRetryable},
		{name: "sqlite busy", err: errors.New("database is locked"), want: meals.CodeRetryable},
		{name: "canceled", err: context.Canceled, want: meals.CodeRetryable},
		{name: "unknown", err: errors.New("disk on fire"), want: meals.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("op", tc.err)
			if !meals.IsCode(got, tc.want) {
				t.Fatalf("expected %s, got %q (%v)", tc.want, meals.CodeOf(got), got)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("mapped error should keep the cause reachable")
			}
		})
	}
}

func TestMapError_PassthroughMealError(t *testing.T) {
	in := meals.NewError(meals.CodeUntrackedMeal, "op", "no counter", nil)
	out := MapError("other", fmt.Errorf("wrapped: %w", in))
	if !meals.IsCode(out, meals.CodeUntrackedMeal) {
		t.Fatalf("expected passthrough of coded error, got %v", out)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatalf("nil is not a violation")
	}
	if !IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "meals_pkey"`)) {
		t.Fatalf("expected postgres message to match")
	}
	if IsUniqueViolation(errors.New("no such table: meals")) {
		t.Fatalf("unrelated error must not match")
	}
}

func TestIsStartWeekConflictAgainstStore(t *testing.T) {
	gdb := repotest.DB(t)
	ctx := context.Background()
	repotest.SeedMarker(t, ctx, gdb, 1000, 3)

	weekErr := gdb.WithContext(ctx).Create(&meals.Meal{
		Timestamp: 2000, Participants: meals.Both, WeekNumber: 3, MealType: meals.Lunch, MealName: "x", MealID: "x",
	}).Error
	if weekErr == nil {
		t.Fatalf("expected the store to reject a second marker for week 3")
	}
	if !IsStartWeekConflict(weekErr) {
		t.Fatalf("expected a start week conflict, got %v", weekErr)
	}

	keyErr := gdb.WithContext(ctx).Create(&meals.Meal{
		Timestamp: 1000, Participants: meals.Both, MealType: meals.Lunch, MealName: "y", MealID: "y",
	}).Error
	if !IsUniqueViolation(keyErr) || IsStartWeekConflict(keyErr) {
		t.Fatalf("expected a key violation only, got %v", keyErr)
	}

	// ordinary records share week_number 0 freely
	for _, ts := range []int64{3000, 4000} {
		if err := gdb.WithContext(ctx).Create(&meals.Meal{
			Timestamp: ts, Participants: meals.Both, MealType: meals.Dinner, MealName: "z", MealID: "z",
		}).Error; err != nil {
			t.Fatalf("plain record at %d: %v", ts, err)
		}
	}
}
