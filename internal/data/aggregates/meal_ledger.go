package aggregates

import (
	"context"
	"fmt"
	"strings"

	mealrepos "github.com/yungbote/mealcycle-backend/internal/data/repos/meals"
	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
)

const (
	opRecord = "meals.ledger.record"
	opRemove = "meals.ledger.remove"
)

// MealLedger writes meal records and keeps the occurrence counters in step with them.
type MealLedger interface {
	// Record inserts the meal and increments its counter. A start marker without a
	// week number is given max(week_number)+1; an explicit one must exceed it.
	Record(ctx context.Context, meal *meals.Meal, startWeek bool) (*meals.Meal, error)
	// Remove deletes the record under key and decrements its counter.
	Remove(ctx context.Context, key meals.Key) (*meals.Meal, error)
}

type MealLedgerDeps struct {
	BaseDeps
	Meals    mealrepos.MealRepo
	Counters mealrepos.CounterRepo
	Aliases  mealrepos.AliasRepo
}

type mealLedger struct {
	deps     BaseDeps
	meals    mealrepos.MealRepo
	counters mealrepos.CounterRepo
	aliases  mealrepos.AliasRepo
}

func NewMealLedger(deps MealLedgerDeps) MealLedger {
	base := deps.BaseDeps.withDefaults()
	base.Log = base.Log.With("aggregate", "MealLedger")
	return &mealLedger{
		deps:     base,
		meals:    deps.Meals,
		counters: deps.Counters,
		aliases:  deps.Aliases,
	}
}

func (l *mealLedger) Record(ctx context.Context, meal *meals.Meal, startWeek bool) (*meals.Meal, error) {
	if meal == nil {
		return nil, MapError(opRecord, ValidationError("meal is required"))
	}
	if !meal.MealType.Valid() || !meal.Participants.Valid() {
		return nil, MapError(opRecord, ValidationError("meal_type and participants are required"))
	}
	if meal.WeekNumber > 0 && !startWeek {
		return nil, MapError(opRecord, ValidationError("week_number is only allowed on start_week records"))
	}

	// work on a copy so a rolled back attempt leaves the caller's value untouched
	rec := *meal
	err := executeWrite(ctx, l.deps, opRecord, func(dbc dbctx.Context) error {
		if strings.TrimSpace(rec.MealID) == "" {
			id, err := l.resolveMealID(dbc, rec.MealName)
			if err != nil {
				return err
			}
			rec.MealID = id
		}
		if startWeek {
			if err := l.assignWeekNumber(dbc, &rec); err != nil {
				return err
			}
		}

		if err := l.meals.Create(dbc, &rec); err != nil {
			if IsStartWeekConflict(err) {
				return meals.NewError(meals.CodeRetryable, opRecord,
					fmt.Sprintf("week_number %d was claimed by a concurrent start marker", rec.WeekNumber), err)
			}
			if IsUniqueViolation(err) {
				return meals.NewError(meals.CodeDuplicateMeal, opRecord,
					fmt.Sprintf("a %s meal for %s on %s is already recorded", rec.MealType, rec.Participants, rec.Day()), err)
			}
			return err
		}
		return l.counters.Adjust(dbc, rec.MealID, rec.MealName, rec.Participants, 1)
	})
	if err != nil {
		return nil, err
	}
	l.deps.Log.Debug("meal recorded", "timestamp", rec.Timestamp, "participants", rec.Participants, "meal_id", rec.MealID, "week_number", rec.WeekNumber)
	return &rec, nil
}

// assignWeekNumber gives a start marker the next week number, or checks that an
// explicit one is past every existing cycle. Two markers at one timestamp would
// open an empty week, so a marker already at this meal slot blocks another.
func (l *mealLedger) assignWeekNumber(dbc dbctx.Context, rec *meals.Meal) error {
	existing, err := l.meals.MarkerAt(dbc, rec.Timestamp)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Participants == rec.Participants {
			return meals.NewError(meals.CodeDuplicateMeal, opRecord,
				fmt.Sprintf("a %s meal for %s on %s is already recorded", rec.MealType, rec.Participants, rec.Day()), nil)
		}
		return ValidationError(fmt.Sprintf("week %d already starts with the %s meal on %s; only one start_week record per meal slot",
			existing.WeekNumber, rec.MealType, rec.Day()))
	}

	maxWeek, err := l.meals.MaxWeekNumber(dbc)
	if err != nil {
		return err
	}
	if rec.WeekNumber == 0 {
		rec.WeekNumber = maxWeek + 1
		return nil
	}
	if rec.WeekNumber <= maxWeek {
		return ValidationError(fmt.Sprintf("week_number %d must be greater than the latest week %d", rec.WeekNumber, maxWeek))
	}
	return nil
}

// resolveMealID derives the identity from the name and follows an alias if one is registered.
func (l *mealLedger) resolveMealID(dbc dbctx.Context, name string) (string, error) {
	id := meals.DeriveMealID(name)
	if l.aliases == nil {
		return id, nil
	}
	alias, err := l.aliases.Get(dbc, id)
	if err != nil {
		return "", err
	}
	if alias != nil && strings.TrimSpace(alias.Replacement) != "" {
		return alias.Replacement, nil
	}
	return id, nil
}

func (l *mealLedger) Remove(ctx context.Context, key meals.Key) (*meals.Meal, error) {
	if !key.Participants.Valid() {
		return nil, MapError(opRemove, ValidationError(fmt.Sprintf("invalid participants %q", key.Participants)))
	}

	var removed *meals.Meal
	err := executeWrite(ctx, l.deps, opRemove, func(dbc dbctx.Context) error {
		rows, err := l.meals.FindByKey(dbc, key)
		if err != nil {
			return err
		}
		switch len(rows) {
		case 0:
			return meals.NewError(meals.CodeMealNotFound, opRemove, notFoundMessage(key), nil)
		case 1:
		default:
			return meals.NewError(meals.CodeIntegrityViolation, opRemove,
				fmt.Sprintf("found %d records for timestamp %d and %s", len(rows), key.Timestamp, key.Participants), nil)
		}

		n, err := l.meals.DeleteByKey(dbc, key)
		if err != nil {
			return err
		}
		if n == 0 {
			// lost a race with a concurrent delete
			return meals.NewError(meals.CodeMealNotFound, opRemove, notFoundMessage(key), nil)
		}
		removed = rows[0]
		return l.counters.Adjust(dbc, removed.MealID, removed.MealName, removed.Participants, -1)
	})
	if err != nil {
		return nil, err
	}
	l.deps.Log.Debug("meal removed", "timestamp", key.Timestamp, "participants", key.Participants, "meal_id", removed.MealID)
	return removed, nil
}

func notFoundMessage(key meals.Key) string {
	return fmt.Sprintf("no meal recorded for timestamp %d and %s", key.Timestamp, key.Participants)
}
