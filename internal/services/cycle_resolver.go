package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/mealcycle-backend/internal/data/aggregates"
	"github.com/yungbote/mealcycle-backend/internal/data/repos"
	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

// CycleResolver turns start markers into cycle windows.
type CycleResolver interface {
	// Latest resolves the open cycle. It never fails for an empty store.
	Latest(ctx context.Context) (meals.Cycle, error)
	// ByNumber resolves a historical cycle, bounded by the next cycle's marker when present.
	ByNumber(ctx context.Context, weekNumber int) (meals.Cycle, error)
}

type cycleResolver struct {
	log   *logger.Logger
	meals repos.MealRepo
}

func NewCycleResolver(log *logger.Logger, mealRepo repos.MealRepo) CycleResolver {
	return &cycleResolver{
		log:   log.With("service", "CycleResolver"),
		meals: mealRepo,
	}
}

func (r *cycleResolver) Latest(ctx context.Context) (cycle meals.Cycle, err error) {
	const op = "cycles.latest"
	ctx, span := startSpan(ctx, "CycleResolver.Latest")
	defer func() { endSpan(span, err) }()

	marker, err := r.meals.LatestMarker(dbctx.Background(ctx))
	if err != nil {
		return meals.Cycle{}, aggregates.MapError(op, err)
	}
	if marker == nil {
		r.log.Debug("no cycle marker yet, using fallback window")
	}
	cycle = meals.LatestCycle(marker)
	span.SetAttributes(attribute.Int("cycle.week_number", cycle.WeekNumber))
	return cycle, nil
}

func (r *cycleResolver) ByNumber(ctx context.Context, weekNumber int) (cycle meals.Cycle, err error) {
	const op = "cycles.by_number"
	ctx, span := startSpan(ctx, "CycleResolver.ByNumber", attribute.Int("cycle.week_number", weekNumber))
	defer func() { endSpan(span, err) }()

	// week_number 0 is shared by every non-marker record
	if weekNumber < 1 {
		return meals.Cycle{}, meals.NewError(meals.CodeValidation, op, fmt.Sprintf("week number must be >= 1, got %d", weekNumber), nil)
	}
	markers, err := r.meals.MarkersFor(dbctx.Background(ctx), weekNumber)
	if err != nil {
		return meals.Cycle{}, aggregates.MapError(op, err)
	}
	cycle, err = meals.CycleFromMarkers(weekNumber, markers)
	if err != nil && meals.CodeOf(err).Fatal() {
		r.log.Error("cycle markers are inconsistent", "week_number", weekNumber, "markers", len(markers), "error", err)
	}
	return cycle, err
}
