package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/mealcycle-backend/internal/data/aggregates"
	"github.com/yungbote/mealcycle-backend/internal/data/repos"
	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/ctxutil"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type MealService interface {
	StoreMeal(ctx context.Context, in meals.NewMealInput) (*meals.Meal, error)
	DeleteMeal(ctx context.Context, key meals.Key) error
	GetMeal(ctx context.Context, key meals.Key) (*meals.Meal, error)
	// GetWeek returns the latest cycle when weekNumber is nil.
	GetWeek(ctx context.Context, weekNumber *int) (*WeekView, error)
	ListRange(ctx context.Context, window meals.Window) ([]*meals.Meal, error)
	GetMealCounts(ctx context.Context) ([]meals.MealCount, error)
	GetMealNames(ctx context.Context) ([]string, error)
	GetOccurrences(ctx context.Context, mealID string) (meals.Occurrences, error)
	InsertAlias(ctx context.Context, mealID, replacement string) error
	ListAliases(ctx context.Context) (map[string]string, error)
}

// WeekView is a resolved cycle with its records in ascending timestamp order.
type WeekView struct {
	Cycle meals.Cycle
	Meals []*meals.Meal
}

type MealServiceDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Ledger aggregates.MealLedger
	Repos  repos.Set
	Cycles CycleResolver
	Cache  ReadCache
}

type mealService struct {
	db     *gorm.DB
	log    *logger.Logger
	ledger aggregates.MealLedger
	repos  repos.Set
	cycles CycleResolver
	cache  ReadCache
}

func NewMealService(deps MealServiceDeps) MealService {
	serviceLog := deps.Log.With("service", "MealService")
	cache := deps.Cache
	if cache == nil {
		cache = NoopCache()
	}
	cycles := deps.Cycles
	if cycles == nil {
		cycles = NewCycleResolver(deps.Log, deps.Repos.Meals)
	}
	return &mealService{
		db:     deps.DB,
		log:    serviceLog,
		ledger: deps.Ledger,
		repos:  deps.Repos,
		cycles: cycles,
		cache:  cache,
	}
}

func (s *mealService) StoreMeal(ctx context.Context, in meals.NewMealInput) (out *meals.Meal, err error) {
	ctx, span := startSpan(ctx, "MealService.StoreMeal",
		attribute.String("meal.type", string(in.MealType)),
		attribute.String("meal.participants", string(in.Participants)),
	)
	defer func() { endSpan(span, err) }()

	meal, err := in.Build()
	if err != nil {
		return nil, err
	}
	out, err = s.ledger.Record(ctx, meal, in.StartWeek)
	if err != nil {
		if !meals.IsCode(err, meals.CodeDuplicateMeal) {
			s.log.Warn("store meal failed", append(ctxutil.LogFields(ctx), "error", err)...)
		}
		return nil, err
	}
	s.invalidate(ctx)
	return out, nil
}

func (s *mealService) DeleteMeal(ctx context.Context, key meals.Key) (err error) {
	ctx, span := startSpan(ctx, "MealService.DeleteMeal",
		attribute.Int64("meal.timestamp", key.Timestamp),
		attribute.String("meal.participants", string(key.Participants)),
	)
	defer func() { endSpan(span, err) }()

	if _, err = s.ledger.Remove(ctx, key); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *mealService) GetMeal(ctx context.Context, key meals.Key) (*meals.Meal, error) {
	const op = "meals.get"
	meal, err := s.repos.Meals.GetByKey(dbctx.Background(ctx), key)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if meal == nil {
		return nil, meals.NewError(meals.CodeMealNotFound, op,
			fmt.Sprintf("no meal recorded for timestamp %d and %s", key.Timestamp, key.Participants), nil)
	}
	return meal, nil
}

func (s *mealService) GetWeek(ctx context.Context, weekNumber *int) (view *WeekView, err error) {
	ctx, span := startSpan(ctx, "MealService.GetWeek")
	defer func() { endSpan(span, err) }()

	var cycle meals.Cycle
	if weekNumber == nil {
		cycle, err = s.cycles.Latest(ctx)
	} else {
		cycle, err = s.cycles.ByNumber(ctx, *weekNumber)
	}
	if err != nil {
		return nil, err
	}
	rows, err := s.ListRange(ctx, cycle.Window)
	if err != nil {
		return nil, err
	}
	return &WeekView{Cycle: cycle, Meals: rows}, nil
}

func (s *mealService) ListRange(ctx context.Context, window meals.Window) ([]*meals.Meal, error) {
	rows, err := s.repos.Meals.ListRange(dbctx.Background(ctx), window.Start, window.End)
	if err != nil {
		return nil, aggregates.MapError("meals.list_range", err)
	}
	return rows, nil
}

func (s *mealService) GetMealCounts(ctx context.Context) ([]meals.MealCount, error) {
	var cached []meals.MealCount
	if s.cacheGet(ctx, cacheKeyCounts, &cached) {
		return cached, nil
	}

	counters, err := s.repos.Counters.ListNamed(dbctx.Background(ctx))
	if err != nil {
		return nil, aggregates.MapError("meals.counts", err)
	}
	out := make([]meals.MealCount, 0, len(counters))
	for _, c := range counters {
		out = append(out, c.Projection())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	s.cacheSet(ctx, cacheKeyCounts, out)
	return out, nil
}

func (s *mealService) GetMealNames(ctx context.Context) ([]string, error) {
	var cached []string
	if s.cacheGet(ctx, cacheKeyNames, &cached) {
		return cached, nil
	}

	counters, err := s.repos.Counters.ListNamed(dbctx.Background(ctx))
	if err != nil {
		return nil, aggregates.MapError("meals.names", err)
	}
	seen := make(map[string]struct{}, len(counters))
	out := make([]string, 0, len(counters))
	for _, c := range counters {
		if _, ok := seen[c.MealName]; ok {
			continue
		}
		seen[c.MealName] = struct{}{}
		out = append(out, c.MealName)
	}
	sort.Strings(out)
	s.cacheSet(ctx, cacheKeyNames, out)
	return out, nil
}

// GetOccurrences recomputes the breakdown from the records themselves and
// reports drift against the counter row.
func (s *mealService) GetOccurrences(ctx context.Context, mealID string) (occ meals.Occurrences, err error) {
	const op = "meals.occurrences"
	ctx, span := startSpan(ctx, "MealService.GetOccurrences", attribute.String("meal.id", mealID))
	defer func() { endSpan(span, err) }()

	mealID = strings.TrimSpace(mealID)
	if mealID == "" {
		return meals.Occurrences{}, meals.NewError(meals.CodeValidation, op, "meal_id is required", nil)
	}
	dbc := dbctx.Background(ctx)
	parts, err := s.repos.Meals.ParticipantsByMealID(dbc, mealID)
	if err != nil {
		return meals.Occurrences{}, aggregates.MapError(op, err)
	}
	occ = meals.Tally(mealID, parts)

	counter, err := s.repos.Counters.Get(dbc, mealID)
	if err != nil {
		s.log.Warn("occurrence counter lookup failed", "meal_id", mealID, "error", err)
		return occ, nil
	}
	if !occ.Matches(counter) {
		s.log.Error("occurrence counter drifted from records", "meal_id", mealID, "records", occ, "counter", counter)
	}
	return occ, nil
}

func (s *mealService) InsertAlias(ctx context.Context, mealID, replacement string) error {
	const op = "meals.alias.insert"
	mealID = strings.TrimSpace(mealID)
	replacement = strings.TrimSpace(replacement)
	if mealID == "" || replacement == "" {
		return meals.NewError(meals.CodeValidation, op, "meal_id and replacement are required", nil)
	}
	if mealID == replacement {
		return meals.NewError(meals.CodeValidation, op, "replacement must differ from meal_id", nil)
	}
	if err := s.repos.Aliases.Upsert(dbctx.Background(ctx), &meals.Alias{MealID: mealID, Replacement: replacement}); err != nil {
		return aggregates.MapError(op, err)
	}
	s.log.Info("alias stored", "meal_id", mealID, "replacement", replacement)
	return nil
}

func (s *mealService) ListAliases(ctx context.Context) (map[string]string, error) {
	rows, err := s.repos.Aliases.List(dbctx.Background(ctx))
	if err != nil {
		return nil, aggregates.MapError("meals.alias.list", err)
	}
	out := make(map[string]string, len(rows))
	for _, a := range rows {
		out[a.MealID] = a.Replacement
	}
	return out, nil
}

func (s *mealService) cacheGet(ctx context.Context, key string, dst any) bool {
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn("read cache get failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (s *mealService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.log.Warn("read cache set failed", "key", key, "error", err)
	}
}

// invalidate runs after commit; a stale entry only lives until its TTL.
func (s *mealService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cacheKeyCounts, cacheKeyNames); err != nil {
		s.log.Warn("read cache invalidation failed", "error", err)
	}
}
