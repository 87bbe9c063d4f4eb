package meals

import (
	"gorm.io/gorm"

	types "github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type MealRepo interface {
	Create(dbc dbctx.Context, meal *types.Meal) error
	GetByKey(dbc dbctx.Context, key types.Key) (*types.Meal, error)
	FindByKey(dbc dbctx.Context, key types.Key) ([]*types.Meal, error)
	DeleteByKey(dbc dbctx.Context, key types.Key) (int64, error)
	ListRange(dbc dbctx.Context, from, to int64) ([]*types.Meal, error)
	LatestMarker(dbc dbctx.Context) (*types.Meal, error)
	MarkersFor(dbc dbctx.Context, weekNumber int) ([]*types.Meal, error)
	MarkerAt(dbc dbctx.Context, timestamp int64) (*types.Meal, error)
	MaxWeekNumber(dbc dbctx.Context) (int, error)
	ParticipantsByMealID(dbc dbctx.Context, mealID string) ([]types.Participants, error)
}

type mealRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMealRepo(db *gorm.DB, baseLog *logger.Logger) MealRepo {
	return &mealRepo{
		db:  db,
		log: baseLog.With("repo", "MealRepo"),
	}
}

func (r *mealRepo) tx(dbc dbctx.Context) *gorm.DB {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(dbc.Ctx)
}

// Create inserts without any existence check; a key collision surfaces as the
// engine's unique violation.
func (r *mealRepo) Create(dbc dbctx.Context, meal *types.Meal) error {
	if meal == nil {
		return nil
	}
	return r.tx(dbc).Create(meal).Error
}

// GetByKey returns nil when no record matches.
func (r *mealRepo) GetByKey(dbc dbctx.Context, key types.Key) (*types.Meal, error) {
	var out []*types.Meal
	if err := r.tx(dbc).
		Where("timestamp = ? AND participants = ?", key.Timestamp, key.Participants).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// FindByKey returns every match so callers can detect a broken primary key.
func (r *mealRepo) FindByKey(dbc dbctx.Context, key types.Key) ([]*types.Meal, error) {
	out := []*types.Meal{}
	if err := r.tx(dbc).
		Where("timestamp = ? AND participants = ?", key.Timestamp, key.Participants).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mealRepo) DeleteByKey(dbc dbctx.Context, key types.Key) (int64, error) {
	res := r.tx(dbc).
		Where("timestamp = ? AND participants = ?", key.Timestamp, key.Participants).
		Delete(&types.Meal{})
	return res.RowsAffected, res.Error
}

// ListRange returns records with from <= timestamp < to, oldest first.
func (r *mealRepo) ListRange(dbc dbctx.Context, from, to int64) ([]*types.Meal, error) {
	out := []*types.Meal{}
	if to <= from {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp ASC").
		Order("participants ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LatestMarker is the newest start marker past the bootstrap cycle (week_number > 1), or nil.
func (r *mealRepo) LatestMarker(dbc dbctx.Context) (*types.Meal, error) {
	var out []*types.Meal
	if err := r.tx(dbc).
		Where("week_number > ?", 1).
		Order("timestamp DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// MarkersFor returns the start markers numbered weekNumber or weekNumber+1, newest first.
func (r *mealRepo) MarkersFor(dbc dbctx.Context, weekNumber int) ([]*types.Meal, error) {
	out := []*types.Meal{}
	if err := r.tx(dbc).
		Where("week_number >= ? AND week_number < ?", weekNumber, weekNumber+2).
		Order("timestamp DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkerAt returns the start marker recorded at timestamp for either participant, or nil.
func (r *mealRepo) MarkerAt(dbc dbctx.Context, timestamp int64) (*types.Meal, error) {
	var out []*types.Meal
	if err := r.tx(dbc).
		Where("timestamp = ? AND week_number > ?", timestamp, 0).
		Order("week_number ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *mealRepo) MaxWeekNumber(dbc dbctx.Context) (int, error) {
	var maxWeek int
	if err := r.tx(dbc).
		Model(&types.Meal{}).
		Select("COALESCE(MAX(week_number), 0)").
		Scan(&maxWeek).Error; err != nil {
		return 0, err
	}
	return maxWeek, nil
}

func (r *mealRepo) ParticipantsByMealID(dbc dbctx.Context, mealID string) ([]types.Participants, error) {
	out := []types.Participants{}
	if err := r.tx(dbc).
		Model(&types.Meal{}).
		Where("meal_id = ?", mealID).
		Pluck("participants", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
