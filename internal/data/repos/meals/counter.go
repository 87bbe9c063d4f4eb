package meals

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type CounterRepo interface {
	Adjust(dbc dbctx.Context, mealID, mealName string, participants types.Participants, delta int) error
	Get(dbc dbctx.Context, mealID string) (*types.Counter, error)
	ListNamed(dbc dbctx.Context) ([]*types.Counter, error)
}

type counterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCounterRepo(db *gorm.DB, baseLog *logger.Logger) CounterRepo {
	return &counterRepo{
		db:  db,
		log: baseLog.With("repo", "CounterRepo"),
	}
}

func (r *counterRepo) tx(dbc dbctx.Context) *gorm.DB {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(dbc.Ctx)
}

// Adjust moves the total and the participant bucket by delta and records the latest name.
// A +1 on a missing row creates it in the same statement; any other delta on a missing
// row is CodeUntrackedMeal.
func (r *counterRepo) Adjust(dbc dbctx.Context, mealID, mealName string, participants types.Participants, delta int) error {
	const op = "meals.CounterRepo.Adjust"
	bucket, ok := types.BucketColumn(participants)
	if !ok {
		return types.NewError(types.CodeValidation, op, fmt.Sprintf("invalid participants %q", participants), nil)
	}
	if delta == 0 {
		return nil
	}
	if delta == 1 {
		row := &types.Counter{MealID: mealID, MealName: mealName, CountTotal: 1}
		switch participants {
		case types.Both:
			row.CountBoth = 1
		case types.PersonA:
			row.CountPersonA = 1
		case types.PersonB:
			row.CountPersonB = 1
		}
		return r.tx(dbc).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "meal_id"}},
				DoUpdates: clause.Set{
					{Column: clause.Column{Name: "count_total"}, Value: gorm.Expr("meal_counters.count_total + ?", 1)},
					{Column: clause.Column{Name: bucket}, Value: gorm.Expr("meal_counters."+bucket+" + ?", 1)},
					{Column: clause.Column{Name: "meal_name"}, Value: mealName},
				},
			}).
			Create(row).Error
	}

	res := r.tx(dbc).
		Model(&types.Counter{}).
		Where("meal_id = ?", mealID).
		Where("count_total + ? >= 0 AND "+bucket+" + ? >= 0", delta, delta).
		Updates(map[string]any{
			"count_total": gorm.Expr("count_total + ?", delta),
			bucket:        gorm.Expr(bucket+" + ?", delta),
			"meal_name":   mealName,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	existing, err := r.Get(dbc, mealID)
	if err != nil {
		return err
	}
	if existing == nil {
		return types.NewError(types.CodeUntrackedMeal, op, fmt.Sprintf("no counter for meal_id %q", mealID), nil)
	}
	return types.NewError(types.CodeIntegrityViolation, op,
		fmt.Sprintf("adjusting meal_id %q by %d would make %s negative", mealID, delta, bucket), nil)
}

// Get returns nil when the meal has never been counted.
func (r *counterRepo) Get(dbc dbctx.Context, mealID string) (*types.Counter, error) {
	var out []*types.Counter
	if err := r.tx(dbc).
		Where("meal_id = ?", mealID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// ListNamed returns counters with a non-empty name, most frequent first.
func (r *counterRepo) ListNamed(dbc dbctx.Context) ([]*types.Counter, error) {
	out := []*types.Counter{}
	if err := r.tx(dbc).
		Where("meal_name <> ?", "").
		Order("count_total DESC").
		Order("meal_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
