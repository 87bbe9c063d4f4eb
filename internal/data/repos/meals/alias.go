package meals

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type AliasRepo interface {
	Upsert(dbc dbctx.Context, alias *types.Alias) error
	Get(dbc dbctx.Context, mealID string) (*types.Alias, error)
	List(dbc dbctx.Context) ([]*types.Alias, error)
}

type aliasRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAliasRepo(db *gorm.DB, baseLog *logger.Logger) AliasRepo {
	return &aliasRepo{
		db:  db,
		log: baseLog.With("repo", "AliasRepo"),
	}
}

func (r *aliasRepo) Upsert(dbc dbctx.Context, alias *types.Alias) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if alias == nil {
		return nil
	}
	return tx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"replacement"}),
		}).
		Create(alias).Error
}

func (r *aliasRepo) Get(dbc dbctx.Context, mealID string) (*types.Alias, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var out []*types.Alias
	if err := tx.WithContext(dbc.Ctx).
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

func (r *aliasRepo) List(dbc dbctx.Context) ([]*types.Alias, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.Alias{}
	if err := tx.WithContext(dbc.Ctx).
		Order("meal_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
