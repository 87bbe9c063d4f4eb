package aggregates

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
)

// TxRunner provides the transaction boundary for ledger writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db     *gorm.DB
	tracer trace.Tracer
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
// Each transaction is one span, marked committed or rolled back.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{
		db:     db,
		tracer: otel.Tracer("github.com/yungbote/mealcycle-backend/internal/data/aggregates"),
	}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) (err error) {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return meals.NewError(meals.CodeInternal, "ledger.tx", "transaction runner has nil db", nil)
	}

	ctx, span := r.tracer.Start(ctx, "MealLedger.tx",
		trace.WithAttributes(attribute.String("db.system", r.db.Dialector.Name())),
	)
	defer func() {
		if err != nil {
			span.SetAttributes(attribute.String("ledger.tx.outcome", "rollback"))
			if code := writeErrorCode(err); code != "" {
				span.SetAttributes(attribute.String("meal.error_code", string(code)))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("ledger.tx.outcome", "commit"))
		}
		span.End()
	}()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
