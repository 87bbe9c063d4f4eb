package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "ledger.write"
	}
	short := ledgerOp(op)
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	code := writeErrorCode(mapped)
	switch code {
	case meals.CodeDuplicateMeal:
		deps.Hooks.IncDuplicate(short)
	case meals.CodeRetryable:
		deps.Hooks.IncRetry(short, retryCause(err))
	}
	if code.Fatal() {
		deps.Log.Error("ledger write hit inconsistent state", "op", op, "error", mapped)
	}
	deps.Hooks.ObserveWrite(short, code, time.Since(start))
	return mapped
}

// writeErrorCode is the meal error code a failed write reports, or "" on success.
func writeErrorCode(err error) meals.ErrorCode {
	if err == nil {
		return ""
	}
	if code := meals.CodeOf(err); code != "" {
		return code
	}
	if code := meals.CodeOf(MapError("ledger.status", err)); code != "" {
		return code
	}
	return meals.CodeInternal
}
