package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/mealcycle-backend/internal/data/aggregates"
	"github.com/yungbote/mealcycle-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// InjectedTxRunner is a TxRunner for ledger tests with failure injection.
// With DB set the body runs inside a real transaction, so an injected commit
// failure rolls back everything the body wrote.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin  error
	FailCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failCommit := r.FailCommit
	db := r.DB
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if fn == nil {
		r.inc(&r.CommitCalls)
		return nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	var tx *gorm.DB
	if db != nil {
		tx = db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return tx.Error
		}
		dbc.Tx = tx
	}
	rollback := func() {
		if tx != nil {
			_ = tx.Rollback().Error
		}
		r.inc(&r.RollbackCalls)
	}

	if err := fn(dbc); err != nil {
		rollback()
		return err
	}
	if failCommit != nil {
		rollback()
		return failCommit
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			r.inc(&r.RollbackCalls)
			return err
		}
	}
	r.inc(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) inc(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
