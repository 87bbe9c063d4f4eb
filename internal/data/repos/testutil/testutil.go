package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yungbote/mealcycle-backend/internal/data/db"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
	"gorm.io/gorm"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	dbSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a fresh, bootstrapped in-memory sqlite database private to the test.
// The pool is capped at one connection, so code under test must keep using the
// transaction handle it is given rather than reaching for the root DB mid-transaction.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := fmt.Sprintf("file:mealcycle_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	svc, err := db.NewService(db.Config{Driver: db.DriverSQLite, DSN: name, MaxOpenConns: 1}, Logger(tb))
	if err != nil {
		tb.Fatalf("failed to init test db: %v", err)
	}
	tb.Cleanup(svc.Close)

	if err := db.Bootstrap(svc.DB()); err != nil {
		tb.Fatalf("bootstrap test db: %v", err)
	}
	return svc.DB()
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
