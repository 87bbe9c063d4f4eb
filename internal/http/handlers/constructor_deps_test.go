package handlers

import (
	"testing"

	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func TestNewMealHandler(t *testing.T) {
	h := NewMealHandler(newTestLogger(t), nil)
	if h == nil || h.log == nil {
		t.Fatal("expected non-nil handler with a scoped logger")
	}
}

func TestRegisterValidatorsIsIdempotent(t *testing.T) {
	for i := 0; i < 2; i++ {
		if err := RegisterValidators(); err != nil {
			t.Fatalf("register validators (call %d): %v", i+1, err)
		}
	}
}
