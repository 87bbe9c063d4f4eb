package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/mealcycle-backend/internal/data/aggregates"
	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
)

// HooksRecorder captures ledger hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Writes     []WriteEvent
	Duplicates []string
	Retries    []RetryEvent
}

type WriteEvent struct {
	Op       string
	Code     meals.ErrorCode
	Duration time.Duration
}

type RetryEvent struct {
	Op    string
	Cause string
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveWrite(op string, code meals.ErrorCode, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Writes = append(h.Writes, WriteEvent{Op: op, Code: code, Duration: dur})
}

func (h *HooksRecorder) IncDuplicate(op string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Duplicates = append(h.Duplicates, op)
}

func (h *HooksRecorder) IncRetry(op, cause string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, RetryEvent{Op: op, Cause: cause})
}

// LastStatus returns the code of the most recent write, "success" for a commit,
// or "" if nothing was observed.
func (h *HooksRecorder) LastStatus() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Writes) == 0 {
		return ""
	}
	if code := h.Writes[len(h.Writes)-1].Code; code != "" {
		return string(code)
	}
	return "success"
}
