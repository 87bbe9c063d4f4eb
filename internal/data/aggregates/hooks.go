package aggregates

import (
	"errors"
	"strings"
	"time"

	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/observability"
)

// Retry causes reported through Hooks.IncRetry.
const (
	RetryWeekClaimed = "week_claimed"
	RetryTransient   = "transient"
)

// Hooks receives meal ledger outcomes. op is the short ledger operation
// ("record", "remove"); code is empty when the write committed.
type Hooks interface {
	ObserveWrite(op string, code meals.ErrorCode, dur time.Duration)
	IncDuplicate(op string)
	IncRetry(op, cause string)
}

type noopHooks struct{}

func (noopHooks) ObserveWrite(string, meals.ErrorCode, time.Duration) {}
func (noopHooks) IncDuplicate(string)                                 {}
func (noopHooks) IncRetry(string, string)                             {}

// ledgerOp trims the "meals.ledger." prefix so metric labels stay short.
func ledgerOp(name string) string {
	name = strings.TrimSpace(name)
	if short := strings.TrimPrefix(name, "meals.ledger."); short != "" {
		return short
	}
	return "write"
}

// retryCause tells a lost start week race apart from lock and timeout failures.
func retryCause(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if IsStartWeekConflict(e) {
			return RetryWeekClaimed
		}
	}
	return RetryTransient
}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks creates ledger hooks backed by prometheus metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveWrite(op string, code meals.ErrorCode, dur time.Duration) {
	if h == nil || h.metrics == nil {
		return
	}
	status := string(code)
	if status == "" {
		status = "success"
	}
	h.metrics.ObserveLedgerWrite(op, status, dur)
}

func (h *observabilityHooks) IncDuplicate(op string) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.IncLedgerDuplicate(op)
}

func (h *observabilityHooks) IncRetry(op, cause string) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.IncLedgerRetryable(op, cause)
}
