package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yungbote/mealcycle-backend/internal/data/db"
	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("ledger validation")
	// ErrInvariant indicates stored state that breaks a ledger rule.
	ErrInvariant = errors.New("ledger invariant violation")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("ledger retryable")
)

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

func InvariantError(msg string) error {
	return errors.Join(ErrInvariant, errors.New(strings.TrimSpace(msg)))
}

func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// IsUniqueViolation reports whether err is the engine rejecting a duplicate key.
// Errors are matched on the pgconn code or the driver message; a translated
// gorm.ErrDuplicatedKey is accepted too.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed")
}

// IsStartWeekConflict reports whether err is a unique violation on the start week
// index rather than on the record key. Postgres names the index; sqlite names
// the indexed column.
func IsStartWeekConflict(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == "23505" && pgErr.ConstraintName == db.StartWeekIndex
	}
	if !IsUniqueViolation(err) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, db.StartWeekIndex) || strings.Contains(msg, "meals.week_number")
}

// MapError maps infrastructure failures onto meal error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var mErr *meals.Error
	if errors.As(err, &mErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return meals.Wrap(meals.CodeValidation, op, err)
	case errors.Is(err, ErrInvariant):
		return meals.Wrap(meals.CodeIntegrityViolation, op, err)
	case errors.Is(err, ErrRetryable):
		return meals.Wrap(meals.CodeRetryable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return meals.Wrap(meals.CodeMealNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return meals.Wrap(meals.CodeRetryable, op, err)
	case IsStartWeekConflict(err):
		return meals.Wrap(meals.CodeRetryable, op, err)
	case IsUniqueViolation(err):
		return meals.Wrap(meals.CodeDuplicateMeal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "40001", "40P01", "55P03":
			return meals.Wrap(meals.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return meals.Wrap(meals.CodeRetryable, op, err)
	default:
		return meals.Wrap(meals.CodeInternal, op, err)
	}
}
