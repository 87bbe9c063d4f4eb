package meals

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies meal store failures so callers can branch without string matching.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeDuplicateMeal      ErrorCode = "duplicate_meal"
	CodeMealNotFound       ErrorCode = "meal_not_found"
	CodeCycleNotFound      ErrorCode = "cycle_not_found"
	CodeUntrackedMeal      ErrorCode = "untracked_meal"
	CodeIntegrityViolation ErrorCode = "integrity_violation"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Fatal reports whether the code signals corrupted or inconsistent stored state.
// These are never expected in correct operation.
func (c ErrorCode) Fatal() bool {
	switch c {
	case CodeUntrackedMeal, CodeIntegrityViolation, CodeInternal:
		return true
	default:
		return false
	}
}

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates err with a code, keeping it reachable through errors.Unwrap.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code ErrorCode) bool {
	var mErr *Error
	if !errors.As(err, &mErr) {
		return false
	}
	return mErr.Code == code
}

func CodeOf(err error) ErrorCode {
	var mErr *Error
	if !errors.As(err, &mErr) {
		return ""
	}
	return mErr.Code
}
