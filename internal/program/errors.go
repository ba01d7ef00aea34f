package program

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a ValidationError.
type ErrorCode string

const (
	EmptyName         ErrorCode = "empty_name"
	EmptySelection    ErrorCode = "empty_selection"
	UnknownExercise   ErrorCode = "unknown_exercise"
	InvalidDuration   ErrorCode = "invalid_duration"
	InvalidRepetition ErrorCode = "invalid_repetition"
	InvalidCycleCount ErrorCode = "invalid_cycle_count"
)

// ValidationError reports bad program or exercise input. Nothing is ever
// partially applied when one is returned.
type ValidationError struct {
	Code   ErrorCode
	Field  string
	Detail string
}

func newError(code ErrorCode, field, detail string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Detail: detail}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// HasCode reports whether err is a ValidationError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == code
}

// IsValidation reports whether err is any ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
