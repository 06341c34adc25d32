package tsstat

import (
	"errors"
	"fmt"
)

// Reason classifies an invalid input or option.
type Reason string

const (
	TooShort            Reason = "too_short"
	NonFinite           Reason = "non_finite"
	WrongDimensionality Reason = "wrong_dimensionality"
	LengthMismatch      Reason = "length_mismatch"
	Empty               Reason = "empty"
	NotNumeric          Reason = "not_numeric"
	InvalidOption       Reason = "invalid_option"
	MissingOption       Reason = "missing_option"
	UnsupportedOption   Reason = "unsupported_option"
	InvalidAlpha        Reason = "invalid_alpha"
)

// InvalidInputError reports a precondition that failed before any numerical
// routine ran.
type InvalidInputError struct {
	Test   TestID
	Reason Reason
	Detail string
}

func (e *InvalidInputError) Error() string {
	if e.Test == "" {
		return fmt.Sprintf("invalid input (%s): %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: invalid input (%s): %s", e.Test, e.Reason, e.Detail)
}

// Is matches another InvalidInputError whose non-empty fields agree, so
// errors.Is(err, ErrTooShort) holds for every too-short failure.
func (e *InvalidInputError) Is(target error) bool {
	t, ok := target.(*InvalidInputError)
	if !ok {
		return false
	}
	return (t.Reason == "" || t.Reason == e.Reason) && (t.Test == "" || t.Test == e.Test)
}

// UnknownTestError is returned when a test identifier does not belong to the
// category it was dispatched to.
type UnknownTestError struct {
	Category Category
	Test     string
}

func (e *UnknownTestError) Error() string {
	if e.Test == "" {
		return fmt.Sprintf("unknown category %q", e.Category)
	}
	return fmt.Sprintf("unknown %s test %q", e.Category, e.Test)
}

func (e *UnknownTestError) Is(target error) bool {
	t, ok := target.(*UnknownTestError)
	return ok && (t.Category == "" || t.Category == e.Category) && (t.Test == "" || t.Test == e.Test)
}

// ComputationError wraps a failure of the underlying numerical routine,
// including a recovered panic.
type ComputationError struct {
	Test TestID
	Err  error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: computation failed: %v", e.Test, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

func (e *ComputationError) Is(target error) bool {
	t, ok := target.(*ComputationError)
	return ok && t.Err == nil && (t.Test == "" || t.Test == e.Test)
}

// MalformedResultError is returned when a routine's output cannot be turned
// into a consistent Result.
type MalformedResultError struct {
	Test   TestID
	Detail string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("%s: malformed result: %s", e.Test, e.Detail)
}

func (e *MalformedResultError) Is(target error) bool {
	t, ok := target.(*MalformedResultError)
	return ok && (t.Test == "" || t.Test == e.Test)
}

// UndecidableError is returned when a valid result carries nothing a verdict
// can be derived from at the requested alpha.
type UndecidableError struct {
	Test   TestID
	Detail string
}

func (e *UndecidableError) Error() string {
	return fmt.Sprintf("%s: undecidable: %s", e.Test, e.Detail)
}

func (e *UndecidableError) Is(target error) bool {
	t, ok := target.(*UndecidableError)
	return ok && (t.Test == "" || t.Test == e.Test)
}

// Sentinels for errors.Is.
var (
	ErrTooShort            = &InvalidInputError{Reason: TooShort}
	ErrNonFinite           = &InvalidInputError{Reason: NonFinite}
	ErrWrongDimensionality = &InvalidInputError{Reason: WrongDimensionality}
	ErrLengthMismatch      = &InvalidInputError{Reason: LengthMismatch}
	ErrEmpty               = &InvalidInputError{Reason: Empty}
	ErrNotNumeric          = &InvalidInputError{Reason: NotNumeric}
	ErrInvalidOption       = &InvalidInputError{Reason: InvalidOption}
	ErrMissingOption       = &InvalidInputError{Reason: MissingOption}
	ErrUnsupportedOption   = &InvalidInputError{Reason: UnsupportedOption}
	ErrInvalidAlpha        = &InvalidInputError{Reason: InvalidAlpha}

	ErrInvalidInput    = &InvalidInputError{}
	ErrUnknownTest     = &UnknownTestError{}
	ErrComputation     = &ComputationError{}
	ErrMalformedResult = &MalformedResultError{}
	ErrUndecidable     = &UndecidableError{}
)

// ReasonOf returns the reason of an InvalidInputError in err's chain.
func ReasonOf(err error) (Reason, bool) {
	var in *InvalidInputError
	if errors.As(err, &in) {
		return in.Reason, true
	}
	return "", false
}

func invalid(test TestID, reason Reason, format string, args ...any) error {
	return &InvalidInputError{Test: test, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
