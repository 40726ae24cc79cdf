package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindPersistence Kind = "persistence"
	KindUpstream    Kind = "upstream"
)

// Error is the single error type crossing package boundaries. Code is a
// short machine-readable reason ("slot_taken", "invalid_date").
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ======================================================
// CONSTRUCTORS
// ======================================================

func Validation(code string) error {
	return &Error{Kind: KindValidation, Code: code}
}

func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Code: entity + "_not_found"}
}

func Conflict(code string) error {
	return &Error{Kind: KindConflict, Code: code}
}

func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Code: op, Err: err}
}

func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Code: op, Err: err}
}

// ======================================================
// INSPECTION
// ======================================================

// KindOf returns the kind of the first *Error in the chain, or "" when
// err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
