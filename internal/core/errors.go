package core

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrInUse      = errors.New("in use")
	ErrImportRow  = errors.New("import row rejected")
)

// ValidationError reports malformed input to a create or update.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an operation on a transaction id or category label
// that does not exist.
type NotFoundError struct {
	Kind string // "transaction" or "category"
	Key  string
}

func TransactionNotFound(id int64) *NotFoundError {
	return &NotFoundError{Kind: "transaction", Key: fmt.Sprintf("%d", id)}
}

func CategoryNotFound(label string) *NotFoundError {
	return &NotFoundError{Kind: "category", Key: label}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InUseError blocks removal of a category that transactions still reference.
type InUseError struct {
	Label      string
	References int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("category %q is used by %d transaction(s)", e.Label, e.References)
}

func (e *InUseError) Is(target error) bool { return target == ErrInUse }

// ImportRowError describes one CSV row that was not imported. Row is 1-based.
type ImportRowError struct {
	Row    int
	Reason string
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *ImportRowError) Is(target error) bool { return target == ErrImportRow }
