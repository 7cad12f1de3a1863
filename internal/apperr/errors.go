// Package apperr defines the error kinds shared by every store component.
//
// Kinds are sentinel errors; OpError attaches the operation and entity that
// failed so callers can decide what to do without parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource, file or table is missing. Never retried.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks a content-hash collision on import. It is informational:
	// the caller receives the existing entity.
	ErrDuplicate = errors.New("duplicate content")
	// ErrIndexCorruption is returned when the full-text index is inconsistent with
	// its base tables and repair did not help.
	ErrIndexCorruption = errors.New("full-text index corruption")
	// ErrDimensionMismatch is returned when a vector length differs from the
	// dimension declared for its table.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrProviderUnavailable is returned when the embedding provider cannot be reached.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrValidation is returned for malformed input rejected before touching any store.
	ErrValidation = errors.New("invalid input")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// OpError wraps an error with operation context.
type OpError struct {
	Op       string // operation name, e.g. "insert_embedding"
	Kind     error  // one of the sentinel kinds, may be nil
	EntityID string // entity the operation was about, may be empty
	Err      error  // underlying cause
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.EntityID != "" {
		msg += " " + e.EntityID
	}
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", msg, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *OpError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap returns an OpError for op/entityID classified as kind. Returns nil if err is nil.
func Wrap(op string, kind error, entityID string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Kind: kind, EntityID: entityID, Err: err}
}

// NotFound returns an OpError of kind ErrNotFound with no further cause.
func NotFound(op, entityID string) error {
	return &OpError{Op: op, Kind: ErrNotFound, EntityID: entityID}
}

// KindOf returns the first sentinel kind err matches, or nil.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrNotFound,
		ErrDuplicate,
		ErrIndexCorruption,
		ErrDimensionMismatch,
		ErrProviderUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
