// Package errors provides classified error handling for workplan components.
// Every error is assigned a kind once, where it originates; callers branch on
// the kind with errors.As-based helpers instead of string matching.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for handling and reporting purposes.
type Kind int

const (
	// KindDependency represents an object-store or collaborator failure
	// unrelated to the caller's input. The default for unclassified errors.
	KindDependency Kind = iota
	// KindValidation represents one or more field or business-rule
	// violations in the caller's payload.
	KindValidation
	// KindNotFound represents a referenced client or workload that does not
	// exist at its expected path.
	KindNotFound
	// KindConflict represents an attempted create over an existing client.
	KindConflict
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindDependency:
		return "dependency"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions.
var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidData        = errors.New("invalid data format")
	ErrNotificationFailed = errors.New("notification delivery failed")
)

// ClassifiedError wraps an error with its kind and origin context.
type ClassifiedError struct {
	Kind      Kind
	Err       error
	Component string
	Operation string

	// Violations carries the full field-level error list for
	// KindValidation errors. Nil for other kinds.
	Violations []string
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	if ce.Kind == KindValidation && len(ce.Violations) > 0 {
		return fmt.Sprintf("%s.%s: validation failed: %s",
			ce.Component, ce.Operation, strings.Join(ce.Violations, "; "))
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// ClassifyKind returns the kind of an error. Unclassified errors are treated
// as dependency failures.
func ClassifyKind(err error) Kind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindDependency
}

// IsNotFound reports whether err is classified as not-found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrKeyNotFound) {
		return true
	}
	var ce *ClassifiedError
	return errors.As(err, &ce) && ce.Kind == KindNotFound
}

// IsConflict reports whether err is classified as a create conflict.
func IsConflict(err error) bool {
	var ce *ClassifiedError
	return errors.As(err, &ce) && ce.Kind == KindConflict
}

// IsValidation reports whether err is classified as a validation failure.
func IsValidation(err error) bool {
	var ce *ClassifiedError
	return errors.As(err, &ce) && ce.Kind == KindValidation
}

// IsDependency reports whether err is classified as a dependency failure.
func IsDependency(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyKind(err) == KindDependency
}

// ViolationsOf returns the field-level violation list carried by a validation
// error, or nil if err is not one.
func ViolationsOf(err error) []string {
	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Kind == KindValidation {
		return ce.Violations
	}
	return nil
}

// newClassified creates a classified error with the standard
// "component.operation: action failed: %w" message shape.
func newClassified(kind Kind, err error, component, operation, action string) *ClassifiedError {
	if err == nil {
		err = fmt.Errorf("%s.%s: %s failed", component, operation, action)
	} else {
		err = fmt.Errorf("%s.%s: %s failed: %w", component, operation, action, err)
	}
	return &ClassifiedError{
		Kind:      kind,
		Err:       err,
		Component: component,
		Operation: operation,
	}
}

// WrapDependency wraps an error as a dependency failure with context.
func WrapDependency(err error, component, operation, action string) error {
	return newClassified(KindDependency, err, component, operation, action)
}

// WrapNotFound wraps an error as not-found with context.
func WrapNotFound(err error, component, operation, action string) error {
	return newClassified(KindNotFound, err, component, operation, action)
}

// WrapConflict wraps an error as a conflict with context.
func WrapConflict(err error, component, operation, action string) error {
	return newClassified(KindConflict, err, component, operation, action)
}

// NewValidation creates a validation error carrying the full violation list.
// The list is never truncated: callers report every violation in one pass.
func NewValidation(component, operation string, violations []string) error {
	ce := newClassified(KindValidation, ErrInvalidData, component, operation, "validate payload")
	ce.Violations = violations
	return ce
}

// Detail returns the root-cause message of an error chain: the innermost
// error, which is where the user-facing description lives for classified
// errors.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	for {
		u := errors.Unwrap(err)
		if u == nil {
			return err.Error()
		}
		err = u
	}
}

// IsTransient reports whether an error is worth retrying against the object
// store. Validation, not-found and conflict are terminal by definition;
// dependency failures are assumed transient unless proven otherwise.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind == KindDependency
	}
	if errors.Is(err, ErrKeyNotFound) {
		return false
	}
	return true
}
