package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a violation.
type ErrorKind string

const (
	KindSchema         ErrorKind = "schema"
	KindType           ErrorKind = "type"
	KindEnum           ErrorKind = "enum"
	KindPattern        ErrorKind = "pattern"
	KindInvalidPattern ErrorKind = "invalid_pattern"
	KindRequired       ErrorKind = "required"
	KindDepth          ErrorKind = "depth"

	// Kinds produced outside the keyword engine.
	KindDecode     ErrorKind = "decode"
	KindDuplicate  ErrorKind = "duplicate"
	KindConstraint ErrorKind = "constraint"
	KindInternal   ErrorKind = "internal"
)

// Document reports whether the kind describes a whole input rather than a location in it.
func (k ErrorKind) Document() bool {
	switch k {
	case KindDecode, KindDuplicate, KindInternal:
		return true
	}
	return false
}

// ValidationError is a single violation found during validation.
type ValidationError struct {
	Path    string    `json:"path"`    // Location of the offending value, "" for the root
	Kind    ErrorKind `json:"kind"`    // Category of the failure
	Message string    `json:"message"` // Human-readable reason
}

// Error renders the violation as "path: message".
// Document-level kinds have no location and render the message alone.
func (e *ValidationError) Error() string {
	if e.Kind.Document() && e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// Aggregate wraps violations into an *AggregateError, or returns nil when there are none.
func Aggregate(violations []ValidationError) error {
	if len(violations) == 0 {
		return nil
	}
	errs := make([]error, len(violations))
	for i := range violations {
		errs[i] = &violations[i]
	}
	return &AggregateError{Errors: errs}
}
