// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error
// kinds and human-friendly messages, so callers can tell a malformed filter from
// an expired credential from a rate-limited page fetch.
//
// The package supports wrapping underlying errors while maintaining error kind
// information, and can carry a corrective hint for user-input errors as well as
// the number of records already delivered for partial failures.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// InvalidFilter indicates a filter expression that could not be parsed.
	InvalidFilter Kind = "invalid_filter"
	// MissingArgument indicates a required argument was not provided.
	MissingArgument Kind = "missing_argument"
	// ValidationFailed indicates the service rejected the request (HTTP 400).
	ValidationFailed Kind = "validation_failed"
	// AuthenticationFailed indicates a credential or token problem (HTTP 401/403).
	AuthenticationFailed Kind = "authentication_failed"
	// NotFound indicates the requested model or record does not exist (HTTP 404).
	NotFound Kind = "not_found"
	// RateLimited indicates the service throttled the request (HTTP 429) beyond
	// what the retry policy would absorb.
	RateLimited Kind = "rate_limited"
	// PartialResult indicates an operation aborted after delivering some records.
	PartialResult Kind = "partial_result"
	// RemoteError indicates any other non-success response from the service.
	RemoteError Kind = "remote_error"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	// Hint carries a corrective example for user-input errors.
	Hint string
	// Delivered counts records already obtained before a rate-limit or
	// partial failure, so callers can choose to keep them.
	Delivered int
	Err       error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// WithHint attaches a corrective example and returns the error.
func (e *E) WithHint(hint string) *E {
	e.Hint = hint
	return e
}

// WithDelivered records how many records were obtained before failure.
func (e *E) WithDelivered(n int) *E {
	e.Delivered = n
	return e
}

// IsKind reports whether err is (or wraps) an E of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// DeliveredCount returns the Delivered count carried by err, if any.
func DeliveredCount(err error) (int, bool) {
	var e *E
	if stderrors.As(err, &e) {
		return e.Delivered, e.Kind == RateLimited || e.Kind == PartialResult
	}
	return 0, false
}
