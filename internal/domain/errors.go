// Package domain holds the entities, ports and error taxonomy shared by every
// layer of the matching service.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrSchemaInvalid       = errors.New("schema invalid")
	ErrConfiguration       = errors.New("configuration error")
	ErrPersistence         = errors.New("persistence error")
	ErrInternal            = errors.New("internal error")
)

// Error pairs a taxonomy sentinel with a message that is safe to return to
// clients. Field names the offending request field, if any. RetryAfter is
// set on rate-limit errors.
type Error struct {
	Kind       error
	Message    string
	Field      string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the sentinel to errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds a client-safe error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewFieldError reports a request-shape problem on a single field.
func NewFieldError(field, message string) error {
	return &Error{Kind: ErrInvalidArgument, Message: message, Field: field}
}

// PublicError extracts the client-safe part of err, if it carries one.
func PublicError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
