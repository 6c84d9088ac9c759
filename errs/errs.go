// Package errs provides structured error types and helpers for repool packages.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Code identifies an error category produced by the library.
type Code string

const (
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
	// CodeNotFound indicates a missing pool or resource.
	CodeNotFound Code = "not_found"
	// CodeConflict indicates a duplicate registration or concurrent mutation conflict.
	CodeConflict Code = "conflict"
	// CodeUnavailable indicates the component is shutting down and cannot service requests.
	CodeUnavailable Code = "unavailable"
)

// E captures structured error information produced across the repool packages.
type E struct {
	Component string
	Code      Code
	Pool      string
	Message   string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the component and error code.
func New(component string, code Code, opts ...Option) *E {
	e := &E{
		Component: strings.TrimSpace(component),
		Code:      code,
		Pool:      "",
		Message:   "",
		cause:     nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithPool records the pool name the error relates to.
func WithPool(name string) Option {
	trimmed := strings.TrimSpace(name)
	return func(e *E) {
		e.Pool = trimmed
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	component := strings.TrimSpace(e.Component)
	if component == "" {
		component = "unknown"
	}
	parts = append(parts, "component="+component)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.Pool != "" {
		parts = append(parts, "pool="+strconv.Quote(e.Pool))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// CodeOf extracts the error code from err, returning an empty code when err is
// not an envelope produced by this package.
func CodeOf(err error) Code {
	var e *E
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
