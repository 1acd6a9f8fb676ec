// Package diag holds the engine's cross-cutting error-kind, completion,
// and span types. It sits below lexer/parser/compiler/vm so all four can
// report structured errors without an import cycle.
package diag

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Kind distinguishes the engine's observable error categories.
type Kind string

const (
	KindSyntax    Kind = "SyntaxError"
	KindReference Kind = "ReferenceError"
	KindType      Kind = "TypeError"
	KindRange     Kind = "RangeError"
	KindURI       Kind = "URIError"
	KindAggregate Kind = "AggregateError"
	KindHost      Kind = "HostError"
)

// Error is a language-level error the engine can throw or report to the
// host. It wraps an optional underlying Go error so host-originated
// failures (module resolution, finalizer callbacks) round-trip through
// errors.Is/errors.As.
type Error struct {
	Kind    Kind
	Message string
	Span    Span
	wrapped error
}

// New constructs an Error of the given kind at span.
func New(kind Kind, span Span, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

// Wrap constructs a Host-kind Error that carries an underlying Go error
// unchanged: an opaque container for errors raised by host hooks,
// rethrown as-is.
func Wrap(span Span, err error) *Error {
	return &Error{Kind: KindHost, Message: err.Error(), Span: span, wrapped: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Span)
}

// Unwrap exposes any wrapped host error to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.wrapped }

// Is reports whether target is a diag.Error of the same Kind, so callers
// can write errors.Is(err, diag.KindError(diag.KindReference)).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// KindError returns a sentinel Error usable with errors.Is to test kind
// membership without comparing messages or spans.
func KindError(kind Kind) *Error { return &Error{Kind: kind} }

// Aggregate lists multiple Errors. Nothing in this module constructs one:
// NewAggregate returns a single *Error instead.
type Aggregate struct {
	Errors []*Error
}

// NewAggregate combines errs, dropping nils, with go.uber.org/multierr and
// returns them as one *Error of KindAggregate whose Message joins the
// individual messages and which wraps the combined error. Returns nil if
// no non-nil errors were supplied. It has no callers in this module.
func NewAggregate(errs ...*Error) error {
	var combined error
	n := 0
	for _, e := range errs {
		if e == nil {
			continue
		}
		n++
		combined = multierr.Append(combined, e)
	}
	if n == 0 {
		return nil
	}
	all := make([]*Error, 0, n)
	for _, e := range errs {
		if e != nil {
			all = append(all, e)
		}
	}
	return &Error{Kind: KindAggregate, Message: combined.Error(), wrapped: combined}
}
