// Package errs defines the failure taxonomy of the matching pipeline.
// Every error surfaced by a pipeline component carries a Kind so callers
// can distinguish "fix the input", "fix the request" and "try later"
// without string matching.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// Extraction failures.
	KindUnsupportedEncoding Kind = "unsupported_encoding"
	KindUnreadablePDF       Kind = "unreadable_pdf"
	KindEmptyDocument       Kind = "empty_document"

	// Upstream completion-service failures.
	KindUpstreamTimeout     Kind = "upstream_timeout"
	KindUpstreamRejected    Kind = "upstream_rejected"
	KindUpstreamUnavailable Kind = "upstream_unavailable"

	// Validation failures.
	KindMalformedCompletion Kind = "malformed_completion"

	// Anything outside the taxonomy above.
	KindInternal Kind = "internal"
)

// Error is a pipeline failure with a classified kind and a human-readable
// detail message. The wrapped cause, if any, is reachable via errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal when err was not produced
// by the pipeline taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
