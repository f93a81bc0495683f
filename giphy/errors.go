package giphy

import (
	"github.com/pkg/errors"
)

// Kinds of search failures, match them with errors.Is.
var (
	ErrTransport         = errors.New("giphy: transport error")
	ErrParse             = errors.New("giphy: could not parse response")
	ErrMalformedResponse = errors.New("giphy: malformed response")
)

// searchError ties a failure kind to its underlying cause. errors.Is matches
// both the kind and anything in the cause chain.
type searchError struct {
	kind  error
	cause error
}

func (e *searchError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *searchError) Is(target error) bool { return target == e.kind }

func (e *searchError) Unwrap() error { return e.cause }

func (e *searchError) Cause() error {
	if e.cause == nil {
		return e.kind
	}
	return e.cause
}

func newError(kind, cause error) error {
	return errors.WithStack(&searchError{kind: kind, cause: cause})
}
