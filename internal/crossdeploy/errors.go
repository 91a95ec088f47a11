package crossdeploy

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures. Configuration and deployment errors are
// fatal; the others are logged and the run continues.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindDeployment    Kind = "deployment"
	KindOperational   Kind = "operational"
	KindRelay         Kind = "relay"
	KindTimeout       Kind = "timeout"
)

// Error is a failure of one pipeline operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
