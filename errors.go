package kvload

import (
	"errors"
	"fmt"
)

// Stage identifies where within a tick an operation failed.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageExecute Stage = "execute"
)

// OpError wraps a store-related failure from target resolution or command
// execution. Any OpError is treated as a transient connectivity loss and
// triggers a full reconnect; errors of any other type are treated as
// unexpected and only pause the loop briefly.
type OpError struct {
	Kind    OpKind
	Subtype Subtype
	Stage   Stage
	Addr    string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s failed at %s (%s): %v", e.Kind, e.Subtype, e.Stage, e.Addr, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// ExhaustedError reports that every attempt of a bounded retry failed.
// Returned by the connection supervisor once the attempt budget is spent;
// fatal only on the startup path.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

type errClass int

const (
	classNone errClass = iota
	classTransient
	classUnexpected
)

// classify maps a tick error onto the recovery taxonomy. Anything the
// store path returned is transient; the rest is unexpected.
func classify(err error) errClass {
	if err == nil {
		return classNone
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return classTransient
	}
	return classUnexpected
}
