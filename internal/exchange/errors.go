package exchange

import (
	"errors"
	"fmt"
)

// ErrServerUnreachable wraps every read failure: transport errors and
// non-2xx responses alike.
var ErrServerUnreachable = errors.New("server unreachable")

// MutationKind classifies a failed edit, delete or logout.
type MutationKind int

const (
	// MissingContext means the id or token was absent; no call was made.
	MissingContext MutationKind = iota + 1
	// InvalidInput means client-side validation failed; no call was made.
	InvalidInput
	// Rejected means the server answered non-2xx. Detail holds its text verbatim.
	Rejected
	// Unreachable means the call failed in transport.
	Unreachable
)

// Sentinels for errors.Is matching on a MutationError's kind.
var (
	ErrMissingContext = errors.New("missing context")
	ErrInvalidInput   = errors.New("invalid input")
	ErrRejected       = errors.New("rejected by server")
	ErrUnreachable    = errors.New("connection error")
)

func (k MutationKind) sentinel() error {
	switch k {
	case MissingContext:
		return ErrMissingContext
	case InvalidInput:
		return ErrInvalidInput
	case Rejected:
		return ErrRejected
	case Unreachable:
		return ErrUnreachable
	}
	return nil
}

func (k MutationKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("MutationKind(%d)", int(k))
}

// MutationError is returned by every Executor operation on failure.
type MutationError struct {
	Kind   MutationKind
	Detail string
	Err    error
}

func (e *MutationError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *MutationError) Unwrap() error { return e.Err }

// Is matches the sentinel for e's kind.
func (e *MutationError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
