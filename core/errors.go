// Package core — error kinds.
// Stage errors carry a Kind so callers can tell a missing input from a
// failed download without string matching.
package core

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindUnsupportedInput Kind = "unsupported_input"
	KindDecodeFailure    Kind = "decode_failure"
	KindNetworkFailure   Kind = "network_failure"
	KindWriteFailure     Kind = "write_failure"
	KindPartialContent   Kind = "partial_content"
	KindInternal         Kind = "internal"
)

// Error is a kind-tagged error. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf returns an *Error of the given kind. The message is formatted with
// fmt.Errorf, so %w wrapping works.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// E wraps err with a kind and operation. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain,
// or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
