// Package apperr carries the service-wide error taxonomy. Business
// rejections (missing entities, violated stock invariants, illegal state
// transitions, bad alert configuration) are typed so handlers can map them
// to HTTP status codes; everything else is Internal and the caller may
// retry the whole operation.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: product, warehouse, inventory row, reservation or
	// alert does not exist. Reported, never retried internally.
	KindNotFound
	// KindInvariant: insufficient available stock, exceeded capacity,
	// negative occupancy, set below reserved. No partial mutation commits.
	KindInvariant
	// KindStateTransition: operation on a reservation outside RESERVED,
	// or deactivating a non-empty warehouse.
	KindStateTransition
	// KindConfig: malformed alert rule or request parameters rejected at
	// configuration time.
	KindConfig
	// KindInternal: persistence or ledger write failure.
	KindInternal
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Invariant(format string, args ...any) error {
	return &Error{Kind: KindInvariant, Msg: fmt.Sprintf(format, args...)}
}

func StateTransition(format string, args ...any) error {
	return &Error{Kind: KindStateTransition, Msg: fmt.Sprintf(format, args...)}
}

func Config(format string, args ...any) error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the taxonomy kind of err, or KindUnknown for errors that
// did not originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
