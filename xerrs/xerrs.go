// Package xerrs defines the error kinds shared across the election core.
// Cryptographic primitives never panic or fail loudly on bad input: they
// return a zero value and let the caller decide policy, using errors.Is
// against the Kind below rather than matching on message text.
package xerrs

import (
	"errors"
	"fmt"
)

// Kind classifies an error without relying on its message text.
type Kind string

const (
	// OutOfRange is returned when a scalar lies outside its group's valid interval.
	OutOfRange Kind = "out_of_range"
	// NotInSubgroup is returned when a claimed group element fails the x^q=1 test.
	NotInSubgroup Kind = "not_in_subgroup"
	// InvalidProof is returned when a proof's algebraic check fails.
	InvalidProof Kind = "invalid_proof"
	// BallotInvalid is returned when selection counts, sums, or hashes are
	// inconsistent with the manifest.
	BallotInvalid Kind = "ballot_invalid"
	// StateViolation is returned for re-cast/re-spoil, skipped ceremony phases,
	// or duplicate announcements.
	StateViolation Kind = "state_violation"
	// InsufficientQuorum is returned when fewer than k guardians are present
	// at decryption time.
	InsufficientQuorum Kind = "insufficient_quorum"
	// VerificationFailed is returned when a guardian flags a received backup
	// as invalid; the ceremony must run the challenge sub-protocol.
	VerificationFailed Kind = "verification_failed"
	// EncodingError is returned when padded extended data exceeds capacity.
	EncodingError Kind = "encoding_error"
)

// Error is a typed, wrapped error carrying the operation and the Kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, &xerrs.Error{Kind: xerrs.InvalidProof}) by wrapping
// the kind in a bare Error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New builds an *Error for the given operation, kind, and wrapped cause.
// cause may be nil.
func New(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// Of reports whether err (or anything it wraps) carries the given Kind.
func Of(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
