package xerrs

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestOfMatchesKind(t *testing.T) {
	c := qt.New(t)
	err := New("group.NewElementModQ", OutOfRange, nil)
	c.Assert(Of(err, OutOfRange), qt.IsTrue)
	c.Assert(Of(err, InvalidProof), qt.IsFalse)
}

func TestOfMatchesThroughWrapping(t *testing.T) {
	c := qt.New(t)
	inner := New("proof.Verify", InvalidProof, nil)
	wrapped := fmt.Errorf("outer: %w", inner)
	c.Assert(Of(wrapped, InvalidProof), qt.IsTrue)
}

func TestIsComparesKindNotMessage(t *testing.T) {
	c := qt.New(t)
	a := New("op-a", StateViolation, nil)
	b := New("op-b", StateViolation, nil)
	c.Assert(errors.Is(a, b), qt.IsTrue)

	c2 := New("op-c", InsufficientQuorum, nil)
	c.Assert(errors.Is(a, c2), qt.IsFalse)
}

func TestErrorStringIncludesCause(t *testing.T) {
	c := qt.New(t)
	cause := errors.New("boom")
	err := New("decryption.CombineSelection", InsufficientQuorum, cause)
	c.Assert(err.Error(), qt.Contains, "boom")
	c.Assert(err.Error(), qt.Contains, "insufficient_quorum")
	c.Assert(errors.Unwrap(err), qt.Equals, cause)
}

func TestErrorStringWithoutCause(t *testing.T) {
	c := qt.New(t)
	err := New("group.NewElementModQ", OutOfRange, nil)
	c.Assert(err.Error(), qt.Equals, "group.NewElementModQ: out_of_range")
}
