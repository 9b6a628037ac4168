package nonces

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/guardianvote/group"
)

func seed(c *qt.C) *group.ElementModQ {
	p := group.TestParams()
	s, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	return s
}

func TestSequenceIsDeterministic(t *testing.T) {
	c := qt.New(t)
	s := seed(c)

	a := New(s, "contest-1")
	b := New(s, "contest-1")
	c.Assert(a.At(0).Equal(b.At(0)), qt.IsTrue)
	c.Assert(a.At(5).Equal(b.At(5)), qt.IsTrue)
}

func TestSequenceHeaderSeparatesDerivations(t *testing.T) {
	c := qt.New(t)
	s := seed(c)

	a := New(s, "contest-1")
	b := New(s, "contest-2")
	c.Assert(a.At(0).Equal(b.At(0)), qt.IsFalse)
}

func TestSequenceSliceMatchesAt(t *testing.T) {
	c := qt.New(t)
	s := seed(c)
	seq := New(s)

	elems := seq.Slice(2, 5)
	c.Assert(elems, qt.HasLen, 3)
	for i, e := range elems {
		c.Assert(e.Equal(seq.At(2+i)), qt.IsTrue)
	}
}

func TestPeelerMatchesAt(t *testing.T) {
	c := qt.New(t)
	s := seed(c)
	seq := New(s, "header")
	p := seq.Peel()

	for i := 0; i < 4; i++ {
		c.Assert(p.Next().Equal(seq.At(i)), qt.IsTrue)
	}
}
