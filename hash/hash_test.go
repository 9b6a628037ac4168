package hash

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/guardianvote/group"
)

func TestElemsDeterministic(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()

	a := Elems(p, "ballot-1", 3, []byte{0x01, 0x02})
	b := Elems(p, "ballot-1", 3, []byte{0x01, 0x02})
	c.Assert(a.Equal(b), qt.IsTrue)
}

func TestElemsDistinguishesArguments(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()

	c.Assert(Elems(p, "a", "b").Equal(Elems(p, "a", "c")), qt.IsFalse)
	c.Assert(Elems(p, "a", "b").Equal(Elems(p, "ab")), qt.IsFalse)
	c.Assert(Elems(p, 1, 2).Equal(Elems(p, 2, 1)), qt.IsFalse)
}

func TestElemsOverElementArguments(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()

	q1, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	q2, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	c.Assert(Elems(p, q1).Equal(Elems(p, q1)), qt.IsTrue)
	c.Assert(Elems(p, q1).Equal(Elems(p, q2)), qt.IsFalse)

	pe := group.GModP(p)
	c.Assert(Elems(p, pe).Equal(Elems(p, pe)), qt.IsTrue)
}

func TestElemsRejectsUnsupportedType(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	c.Assert(func() { Elems(p, struct{}{}) }, qt.PanicMatches, "hash.Elems: unsupported argument type.*")
}
