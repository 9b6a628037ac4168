package group

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestElementModQArithmetic(t *testing.T) {
	c := qt.New(t)
	p := TestParams()

	a, err := RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	b, err := RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	sum := AddQ(a, b)
	back := AMinusBQ(sum, b)
	c.Assert(back.Equal(a), qt.IsTrue)

	prod := MultQ(a, b)
	c.Assert(prod.Params(), qt.Equals, p)

	quot, err := DivQ(prod, b)
	c.Assert(err, qt.IsNil)
	c.Assert(quot.Equal(a), qt.IsTrue)

	negated := NegateQ(a)
	c.Assert(AddQ(a, negated).IsZero(), qt.IsTrue)
}

func TestElementModPExponentiation(t *testing.T) {
	c := qt.New(t)
	p := TestParams()

	exp, err := RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	g := GModP(p)

	powered := PowP(g, exp)
	c.Assert(powered.IsValidResidue(), qt.IsTrue)

	inv, err := MultInvP(powered)
	c.Assert(err, qt.IsNil)
	c.Assert(MultP(powered, inv).Equal(OneModP(p)), qt.IsTrue)

	quot, err := DivP(powered, powered)
	c.Assert(err, qt.IsNil)
	c.Assert(quot.Equal(OneModP(p)), qt.IsTrue)
}

func TestNewElementModQRejectsOutOfRange(t *testing.T) {
	c := qt.New(t)
	p := TestParams()

	_, err := NewElementModQ(p, p.Q)
	c.Assert(err, qt.IsNotNil)

	_, err = NewElementModQ(p, big.NewInt(-1))
	c.Assert(err, qt.IsNotNil)

	zero, err := NewElementModQ(p, big.NewInt(0))
	c.Assert(err, qt.IsNil)
	c.Assert(zero.IsZero(), qt.IsTrue)

	_, err = NewElementModQNonZero(p, big.NewInt(0))
	c.Assert(err, qt.IsNotNil)
}

func TestElementModPJSONRoundTrip(t *testing.T) {
	c := qt.New(t)
	p := TestParams()

	exp, err := RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	original := PowP(GModP(p), exp)

	data, err := json.Marshal(original)
	c.Assert(err, qt.IsNil)

	var decoded ElementModP
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded.Params(), qt.IsNil)

	decoded.SetParams(p)
	c.Assert(decoded.Equal(original), qt.IsTrue)

	// SetParams is idempotent: calling it again with the same params is a no-op.
	decoded.SetParams(p)
	c.Assert(decoded.Params(), qt.Equals, p)
}

func TestElementModQJSONRoundTrip(t *testing.T) {
	c := qt.New(t)
	p := TestParams()

	original, err := RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	data, err := json.Marshal(original)
	c.Assert(err, qt.IsNil)

	var decoded ElementModQ
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	decoded.SetParams(p)
	c.Assert(decoded.Equal(original), qt.IsTrue)
}
