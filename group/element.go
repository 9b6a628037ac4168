package group

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/vocdoni/guardianvote/types"
	"github.com/vocdoni/guardianvote/xerrs"
)

// ElementModQ is a residue modulo Q — the exponent / scalar group used for
// nonces, secrets, and hash outputs.
type ElementModQ struct {
	params *Params
	v      *big.Int
}

// ElementModP is a residue modulo P — the group Zp* in which ciphertexts and
// public keys live. Elements used as ciphertext components additionally
// satisfy the q-order-subgroup membership test (see IsValidResidue).
type ElementModP struct {
	params *Params
	v      *big.Int
}

// Params returns the parameter set this element was constructed against.
func (e *ElementModQ) Params() *Params { return e.params }

// Params returns the parameter set this element was constructed against.
func (e *ElementModP) Params() *Params { return e.params }

// Int returns the underlying integer. Callers must not mutate it.
func (e *ElementModQ) Int() *big.Int { return e.v }

// Int returns the underlying integer. Callers must not mutate it.
func (e *ElementModP) Int() *big.Int { return e.v }

func (e *ElementModQ) String() string { return e.v.Text(16) }
func (e *ElementModP) String() string { return e.v.Text(16) }

// MarshalJSON encodes the element as a HexBytes string. The element's params
// are not part of the encoding — a whole election shares one *Params, carried
// separately in the election record's constants file — so a value decoded
// with UnmarshalJSON has a nil Params() until SetParams is called.
func (e *ElementModQ) MarshalJSON() ([]byte, error) { return types.HexBytes(e.Bytes()).MarshalJSON() }

// MarshalJSON encodes the element as a HexBytes string. See ElementModQ's
// MarshalJSON for the params caveat.
func (e *ElementModP) MarshalJSON() ([]byte, error) { return types.HexBytes(e.Bytes()).MarshalJSON() }

// UnmarshalJSON decodes a HexBytes string into the element's raw value. The
// result has no Params until SetParams is called.
func (e *ElementModQ) UnmarshalJSON(data []byte) error {
	var h types.HexBytes
	if err := h.UnmarshalJSON(data); err != nil {
		return err
	}
	e.v = new(big.Int).SetBytes(h)
	return nil
}

// UnmarshalJSON decodes a HexBytes string into the element's raw value. The
// result has no Params until SetParams is called.
func (e *ElementModP) UnmarshalJSON(data []byte) error {
	var h types.HexBytes
	if err := h.UnmarshalJSON(data); err != nil {
		return err
	}
	e.v = new(big.Int).SetBytes(h)
	return nil
}

// SetParams attaches params to a value decoded by UnmarshalJSON. It is a
// no-op on a value that already carries params.
func (e *ElementModQ) SetParams(params *Params) {
	if e.params == nil {
		e.params = params
	}
}

// SetParams attaches params to a value decoded by UnmarshalJSON.
func (e *ElementModP) SetParams(params *Params) {
	if e.params == nil {
		e.params = params
	}
}

// Equal reports whether two ElementModQ values hold the same residue.
func (e *ElementModQ) Equal(o *ElementModQ) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.v.Cmp(o.v) == 0
}

// Equal reports whether two ElementModP values hold the same residue.
func (e *ElementModP) Equal(o *ElementModP) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.v.Cmp(o.v) == 0
}

// IsZero reports whether the element is the additive identity.
func (e *ElementModQ) IsZero() bool { return e.v.Sign() == 0 }

// Bytes returns the element's big-endian byte representation, left-padded to
// the parameter set's fixed Q byte length.
func (e *ElementModQ) Bytes() []byte {
	return leftPad(e.v.Bytes(), e.params.QByteLen)
}

// Bytes returns the element's big-endian byte representation, left-padded to
// the parameter set's fixed P byte length.
func (e *ElementModP) Bytes() []byte {
	return leftPad(e.v.Bytes(), e.params.PByteLen)
}

func leftPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// inBounds reports whether 0 <= x < modulus (or 1 <= x < modulus when
// nonZero is set).
func inBounds(x, modulus *big.Int, nonZero bool) bool {
	lo := 0
	if nonZero {
		lo = 1
	}
	return x.Cmp(big.NewInt(int64(lo))) >= 0 && x.Cmp(modulus) < 0
}

// NewElementModQ constructs a strictly validated ElementModQ, requiring
// 0 <= x < Q. It returns xerrs.OutOfRange if the bound fails.
func NewElementModQ(params *Params, x *big.Int) (*ElementModQ, error) {
	if !inBounds(x, params.Q, false) {
		return nil, xerrs.New("group.NewElementModQ", xerrs.OutOfRange, fmt.Errorf("%s not in [0, q)", x))
	}
	return &ElementModQ{params: params, v: new(big.Int).Set(x)}, nil
}

// NewElementModQNonZero is like NewElementModQ but additionally rejects zero.
func NewElementModQNonZero(params *Params, x *big.Int) (*ElementModQ, error) {
	if !inBounds(x, params.Q, true) {
		return nil, xerrs.New("group.NewElementModQNonZero", xerrs.OutOfRange, fmt.Errorf("%s not in [1, q)", x))
	}
	return &ElementModQ{params: params, v: new(big.Int).Set(x)}, nil
}

// NewElementModQUncheckedForTest builds an ElementModQ from x reduced modulo
// Q, with no bounds check and no error return; the result is always in
// [0, Q). Despite its name it is not limited to tests: hash, elgamal,
// polynomial, proof and guardian call it to turn small integers, digests and
// decoded bytes into Zq elements.
func NewElementModQUncheckedForTest(params *Params, x *big.Int) *ElementModQ {
	return &ElementModQ{params: params, v: new(big.Int).Mod(x, params.Q)}
}

// NewElementModP constructs a strictly validated ElementModP, requiring
// 0 <= x < P.
func NewElementModP(params *Params, x *big.Int) (*ElementModP, error) {
	if !inBounds(x, params.P, false) {
		return nil, xerrs.New("group.NewElementModP", xerrs.OutOfRange, fmt.Errorf("%s not in [0, p)", x))
	}
	return &ElementModP{params: params, v: new(big.Int).Set(x)}, nil
}

// NewElementModPNonZero is like NewElementModP but additionally rejects zero.
func NewElementModPNonZero(params *Params, x *big.Int) (*ElementModP, error) {
	if !inBounds(x, params.P, true) {
		return nil, xerrs.New("group.NewElementModPNonZero", xerrs.OutOfRange, fmt.Errorf("%s not in [1, p)", x))
	}
	return &ElementModP{params: params, v: new(big.Int).Set(x)}, nil
}

// NewElementModPUncheckedForTest builds an ElementModP without bounds
// validation, for test harnesses only.
func NewElementModPUncheckedForTest(params *Params, x *big.Int) *ElementModP {
	return &ElementModP{params: params, v: new(big.Int).Mod(x, params.P)}
}

// ZeroModQ returns the additive identity 0 mod Q.
func ZeroModQ(params *Params) *ElementModQ {
	return &ElementModQ{params: params, v: big.NewInt(0)}
}

// OneModQ returns the multiplicative identity 1 mod Q.
func OneModQ(params *Params) *ElementModQ {
	return &ElementModQ{params: params, v: big.NewInt(1)}
}

// OneModP returns the multiplicative identity 1 mod P.
func OneModP(params *Params) *ElementModP {
	return &ElementModP{params: params, v: big.NewInt(1)}
}

// GModP returns the generator G as an ElementModP.
func GModP(params *Params) *ElementModP {
	return &ElementModP{params: params, v: new(big.Int).Set(params.G)}
}

// RandQ returns a uniformly random ElementModQ in [0, Q).
func RandQ(params *Params) (*ElementModQ, error) {
	v, err := rand.Int(rand.Reader, params.Q)
	if err != nil {
		return nil, fmt.Errorf("group.RandQ: %w", err)
	}
	return &ElementModQ{params: params, v: v}, nil
}

// RandQNonZero returns a uniformly random ElementModQ in [1, Q).
func RandQNonZero(params *Params) (*ElementModQ, error) {
	for {
		e, err := RandQ(params)
		if err != nil {
			return nil, err
		}
		if !e.IsZero() {
			return e, nil
		}
	}
}

// IsValidResidue reports whether the element lies in the Q-order subgroup of
// Zp*, i.e. x^Q mod P == 1. Every ciphertext component and public proof
// commitment must satisfy this before any further arithmetic is trusted.
func (e *ElementModP) IsValidResidue() bool {
	if !inBounds(e.v, e.params.P, false) {
		return false
	}
	r := new(big.Int).Exp(e.v, e.params.Q, e.params.P)
	return r.Cmp(big.NewInt(1)) == 0
}

// --- Zq arithmetic -----------------------------------------------------

// AddQ returns the sum of the given elements mod Q.
func AddQ(elems ...*ElementModQ) *ElementModQ {
	params := elems[0].params
	sum := new(big.Int)
	for _, e := range elems {
		sum.Add(sum, e.v)
	}
	sum.Mod(sum, params.Q)
	return &ElementModQ{params: params, v: sum}
}

// AMinusBQ returns a - b mod Q.
func AMinusBQ(a, b *ElementModQ) *ElementModQ {
	d := new(big.Int).Sub(a.v, b.v)
	d.Mod(d, a.params.Q)
	return &ElementModQ{params: a.params, v: d}
}

// MultQ returns the product of the given elements mod Q.
func MultQ(elems ...*ElementModQ) *ElementModQ {
	params := elems[0].params
	prod := big.NewInt(1)
	for _, e := range elems {
		prod.Mul(prod, e.v)
		prod.Mod(prod, params.Q)
	}
	return &ElementModQ{params: params, v: prod}
}

// APlusBCQ returns a + b*c mod Q.
func APlusBCQ(a, b, c *ElementModQ) *ElementModQ {
	bc := new(big.Int).Mul(b.v, c.v)
	sum := new(big.Int).Add(a.v, bc)
	sum.Mod(sum, a.params.Q)
	return &ElementModQ{params: a.params, v: sum}
}

// DivQ returns a / b mod Q (b must be invertible, i.e. nonzero).
func DivQ(a, b *ElementModQ) (*ElementModQ, error) {
	inv := new(big.Int).ModInverse(b.v, a.params.Q)
	if inv == nil {
		return nil, fmt.Errorf("group.DivQ: %s has no inverse mod q", b.v)
	}
	r := new(big.Int).Mul(a.v, inv)
	r.Mod(r, a.params.Q)
	return &ElementModQ{params: a.params, v: r}, nil
}

// NegateQ returns -a mod Q.
func NegateQ(a *ElementModQ) *ElementModQ {
	if a.IsZero() {
		return a
	}
	n := new(big.Int).Sub(a.params.Q, a.v)
	return &ElementModQ{params: a.params, v: n}
}

// --- Zp arithmetic -----------------------------------------------------

// MultP returns the product of the given elements mod P.
func MultP(elems ...*ElementModP) *ElementModP {
	params := elems[0].params
	prod := big.NewInt(1)
	for _, e := range elems {
		prod.Mul(prod, e.v)
		prod.Mod(prod, params.P)
	}
	return &ElementModP{params: params, v: prod}
}

// MultInvP returns the multiplicative inverse of a mod P.
func MultInvP(a *ElementModP) (*ElementModP, error) {
	inv := new(big.Int).ModInverse(a.v, a.params.P)
	if inv == nil {
		return nil, fmt.Errorf("group.MultInvP: %s has no inverse mod p", a.v)
	}
	return &ElementModP{params: a.params, v: inv}, nil
}

// PowP returns base^exp mod P, where exp is an ElementModQ (or any bounded
// exponent — callers pass the raw integer via exp.Int()).
func PowP(base *ElementModP, exp *ElementModQ) *ElementModP {
	r := new(big.Int).Exp(base.v, exp.v, base.params.P)
	return &ElementModP{params: base.params, v: r}
}

// PowPInt returns base^exp mod P for an arbitrary non-negative exponent, used
// internally where the exponent is not itself a Zq element (e.g. Lagrange
// numerators built from small integers).
func PowPInt(base *ElementModP, exp *big.Int) *ElementModP {
	r := new(big.Int).Exp(base.v, exp, base.params.P)
	return &ElementModP{params: base.params, v: r}
}

// DivP returns a / b mod P.
func DivP(a, b *ElementModP) (*ElementModP, error) {
	inv, err := MultInvP(b)
	if err != nil {
		return nil, fmt.Errorf("group.DivP: %w", err)
	}
	return MultP(a, inv), nil
}

// GPowP returns G^exp mod P.
func GPowP(params *Params, exp *ElementModQ) *ElementModP {
	r := new(big.Int).Exp(params.G, exp.v, params.P)
	return &ElementModP{params: params, v: r}
}
