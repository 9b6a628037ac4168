package proof

import (
	"github.com/vocdoni/guardianvote/elgamal"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
)

// Constant proves that ciphertext (alpha, beta) encrypts a known constant k
// (typically N, a contest's number_elected) under aggregate nonce R, without
// revealing R. It is the same Chaum–Pedersen equality-of-discrete-logs proof
// as Schnorr, applied to beta/g^k instead of a plain public key.
type Constant struct {
	Commitment1 *group.ElementModP // a = g^w
	Commitment2 *group.ElementModP // b = K^w
	Challenge   *group.ElementModQ // c = hash(Qbar, alpha, beta, a, b)
	Response    *group.ElementModQ // u = w + c*R mod q
}

// MakeConstant proves c = Encrypt(k, r, pub) for the claimed constant k.
func MakeConstant(c *elgamal.Ciphertext, constant int, r *group.ElementModQ, pub *group.ElementModP, qbar *group.ElementModQ) (*Constant, error) {
	params := r.Params()
	w, err := group.RandQ(params)
	if err != nil {
		return nil, err
	}
	a := group.GPowP(params, w)
	b := group.PowP(pub, w)
	ch := hash.Elems(params, qbar, c.Alpha, c.Beta, a, b)
	u := group.APlusBCQ(w, ch, r)
	return &Constant{Commitment1: a, Commitment2: b, Challenge: ch, Response: u}, nil
}

// Rehydrate attaches params to every element decoded from JSON.
func (p *Constant) Rehydrate(params *group.Params) {
	p.Commitment1.SetParams(params)
	p.Commitment2.SetParams(params)
	p.Challenge.SetParams(params)
	p.Response.SetParams(params)
}

// Verify checks the proof against the claimed constant, public key, and
// context.
func (p *Constant) Verify(c *elgamal.Ciphertext, constant int, pub *group.ElementModP, qbar *group.ElementModQ) bool {
	params := pub.Params()
	if !c.Alpha.IsValidResidue() || !c.Beta.IsValidResidue() {
		return false
	}
	if !p.Commitment1.IsValidResidue() || !p.Commitment2.IsValidResidue() {
		return false
	}
	expectedC := hash.Elems(params, qbar, c.Alpha, c.Beta, p.Commitment1, p.Commitment2)
	if !expectedC.Equal(p.Challenge) {
		return false
	}

	lhs1 := group.GPowP(params, p.Response)
	rhs1 := group.MultP(p.Commitment1, group.PowP(c.Alpha, p.Challenge))
	if !lhs1.Equal(rhs1) {
		return false
	}

	gk := group.GPowP(params, group.NewElementModQUncheckedForTest(params, intToBig(constant)))
	gkInv, err := group.MultInvP(gk)
	if err != nil {
		return false
	}
	betaOverGk := group.MultP(c.Beta, gkInv)
	lhs2 := group.PowP(pub, p.Response)
	rhs2 := group.MultP(p.Commitment2, group.PowP(betaOverGk, p.Challenge))
	return lhs2.Equal(rhs2)
}
