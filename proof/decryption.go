package proof

import (
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
)

// Decryption proves that a published share M = alpha^secret was computed
// with the same secret whose public commitment is pub (K_i for an ordinary
// share, or the recovery key g^{P_l(i)} for a compensated share).
type Decryption struct {
	Commitment1 *group.ElementModP // a = g^r
	Commitment2 *group.ElementModP // b = alpha^r
	Challenge   *group.ElementModQ // c = hash(Qbar, alpha, beta, a, b, M)
	Response    *group.ElementModQ // u = r + c*secret
}

// MakeDecryption proves that share = alpha^secret, where pub = g^secret.
func MakeDecryption(alpha, beta *group.ElementModP, secret *group.ElementModQ, pub, share *group.ElementModP, qbar *group.ElementModQ) (*Decryption, error) {
	params := secret.Params()
	r, err := group.RandQ(params)
	if err != nil {
		return nil, err
	}
	a := group.GPowP(params, r)
	b := group.PowP(alpha, r)
	c := hash.Elems(params, qbar, alpha, beta, a, b, share)
	u := group.APlusBCQ(r, c, secret)
	return &Decryption{Commitment1: a, Commitment2: b, Challenge: c, Response: u}, nil
}

// Rehydrate attaches params to every element decoded from JSON.
func (p *Decryption) Rehydrate(params *group.Params) {
	p.Commitment1.SetParams(params)
	p.Commitment2.SetParams(params)
	p.Challenge.SetParams(params)
	p.Response.SetParams(params)
}

// Verify checks the proof given the ciphertext, the claimed share, the
// public commitment to the secret (K_i or a recovery key), and the context.
func (p *Decryption) Verify(alpha, beta *group.ElementModP, pub, share *group.ElementModP, qbar *group.ElementModQ) bool {
	params := pub.Params()
	if !alpha.IsValidResidue() || !beta.IsValidResidue() || !pub.IsValidResidue() || !share.IsValidResidue() {
		return false
	}
	if !p.Commitment1.IsValidResidue() || !p.Commitment2.IsValidResidue() {
		return false
	}
	expectedC := hash.Elems(params, qbar, alpha, beta, p.Commitment1, p.Commitment2, share)
	if !expectedC.Equal(p.Challenge) {
		return false
	}
	lhs1 := group.GPowP(params, p.Response)
	rhs1 := group.MultP(p.Commitment1, group.PowP(pub, p.Challenge))
	if !lhs1.Equal(rhs1) {
		return false
	}
	lhs2 := group.PowP(alpha, p.Response)
	rhs2 := group.MultP(p.Commitment2, group.PowP(share, p.Challenge))
	return lhs2.Equal(rhs2)
}
