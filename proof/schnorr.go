// Package proof implements the non-interactive zero-knowledge proofs
// attached to every key-ceremony commitment, ballot selection, contest sum,
// and decryption share. Every proof mixes a caller-supplied domain-separation
// hash into its Fiat–Shamir challenge: ballot and decryption proofs use the
// crypto-extended-base-hash Q̄, while key-ceremony coefficient proofs use the
// crypto-base-hash Q, since Q̄ does not exist yet at Join. A proof made under
// one such value never verifies under another.
package proof

import (
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
)

// Schnorr is a proof of knowledge of s such that K = g^s.
type Schnorr struct {
	Commitment *group.ElementModP // h = g^r
	Challenge  *group.ElementModQ // c = hash(Qbar, K, h)
	Response   *group.ElementModQ // u = r + c*s mod q
}

// MakeSchnorr proves knowledge of secret s with public key k = g^s, binding
// the proof to qbar.
func MakeSchnorr(s *group.ElementModQ, k *group.ElementModP, qbar *group.ElementModQ) (*Schnorr, error) {
	params := s.Params()
	r, err := group.RandQ(params)
	if err != nil {
		return nil, err
	}
	h := group.GPowP(params, r)
	c := hash.Elems(params, qbar, k, h)
	u := group.APlusBCQ(r, c, s)
	return &Schnorr{Commitment: h, Challenge: c, Response: u}, nil
}

// Rehydrate attaches params to every element decoded from JSON.
func (p *Schnorr) Rehydrate(params *group.Params) {
	p.Commitment.SetParams(params)
	p.Challenge.SetParams(params)
	p.Response.SetParams(params)
}

// Verify checks the proof against claimed public key k and context qbar.
func (p *Schnorr) Verify(k *group.ElementModP, qbar *group.ElementModQ) bool {
	params := k.Params()
	if !k.IsValidResidue() || !p.Commitment.IsValidResidue() {
		return false
	}
	expectedC := hash.Elems(params, qbar, k, p.Commitment)
	if !expectedC.Equal(p.Challenge) {
		return false
	}
	lhs := group.GPowP(params, p.Response)
	rhs := group.MultP(p.Commitment, group.PowP(k, p.Challenge))
	return lhs.Equal(rhs)
}
