// Package econtext assembles the CiphertextElectionContext: the aggregate
// of guardian count, quorum, joint public key, commitment hash, manifest
// hash, and the two domain-separation hashes (crypto-base-hash Q and
// crypto-extended-base-hash Q̄) that every proof in the system is bound to.
package econtext

import (
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
)

// BaseHash (Q) depends only on the configured election parameters, so it is
// available before any guardian has run the key ceremony.
func BaseHash(params *group.Params) *group.ElementModQ {
	return hash.Elems(params, params.P.Text(16), params.Q.Text(16), params.G.Text(16), string(params.Variant))
}

// CommitmentHash binds the context to the exact ordered set of guardian
// coefficient commitments.
func CommitmentHash(params *group.Params, commitmentsBySequence [][]*group.ElementModP) *group.ElementModQ {
	args := make([]any, 0, len(commitmentsBySequence)*2)
	for _, commitments := range commitmentsBySequence {
		for _, c := range commitments {
			args = append(args, c)
		}
	}
	return hash.Elems(params, args...)
}

// ExtendedBaseHash (Qbar) mixes the base hash with the commitment hash; it
// is the Fiat-Shamir domain separator used by every ballot and decryption
// proof, so it can only exist once the key ceremony has published its
// commitments.
func ExtendedBaseHash(baseHash, commitmentHash *group.ElementModQ) *group.ElementModQ {
	return hash.Elems(baseHash.Params(), baseHash, commitmentHash)
}

// Context is the full published election context.
type Context struct {
	N                int
	K                int
	JointKey         *group.ElementModP
	CommitmentHash   *group.ElementModQ
	ManifestHash     *group.ElementModQ
	BaseHash         *group.ElementModQ
	ExtendedBaseHash *group.ElementModQ
}

// Rehydrate attaches params to every element decoded from JSON.
func (c *Context) Rehydrate(params *group.Params) {
	c.JointKey.SetParams(params)
	c.CommitmentHash.SetParams(params)
	if c.ManifestHash != nil {
		c.ManifestHash.SetParams(params)
	}
	c.BaseHash.SetParams(params)
	c.ExtendedBaseHash.SetParams(params)
}
