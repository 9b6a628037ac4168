// Package elgamal implements the exponential-ElGamal cryptosystem used for
// every selection ciphertext, plus a hashed-ElGamal envelope for bulk
// payloads (contest extended data, key-ceremony backups) that exceed a
// single scalar.
package elgamal

import (
	"math/big"

	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/xerrs"
)

// Ciphertext is an ElGamal pair (alpha, beta) = (g^R, K^R * g^m).
type Ciphertext struct {
	Alpha *group.ElementModP
	Beta  *group.ElementModP
}

// KeyPair is a secret/public ElGamal pair (s, g^s).
type KeyPair struct {
	SecretKey *group.ElementModQ
	PublicKey *group.ElementModP
}

// KeyPairFromSecret builds a KeyPair from a caller-chosen secret. Secrets 0
// and 1 are rejected: 0 yields the identity public key and 1 yields the
// generator itself, both of which leak the secret on sight.
func KeyPairFromSecret(s *group.ElementModQ) (*KeyPair, error) {
	if s.IsZero() || s.Int().Cmp(big.NewInt(1)) == 0 {
		return nil, xerrs.New("elgamal.KeyPairFromSecret", xerrs.OutOfRange, nil)
	}
	return &KeyPair{SecretKey: s, PublicKey: group.GPowP(s.Params(), s)}, nil
}

// Encrypt builds (g^R, K^R * g^m) for plaintext counter m under nonce R and
// public key K. R=0 is rejected: it produces a ciphertext anyone can decrypt
// without the secret key.
func Encrypt(m int, r *group.ElementModQ, k *group.ElementModP) (*Ciphertext, error) {
	if r.IsZero() {
		return nil, xerrs.New("elgamal.Encrypt", xerrs.OutOfRange, nil)
	}
	params := r.Params()
	alpha := group.GPowP(params, r)
	kr := group.PowP(k, r)
	gm := group.GPowP(params, mAsElementModQ(params, m))
	beta := group.MultP(kr, gm)
	return &Ciphertext{Alpha: alpha, Beta: beta}, nil
}

func mAsElementModQ(params *group.Params, m int) *group.ElementModQ {
	return group.NewElementModQUncheckedForTest(params, big.NewInt(int64(m)))
}

// DecryptKnownSecret recovers the plaintext counter from c using the secret
// key s, via the given DiscreteLog cache.
func DecryptKnownSecret(dlog *DiscreteLog, c *Ciphertext, s *group.ElementModQ) (int, error) {
	asInv, err := group.MultInvP(group.PowP(c.Alpha, s))
	if err != nil {
		return 0, err
	}
	gm := group.MultP(c.Beta, asInv)
	return dlog.Discover(gm)
}

// DecryptKnownNonce recovers the plaintext counter from c using the nonce R
// under public key K, rather than the secret key — used by the prover to
// check its own output without secret-key access.
func DecryptKnownNonce(dlog *DiscreteLog, c *Ciphertext, k *group.ElementModP, r *group.ElementModQ) (int, error) {
	krInv, err := group.MultInvP(group.PowP(k, r))
	if err != nil {
		return 0, err
	}
	gm := group.MultP(c.Beta, krInv)
	return dlog.Discover(gm)
}

// Rehydrate attaches params to a Ciphertext decoded from JSON, whose elements
// otherwise carry no Params.
func (c *Ciphertext) Rehydrate(params *group.Params) {
	c.Alpha.SetParams(params)
	c.Beta.SetParams(params)
}

// Add homomorphically adds ciphertexts via component-wise multiplication in
// Zp. The result decrypts (under the same key) to the sum of the inputs'
// plaintexts.
func Add(cs ...*Ciphertext) *Ciphertext {
	alphas := make([]*group.ElementModP, len(cs))
	betas := make([]*group.ElementModP, len(cs))
	for i, c := range cs {
		alphas[i] = c.Alpha
		betas[i] = c.Beta
	}
	return &Ciphertext{Alpha: group.MultP(alphas...), Beta: group.MultP(betas...)}
}
