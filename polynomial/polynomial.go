// Package polynomial implements the secret-sharing polynomials used by the
// key ceremony: random degree-(k-1) polynomials over Zq with Schnorr-proven
// coefficient commitments, backup evaluation, backup verification, and
// Lagrange reconstruction.
package polynomial

import (
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/proof"
	"github.com/vocdoni/guardianvote/xerrs"
)

// Coefficient is one term of a guardian's secret polynomial: the secret
// value a_j, its public commitment K_j = g^a_j, and a Schnorr proof of
// knowledge of a_j.
type Coefficient struct {
	Secret     *group.ElementModQ
	Commitment *group.ElementModP
	Proof      *proof.Schnorr
}

// Polynomial is a degree-(k-1) secret-sharing polynomial a_0 + a_1*x + ... +
// a_{k-1}*x^{k-1} mod q. a_0 is the guardian's share of the joint secret;
// the remaining coefficients exist only to let a quorum reconstruct a_0.
type Polynomial struct {
	Coefficients []Coefficient
}

// Generate builds a random polynomial of degree k-1, proving every
// coefficient's commitment against qbar.
func Generate(params *group.Params, k int, qbar *group.ElementModQ) (*Polynomial, error) {
	coeffs := make([]Coefficient, k)
	for j := 0; j < k; j++ {
		a, err := group.RandQNonZero(params)
		if err != nil {
			return nil, err
		}
		commitment := group.GPowP(params, a)
		sp, err := proof.MakeSchnorr(a, commitment, qbar)
		if err != nil {
			return nil, err
		}
		coeffs[j] = Coefficient{Secret: a, Commitment: commitment, Proof: sp}
	}
	return &Polynomial{Coefficients: coeffs}, nil
}

// Commitments returns the public commitments K_0..K_{k-1} in order.
func (p *Polynomial) Commitments() []*group.ElementModP {
	out := make([]*group.ElementModP, len(p.Coefficients))
	for i, c := range p.Coefficients {
		out[i] = c.Commitment
	}
	return out
}

// VerifyCommitments checks every coefficient's Schnorr proof against its own
// commitment.
func (p *Polynomial) VerifyCommitments(qbar *group.ElementModQ) bool {
	for _, c := range p.Coefficients {
		if !c.Proof.Verify(c.Commitment, qbar) {
			return false
		}
	}
	return true
}

// Eval evaluates the polynomial at x: sum a_j * x^j mod q.
func Eval(params *group.Params, coeffs []*group.ElementModQ, x int) *group.ElementModQ {
	result := group.ZeroModQ(params)
	xPow := group.OneModQ(params)
	xElem := group.NewElementModQUncheckedForTest(params, intToBig(x))
	for _, a := range coeffs {
		result = group.APlusBCQ(result, a, xPow)
		xPow = group.MultQ(xPow, xElem)
	}
	return result
}

// Backup computes the share value P(ell) this guardian owes to the guardian
// with sequence order ell.
func (p *Polynomial) Backup(ell int) *group.ElementModQ {
	coeffs := make([]*group.ElementModQ, len(p.Coefficients))
	for i, c := range p.Coefficients {
		coeffs[i] = c.Secret
	}
	params := p.Coefficients[0].Secret.Params()
	return Eval(params, coeffs, ell)
}

// RecoveryPublicKey computes product_j K_j^(ell^j) = g^P(ell) from only the
// public commitments — the public commitment a compensated decryption share
// is proven against when the owner of P is absent.
func RecoveryPublicKey(params *group.Params, ell int, commitments []*group.ElementModP) *group.ElementModP {
	xElem := group.NewElementModQUncheckedForTest(params, intToBig(ell))
	xPow := group.OneModQ(params)
	terms := make([]*group.ElementModP, len(commitments))
	for j, k := range commitments {
		terms[j] = group.PowP(k, xPow)
		xPow = group.MultQ(xPow, xElem)
	}
	return group.MultP(terms...)
}

// VerifyBackup checks g^P(ell) == product_j K_j^(ell^j) given only the
// public commitments, so a recipient can validate a backup without learning
// any other guardian's coefficients.
func VerifyBackup(params *group.Params, backup *group.ElementModQ, ell int, commitments []*group.ElementModP) bool {
	lhs := group.GPowP(params, backup)
	rhs := RecoveryPublicKey(params, ell, commitments)
	return lhs.Equal(rhs)
}

// LagrangeCoefficients computes w_i for every i in present, the present set
// of guardian sequence orders: w_i = product_{j in present, j!=i} j/(j-i) mod q.
func LagrangeCoefficients(params *group.Params, present []int) (map[int]*group.ElementModQ, error) {
	out := make(map[int]*group.ElementModQ, len(present))
	for _, i := range present {
		num := group.OneModQ(params)
		den := group.OneModQ(params)
		for _, j := range present {
			if i == j {
				continue
			}
			jElem := group.NewElementModQUncheckedForTest(params, intToBig(j))
			num = group.MultQ(num, jElem)

			diff := group.AMinusBQ(jElem, group.NewElementModQUncheckedForTest(params, intToBig(i)))
			if diff.IsZero() {
				return nil, xerrs.New("polynomial.LagrangeCoefficients", xerrs.OutOfRange, nil)
			}
			den = group.MultQ(den, diff)
		}
		w, err := group.DivQ(num, den)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// Reconstruct recombines shares[i] (an ElementModP, e.g. alpha^P_l(i) for
// each helper i) using the Lagrange coefficients over present into
// alpha^P_l(0), the effective share for a missing guardian.
func Reconstruct(present []int, shares map[int]*group.ElementModP, coeffs map[int]*group.ElementModQ) *group.ElementModP {
	terms := make([]*group.ElementModP, 0, len(present))
	for _, i := range present {
		terms = append(terms, group.PowP(shares[i], coeffs[i]))
	}
	return group.MultP(terms...)
}
