package proof

import (
	"github.com/vocdoni/guardianvote/elgamal"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
	"github.com/vocdoni/guardianvote/xerrs"
)

// branch holds one side of the OR-proof: commitments (a, b), the branch's
// own challenge share c, and response u.
type branch struct {
	A *group.ElementModP
	B *group.ElementModP
	C *group.ElementModQ
	U *group.ElementModQ
}

// Disjunctive proves, without revealing which, that a ciphertext encrypts 0
// or 1 under nonce R: c0.C + c1.C == the overall Fiat–Shamir challenge, and
// each branch independently satisfies the Chaum–Pedersen verification
// equations for its claimed plaintext (0 or 1 respectively).
type Disjunctive struct {
	Zero branch
	One  branch
}

// MakeDisjunctive proves that ciphertext c = Encrypt(v, r, k) for v in
// {0,1}, binding the proof to qbar. It returns an xerrs.OutOfRange error if
// v is outside {0,1}.
func MakeDisjunctive(c *elgamal.Ciphertext, v int, r *group.ElementModQ, k *group.ElementModP, qbar *group.ElementModQ) (*Disjunctive, error) {
	if v != 0 && v != 1 {
		return nil, xerrs.New("proof.MakeDisjunctive", xerrs.OutOfRange, nil)
	}
	params := r.Params()

	fakeC, err := group.RandQ(params)
	if err != nil {
		return nil, err
	}
	fakeU, err := group.RandQ(params)
	if err != nil {
		return nil, err
	}
	w, err := group.RandQ(params)
	if err != nil {
		return nil, err
	}

	fakeIdx := 1 - v

	fakeA := buildFakeA(params, fakeU, fakeC, c.Alpha)
	fakeB := buildFakeB(params, fakeU, fakeC, c.Beta, fakeIdx, k)

	realA := group.GPowP(params, w)
	realB := group.PowP(k, w)

	overallC := hashDisjunctiveChallenge(params, qbar, c, v, fakeIdx, realA, realB, fakeA, fakeB)
	realC := group.AMinusBQ(overallC, fakeC)
	realU := group.APlusBCQ(w, realC, r)

	zero, one := branch{}, branch{}
	real := branch{A: realA, B: realB, C: realC, U: realU}
	fake := branch{A: fakeA, B: fakeB, C: fakeC, U: fakeU}
	if v == 0 {
		zero, one = real, fake
	} else {
		zero, one = fake, real
	}
	return &Disjunctive{Zero: zero, One: one}, nil
}

// buildFakeA computes a_j = g^u_j * alpha^{-c_j}.
func buildFakeA(params *group.Params, u, c *group.ElementModQ, alpha *group.ElementModP) *group.ElementModP {
	gu := group.GPowP(params, u)
	alphaC := group.PowP(alpha, c)
	alphaCInv, err := group.MultInvP(alphaC)
	if err != nil {
		panic(err)
	}
	return group.MultP(gu, alphaCInv)
}

// buildFakeB computes b_j = K^u_j * (beta * g^{-j})^{-c_j}.
func buildFakeB(params *group.Params, u, c *group.ElementModQ, beta *group.ElementModP, j int, k *group.ElementModP) *group.ElementModP {
	ku := group.PowP(k, u)
	gj := group.GPowP(params, group.NewElementModQUncheckedForTest(params, intToBig(j)))
	gjInv, err := group.MultInvP(gj)
	if err != nil {
		panic(err)
	}
	betaOverGj := group.MultP(beta, gjInv)
	bocC := group.PowP(betaOverGj, c)
	bocCInv, err := group.MultInvP(bocC)
	if err != nil {
		panic(err)
	}
	return group.MultP(ku, bocCInv)
}

func hashDisjunctiveChallenge(params *group.Params, qbar *group.ElementModQ, c *elgamal.Ciphertext, v, fakeIdx int, realA, realB, fakeA, fakeB *group.ElementModP) *group.ElementModQ {
	var a0, b0, a1, b1 *group.ElementModP
	if v == 0 {
		a0, b0 = realA, realB
		a1, b1 = fakeA, fakeB
	} else {
		a0, b0 = fakeA, fakeB
		a1, b1 = realA, realB
	}
	_ = fakeIdx
	return hash.Elems(params, qbar, c.Alpha, c.Beta, a0, b0, a1, b1)
}

// Rehydrate attaches params to every element decoded from JSON.
func (p *Disjunctive) Rehydrate(params *group.Params) {
	for _, b := range []*branch{&p.Zero, &p.One} {
		b.A.SetParams(params)
		b.B.SetParams(params)
		b.C.SetParams(params)
		b.U.SetParams(params)
	}
}

// Verify checks both branches and the challenge-sum equality.
func (p *Disjunctive) Verify(c *elgamal.Ciphertext, k *group.ElementModP, qbar *group.ElementModQ) bool {
	params := k.Params()
	if !c.Alpha.IsValidResidue() || !c.Beta.IsValidResidue() {
		return false
	}
	if !p.Zero.A.IsValidResidue() || !p.Zero.B.IsValidResidue() || !p.One.A.IsValidResidue() || !p.One.B.IsValidResidue() {
		return false
	}

	expectedC := hash.Elems(params, qbar, c.Alpha, c.Beta, p.Zero.A, p.Zero.B, p.One.A, p.One.B)
	sumC := group.AddQ(p.Zero.C, p.One.C)
	if !sumC.Equal(expectedC) {
		return false
	}

	if !verifyBranch(params, p.Zero, c, k, 0) {
		return false
	}
	if !verifyBranch(params, p.One, c, k, 1) {
		return false
	}
	return true
}

func verifyBranch(params *group.Params, b branch, c *elgamal.Ciphertext, k *group.ElementModP, j int) bool {
	lhsA := group.GPowP(params, b.U)
	rhsA := group.MultP(b.A, group.PowP(c.Alpha, b.C))
	if !lhsA.Equal(rhsA) {
		return false
	}
	gj := group.GPowP(params, group.NewElementModQUncheckedForTest(params, intToBig(j)))
	gjInv, err := group.MultInvP(gj)
	if err != nil {
		return false
	}
	betaOverGj := group.MultP(c.Beta, gjInv)
	lhsB := group.PowP(k, b.U)
	rhsB := group.MultP(b.B, group.PowP(betaOverGj, b.C))
	return lhsB.Equal(rhsB)
}
