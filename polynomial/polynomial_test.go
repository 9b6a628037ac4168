package polynomial

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/guardianvote/group"
)

func TestGenerateProducesVerifiableCommitments(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	qbar, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	poly, err := Generate(p, 3, qbar)
	c.Assert(err, qt.IsNil)
	c.Assert(poly.Coefficients, qt.HasLen, 3)
	c.Assert(poly.VerifyCommitments(qbar), qt.IsTrue)
}

func TestBackupVerifiesAgainstCommitments(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	qbar, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	poly, err := Generate(p, 2, qbar)
	c.Assert(err, qt.IsNil)
	commitments := poly.Commitments()

	for ell := 1; ell <= 4; ell++ {
		backup := poly.Backup(ell)
		c.Assert(VerifyBackup(p, backup, ell, commitments), qt.IsTrue)
	}
}

func TestVerifyBackupRejectsWrongShare(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	qbar, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	poly, err := Generate(p, 2, qbar)
	c.Assert(err, qt.IsNil)
	commitments := poly.Commitments()

	backup := poly.Backup(1)
	wrong := group.AddQ(backup, group.OneModQ(p))
	c.Assert(VerifyBackup(p, wrong, 1, commitments), qt.IsFalse)
}

func TestLagrangeReconstructsSecret(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	qbar, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	k := 3
	poly, err := Generate(p, k, qbar)
	c.Assert(err, qt.IsNil)

	coeffs := make([]*group.ElementModQ, k)
	for i, co := range poly.Coefficients {
		coeffs[i] = co.Secret
	}
	secret := poly.Coefficients[0].Secret

	present := []int{1, 2, 3}
	shares := make(map[int]*group.ElementModP, len(present))
	for _, i := range present {
		evalAtI := Eval(p, coeffs, i)
		shares[i] = group.GPowP(p, evalAtI)
	}

	weights, err := LagrangeCoefficients(p, present)
	c.Assert(err, qt.IsNil)

	reconstructed := Reconstruct(present, shares, weights)
	c.Assert(reconstructed.Equal(group.GPowP(p, secret)), qt.IsTrue)
}

func TestLagrangeCoefficientsRejectsDuplicateIndex(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	_, err := LagrangeCoefficients(p, []int{1, 1})
	c.Assert(err, qt.IsNotNil)
}

func TestRecoveryPublicKeyMatchesBackup(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	qbar, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	poly, err := Generate(p, 2, qbar)
	c.Assert(err, qt.IsNil)
	commitments := poly.Commitments()

	backup := poly.Backup(5)
	rec := RecoveryPublicKey(p, 5, commitments)
	c.Assert(rec.Equal(group.GPowP(p, backup)), qt.IsTrue)
}
