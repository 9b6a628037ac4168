package guardian

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/guardianvote/group"
)

func newTestGuardians(c *qt.C, n, k int) ([]*Guardian, *group.ElementModQ) {
	p := group.TestParams()
	bh, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	guardians := make([]*Guardian, n)
	for i := 0; i < n; i++ {
		g, err := New("g"+string(rune('1'+i)), i+1, n, k, p, bh)
		c.Assert(err, qt.IsNil)
		guardians[i] = g
	}
	return guardians, bh
}

func TestPublicCoefficientsVerify(t *testing.T) {
	c := qt.New(t)
	guardians, bh := newTestGuardians(c, 3, 2)

	for _, g := range guardians {
		pc := g.PublicCoefficients()
		c.Assert(pc.Verify(bh), qt.IsTrue)
	}
}

func TestNewRejectsSequenceOutOfRange(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	bh, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	_, err = New("g0", 0, 3, 2, p, bh)
	c.Assert(err, qt.IsNotNil)

	_, err = New("g4", 4, 3, 2, p, bh)
	c.Assert(err, qt.IsNotNil)
}

func TestBackupExchangeAndVerification(t *testing.T) {
	c := qt.New(t)
	guardians, bh := newTestGuardians(c, 2, 2)
	g1, g2 := guardians[0], guardians[1]

	c.Assert(g1.ReceivePeerKeys([]*PublicCoefficients{g2.PublicCoefficients()}, bh), qt.IsNil)
	c.Assert(g2.ReceivePeerKeys([]*PublicCoefficients{g1.PublicCoefficients()}, bh), qt.IsNil)

	ct, err := g1.MakeBackup(g2.ID, g2.SequenceOrder, g2.BackupPublicKey())
	c.Assert(err, qt.IsNil)

	ok, err := g2.ReceiveBackup(g1.ID, g1.SequenceOrder, ct, g1.PublicCoefficients().Commitments)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	backup, found := g2.ReceivedBackup(g1.ID)
	c.Assert(found, qt.IsTrue)
	c.Assert(backup, qt.IsNotNil)
}

func TestReceiveBackupFailsOnTamperedCiphertext(t *testing.T) {
	c := qt.New(t)
	guardians, bh := newTestGuardians(c, 2, 2)
	g1, g2 := guardians[0], guardians[1]
	c.Assert(g1.ReceivePeerKeys([]*PublicCoefficients{g2.PublicCoefficients()}, bh), qt.IsNil)
	c.Assert(g2.ReceivePeerKeys([]*PublicCoefficients{g1.PublicCoefficients()}, bh), qt.IsNil)

	ct, err := g1.MakeBackup(g2.ID, g2.SequenceOrder, g2.BackupPublicKey())
	c.Assert(err, qt.IsNil)
	ct.MAC[0] ^= 0xFF

	ok, err := g2.ReceiveBackup(g1.ID, g1.SequenceOrder, ct, g1.PublicCoefficients().Commitments)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	_, found := g2.ReceivedBackup(g1.ID)
	c.Assert(found, qt.IsFalse)
}

func TestPublicCoefficientsJSONRoundTrip(t *testing.T) {
	c := qt.New(t)
	guardians, _ := newTestGuardians(c, 1, 1)
	pc := guardians[0].PublicCoefficients()

	data, err := json.Marshal(pc)
	c.Assert(err, qt.IsNil)

	var decoded PublicCoefficients
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded.Commitments[0].Params(), qt.IsNil)

	p := group.TestParams()
	decoded.Rehydrate(p)
	c.Assert(decoded.Commitments[0].Equal(pc.Commitments[0]), qt.IsTrue)
}
