package keyceremony

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/guardian"
)

// runCeremony drives n guardians with quorum k through every mediator phase
// and returns the guardians alongside the published context.
func runCeremony(c *qt.C, n, k int) ([]*guardian.Guardian, *Mediator) {
	p := group.TestParams()
	med := NewMediator(p, n, k)

	guardians := make([]*guardian.Guardian, n)
	for i := 0; i < n; i++ {
		g, err := guardian.New("g"+string(rune('1'+i)), i+1, n, k, p, med.BaseHash)
		c.Assert(err, qt.IsNil)
		guardians[i] = g
		c.Assert(med.Join(g.PublicCoefficients()), qt.IsNil)
	}

	for _, g := range guardians {
		peers, err := med.PeerKeysFor(g.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(g.ReceivePeerKeys(peers, med.BaseHash), qt.IsNil)
	}
	c.Assert(med.AdvanceToMakeBackups(), qt.IsNil)

	for _, sender := range guardians {
		for _, recipient := range guardians {
			if sender.ID == recipient.ID {
				continue
			}
			ct, err := sender.MakeBackup(recipient.ID, recipient.SequenceOrder, recipient.BackupPublicKey())
			c.Assert(err, qt.IsNil)
			c.Assert(med.ReceiveBackup(sender.ID, recipient.ID, ct), qt.IsNil)
		}
	}
	c.Assert(med.AllBackupsMade(), qt.IsTrue)

	for _, recipient := range guardians {
		for senderID, ct := range med.BackupsFor(recipient.ID) {
			senderCommitments, ok := med.GuardianCommitments(senderID)
			c.Assert(ok, qt.IsTrue)
			senderSeq, ok := med.GuardianSequence(senderID)
			c.Assert(ok, qt.IsTrue)
			ok2, err := recipient.ReceiveBackup(senderID, senderSeq, ct, senderCommitments)
			c.Assert(err, qt.IsNil)
			c.Assert(med.ReceiveVerification(senderID, recipient.ID, ok2), qt.IsNil)
		}
	}

	for _, f := range med.FailedVerifications() {
		var sender *guardian.Guardian
		for _, g := range guardians {
			if g.ID == f.Sender {
				sender = g
			}
		}
		recipientSeq, ok := med.GuardianSequence(f.Recipient)
		c.Assert(ok, qt.IsTrue)
		plaintext := sender.ChallengeBackup(recipientSeq)
		c.Assert(med.ResolveChallenge(f.Sender, f.Recipient, plaintext), qt.IsNil)
	}
	c.Assert(med.AllVerified(), qt.IsTrue)

	return guardians, med
}

func TestCeremonyPublishesConsistentJointKey(t *testing.T) {
	c := qt.New(t)
	guardians, med := runCeremony(c, 3, 2)

	ctx, err := med.PublishJointKey()
	c.Assert(err, qt.IsNil)
	c.Assert(ctx.N, qt.Equals, 3)
	c.Assert(ctx.K, qt.Equals, 2)

	expected := guardians[0].JointKeyContribution()
	for _, g := range guardians[1:] {
		expected = group.MultP(expected, g.JointKeyContribution())
	}
	c.Assert(ctx.JointKey.Equal(expected), qt.IsTrue)
}

func TestJoinRejectsDuplicateGuardian(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	med := NewMediator(p, 2, 2)
	g, err := guardian.New("g1", 1, 2, 2, p, med.BaseHash)
	c.Assert(err, qt.IsNil)

	c.Assert(med.Join(g.PublicCoefficients()), qt.IsNil)
	c.Assert(med.Join(g.PublicCoefficients()), qt.IsNotNil)
}

func TestPeerKeysForRejectsBeforeAnnounce(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	med := NewMediator(p, 2, 2)
	_, err := med.PeerKeysFor("g1")
	c.Assert(err, qt.IsNotNil)
}

func TestPublishJointKeyRejectsUnresolvedVerification(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	med := NewMediator(p, 2, 2)

	g1, err := guardian.New("g1", 1, 2, 2, p, med.BaseHash)
	c.Assert(err, qt.IsNil)
	g2, err := guardian.New("g2", 2, 2, 2, p, med.BaseHash)
	c.Assert(err, qt.IsNil)
	c.Assert(med.Join(g1.PublicCoefficients()), qt.IsNil)
	c.Assert(med.Join(g2.PublicCoefficients()), qt.IsNil)

	_, err = med.PublishJointKey()
	c.Assert(err, qt.IsNotNil)
}

func TestPresentSequencesMatchesJoinOrder(t *testing.T) {
	c := qt.New(t)
	guardians, med := runCeremony(c, 3, 2)
	seqs := med.PresentSequences()
	c.Assert(seqs, qt.HasLen, len(guardians))
	for i, g := range guardians {
		c.Assert(seqs[i], qt.Equals, g.SequenceOrder)
	}
}
