// Package keyceremony implements the mediator side of the six-phase
// distributed key-generation state machine: Join, Announce, Make backups,
// Share backups, Verify backups, Publish joint key. The mediator is a
// stateless router and bookkeeper — it never holds a guardian secret, only
// the public artifacts guardians publish to each other.
package keyceremony

import (
	"fmt"
	"sort"

	"github.com/vocdoni/guardianvote/econtext"
	"github.com/vocdoni/guardianvote/elgamal"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/guardian"
	"github.com/vocdoni/guardianvote/polynomial"
	"github.com/vocdoni/guardianvote/xerrs"
)

// Phase is the ceremony's current tagged state.
type Phase int

const (
	PhaseJoin Phase = iota
	PhaseAnnounce
	PhaseMakeBackups
	PhaseShareBackups
	PhaseVerifyBackups
	PhasePublish
)

type pairKey struct{ sender, recipient string }

// Mediator routes messages between guardians and gates each phase advance on
// a complete set of inputs. Any failed proof, missing message, or unresolved
// challenge halts the ceremony: the caller must construct a fresh Mediator
// rather than retry a partial one.
type Mediator struct {
	Params   *group.Params
	N, K     int
	BaseHash *group.ElementModQ

	phase Phase

	joined   map[string]*guardian.PublicCoefficients
	order    []string // sequence-ordered guardian ids, fixed at Join completion
	backups  map[pairKey]*elgamal.HashedCiphertext
	verified map[pairKey]bool
	cleared  map[pairKey]*group.ElementModQ // publicly re-verified challenge plaintexts

	jointKey       *group.ElementModP
	commitmentHash *group.ElementModQ
}

// NewMediator creates a mediator for an (n, k) ceremony.
func NewMediator(params *group.Params, n, k int) *Mediator {
	return &Mediator{
		Params:   params,
		N:        n,
		K:        k,
		BaseHash: econtext.BaseHash(params),
		joined:   make(map[string]*guardian.PublicCoefficients),
		backups:  make(map[pairKey]*elgamal.HashedCiphertext),
		verified: make(map[pairKey]bool),
		cleared:  make(map[pairKey]*group.ElementModQ),
	}
}

// Join records one guardian's verified public coefficients.
func (m *Mediator) Join(pc *guardian.PublicCoefficients) error {
	if m.phase != PhaseJoin {
		return xerrs.New("keyceremony.Join", xerrs.StateViolation, nil)
	}
	if _, ok := m.joined[pc.GuardianID]; ok {
		return xerrs.New("keyceremony.Join", xerrs.StateViolation, fmt.Errorf("guardian %s already announced", pc.GuardianID))
	}
	if !pc.Verify(m.BaseHash) {
		return xerrs.New("keyceremony.Join", xerrs.InvalidProof, nil)
	}
	m.joined[pc.GuardianID] = pc
	if len(m.joined) == m.N {
		m.order = make([]string, 0, m.N)
		for id := range m.joined {
			m.order = append(m.order, id)
		}
		sort.Slice(m.order, func(i, j int) bool {
			return m.joined[m.order[i]].SequenceOrder < m.joined[m.order[j]].SequenceOrder
		})
		m.phase = PhaseAnnounce
	}
	return nil
}

// PeerKeysFor returns every other guardian's public coefficients, for the
// Announce phase.
func (m *Mediator) PeerKeysFor(id string) ([]*guardian.PublicCoefficients, error) {
	if m.phase < PhaseAnnounce {
		return nil, xerrs.New("keyceremony.PeerKeysFor", xerrs.StateViolation, nil)
	}
	out := make([]*guardian.PublicCoefficients, 0, m.N-1)
	for _, peerID := range m.order {
		if peerID != id {
			out = append(out, m.joined[peerID])
		}
	}
	return out, nil
}

// AdvanceToMakeBackups transitions once every guardian has consumed its peer
// keys; the caller drives this after all guardians confirm Announce is done.
func (m *Mediator) AdvanceToMakeBackups() error {
	if m.phase != PhaseAnnounce {
		return xerrs.New("keyceremony.AdvanceToMakeBackups", xerrs.StateViolation, nil)
	}
	m.phase = PhaseMakeBackups
	return nil
}

// ReceiveBackup records a backup guardian `sender` made for `recipient`.
func (m *Mediator) ReceiveBackup(sender, recipient string, ct *elgamal.HashedCiphertext) error {
	if m.phase != PhaseMakeBackups && m.phase != PhaseShareBackups {
		return xerrs.New("keyceremony.ReceiveBackup", xerrs.StateViolation, nil)
	}
	m.phase = PhaseShareBackups
	m.backups[pairKey{sender, recipient}] = ct
	return nil
}

// BackupsFor returns every backup addressed to recipient, keyed by sender.
func (m *Mediator) BackupsFor(recipient string) map[string]*elgamal.HashedCiphertext {
	out := make(map[string]*elgamal.HashedCiphertext)
	for k, ct := range m.backups {
		if k.recipient == recipient {
			out[k.sender] = ct
		}
	}
	return out
}

// AllBackupsMade reports whether the full n*(n-1) backup set has arrived.
func (m *Mediator) AllBackupsMade() bool {
	return len(m.backups) == m.N*(m.N-1)
}

// ReceiveVerification records recipient's verdict on sender's backup.
func (m *Mediator) ReceiveVerification(sender, recipient string, ok bool) error {
	if m.phase != PhaseShareBackups && m.phase != PhaseVerifyBackups {
		return xerrs.New("keyceremony.ReceiveVerification", xerrs.StateViolation, nil)
	}
	m.phase = PhaseVerifyBackups
	m.verified[pairKey{sender, recipient}] = ok
	return nil
}

// FailedVerifications lists every (sender, recipient) pair still awaiting a
// cleared challenge.
func (m *Mediator) FailedVerifications() []struct{ Sender, Recipient string } {
	var out []struct{ Sender, Recipient string }
	for k, ok := range m.verified {
		if !ok {
			if _, cleared := m.cleared[k]; !cleared {
				out = append(out, struct{ Sender, Recipient string }{k.sender, k.recipient})
			}
		}
	}
	return out
}

// ResolveChallenge publicly re-verifies a plaintext backup the sender
// published after a failed verification. It succeeds only if the plaintext
// actually satisfies the sender's commitment equation for the recipient's
// sequence order.
func (m *Mediator) ResolveChallenge(sender, recipient string, plaintext *group.ElementModQ) error {
	senderPC, ok := m.joined[sender]
	if !ok {
		return xerrs.New("keyceremony.ResolveChallenge", xerrs.StateViolation, fmt.Errorf("unknown sender %s", sender))
	}
	recipientPC, ok := m.joined[recipient]
	if !ok {
		return xerrs.New("keyceremony.ResolveChallenge", xerrs.StateViolation, fmt.Errorf("unknown recipient %s", recipient))
	}
	if !polynomial.VerifyBackup(m.Params, plaintext, recipientPC.SequenceOrder, senderPC.Commitments) {
		return xerrs.New("keyceremony.ResolveChallenge", xerrs.VerificationFailed, nil)
	}
	m.cleared[pairKey{sender, recipient}] = plaintext
	return nil
}

// AllVerified reports whether every (sender, recipient) pair has either
// verified directly or had its challenge cleared.
func (m *Mediator) AllVerified() bool {
	if len(m.verified) != m.N*(m.N-1) {
		return false
	}
	return len(m.FailedVerifications()) == 0
}

// PublishJointKey computes K = product of every guardian's first-coefficient
// commitment and the commitment hash, and freezes the ceremony. It fails if
// any verification is still outstanding.
func (m *Mediator) PublishJointKey() (*econtext.Context, error) {
	if m.phase != PhaseVerifyBackups && m.phase != PhasePublish {
		return nil, xerrs.New("keyceremony.PublishJointKey", xerrs.StateViolation, nil)
	}
	if !m.AllVerified() {
		return nil, xerrs.New("keyceremony.PublishJointKey", xerrs.VerificationFailed, nil)
	}
	commitments := make([]*group.ElementModP, 0, m.N)
	commitmentsBySequence := make([][]*group.ElementModP, 0, m.N)
	for _, id := range m.order {
		pc := m.joined[id]
		commitments = append(commitments, pc.Commitments[0])
		commitmentsBySequence = append(commitmentsBySequence, pc.Commitments)
	}
	m.jointKey = group.MultP(commitments...)
	m.commitmentHash = econtext.CommitmentHash(m.Params, commitmentsBySequence)
	m.phase = PhasePublish

	return &econtext.Context{
		N:                m.N,
		K:                m.K,
		JointKey:         m.jointKey,
		CommitmentHash:   m.commitmentHash,
		BaseHash:         m.BaseHash,
		ExtendedBaseHash: econtext.ExtendedBaseHash(m.BaseHash, m.commitmentHash),
	}, nil
}

// GuardianSequence returns the sequence order the mediator recorded for id.
func (m *Mediator) GuardianSequence(id string) (int, bool) {
	pc, ok := m.joined[id]
	if !ok {
		return 0, false
	}
	return pc.SequenceOrder, true
}

// GuardianCommitments returns the published commitments for id.
func (m *Mediator) GuardianCommitments(id string) ([]*group.ElementModP, bool) {
	pc, ok := m.joined[id]
	if !ok {
		return nil, false
	}
	return pc.Commitments, true
}

// Present guardians, ordered by sequence, for decryption-phase Lagrange work.
func (m *Mediator) PresentSequences() []int {
	out := make([]int, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.joined[id].SequenceOrder)
	}
	return out
}
