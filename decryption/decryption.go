// Package decryption implements the guardian and mediator sides of
// cooperative tally decryption: ordinary decryption shares from present
// guardians, compensated shares reconstructed from backups when a guardian
// is absent, and the final combination into a plaintext count via the
// shared discrete-log cache.
package decryption

import (
	"github.com/vocdoni/guardianvote/ballotbox"
	"github.com/vocdoni/guardianvote/econtext"
	"github.com/vocdoni/guardianvote/elgamal"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/guardian"
	"github.com/vocdoni/guardianvote/polynomial"
	"github.com/vocdoni/guardianvote/proof"
	"github.com/vocdoni/guardianvote/xerrs"
)

// Share is one guardian's ordinary decryption share for one ciphertext: its
// partial plaintext M_i = alpha^{s_i} and the proof that s_i is the secret
// behind the guardian's published K_i.
type Share struct {
	GuardianID string
	M          *group.ElementModP
	Proof      *proof.Decryption
}

// MakeShare computes guardian g's ordinary decryption share for ciphertext c.
func MakeShare(g *guardian.Guardian, c *elgamal.Ciphertext, qbar *group.ElementModQ) (*Share, error) {
	secret := g.SecretShare()
	pub := g.JointKeyContribution()
	m := group.PowP(c.Alpha, secret)
	p, err := proof.MakeDecryption(c.Alpha, c.Beta, secret, pub, m, qbar)
	if err != nil {
		return nil, err
	}
	return &Share{GuardianID: g.ID, M: m, Proof: p}, nil
}

// Verify checks a share's proof against the ciphertext, the guardian's
// published K_i, and the election context.
func (s *Share) Verify(c *elgamal.Ciphertext, pub *group.ElementModP, qbar *group.ElementModQ) bool {
	return s.Proof.Verify(c.Alpha, c.Beta, pub, s.M, qbar)
}

// CompensatedShare is the share a present guardian computes on behalf of an
// absent one, using the backup the absent guardian made for it during the
// key ceremony.
type CompensatedShare struct {
	AbsentGuardianID  string
	HelperGuardianID  string
	M                 *group.ElementModP // alpha^{P_absent(helper.SequenceOrder)}
	RecoveryPublicKey *group.ElementModP // g^{P_absent(helper.SequenceOrder)}
	Proof             *proof.Decryption
}

// MakeCompensatedShare has helper compute the share it owes on behalf of
// absentID, using the backup absentID sent helper during the key ceremony.
// absentCommitments are absentID's published polynomial commitments.
func MakeCompensatedShare(helper *guardian.Guardian, absentID string, absentCommitments []*group.ElementModP, c *elgamal.Ciphertext, qbar *group.ElementModQ) (*CompensatedShare, error) {
	backup, ok := helper.ReceivedBackup(absentID)
	if !ok {
		return nil, xerrs.New("decryption.MakeCompensatedShare", xerrs.StateViolation, nil)
	}
	params := backup.Params()
	m := group.PowP(c.Alpha, backup)
	recoveryPub := polynomial.RecoveryPublicKey(params, helper.SequenceOrder, absentCommitments)
	p, err := proof.MakeDecryption(c.Alpha, c.Beta, backup, recoveryPub, m, qbar)
	if err != nil {
		return nil, err
	}
	return &CompensatedShare{
		AbsentGuardianID:  absentID,
		HelperGuardianID:  helper.ID,
		M:                 m,
		RecoveryPublicKey: recoveryPub,
		Proof:             p,
	}, nil
}

// Verify checks a compensated share's proof against its own recovery public
// key, recomputed independently by the caller from the absent guardian's
// published commitments.
func (cs *CompensatedShare) Verify(c *elgamal.Ciphertext, qbar *group.ElementModQ) bool {
	return cs.Proof.Verify(c.Alpha, c.Beta, cs.RecoveryPublicKey, cs.M, qbar)
}

// Reconstruct combines the compensated shares helpers computed on behalf of
// one absent guardian into that guardian's effective share M_absent, via
// Lagrange interpolation over the present guardians' sequence orders.
func Reconstruct(params *group.Params, present []int, compensated map[int]*CompensatedShare) (*group.ElementModP, error) {
	coeffs, err := polynomial.LagrangeCoefficients(params, present)
	if err != nil {
		return nil, err
	}
	shares := make(map[int]*group.ElementModP, len(compensated))
	for seq, cs := range compensated {
		shares[seq] = cs.M
	}
	return polynomial.Reconstruct(present, shares, coeffs), nil
}

// Mediator aggregates ordinary and reconstructed shares for every selection
// in a tally and recovers the plaintext count via the shared DiscreteLog
// cache. It requires at least K shares (ordinary or reconstructed) per
// selection before it will combine anything.
type Mediator struct {
	Ctx  *econtext.Context
	DLog *elgamal.DiscreteLog
}

// NewMediator builds a decryption mediator bounded by maxCount, an
// election-wide ceiling on any single selection's tally value.
func NewMediator(ctx *econtext.Context, maxCount int) *Mediator {
	return &Mediator{Ctx: ctx, DLog: elgamal.NewDiscreteLog(ctx.JointKey.Params(), maxCount)}
}

// CombineSelection recovers the plaintext count for one selection's tally
// ciphertext from the full set of effective shares — one per guardian
// sequence order, whether computed directly (present) or reconstructed
// (absent) — keyed by guardian sequence order.
func (m *Mediator) CombineSelection(c *elgamal.Ciphertext, effectiveShares map[int]*group.ElementModP) (int, error) {
	if len(effectiveShares) < m.Ctx.K {
		return 0, xerrs.New("decryption.CombineSelection", xerrs.InsufficientQuorum, nil)
	}
	ms := make([]*group.ElementModP, 0, len(effectiveShares))
	for _, mi := range effectiveShares {
		ms = append(ms, mi)
	}
	product := group.MultP(ms...)
	productInv, err := group.MultInvP(product)
	if err != nil {
		return 0, err
	}
	gm := group.MultP(c.Beta, productInv)
	return m.DLog.Discover(gm)
}

// TallyResult is the decrypted plaintext count for one selection.
type TallyResult struct {
	SelectionID string
	Count       int
}

// DecryptTally recovers the plaintext count of every selection in t using
// one effective share per selection per guardian sequence order. shares maps
// selection id to that selection's per-guardian effective M values.
func (m *Mediator) DecryptTally(t *ballotbox.CiphertextTally, shares map[string]map[int]*group.ElementModP) ([]TallyResult, error) {
	out := make([]TallyResult, 0, len(t.SelectionIDs()))
	for _, id := range t.SelectionIDs() {
		c, ok := t.Selection(id)
		if !ok {
			continue
		}
		count, err := m.CombineSelection(c, shares[id])
		if err != nil {
			return nil, err
		}
		out = append(out, TallyResult{SelectionID: id, Count: count})
	}
	return out, nil
}
