// Package ballotbox implements the submitted-ballot state machine and the
// homomorphic tally accumulator: ballots transition UNKNOWN -> CAST or
// UNKNOWN -> SPOILED exactly once, duplicates are rejected, and accumulation
// is commutative so ballot-arrival order never affects the published tally.
package ballotbox

import (
	"sync"

	"github.com/vocdoni/guardianvote/econtext"
	"github.com/vocdoni/guardianvote/elgamal"
	"github.com/vocdoni/guardianvote/encryption"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/xerrs"
)

// State is a submitted ballot's disposition.
type State int

const (
	Unknown State = iota
	Cast
	Spoiled
)

// SubmittedBallot is an EncryptedBallot with nonces and extended data
// stripped, plus its final disposition.
type SubmittedBallot struct {
	BallotID string
	State    State
	Ballot   *encryption.EncryptedBallot
}

// Strip removes the per-selection nonces and each contest's aggregate nonce
// from an EncryptedBallot before it is submitted, so nothing retains the
// prover's private randomness.
func Strip(b *encryption.EncryptedBallot) *encryption.EncryptedBallot {
	stripped := *b
	stripped.Contests = make([]*encryption.EncryptedContest, len(b.Contests))
	for i, c := range b.Contests {
		cc := *c
		cc.AggregateNonce = nil
		cc.Selections = make([]*encryption.EncryptedSelection, len(c.Selections))
		for j, s := range c.Selections {
			ss := *s
			ss.Nonce = nil
			cc.Selections[j] = &ss
		}
		stripped.Contests[i] = &cc
	}
	return &stripped
}

// Box is the submitted-ballot state machine for one election.
type Box struct {
	mu      sync.Mutex
	ctx     *econtext.Context
	ballots map[string]*SubmittedBallot
}

// New creates an empty ballot box for the given election context.
func New(ctx *econtext.Context) *Box {
	return &Box{ctx: ctx, ballots: make(map[string]*SubmittedBallot)}
}

// Cast submits a ballot as CAST. It rejects a ballot that fails its own
// proofs and a re-submission of an already-known ballot id.
func (b *Box) Cast(eb *encryption.EncryptedBallot) (*SubmittedBallot, error) {
	return b.submit(eb, Cast)
}

// Spoil submits a ballot as SPOILED.
func (b *Box) Spoil(eb *encryption.EncryptedBallot) (*SubmittedBallot, error) {
	return b.submit(eb, Spoiled)
}

func (b *Box) submit(eb *encryption.EncryptedBallot, state State) (*SubmittedBallot, error) {
	if !eb.Verify(b.ctx.JointKey, b.ctx.ExtendedBaseHash) {
		return nil, xerrs.New("ballotbox.submit", xerrs.BallotInvalid, nil)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ballots[eb.BallotID]; ok {
		return nil, xerrs.New("ballotbox.submit", xerrs.StateViolation, nil)
	}
	sb := &SubmittedBallot{BallotID: eb.BallotID, State: state, Ballot: Strip(eb)}
	b.ballots[eb.BallotID] = sb
	return sb, nil
}

// Get returns the submitted ballot for id, if any.
func (b *Box) Get(id string) (*SubmittedBallot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sb, ok := b.ballots[id]
	return sb, ok
}

// CastBallots returns every CAST ballot, in no particular order.
func (b *Box) CastBallots() []*SubmittedBallot {
	return b.ballotsWithState(Cast)
}

// SpoiledBallots returns every SPOILED ballot.
func (b *Box) SpoiledBallots() []*SubmittedBallot {
	return b.ballotsWithState(Spoiled)
}

func (b *Box) ballotsWithState(state State) []*SubmittedBallot {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*SubmittedBallot
	for _, sb := range b.ballots {
		if sb.State == state {
			out = append(out, sb)
		}
	}
	return out
}

// CiphertextTally holds the running homomorphic product per selection id,
// accumulated over CAST ballots only. Accumulation is commutative and
// associative: the final state depends only on the set of applied ballot
// ids, tracked here so re-application is a no-op.
type CiphertextTally struct {
	mu      sync.Mutex
	applied map[string]bool
	sums    map[string]*elgamal.Ciphertext
}

// NewTally creates an empty tally.
func NewTally() *CiphertextTally {
	return &CiphertextTally{applied: make(map[string]bool), sums: make(map[string]*elgamal.Ciphertext)}
}

// Append homomorphically accumulates every selection ciphertext in a CAST
// ballot. Appending the same ballot id twice is a no-op; appending a ballot
// that is not in the Cast state is a programming error surfaced as
// StateViolation.
func (t *CiphertextTally) Append(sb *SubmittedBallot) error {
	if sb.State != Cast {
		return xerrs.New("ballotbox.CiphertextTally.Append", xerrs.StateViolation, nil)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.applied[sb.BallotID] {
		return nil
	}
	for _, c := range sb.Ballot.Contests {
		for _, s := range c.Selections {
			if cur, ok := t.sums[s.SelectionID]; ok {
				t.sums[s.SelectionID] = elgamal.Add(cur, s.Ciphertext)
			} else {
				t.sums[s.SelectionID] = s.Ciphertext
			}
		}
	}
	t.applied[sb.BallotID] = true
	return nil
}

// Selection returns the running ciphertext sum for a selection id.
func (t *CiphertextTally) Selection(id string) (*elgamal.Ciphertext, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.sums[id]
	return c, ok
}

// SelectionIDs returns every selection id with a running sum, in no
// particular order.
func (t *CiphertextTally) SelectionIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.sums))
	for id := range t.sums {
		out = append(out, id)
	}
	return out
}

// AppliedBallotIDs returns every ballot id folded into this tally.
func (t *CiphertextTally) AppliedBallotIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.applied))
	for id := range t.applied {
		out = append(out, id)
	}
	return out
}

// Rehydrate attaches params to every ciphertext decoded from JSON.
func (t *CiphertextTally) Rehydrate(params *group.Params) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.sums {
		c.Rehydrate(params)
	}
}

// Sums exposes the running per-selection ciphertext sums for persistence.
// Callers must not mutate the returned map.
func (t *CiphertextTally) Sums() map[string]*elgamal.Ciphertext {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]*elgamal.Ciphertext, len(t.sums))
	for k, v := range t.sums {
		out[k] = v
	}
	return out
}

// LoadSums replaces an empty tally's sums and applied-id set from persisted
// state. It is meant for reconstructing a Mediator's tally from the record on
// restart, not for merging into a tally already in use.
func (t *CiphertextTally) LoadSums(sums map[string]*elgamal.Ciphertext, appliedBallotIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sums = sums
	t.applied = make(map[string]bool, len(appliedBallotIDs))
	for _, id := range appliedBallotIDs {
		t.applied[id] = true
	}
}
