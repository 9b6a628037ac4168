package encryption

import (
	"github.com/vocdoni/guardianvote/econtext"
	"github.com/vocdoni/guardianvote/elgamal"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
	"github.com/vocdoni/guardianvote/manifest"
	"github.com/vocdoni/guardianvote/nonces"
	"github.com/vocdoni/guardianvote/proof"
	"github.com/vocdoni/guardianvote/xerrs"
)

// EncryptedSelection is one selection's ciphertext, the nonce that produced
// it (stripped before submission — see ballotbox.Strip), and its disjunctive
// Chaum–Pedersen proof.
type EncryptedSelection struct {
	SelectionID string
	Ciphertext  *elgamal.Ciphertext
	Nonce       *group.ElementModQ
	Proof       *proof.Disjunctive
}

// Verify checks the selection's own proof against the joint key and context.
func (s *EncryptedSelection) Verify(pub *group.ElementModP, qbar *group.ElementModQ) bool {
	return s.Proof.Verify(s.Ciphertext, pub, qbar)
}

// Rehydrate attaches params to every element decoded from JSON.
func (s *EncryptedSelection) Rehydrate(params *group.Params) {
	s.Ciphertext.Rehydrate(params)
	if s.Nonce != nil {
		s.Nonce.SetParams(params)
	}
	s.Proof.Rehydrate(params)
}

// EncryptedContest is the homomorphic sum of its selections' ciphertexts,
// together with the constant Chaum–Pedersen proof that the sum equals N.
type EncryptedContest struct {
	ContestID      string
	Selections     []*EncryptedSelection
	AggregateNonce *group.ElementModQ
	Aggregate      *elgamal.Ciphertext
	NumberElected  int
	SumProof       *proof.Constant
}

// Verify checks every selection proof and the contest sum proof.
func (c *EncryptedContest) Verify(pub *group.ElementModP, qbar *group.ElementModQ) bool {
	for _, s := range c.Selections {
		if !s.Verify(pub, qbar) {
			return false
		}
	}
	return c.SumProof.Verify(c.Aggregate, c.NumberElected, pub, qbar)
}

// Rehydrate attaches params to every element decoded from JSON.
func (c *EncryptedContest) Rehydrate(params *group.Params) {
	for _, s := range c.Selections {
		s.Rehydrate(params)
	}
	if c.AggregateNonce != nil {
		c.AggregateNonce.SetParams(params)
	}
	c.Aggregate.Rehydrate(params)
	c.SumProof.Rehydrate(params)
}

// EncryptedBallot is the full manifest-derived ballot tree plus its tracking
// hash, linking it to the previous ballot submitted by the same device.
type EncryptedBallot struct {
	BallotID             string
	ManifestHash         *group.ElementModQ
	Contests             []*EncryptedContest
	DeviceHash           *group.ElementModQ
	Timestamp            int64
	PreviousTrackingHash *group.ElementModQ
	TrackingHash         *group.ElementModQ
}

// Verify checks every contest in the ballot.
func (b *EncryptedBallot) Verify(pub *group.ElementModP, qbar *group.ElementModQ) bool {
	for _, c := range b.Contests {
		if !c.Verify(pub, qbar) {
			return false
		}
	}
	return true
}

// Rehydrate attaches params to every element decoded from JSON, including
// every nested contest, selection, ciphertext, and proof.
func (b *EncryptedBallot) Rehydrate(params *group.Params) {
	b.ManifestHash.SetParams(params)
	for _, c := range b.Contests {
		c.Rehydrate(params)
	}
	b.DeviceHash.SetParams(params)
	if b.PreviousTrackingHash != nil {
		b.PreviousTrackingHash.SetParams(params)
	}
	b.TrackingHash.SetParams(params)
}

// EncryptSelection produces one selection's ciphertext and proof. plaintext
// must be 0 or 1.
func EncryptSelection(sel manifest.InternalSelection, plaintext int, nonce *group.ElementModQ, pub *group.ElementModP, qbar *group.ElementModQ) (*EncryptedSelection, error) {
	if plaintext != 0 && plaintext != 1 {
		return nil, xerrs.New("encryption.EncryptSelection", xerrs.OutOfRange, nil)
	}
	ct, err := elgamal.Encrypt(plaintext, nonce, pub)
	if err != nil {
		return nil, err
	}
	p, err := proof.MakeDisjunctive(ct, plaintext, nonce, pub, qbar)
	if err != nil {
		return nil, err
	}
	return &EncryptedSelection{SelectionID: sel.ObjectID, Ciphertext: ct, Nonce: nonce, Proof: p}, nil
}

// EncryptContest encrypts every selection in a contest — including the
// generated placeholder selections, which are set to 1 for every slot beyond
// the voter's affirmative count until exactly NumberElected affirmatives
// exist — and proves the sum equals NumberElected.
func EncryptContest(ic manifest.InternalContest, votes map[string]int, contestNonce *group.ElementModQ, pub *group.ElementModP, qbar *group.ElementModQ) (*EncryptedContest, error) {
	params := pub.Params()
	affirmatives := 0
	for _, v := range votes {
		if v == 1 {
			affirmatives++
		}
	}
	if affirmatives > ic.NumberElected {
		return nil, xerrs.New("encryption.EncryptContest", xerrs.BallotInvalid, nil)
	}
	neededPlaceholders := ic.NumberElected - affirmatives

	selections := make([]*EncryptedSelection, 0, len(ic.BallotSelections)+len(ic.Placeholders))
	ciphertexts := make([]*elgamal.Ciphertext, 0, cap(selections))
	nonceSum := group.ZeroModQ(params)

	for _, desc := range ic.BallotSelections {
		v := votes[desc.ObjectID]
		sel := manifest.InternalSelection{Selection: desc, CryptoHash: ic.SelectionHash(desc.ObjectID)}
		nonce := nonces.New(contestNonce, sel.CryptoHash).At(0)
		enc, err := EncryptSelection(sel, v, nonce, pub, qbar)
		if err != nil {
			return nil, err
		}
		selections = append(selections, enc)
		ciphertexts = append(ciphertexts, enc.Ciphertext)
		nonceSum = group.AddQ(nonceSum, nonce)
	}

	for i, desc := range ic.Placeholders {
		v := 0
		if i < neededPlaceholders {
			v = 1
		}
		sel := manifest.InternalSelection{Selection: desc, CryptoHash: ic.SelectionHash(desc.ObjectID)}
		nonce := nonces.New(contestNonce, sel.CryptoHash).At(0)
		enc, err := EncryptSelection(sel, v, nonce, pub, qbar)
		if err != nil {
			return nil, err
		}
		selections = append(selections, enc)
		ciphertexts = append(ciphertexts, enc.Ciphertext)
		nonceSum = group.AddQ(nonceSum, nonce)
	}

	aggregate := elgamal.Add(ciphertexts...)
	sumProof, err := proof.MakeConstant(aggregate, ic.NumberElected, nonceSum, pub, qbar)
	if err != nil {
		return nil, err
	}

	ec := &EncryptedContest{
		ContestID:      ic.ObjectID,
		Selections:     selections,
		AggregateNonce: nonceSum,
		Aggregate:      aggregate,
		NumberElected:  ic.NumberElected,
		SumProof:       sumProof,
	}
	if !ec.Verify(pub, qbar) {
		return nil, xerrs.New("encryption.EncryptContest", xerrs.BallotInvalid, nil)
	}
	return ec, nil
}

// EncryptBallot encrypts a full plaintext ballot against the internal
// manifest, deriving every nonce from masterNonce, and chains this ballot
// onto prevTracking for the submitting device.
func EncryptBallot(im *manifest.InternalManifest, ballot PlaintextBallot, masterNonce *group.ElementModQ, ctx *econtext.Context, deviceHash, prevTracking *group.ElementModQ, timestamp int64) (*EncryptedBallot, error) {
	params := masterNonce.Params()
	manifestHash := im.Hash()
	ballotNonce := hash.Elems(params, manifestHash, ballot.BallotID, masterNonce)

	contests := make([]*EncryptedContest, 0, len(ballot.Contests))
	for _, pc := range ballot.Contests {
		ic := findContest(im, pc.ContestID)
		if ic == nil {
			return nil, xerrs.New("encryption.EncryptBallot", xerrs.BallotInvalid, nil)
		}
		votes := make(map[string]int, len(pc.Selections))
		for _, s := range pc.Selections {
			votes[s.SelectionID] = s.Vote
		}
		contestNonce := nonces.New(ballotNonce, ic.CryptoHash).At(0)
		ec, err := EncryptContest(*ic, votes, contestNonce, ctx.JointKey, ctx.ExtendedBaseHash)
		if err != nil {
			return nil, err
		}
		contests = append(contests, ec)
	}

	ballotHash := ballotCryptoHash(params, contests)
	tracking := hash.Elems(params, prevTracking, timestamp, ballotHash)

	eb := &EncryptedBallot{
		BallotID:             ballot.BallotID,
		ManifestHash:         manifestHash,
		Contests:             contests,
		DeviceHash:           deviceHash,
		Timestamp:            timestamp,
		PreviousTrackingHash: prevTracking,
		TrackingHash:         tracking,
	}
	if !eb.Verify(ctx.JointKey, ctx.ExtendedBaseHash) {
		return nil, xerrs.New("encryption.EncryptBallot", xerrs.BallotInvalid, nil)
	}
	return eb, nil
}

// InitialTrackingHash computes T_0 for a device, binding the chain to the
// device identity and election context.
func InitialTrackingHash(deviceHash *group.ElementModQ, timestamp int64, qbar *group.ElementModQ) *group.ElementModQ {
	return hash.Elems(deviceHash.Params(), deviceHash, timestamp, qbar)
}

func ballotCryptoHash(params *group.Params, contests []*EncryptedContest) *group.ElementModQ {
	args := make([]any, 0, len(contests))
	for _, c := range contests {
		args = append(args, c.Aggregate.Alpha, c.Aggregate.Beta)
	}
	return hash.Elems(params, args...)
}

func findContest(im *manifest.InternalManifest, id string) *manifest.InternalContest {
	for i := range im.Contests {
		if im.Contests[i].ObjectID == id {
			return &im.Contests[i]
		}
	}
	return nil
}
