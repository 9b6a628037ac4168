// Package guardian implements the guardian side of the key-ceremony state
// machine: each guardian owns a secret polynomial exclusively, exchanges
// public commitments and encrypted backups with its peers through the
// mediator, and later contributes decryption shares. Peers are addressed
// only by opaque guardian id; a Guardian never holds a reference to another
// Guardian, only to its published PublicCoefficients.
package guardian

import (
	"math/big"

	"github.com/vocdoni/guardianvote/elgamal"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/polynomial"
	"github.com/vocdoni/guardianvote/proof"
	"github.com/vocdoni/guardianvote/xerrs"
)

// PublicCoefficients is the public view of one guardian's polynomial:
// commitments and Schnorr proofs only, never the secret coefficients.
type PublicCoefficients struct {
	GuardianID    string
	SequenceOrder int
	Commitments   []*group.ElementModP
	Proofs        []*proof.Schnorr
}

// Rehydrate attaches params to every commitment and proof decoded from JSON.
func (pc *PublicCoefficients) Rehydrate(params *group.Params) {
	for _, c := range pc.Commitments {
		c.SetParams(params)
	}
	for _, p := range pc.Proofs {
		p.Rehydrate(params)
	}
}

// Verify checks every coefficient's Schnorr proof against baseHash, the
// domain separator available before the ceremony has produced a commitment
// hash.
func (pc *PublicCoefficients) Verify(baseHash *group.ElementModQ) bool {
	for i, c := range pc.Commitments {
		if !pc.Proofs[i].Verify(c, baseHash) {
			return false
		}
	}
	return true
}

// Guardian is one trustee's private state across the key ceremony.
type Guardian struct {
	ID            string
	SequenceOrder int
	N, K          int
	Params        *group.Params

	poly       *polynomial.Polynomial
	backupKey  *elgamal.KeyPair // this guardian's own hashed-ElGamal keypair, used so peers can address it
	peers      map[string]*PublicCoefficients
	verified   map[string]bool                     // keyed by sender guardian id, result of ReceiveBackup
	backupsIn  map[string]*group.ElementModQ        // keyed by sender guardian id, P_sender(this.SequenceOrder)
	backupsOut map[string]*elgamal.HashedCiphertext
}

// New creates a guardian, generating its secret polynomial and its own
// hashed-ElGamal keypair used to receive backups from peers.
func New(id string, sequenceOrder, n, k int, params *group.Params, baseHash *group.ElementModQ) (*Guardian, error) {
	if sequenceOrder < 1 || sequenceOrder > n {
		return nil, xerrs.New("guardian.New", xerrs.OutOfRange, nil)
	}
	poly, err := polynomial.Generate(params, k, baseHash)
	if err != nil {
		return nil, err
	}
	secret, err := group.RandQNonZero(params)
	if err != nil {
		return nil, err
	}
	backupKey, err := elgamal.KeyPairFromSecret(secret)
	if err != nil {
		return nil, err
	}
	return &Guardian{
		ID:            id,
		SequenceOrder: sequenceOrder,
		N:             n,
		K:             k,
		Params:        params,
		poly:          poly,
		backupKey:     backupKey,
		peers:         make(map[string]*PublicCoefficients),
		verified:      make(map[string]bool),
		backupsIn:     make(map[string]*group.ElementModQ),
		backupsOut:    make(map[string]*elgamal.HashedCiphertext),
	}, nil
}

// PublicCoefficients returns this guardian's public view for the Join phase.
func (g *Guardian) PublicCoefficients() *PublicCoefficients {
	proofs := make([]*proof.Schnorr, len(g.poly.Coefficients))
	for i, c := range g.poly.Coefficients {
		proofs[i] = c.Proof
	}
	return &PublicCoefficients{
		GuardianID:    g.ID,
		SequenceOrder: g.SequenceOrder,
		Commitments:   g.poly.Commitments(),
		Proofs:        proofs,
	}
}

// BackupPublicKey is the public key peers use to hashed-ElGamal-encrypt
// backups addressed to this guardian.
func (g *Guardian) BackupPublicKey() *group.ElementModP { return g.backupKey.PublicKey }

// ReceivePeerKeys stores every peer's verified public coefficients (the
// Announce phase). It fails the whole batch if any single proof is invalid,
// matching the ceremony's all-or-nothing gate semantics.
func (g *Guardian) ReceivePeerKeys(peers []*PublicCoefficients, baseHash *group.ElementModQ) error {
	for _, pc := range peers {
		if !pc.Verify(baseHash) {
			return xerrs.New("guardian.ReceivePeerKeys", xerrs.InvalidProof, nil)
		}
	}
	for _, pc := range peers {
		g.peers[pc.GuardianID] = pc
	}
	return nil
}

// MakeBackup computes this guardian's backup for recipientID — the scalar
// P_i(recipientSequence), hashed-ElGamal-encrypted under the recipient's
// backup public key so only the recipient can read it.
func (g *Guardian) MakeBackup(recipientID string, recipientSequence int, recipientPub *group.ElementModP) (*elgamal.HashedCiphertext, error) {
	backup := g.poly.Backup(recipientSequence)
	r, err := group.RandQNonZero(g.Params)
	if err != nil {
		return nil, err
	}
	ct, err := elgamal.HashedEncrypt(backup.Bytes(), r, recipientPub, g.ID+"->"+recipientID)
	if err != nil {
		return nil, xerrs.New("guardian.MakeBackup", xerrs.EncodingError, err)
	}
	g.backupsOut[recipientID] = ct
	return ct, nil
}

// ReceiveBackup decrypts a backup sent by senderID and verifies it against
// the sender's published commitments. It records and returns the
// verification result; a false result means the ceremony must run the
// challenge sub-protocol for this (sender, recipient) pair.
func (g *Guardian) ReceiveBackup(senderID string, senderSequence int, ct *elgamal.HashedCiphertext, senderCommitments []*group.ElementModP) (bool, error) {
	plain, err := elgamal.HashedDecrypt(ct, g.backupKey.SecretKey, senderID+"->"+g.ID)
	if err != nil {
		g.verified[senderID] = false
		return false, nil
	}
	backup := group.NewElementModQUncheckedForTest(g.Params, new(big.Int).SetBytes(plain))
	ok := polynomial.VerifyBackup(g.Params, backup, g.SequenceOrder, senderCommitments)
	g.verified[senderID] = ok
	if ok {
		g.backupsIn[senderID] = backup
	}
	return ok, nil
}

// ReceivedBackup returns the decrypted, verified backup senderID sent this
// guardian — P_sender(this.SequenceOrder) — for use as a compensated-share
// exponent when senderID is absent at decryption time.
func (g *Guardian) ReceivedBackup(senderID string) (*group.ElementModQ, bool) {
	b, ok := g.backupsIn[senderID]
	return b, ok
}

// ChallengeBackup publishes the plaintext backup this guardian owes
// recipientSequence, for public re-verification after a failed ReceiveBackup
// elsewhere flags this guardian's round.
func (g *Guardian) ChallengeBackup(recipientSequence int) *group.ElementModQ {
	return g.poly.Backup(recipientSequence)
}

// AllVerified reports whether every recorded backup from peers verified.
func (g *Guardian) AllVerified() bool {
	for _, ok := range g.verified {
		if !ok {
			return false
		}
	}
	return len(g.verified) == len(g.peers)
}

// SecretShare is this guardian's share a_{i,0} of the joint secret — never
// exposed outside the guardian except through a decryption share proof.
func (g *Guardian) SecretShare() *group.ElementModQ {
	return g.poly.Coefficients[0].Secret
}

// JointKeyContribution is K_i = g^{a_{i,0}}.
func (g *Guardian) JointKeyContribution() *group.ElementModP {
	return g.poly.Coefficients[0].Commitment
}
