// Package record persists the published election record: manifest, context,
// guardian coefficients, encryption devices, submitted ballots (cast and
// spoiled), and the tally — the full file set described for an election
// record, backed by a prefixed key-value store in the style of
// storage/storage.go rather than loose files on disk, so the record gets the
// same durability and atomic-write guarantees as every other artifact in the
// system.
package record

import (
	"encoding/json"
	"fmt"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/vocdoni/guardianvote/ballotbox"
	"github.com/vocdoni/guardianvote/decryption"
	"github.com/vocdoni/guardianvote/econtext"
	"github.com/vocdoni/guardianvote/elgamal"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/guardian"
	"github.com/vocdoni/guardianvote/manifest"
	"github.com/vocdoni/guardianvote/types"
)

// Constants mirrors group.Params as hex-encoded wire values, the form
// constants.json is published in.
type Constants struct {
	Variant group.Variant  `json:"variant"`
	P       types.HexBytes `json:"p"`
	Q       types.HexBytes `json:"q"`
	G       types.HexBytes `json:"g"`
}

func toConstants(params *group.Params) Constants {
	return Constants{
		Variant: params.Variant,
		P:       params.P.Bytes(),
		Q:       params.Q.Bytes(),
		G:       params.G.Bytes(),
	}
}

// Device is one encryption device's registration record.
type Device struct {
	DeviceID   string             `json:"device_id"`
	DeviceHash *group.ElementModQ `json:"device_hash"`
}

var (
	rootPrefix = []byte("r/")

	manifestKey       = []byte("manifest")
	contextKey        = []byte("context")
	constantsKey      = []byte("constants")
	encryptedTallyKey = []byte("encrypted_tally")
	tallyKey          = []byte("tally")

	coefficientsPrefix = []byte("coefficients/")
	devicePrefix       = []byte("device/")
	castPrefix         = []byte("cast/")
	spoiledPrefix      = []byte("spoiled/")
)

// Store is the election record, backed by a single prefixed key-value
// database. Every write is its own committed transaction; the store never
// buffers writes across calls.
type Store struct {
	params *group.Params
	db     db.Database
}

// Open opens (creating if absent) the election record at dir, backed by
// dbType ("pebble" is metadb's default).
func Open(params *group.Params, dbType, dir string) (*Store, error) {
	database, err := metadb.New(dbType, dir)
	if err != nil {
		return nil, fmt.Errorf("record.Open: %w", err)
	}
	return &Store{params: params, db: database}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) put(prefix, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("record: encoding %s/%s: %w", prefix, key, err)
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, data); err != nil {
		return err
	}
	return wTx.Commit()
}

func (s *Store) get(prefix, key []byte, v any) error {
	data, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// iterate calls fn for every value under prefix, in key order, stopping if
// fn returns false.
func (s *Store) iterate(prefix []byte, fn func(key, value []byte) bool) {
	prefixeddb.NewPrefixedReader(s.db, prefix).Iterate(nil, fn)
}

// WriteManifest persists the election manifest.
func (s *Store) WriteManifest(m manifest.Manifest) error {
	return s.put(rootPrefix, manifestKey, m)
}

// ReadManifest reads back the election manifest.
func (s *Store) ReadManifest() (manifest.Manifest, error) {
	var m manifest.Manifest
	err := s.get(rootPrefix, manifestKey, &m)
	return m, err
}

// WriteConstants persists the election parameter set.
func (s *Store) WriteConstants() error {
	return s.put(rootPrefix, constantsKey, toConstants(s.params))
}

// WriteContext persists the published election context.
func (s *Store) WriteContext(ctx *econtext.Context) error {
	return s.put(rootPrefix, contextKey, ctx)
}

// ReadContext reads back the election context, rehydrated against the
// store's params.
func (s *Store) ReadContext() (*econtext.Context, error) {
	var ctx econtext.Context
	if err := s.get(rootPrefix, contextKey, &ctx); err != nil {
		return nil, err
	}
	ctx.Rehydrate(s.params)
	return &ctx, nil
}

// WriteGuardian persists one guardian's published coefficients.
func (s *Store) WriteGuardian(pc *guardian.PublicCoefficients) error {
	return s.put(coefficientsPrefix, []byte(pc.GuardianID), pc)
}

// ReadGuardian reads back one guardian's published coefficients.
func (s *Store) ReadGuardian(id string) (*guardian.PublicCoefficients, error) {
	var pc guardian.PublicCoefficients
	if err := s.get(coefficientsPrefix, []byte(id), &pc); err != nil {
		return nil, err
	}
	pc.Rehydrate(s.params)
	return &pc, nil
}

// Guardians returns every published guardian's coefficients, in no
// particular order.
func (s *Store) Guardians() ([]*guardian.PublicCoefficients, error) {
	var out []*guardian.PublicCoefficients
	var unmarshalErr error
	s.iterate(coefficientsPrefix, func(_, value []byte) bool {
		var pc guardian.PublicCoefficients
		if err := json.Unmarshal(value, &pc); err != nil {
			unmarshalErr = err
			return false
		}
		pc.Rehydrate(s.params)
		out = append(out, &pc)
		return true
	})
	return out, unmarshalErr
}

// WriteDevice registers an encryption device.
func (s *Store) WriteDevice(d Device) error {
	return s.put(devicePrefix, []byte(d.DeviceID), d)
}

// ReadDevice reads back an encryption device's registration.
func (s *Store) ReadDevice(id string) (Device, error) {
	var d Device
	if err := s.get(devicePrefix, []byte(id), &d); err != nil {
		return Device{}, err
	}
	d.DeviceHash.SetParams(s.params)
	return d, nil
}

// WriteCastBallot persists a CAST submitted ballot.
func (s *Store) WriteCastBallot(sb *ballotbox.SubmittedBallot) error {
	return s.put(castPrefix, []byte(sb.BallotID), sb)
}

// WriteSpoiledBallot persists a SPOILED submitted ballot.
func (s *Store) WriteSpoiledBallot(sb *ballotbox.SubmittedBallot) error {
	return s.put(spoiledPrefix, []byte(sb.BallotID), sb)
}

// ReadCastBallot reads back one CAST ballot by id, rehydrated.
func (s *Store) ReadCastBallot(id string) (*ballotbox.SubmittedBallot, error) {
	return s.readSubmittedBallot(castPrefix, id)
}

// ReadSpoiledBallot reads back one SPOILED ballot by id, rehydrated.
func (s *Store) ReadSpoiledBallot(id string) (*ballotbox.SubmittedBallot, error) {
	return s.readSubmittedBallot(spoiledPrefix, id)
}

func (s *Store) readSubmittedBallot(prefix []byte, id string) (*ballotbox.SubmittedBallot, error) {
	var sb ballotbox.SubmittedBallot
	if err := s.get(prefix, []byte(id), &sb); err != nil {
		return nil, err
	}
	sb.Ballot.Rehydrate(s.params)
	return &sb, nil
}

// SpoiledBallots returns every spoiled ballot, for individual re-verification
// or challenge decryption.
func (s *Store) SpoiledBallots() ([]*ballotbox.SubmittedBallot, error) {
	var out []*ballotbox.SubmittedBallot
	var unmarshalErr error
	s.iterate(spoiledPrefix, func(_, value []byte) bool {
		var sb ballotbox.SubmittedBallot
		if err := json.Unmarshal(value, &sb); err != nil {
			unmarshalErr = err
			return false
		}
		sb.Ballot.Rehydrate(s.params)
		out = append(out, &sb)
		return true
	})
	return out, unmarshalErr
}

// encryptedTallyWire is encrypted_tally.json's on-disk shape: the running
// per-selection ciphertext sums plus the exact ballot ids folded into them,
// so a restarted mediator can resume a tally in progress without re-reading
// every cast ballot.
type encryptedTallyWire struct {
	Sums             map[string]*elgamal.Ciphertext `json:"sums"`
	AppliedBallotIDs []string                        `json:"applied_ballot_ids"`
}

// WriteEncryptedTally persists the running homomorphic tally.
func (s *Store) WriteEncryptedTally(t *ballotbox.CiphertextTally) error {
	return s.put(rootPrefix, encryptedTallyKey, encryptedTallyWire{
		Sums:             t.Sums(),
		AppliedBallotIDs: t.AppliedBallotIDs(),
	})
}

// ReadEncryptedTally reads back the running homomorphic tally into t.
func (s *Store) ReadEncryptedTally(t *ballotbox.CiphertextTally) error {
	var w encryptedTallyWire
	if err := s.get(rootPrefix, encryptedTallyKey, &w); err != nil {
		return err
	}
	for _, c := range w.Sums {
		c.Rehydrate(s.params)
	}
	t.LoadSums(w.Sums, w.AppliedBallotIDs)
	return nil
}

// WriteTally persists the final decrypted tally.
func (s *Store) WriteTally(results []decryption.TallyResult) error {
	return s.put(rootPrefix, tallyKey, results)
}

// ReadTally reads back the final decrypted tally.
func (s *Store) ReadTally() ([]decryption.TallyResult, error) {
	var results []decryption.TallyResult
	err := s.get(rootPrefix, tallyKey, &results)
	return results, err
}
