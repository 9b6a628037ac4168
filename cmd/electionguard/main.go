package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/guardianvote/ballotbox"
	"github.com/vocdoni/guardianvote/config"
	"github.com/vocdoni/guardianvote/decryption"
	"github.com/vocdoni/guardianvote/econtext"
	"github.com/vocdoni/guardianvote/encryption"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/guardian"
	"github.com/vocdoni/guardianvote/keyceremony"
	"github.com/vocdoni/guardianvote/log"
	"github.com/vocdoni/guardianvote/manifest"
	"github.com/vocdoni/guardianvote/record"
	"github.com/vocdoni/guardianvote/service"
)

func main() {
	serve := flag.Bool("serve", false, "start the verify service against an existing record instead of running a demo election")
	n := flag.Int("guardians", 3, "number of guardians in the key ceremony")
	k := flag.Int("quorum", 2, "decryption quorum")
	manifestPath := flag.String("manifest", "", "path to a manifest JSON file (demo mode only; a built-in manifest is used if empty)")
	ballotsPath := flag.String("ballots", "", "path to a JSON array of plaintext ballots (demo mode only)")
	flag.Parse()
	log.Init("debug", "stdout", nil)

	params := config.PrimeOption()

	store, err := record.Open(params, config.RecordDBType(), config.RecordDir())
	if err != nil {
		log.Fatalf("opening election record: %v", err)
	}
	defer store.Close()

	if *serve {
		runServe(store)
		return
	}
	runDemo(store, *n, *k, *manifestPath, *ballotsPath)
}

func runServe(store *record.Store) {
	svc, err := service.New(service.Config{Store: store})
	if err != nil {
		log.Fatalf("starting verify service: %v", err)
	}
	if err := svc.ListenAndServe(config.ListenAddr()); err != nil {
		log.Fatalf("verify service stopped: %v", err)
	}
}

func runDemo(store *record.Store, n, k int, manifestPath, ballotsPath string) {
	params := config.PrimeOption()

	m := builtinManifest()
	if manifestPath != "" {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			log.Fatalf("reading manifest: %v", err)
		}
		if err := json.Unmarshal(data, &m); err != nil {
			log.Fatalf("parsing manifest: %v", err)
		}
	}
	im := manifest.Build(params, m)
	log.Infow("manifest built", "contests", len(im.Contests))

	ctx, guardians := runKeyCeremony(params, n, k, im)
	log.Infow("key ceremony published", "jointKey", ctx.JointKey.String())

	if err := store.WriteManifest(m); err != nil {
		log.Fatalf("writing manifest: %v", err)
	}
	if err := store.WriteConstants(); err != nil {
		log.Fatalf("writing constants: %v", err)
	}
	if err := store.WriteContext(ctx); err != nil {
		log.Fatalf("writing context: %v", err)
	}
	for _, g := range guardians {
		if err := store.WriteGuardian(g.PublicCoefficients()); err != nil {
			log.Fatalf("writing guardian %s: %v", g.ID, err)
		}
	}

	ballots := builtinBallots()
	if ballotsPath != "" {
		data, err := os.ReadFile(ballotsPath)
		if err != nil {
			log.Fatalf("reading ballots: %v", err)
		}
		if err := json.Unmarshal(data, &ballots); err != nil {
			log.Fatalf("parsing ballots: %v", err)
		}
	}

	box := ballotbox.New(ctx)
	tally := ballotbox.NewTally()
	deviceHash := im.Hash()
	prevTracking := encryption.InitialTrackingHash(deviceHash, time.Now().Unix(), ctx.ExtendedBaseHash)
	for i, pb := range ballots {
		masterNonce, err := group.RandQNonZero(params)
		if err != nil {
			log.Fatalf("generating ballot nonce: %v", err)
		}
		eb, err := encryption.EncryptBallot(im, pb, masterNonce, ctx, deviceHash, prevTracking, time.Now().Unix())
		if err != nil {
			log.Fatalf("encrypting ballot %s: %v", pb.BallotID, err)
		}
		prevTracking = eb.TrackingHash
		sb, err := box.Cast(eb)
		if err != nil {
			log.Fatalf("casting ballot %d: %v", i, err)
		}
		if err := tally.Append(sb); err != nil {
			log.Fatalf("accumulating ballot %d: %v", i, err)
		}
		if err := store.WriteCastBallot(sb); err != nil {
			log.Fatalf("persisting ballot %d: %v", i, err)
		}
		log.Infow("ballot cast", "ballotId", pb.BallotID)
	}
	if err := store.WriteEncryptedTally(tally); err != nil {
		log.Fatalf("persisting encrypted tally: %v", err)
	}

	results := decryptTally(guardians, ctx, tally)
	if err := store.WriteTally(results); err != nil {
		log.Fatalf("persisting tally: %v", err)
	}
	for _, r := range results {
		log.Infow("tally result", "selection", r.SelectionID, "count", r.Count)
	}
}

// runKeyCeremony drives all six ceremony phases with every guardian present
// in-process, returning the published context and the guardians themselves so
// the demo can go on to produce decryption shares.
func runKeyCeremony(params *group.Params, n, k int, im *manifest.InternalManifest) (*econtext.Context, []*guardian.Guardian) {
	med := keyceremony.NewMediator(params, n, k)

	guardians := make([]*guardian.Guardian, n)
	for i := 0; i < n; i++ {
		g, err := guardian.New(fmt.Sprintf("guardian-%d", i+1), i+1, n, k, params, med.BaseHash)
		if err != nil {
			log.Fatalf("creating guardian %d: %v", i+1, err)
		}
		guardians[i] = g
		if err := med.Join(g.PublicCoefficients()); err != nil {
			log.Fatalf("guardian %d joining: %v", i+1, err)
		}
	}

	for _, g := range guardians {
		peers, err := med.PeerKeysFor(g.ID)
		if err != nil {
			log.Fatalf("fetching peer keys for %s: %v", g.ID, err)
		}
		if err := g.ReceivePeerKeys(peers, med.BaseHash); err != nil {
			log.Fatalf("guardian %s announcing: %v", g.ID, err)
		}
	}
	if err := med.AdvanceToMakeBackups(); err != nil {
		log.Fatalf("advancing to backups: %v", err)
	}

	for _, sender := range guardians {
		for _, recipient := range guardians {
			if sender.ID == recipient.ID {
				continue
			}
			ct, err := sender.MakeBackup(recipient.ID, recipient.SequenceOrder, recipient.BackupPublicKey())
			if err != nil {
				log.Fatalf("backup %s -> %s: %v", sender.ID, recipient.ID, err)
			}
			if err := med.ReceiveBackup(sender.ID, recipient.ID, ct); err != nil {
				log.Fatalf("relaying backup %s -> %s: %v", sender.ID, recipient.ID, err)
			}
		}
	}

	for _, recipient := range guardians {
		for senderID, ct := range med.BackupsFor(recipient.ID) {
			senderSeq, _ := med.GuardianSequence(senderID)
			senderCommitments, _ := med.GuardianCommitments(senderID)
			ok, err := recipient.ReceiveBackup(senderID, senderSeq, ct, senderCommitments)
			if err != nil {
				log.Fatalf("verifying backup %s -> %s: %v", senderID, recipient.ID, err)
			}
			if err := med.ReceiveVerification(senderID, recipient.ID, ok); err != nil {
				log.Fatalf("recording verification %s -> %s: %v", senderID, recipient.ID, err)
			}
		}
	}

	for _, failed := range med.FailedVerifications() {
		log.Warnw("resolving failed backup verification", "sender", failed.Sender, "recipient", failed.Recipient)
		for _, g := range guardians {
			if g.ID != failed.Sender {
				continue
			}
			recipientSeq, _ := med.GuardianSequence(failed.Recipient)
			plaintext := g.ChallengeBackup(recipientSeq)
			if err := med.ResolveChallenge(failed.Sender, failed.Recipient, plaintext); err != nil {
				log.Fatalf("resolving challenge %s -> %s: %v", failed.Sender, failed.Recipient, err)
			}
		}
	}

	ctx, err := med.PublishJointKey()
	if err != nil {
		log.Fatalf("publishing joint key: %v", err)
	}
	ctx.ManifestHash = im.Hash()
	return ctx, guardians
}

// decryptTally has every guardian produce a decryption share for every
// selection sum and combines them; no guardian is simulated absent.
func decryptTally(guardians []*guardian.Guardian, ctx *econtext.Context, tally *ballotbox.CiphertextTally) []decryption.TallyResult {
	dm := decryption.NewMediator(ctx, config.MaxTallyValue())
	shares := make(map[string]map[int]*group.ElementModP)
	for _, id := range tally.SelectionIDs() {
		c, _ := tally.Selection(id)
		perGuardian := make(map[int]*group.ElementModP, len(guardians))
		for _, g := range guardians {
			s, err := decryption.MakeShare(g, c, ctx.ExtendedBaseHash)
			if err != nil {
				log.Fatalf("guardian %s sharing %s: %v", g.ID, id, err)
			}
			perGuardian[g.SequenceOrder] = s.M
		}
		shares[id] = perGuardian
	}
	results, err := dm.DecryptTally(tally, shares)
	if err != nil {
		log.Fatalf("decrypting tally: %v", err)
	}
	return results
}

func builtinManifest() manifest.Manifest {
	return manifest.Manifest{
		ElectionScopeID: "demo-election",
		SpecVersion:     "2.1",
		Type:            "general",
		StartDate:       "2026-07-31T00:00:00Z",
		EndDate:         "2026-07-31T23:59:59Z",
		Contests: []manifest.Contest{
			{
				ObjectID:            "contest-1",
				SequenceOrder:       0,
				ElectoralDistrictID: "district-1",
				VoteVariation:       manifest.OneOfM,
				NumberElected:       1,
				VotesAllowed:        1,
				Name:                "Favorite color",
				BallotSelections: []manifest.Selection{
					{ObjectID: "red", SequenceOrder: 0, CandidateID: "red"},
					{ObjectID: "blue", SequenceOrder: 1, CandidateID: "blue"},
				},
			},
		},
	}
}

func builtinBallots() []encryption.PlaintextBallot {
	return []encryption.PlaintextBallot{
		{
			BallotID: "ballot-1",
			Contests: []encryption.PlaintextContest{
				{ContestID: "contest-1", Selections: []encryption.PlaintextSelection{{SelectionID: "red", Vote: 1}, {SelectionID: "blue", Vote: 0}}},
			},
		},
		{
			BallotID: "ballot-2",
			Contests: []encryption.PlaintextContest{
				{ContestID: "contest-1", Selections: []encryption.PlaintextSelection{{SelectionID: "red", Vote: 0}, {SelectionID: "blue", Vote: 1}}},
			},
		},
	}
}
