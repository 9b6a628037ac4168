package encryption

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/guardianvote/econtext"
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/manifest"
)

func testManifest() manifest.Manifest {
	return manifest.Manifest{
		ElectionScopeID: "test-election",
		Contests: []manifest.Contest{
			{
				ObjectID:            "contest-1",
				ElectoralDistrictID: "district-1",
				VoteVariation:       manifest.OneOfM,
				NumberElected:       1,
				VotesAllowed:        1,
				BallotSelections: []manifest.Selection{
					{ObjectID: "red", SequenceOrder: 0, CandidateID: "red"},
					{ObjectID: "blue", SequenceOrder: 1, CandidateID: "blue"},
				},
			},
		},
	}
}

func testContext(c *qt.C, p *group.Params) *econtext.Context {
	secret, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	base := econtext.BaseHash(p)
	commitment, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	return &econtext.Context{
		N:                1,
		K:                1,
		JointKey:         group.GPowP(p, secret),
		CommitmentHash:   commitment,
		BaseHash:         base,
		ExtendedBaseHash: econtext.ExtendedBaseHash(base, commitment),
	}
}

func TestEncryptContestProvesCorrectSum(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	im := manifest.Build(p, testManifest())
	ctx := testContext(c, p)

	nonce, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	ec, err := EncryptContest(im.Contests[0], map[string]int{"red": 1}, nonce, ctx.JointKey, ctx.ExtendedBaseHash)
	c.Assert(err, qt.IsNil)
	c.Assert(ec.Verify(ctx.JointKey, ctx.ExtendedBaseHash), qt.IsTrue)
}

func TestEncryptContestRejectsOvervote(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	im := manifest.Build(p, testManifest())
	ctx := testContext(c, p)

	nonce, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	_, err = EncryptContest(im.Contests[0], map[string]int{"red": 1, "blue": 1}, nonce, ctx.JointKey, ctx.ExtendedBaseHash)
	c.Assert(err, qt.IsNotNil)
}

func TestEncryptBallotFullRoundTrip(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	im := manifest.Build(p, testManifest())
	ctx := testContext(c, p)

	masterNonce, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	deviceHash, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	prevTracking := InitialTrackingHash(deviceHash, 1000, ctx.ExtendedBaseHash)

	ballot := PlaintextBallot{
		BallotID: "ballot-1",
		Contests: []PlaintextContest{
			{ContestID: "contest-1", Selections: []PlaintextSelection{{SelectionID: "red", Vote: 1}}},
		},
	}

	eb, err := EncryptBallot(im, ballot, masterNonce, ctx, deviceHash, prevTracking, 1001)
	c.Assert(err, qt.IsNil)
	c.Assert(eb.Verify(ctx.JointKey, ctx.ExtendedBaseHash), qt.IsTrue)
	c.Assert(eb.TrackingHash.Equal(prevTracking), qt.IsFalse)
}

func TestEncryptBallotRejectsUnknownContest(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	im := manifest.Build(p, testManifest())
	ctx := testContext(c, p)

	masterNonce, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	deviceHash, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	ballot := PlaintextBallot{
		BallotID: "ballot-1",
		Contests: []PlaintextContest{
			{ContestID: "nonexistent", Selections: nil},
		},
	}
	_, err = EncryptBallot(im, ballot, masterNonce, ctx, deviceHash, deviceHash, 1001)
	c.Assert(err, qt.IsNotNil)
}

func TestEncryptedBallotJSONRehydrate(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	im := manifest.Build(p, testManifest())
	ctx := testContext(c, p)

	masterNonce, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	deviceHash, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	prevTracking := InitialTrackingHash(deviceHash, 1000, ctx.ExtendedBaseHash)

	ballot := PlaintextBallot{
		BallotID: "ballot-1",
		Contests: []PlaintextContest{
			{ContestID: "contest-1", Selections: []PlaintextSelection{{SelectionID: "blue", Vote: 1}}},
		},
	}
	eb, err := EncryptBallot(im, ballot, masterNonce, ctx, deviceHash, prevTracking, 1001)
	c.Assert(err, qt.IsNil)

	data, err := json.Marshal(eb)
	c.Assert(err, qt.IsNil)

	var decoded EncryptedBallot
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded.TrackingHash.Params(), qt.IsNil)

	decoded.Rehydrate(p)
	c.Assert(decoded.Verify(ctx.JointKey, ctx.ExtendedBaseHash), qt.IsTrue)
}
