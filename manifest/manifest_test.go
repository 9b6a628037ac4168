package manifest

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/guardianvote/group"
)

func sampleManifest() Manifest {
	return Manifest{
		ElectionScopeID: "test-election",
		Contests: []Contest{
			{
				ObjectID:            "contest-1",
				ElectoralDistrictID: "district-1",
				VoteVariation:       OneOfM,
				NumberElected:       1,
				VotesAllowed:        1,
				BallotSelections: []Selection{
					{ObjectID: "red", SequenceOrder: 0, CandidateID: "red"},
					{ObjectID: "blue", SequenceOrder: 1, CandidateID: "blue"},
				},
			},
		},
	}
}

func TestBuildAddsPlaceholdersPerContest(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	im := Build(p, sampleManifest())

	c.Assert(im.Contests, qt.HasLen, 1)
	c.Assert(im.Contests[0].Placeholders, qt.HasLen, 1)

	placeholderID := im.Contests[0].Placeholders[0].ObjectID
	_, ok := im.Selections[placeholderID]
	c.Assert(ok, qt.IsTrue)
}

func TestSelectionHashesAreCachedAndStable(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	im := Build(p, sampleManifest())

	h1 := im.Contests[0].SelectionHash("red")
	h2 := im.Contests[0].SelectionHash("red")
	c.Assert(h1.Equal(h2), qt.IsTrue)

	other := im.Contests[0].SelectionHash("blue")
	c.Assert(h1.Equal(other), qt.IsFalse)
}

func TestManifestHashChangesWithContest(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()

	m1 := sampleManifest()
	im1 := Build(p, m1)
	h1 := im1.Hash()

	m2 := sampleManifest()
	m2.Contests[0].VotesAllowed = 2
	im2 := Build(p, m2)
	h2 := im2.Hash()

	c.Assert(h1.Equal(h2), qt.IsFalse)
}
