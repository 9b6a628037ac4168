// Package manifest holds the read-only election structure (contests,
// selections, ballot styles) and derives the InternalManifest: placeholder
// selections and cached crypto-hashes that bind every encryption to its
// description.
package manifest

import (
	"strconv"

	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
)

// Selection is one candidate choice within a contest.
type Selection struct {
	ObjectID      string `json:"object_id"`
	SequenceOrder int    `json:"sequence_order"`
	CandidateID   string `json:"candidate_id"`
}

// VoteVariation names the contest's counting rule. Only the two variations
// in scope have constants; Build does not validate the field, so any other
// value is accepted and hashed as given.
type VoteVariation string

const (
	OneOfM VoteVariation = "one_of_m"
	NOfM   VoteVariation = "n_of_m"
)

// Contest describes one race or question on the ballot.
type Contest struct {
	ObjectID            string        `json:"object_id"`
	SequenceOrder       int           `json:"sequence_order"`
	ElectoralDistrictID string        `json:"electoral_district_id"`
	VoteVariation       VoteVariation `json:"vote_variation"`
	NumberElected       int           `json:"number_elected"`
	VotesAllowed        int           `json:"votes_allowed"`
	Name                string        `json:"name"`
	BallotSelections    []Selection   `json:"ballot_selections"`
}

// Manifest is the read-only description of an election.
type Manifest struct {
	ElectionScopeID   string    `json:"election_scope_id"`
	SpecVersion       string    `json:"spec_version"`
	Type              string    `json:"type"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	GeopoliticalUnits []string  `json:"geopolitical_units"`
	Parties           []string  `json:"parties"`
	Candidates        []string  `json:"candidates"`
	Contests          []Contest `json:"contests"`
	BallotStyles      []string  `json:"ballot_styles"`
}

// InternalContest augments a Contest with its N generated placeholder
// selections and cached crypto-hash.
type InternalContest struct {
	Contest
	Placeholders    []Selection
	CryptoHash      *group.ElementModQ
	SelectionHashes map[string]*group.ElementModQ // keyed by selection object id, includes placeholders
}

// SelectionHash returns the cached crypto-hash for one of this contest's
// selections or placeholders.
func (ic *InternalContest) SelectionHash(selectionID string) *group.ElementModQ {
	return ic.SelectionHashes[selectionID]
}

// InternalSelection caches a selection's crypto-hash alongside its
// description.
type InternalSelection struct {
	Selection
	CryptoHash *group.ElementModQ
}

// InternalManifest is derived from a validated Manifest: every contest gains
// N placeholder selections (stable ids derived from the contest id and
// sequence order N+i) so a valid ballot always encrypts exactly N
// affirmative selections per contest, and every contest/selection's
// crypto-hash is precomputed once.
type InternalManifest struct {
	Manifest   Manifest
	Contests   []InternalContest
	Selections map[string]InternalSelection // keyed by selection object id
}

// Build derives an InternalManifest from m under params.
func Build(params *group.Params, m Manifest) *InternalManifest {
	im := &InternalManifest{
		Manifest:   m,
		Contests:   make([]InternalContest, len(m.Contests)),
		Selections: make(map[string]InternalSelection),
	}
	for ci, c := range m.Contests {
		placeholders := make([]Selection, c.NumberElected)
		for i := 0; i < c.NumberElected; i++ {
			placeholders[i] = Selection{
				ObjectID:      c.ObjectID + "-placeholder-" + strconv.Itoa(c.NumberElected+i),
				SequenceOrder: c.NumberElected + i,
				CandidateID:   c.ObjectID + "-placeholder-candidate-" + strconv.Itoa(c.NumberElected+i),
			}
		}
		ic := InternalContest{Contest: c, Placeholders: placeholders, SelectionHashes: make(map[string]*group.ElementModQ)}
		ic.CryptoHash = contestCryptoHash(params, c, placeholders)

		for _, s := range c.BallotSelections {
			h := selectionCryptoHash(params, s)
			ic.SelectionHashes[s.ObjectID] = h
			im.Selections[s.ObjectID] = InternalSelection{Selection: s, CryptoHash: h}
		}
		for _, s := range placeholders {
			h := selectionCryptoHash(params, s)
			ic.SelectionHashes[s.ObjectID] = h
			im.Selections[s.ObjectID] = InternalSelection{Selection: s, CryptoHash: h}
		}
		im.Contests[ci] = ic
	}
	return im
}

// Hash is the manifest-wide crypto-hash: a hash_elems over every contest's
// own crypto-hash in the order the manifest lists the contests (their
// SequenceOrder is not used to sort them). Any change to the manifest — a new
// contest, a reordered selection — changes this hash and, transitively,
// invalidates every ballot encrypted under the old one.
func (im *InternalManifest) Hash() *group.ElementModQ {
	params := im.Contests[0].CryptoHash.Params()
	args := make([]any, 0, len(im.Contests))
	for _, c := range im.Contests {
		args = append(args, c.CryptoHash)
	}
	return hash.Elems(params, args...)
}

func selectionCryptoHash(params *group.Params, s Selection) *group.ElementModQ {
	return hash.Elems(params, s.ObjectID, s.SequenceOrder, s.CandidateID)
}

func contestCryptoHash(params *group.Params, c Contest, placeholders []Selection) *group.ElementModQ {
	args := []any{c.ObjectID, c.SequenceOrder, c.ElectoralDistrictID, c.NumberElected, c.VotesAllowed, string(c.VoteVariation)}
	all := make([]Selection, 0, len(c.BallotSelections)+len(placeholders))
	all = append(all, c.BallotSelections...)
	all = append(all, placeholders...)
	for _, s := range all {
		args = append(args, s.ObjectID, s.SequenceOrder, s.CandidateID)
	}
	return hash.Elems(params, args...)
}
