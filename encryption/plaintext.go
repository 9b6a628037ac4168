// Package encryption builds encrypted ballots from plaintext votes: per
// selection (ElGamal encryption plus a disjunctive Chaum–Pedersen proof),
// per contest (homomorphic sum plus a constant Chaum–Pedersen proof), and
// per ballot (nonce derivation and the device tracking-hash chain).
package encryption

// PlaintextSelection is a single 0/1 vote for one selection, plus an
// optional write-in string. EncryptBallot encrypts only Vote; WriteIn is not
// encrypted or carried into the EncryptedBallot.
type PlaintextSelection struct {
	SelectionID string
	Vote        int
	WriteIn     string
}

// PlaintextContest is the voter's choices within one contest. Selections
// omitted here are treated as 0 votes.
type PlaintextContest struct {
	ContestID  string
	Selections []PlaintextSelection
	Overvote   bool // set when the voter's input exceeded votes_allowed
}

// PlaintextBallot is the voter's complete, uncommitted ballot.
type PlaintextBallot struct {
	BallotID string
	Contests []PlaintextContest
}
