// Package nonces derives a restartable, deterministic sequence of Zq
// elements from a single seed, so a ballot's entire nonce tree can be
// regenerated from one root secret rather than stored.
package nonces

import (
	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
)

// Sequence is a lazy, index-addressable Zq sequence: element k equals
// hash.Elems(seed, k, header...). Two Sequences built from the same seed and
// header produce the same elements at every index; nothing is precomputed or
// cached, so indexing, slicing, and sequential peeling are all equivalent.
type Sequence struct {
	params *group.Params
	seed   *group.ElementModQ
	header []any
}

// New builds a Sequence rooted at seed, with optional header values mixed
// into every derived element (used to separate, e.g., per-contest nonce
// sequences that share a ballot-level seed).
func New(seed *group.ElementModQ, header ...any) *Sequence {
	return &Sequence{params: seed.Params(), seed: seed, header: header}
}

// At returns the k-th element of the sequence (0-indexed).
func (s *Sequence) At(k int) *group.ElementModQ {
	args := make([]any, 0, len(s.header)+2)
	args = append(args, s.seed, k)
	args = append(args, s.header...)
	return hash.Elems(s.params, args...)
}

// Slice returns elements [a, b).
func (s *Sequence) Slice(a, b int) []*group.ElementModQ {
	out := make([]*group.ElementModQ, 0, b-a)
	for i := a; i < b; i++ {
		out = append(out, s.At(i))
	}
	return out
}

// Peeler yields successive elements starting at 0, one call at a time. It
// holds no state beyond the next index and is safe to discard mid-sequence.
type Peeler struct {
	seq  *Sequence
	next int
}

// Peel returns a fresh Peeler over the sequence.
func (s *Sequence) Peel() *Peeler {
	return &Peeler{seq: s}
}

// Next returns the next element and advances the peeler.
func (p *Peeler) Next() *group.ElementModQ {
	v := p.seq.At(p.next)
	p.next++
	return v
}
