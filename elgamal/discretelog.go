package elgamal

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/vocdoni/guardianvote/group"
)

// numWorkersDiscreteLogBruteForce sizes the fallback parallel search, in the
// style of dkg/decrypt.go's fixed worker count — here a named constant
// rather than a literal repeated at the call site.
const numWorkersDiscreteLogBruteForce = 10

// largeGapThreshold is how far the sequential frontier can lag a miss before
// Discover switches to the parallel brute-force search instead of extending
// the cache one multiplication at a time. Below it, the cheap sequential
// extension also leaves the cache populated for every intermediate value.
const largeGapThreshold = 50_000

// DiscreteLog is a lazily-extended mapping g^m -> m for small m. Each
// NewDiscreteLog call builds an independent table; there is no package-level
// instance, so a cache is shared only by the callers it is passed to. A
// single writer extends the cache under mutex, and the map itself is only
// ever grown, never mutated in place, so concurrent readers holding the
// mutex briefly for a lookup always see a consistent prefix.
type DiscreteLog struct {
	params *group.Params
	mu     sync.Mutex
	table  map[string]int
	last   *group.ElementModP // g^(len(table)-1), the running frontier
	max    int                // upper bound on m ever searched
}

// NewDiscreteLog builds a cache seeded with g^0=1, searching up to max on a
// miss. max is typically N * total_voters, an election-wide ceiling on any
// single tally value.
func NewDiscreteLog(params *group.Params, max int) *DiscreteLog {
	one := group.OneModP(params)
	return &DiscreteLog{
		params: params,
		table:  map[string]int{one.String(): 0},
		last:   one,
		max:    max,
	}
}

// Discover returns m such that g^m == target, extending the cache if needed.
// It first tries the cheap cache lookup, then, if the gap between the
// current frontier and max is small, grows the cache sequentially under its
// writer lock; past largeGapThreshold it instead falls back to the parallel
// brute-force search (mirroring dkg/decrypt.go's worker-pool fallback,
// generalized from an elliptic-curve point comparison to Zp* equality),
// which does not populate the intermediate cache entries but finds a single
// distant target far faster than a one-writer sequential scan would.
func (d *DiscreteLog) Discover(target *group.ElementModP) (int, error) {
	d.mu.Lock()
	if m, ok := d.table[target.String()]; ok {
		d.mu.Unlock()
		return m, nil
	}
	start := len(d.table) - 1
	if d.max-start > largeGapThreshold {
		params, max := d.params, d.max
		d.mu.Unlock()
		m, err := discoverBruteForceParallel(params, target, max)
		if err != nil {
			return 0, err
		}
		d.mu.Lock()
		d.table[target.String()] = m
		d.mu.Unlock()
		return m, nil
	}
	// Extend sequentially from the current frontier until found or max.
	cur := d.last
	g := group.GModP(d.params)
	for m := start + 1; m <= d.max; m++ {
		cur = group.MultP(cur, g)
		d.table[cur.String()] = m
		d.last = cur
		if cur.Equal(target) {
			d.mu.Unlock()
			return m, nil
		}
	}
	d.mu.Unlock()
	return 0, fmt.Errorf("elgamal: discrete log not found within bound %d", d.max)
}

// discoverBruteForceParallel is an alternative search strategy kept for
// targets whose value is known to be large and sparse in the cache (e.g.
// verifying a published tally against a fresh process that has not yet
// populated its cache). It does not share state with the sequential cache.
func discoverBruteForceParallel(params *group.Params, target *group.ElementModP, max int) (int, error) {
	type result struct {
		m     int
		found bool
	}
	results := make(chan result, numWorkersDiscreteLogBruteForce)
	done := make(chan struct{})
	defer close(done)

	g := group.GModP(params)
	worker := func(start, end int) {
		cur := group.OneModP(params)
		if start > 0 {
			cur = group.PowPInt(g, big.NewInt(int64(start)))
		}
		for m := start; m <= end; m++ {
			if cur.Equal(target) {
				select {
				case results <- result{m, true}:
				case <-done:
				}
				return
			}
			cur = group.MultP(cur, g)
		}
		results <- result{0, false}
	}

	step := max / numWorkersDiscreteLogBruteForce
	if step < 1 {
		step = 1
	}
	spawned := 0
	for i := 0; i*step <= max; i++ {
		start := i * step
		end := start + step - 1
		if end > max || i == numWorkersDiscreteLogBruteForce-1 {
			end = max
		}
		go worker(start, end)
		spawned++
		if end == max {
			break
		}
	}

	for i := 0; i < spawned; i++ {
		res := <-results
		if res.found {
			return res.m, nil
		}
	}
	return 0, fmt.Errorf("elgamal: discrete log not found within bound %d", max)
}
