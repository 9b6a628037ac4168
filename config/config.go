// Package config collects the environment-driven settings that sit outside
// the cryptographic core: which parameter variant is active, where the
// election record lives, and the bounds that size the shared discrete-log
// cache and the HTTP verify service. Each accessor reads its environment
// variable every time it is called (PrimeOption's result is frozen after the
// first call by group.Current), in the style of the teacher's own
// circuit-artifact constants.
package config

import (
	"cmp"
	"os"
	"strconv"

	"github.com/vocdoni/guardianvote/group"
)

// PrimeOption resolves the active parameter variant. It delegates to
// group.Current, which owns the actual PRIME_OPTION parsing and the
// once-per-process freeze; this wrapper exists so callers configure through
// one named entry point rather than reaching into group directly.
func PrimeOption() *group.Params {
	return group.Current()
}

// RecordDir is the directory (or backing-store path) the election record is
// opened from, read from ELECTIONGUARD_RECORD_DIR with a local default for
// interactive use.
func RecordDir() string {
	return cmp.Or(os.Getenv("ELECTIONGUARD_RECORD_DIR"), "./electionguard-record")
}

// RecordDBType names the storage backend the election record opens, read
// from ELECTIONGUARD_DB_TYPE (metadb's supported types; "pebble" is the
// default).
func RecordDBType() string {
	return cmp.Or(os.Getenv("ELECTIONGUARD_DB_TYPE"), "pebble")
}

// MaxTallyValue bounds the discrete-log search every selection's decrypted
// count is recovered within — an election-wide ceiling on any single
// selection's tally, read from ELECTIONGUARD_MAX_TALLY (default one million,
// comfortably above any plausible single-selection vote count).
func MaxTallyValue() int {
	return envInt("ELECTIONGUARD_MAX_TALLY", 1_000_000)
}

// ListenAddr is the verify service's bind address, read from
// ELECTIONGUARD_LISTEN_ADDR.
func ListenAddr() string {
	return cmp.Or(os.Getenv("ELECTIONGUARD_LISTEN_ADDR"), ":8080")
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
