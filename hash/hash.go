// Package hash implements the single domain-separated hash construction used
// throughout proofs, nonce derivation, and the tracking-hash chain: a
// canonical serialization of heterogeneous arguments reduced to an element
// of Zq via SHA-256.
package hash

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/vocdoni/guardianvote/group"
)

// Elems hashes a heterogeneous argument list into an ElementModQ. Supported
// argument kinds: nil (encodes as "null"), string, int, int64, uint64,
// []byte, *group.ElementModP, *group.ElementModQ, and []any (a nested
// sequence, wrapped with its own length). Any other type panics — callers
// control every call site in this repository, so a new unsupported type is a
// programming error, not a runtime input.
func Elems(params *group.Params, args ...any) *group.ElementModQ {
	var b strings.Builder
	writeSeq(&b, args)
	sum := sha256.Sum256([]byte(b.String()))
	v := new(big.Int).SetBytes(sum[:])
	v.Mod(v, params.Q)
	return group.NewElementModQUncheckedForTest(params, v)
}

func writeSeq(b *strings.Builder, args []any) {
	fmt.Fprintf(b, "%d|", len(args))
	for _, a := range args {
		writeElem(b, a)
		b.WriteByte('|')
	}
}

func writeElem(b *strings.Builder, a any) {
	switch v := a.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(v)
	case int:
		b.WriteString(strconv.Itoa(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(v, 10))
	case []byte:
		fmt.Fprintf(b, "%X", v)
	case *group.ElementModP:
		fmt.Fprintf(b, "%X", v.Int())
	case *group.ElementModQ:
		fmt.Fprintf(b, "%X", v.Int())
	case []any:
		writeSeq(b, v)
	default:
		panic(fmt.Sprintf("hash.Elems: unsupported argument type %T", a))
	}
}
