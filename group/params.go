package group

import (
	"fmt"
	"math/big"
	"os"
	"sync"
)

// Variant names the configured prime set. Mixing variants between encryption
// and decryption is forbidden. Every Params carries its own Variant; the
// element constructors and arithmetic in this package do not compare
// variants, so nothing here rejects a mix.
type Variant string

const (
	// Standard is the production-grade parameter set (~3072-bit P, 256-bit Q).
	Standard Variant = "standard"
	// TestOnly is a small parameter set for fast property tests.
	TestOnly Variant = "test-only"
)

// Params is the election-wide (P, Q, G, R) tuple: P is the large prime
// modulus, Q is the prime order of the G-generated subgroup, G is the
// generator, and R = (P-1)/Q is the cofactor. Every hash and proof in the
// system depends on these values, so Params is immutable once constructed.
type Params struct {
	Variant  Variant
	P        *big.Int
	Q        *big.Int
	G        *big.Int
	R        *big.Int
	PBitLen  int
	QByteLen int // fixed byte length used to encode ElementModQ on the wire
	PByteLen int // fixed byte length used to encode ElementModP on the wire
}

// standard and testOnly are the two fixed constant sets named in the spec.
// They are computed once in init() from verified hex literals below and are
// never mutated afterward.
var (
	standardParams *Params
	testParams     *Params

	// current is the process-wide selected Params, resolved lazily from
	// PRIME_OPTION on first use and then frozen (see Current/ freeze below).
	current     *Params
	currentOnce sync.Once
)

const (
	standardHexP = "df5eddac227e7bb9544c420eb4e961ad6359fe80613897aa412af973442e28ac0b89919f8ad5e95a49f2bcc980542827e59ce823561de1a4cc418f8085a91a05eb2412b728828320c021a2153b7c9902f291d86dc97fda8ba6c8eb5ecca3d6a57f37b61b5545f30efdf9c7312a30918bfa9e922adce7b50fceb3dde860c8e08b165bd7597a52bcf2cadbe7efa5b27badd7e77913db5bf9ecc312cd23b1490c8c8cdeacc0ffe14cde8eb1aad6c9c0d619ba40cc0dd1735f9eca502632a2d877a84a4416acd6d6260aea7df1eef3a76a28bc480333d8965e01590275ceab77b5b88ec72309f2dc06482904786dffbc73ec14c060d3fcc1d3292b9310ef1102298059168265194260d8678fa3e44f06fbbc1e89de7cf739197eabe26a728777b583eb5c3451756686911d422fa27c4a85ce4ef7b3745ce27eb3d0d2d231fd396919dc502a49317c94a23efcd0d06da242eb7bfd5b810b067315549acdadbc203364c327ed3427e2376bd1067e7612627fa84435c7e76e9051a2f81ce24d26a9a873"
	standardHexQ = "edec9bcc97e70b6e307a9e97953b52f0f37dba43e6465b369102e6ade9e48159"
	standardHexG = "3f797a7f76b7d21ceea2444dfff0827edb627a9b0c26bb449d5e36e719234bb122306dd3f45e680c4a389713a000115bf93a23c136a86662bbc73ebde5d16d41e423ecbe1b167f64aab7a8e3832ce4593363b9f95858f6b7c480689884735a88099ea41ffab2060a72e802c1667c97be09e70287b6d160865058d7cf068fe8ae28b49b376bfabd695b67359401ad4c0cc3e7eb0a69bbfd13b2956bc9462dd9180b63293629ca8e099b2f0b91787f1b60c758f3c2a6db8d987a2dc2fd3559b99b9aa1ee9d206b17e3e2bdd5071b69221baadc7afdb13e0882b5a31ac25ef3f50f3f239edcb04cfa78afe57902f65f9dedc82026f9ecaea7767a78a6b69df90a766ce4267476a92d782c113511f7016ce68f6467efa0ce292681f46a09da5feab65f57e8a286785e06584e5c3441ef6f2fa0c39e7557d652e8b4bd2eed1cbfc4b1900e2fcb5d016813bae5923771fa0f00e035f7ee8d26697768828bb0cd5e07e5d866a792a88f30987064b4f74d52c61a7d8f81e5b5dee5330811aafdfbaf3697"

	testHexP = "800e31832f95"
	testHexQ = "86583ae5"
	testHexG = "589753b06aea"
)

func mustHex(h string) *big.Int {
	v, ok := new(big.Int).SetString(h, 16)
	if !ok {
		panic(fmt.Sprintf("group: invalid hex constant %q", h))
	}
	return v
}

func buildParams(variant Variant, hexP, hexQ, hexG string) *Params {
	p := mustHex(hexP)
	q := mustHex(hexQ)
	g := mustHex(hexG)
	r := new(big.Int).Sub(p, big.NewInt(1))
	r.Div(r, q)
	if new(big.Int).Mod(new(big.Int).Sub(p, big.NewInt(1)), q).Sign() != 0 {
		panic(fmt.Sprintf("group: %s: q does not divide p-1", variant))
	}
	if new(big.Int).Exp(g, q, p).Cmp(big.NewInt(1)) != 0 {
		panic(fmt.Sprintf("group: %s: generator does not have order q", variant))
	}
	return &Params{
		Variant:  variant,
		P:        p,
		Q:        q,
		G:        g,
		R:        r,
		PBitLen:  p.BitLen(),
		QByteLen: (q.BitLen() + 7) / 8,
		PByteLen: (p.BitLen() + 7) / 8,
	}
}

func init() {
	standardParams = buildParams(Standard, standardHexP, standardHexQ, standardHexG)
	testParams = buildParams(TestOnly, testHexP, testHexQ, testHexG)
}

// StandardParams returns the production-grade constant set.
func StandardParams() *Params { return standardParams }

// TestParams returns the small constant set used by property tests.
func TestParams() *Params { return testParams }

// ParamsFor returns the Params for the named variant.
func ParamsFor(v Variant) (*Params, error) {
	switch v {
	case Standard:
		return standardParams, nil
	case TestOnly:
		return testParams, nil
	default:
		return nil, fmt.Errorf("group: unknown prime option %q", v)
	}
}

// Current returns the process-wide Params, resolved once from the
// PRIME_OPTION environment variable (default "standard") and frozen for the
// lifetime of the process: swapping the active parameter set mid-process is
// undefined behavior in the source protocol, so this implementation simply
// never re-reads the environment after the first call.
func Current() *Params {
	currentOnce.Do(func() {
		opt := os.Getenv("PRIME_OPTION")
		switch Variant(opt) {
		case TestOnly:
			current = testParams
		case Standard, "":
			current = standardParams
		default:
			panic(fmt.Sprintf("group: invalid PRIME_OPTION %q", opt))
		}
	})
	return current
}
