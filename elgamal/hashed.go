package elgamal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/vocdoni/guardianvote/group"
	"github.com/vocdoni/guardianvote/hash"
	"github.com/vocdoni/guardianvote/xerrs"
)

// hashedElGamalBlockSize is the fixed padding granularity for extended data:
// every payload is padded up to a multiple of this many bytes so ciphertext
// length alone never reveals the plaintext's exact size.
const hashedElGamalBlockSize = 64

// kdfMacLabel and kdfStreamLabel domain-separate the two KDF outputs drawn
// from the same shared point, so the stream key can never double as the MAC
// key.
const (
	kdfStreamLabel = "hashed-elgamal-stream"
	kdfMacLabel    = "hashed-elgamal-mac"
)

// HashedCiphertext is (pad=g^R, data=payload XOR KDF stream, mac=HMAC-SHA256
// over pad||data). It carries bulk data — contest extended data, key-ceremony
// backups — that does not fit a single Zq scalar.
type HashedCiphertext struct {
	Pad  *group.ElementModP
	Data []byte
	MAC  []byte
}

// HashedEncrypt encrypts payload under nonce r and public key k. seed is
// mixed into the KDF domain separation (typically the recipient's
// guardian id or a ballot-scoped label) so the same (r, k) pair used for two
// different purposes never reuses a keystream.
func HashedEncrypt(payload []byte, r *group.ElementModQ, k *group.ElementModP, seed string) (*HashedCiphertext, error) {
	params := r.Params()
	pad := group.GPowP(params, r)
	shared := group.PowP(k, r)

	padded, err := padPayload(payload)
	if err != nil {
		return nil, err
	}

	streamKey := kdf(params, shared, seed, kdfStreamLabel, len(padded))
	data := xorBytes(padded, streamKey)

	macKey := kdf(params, shared, seed, kdfMacLabel, sha256.Size)
	mac := computeMAC(macKey, pad, data)

	return &HashedCiphertext{Pad: pad, Data: data, MAC: mac}, nil
}

// HashedDecrypt decrypts a HashedCiphertext using the recipient's secret key
// s, verifying the MAC before releasing the plaintext.
func HashedDecrypt(c *HashedCiphertext, s *group.ElementModQ, seed string) ([]byte, error) {
	params := s.Params()
	shared := group.PowP(c.Pad, s)

	macKey := kdf(params, shared, seed, kdfMacLabel, sha256.Size)
	expected := computeMAC(macKey, c.Pad, c.Data)
	if !hmac.Equal(expected, c.MAC) {
		return nil, xerrs.New("elgamal.HashedDecrypt", xerrs.InvalidProof, nil)
	}

	streamKey := kdf(params, shared, seed, kdfStreamLabel, len(c.Data))
	padded := xorBytes(c.Data, streamKey)
	return unpadPayload(padded)
}

// padPayload prefixes payload with its 2-byte big-endian length and pads to
// a multiple of hashedElGamalBlockSize.
func padPayload(payload []byte) ([]byte, error) {
	if len(payload) > 0xFFFF {
		return nil, xerrs.New("elgamal.padPayload", xerrs.EncodingError, nil)
	}
	total := 2 + len(payload)
	padded := ((total + hashedElGamalBlockSize - 1) / hashedElGamalBlockSize) * hashedElGamalBlockSize
	out := make([]byte, padded)
	binary.BigEndian.PutUint16(out[:2], uint16(len(payload)))
	copy(out[2:], payload)
	return out, nil
}

func unpadPayload(padded []byte) ([]byte, error) {
	if len(padded) < 2 {
		return nil, xerrs.New("elgamal.unpadPayload", xerrs.EncodingError, nil)
	}
	n := int(binary.BigEndian.Uint16(padded[:2]))
	if 2+n > len(padded) {
		return nil, xerrs.New("elgamal.unpadPayload", xerrs.EncodingError, nil)
	}
	return padded[2 : 2+n], nil
}

// kdf stretches a shared group element into an n-byte keystream using
// repeated domain-separated hash.Elems calls over successive block counters
// — the same canonical-hash construction used everywhere else, rather than a
// foreign KDF primitive.
func kdf(params *group.Params, shared *group.ElementModP, seed, label string, n int) []byte {
	out := make([]byte, 0, n+sha256.Size)
	for block := 0; len(out) < n; block++ {
		h := hash.Elems(params, shared, seed, label, block)
		out = append(out, h.Bytes()...)
	}
	return out[:n]
}

func xorBytes(a, key []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ key[i]
	}
	return out
}

func computeMAC(key []byte, pad *group.ElementModP, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(pad.Bytes())
	m.Write(data)
	return m.Sum(nil)
}
