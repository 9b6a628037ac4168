// Package types holds the wire-encoding helpers shared by every persisted
// artifact: manifests, election records, guardian files, ballots. Group
// elements and scalars are hex-encoded with a fixed byte length matching the
// configured parameter size, as required of the published election record.
package types

import (
	"encoding/hex"
	"fmt"
)

// HexBytes is a []byte that encodes as a "0x"-prefixed hexadecimal string in
// JSON, instead of the base64 encoding/json would otherwise choose.
type HexBytes []byte

// Hex returns the hexadecimal representation without the "0x" prefix.
func (b HexBytes) Hex() string {
	return hex.EncodeToString(b)
}

// String returns the "0x"-prefixed hexadecimal representation.
func (b HexBytes) String() string {
	return "0x" + b.Hex()
}

// LeftPad returns a copy of b padded with leading zeros to n bytes. If b is
// already n bytes or longer, a plain copy is returned.
func (b HexBytes) LeftPad(n int) HexBytes {
	if len(b) >= n {
		out := make(HexBytes, len(b))
		copy(out, b)
		return out
	}
	out := make(HexBytes, n)
	copy(out[n-len(b):], b)
	return out
}

// Equal reports whether b and other hold the same bytes.
func (b HexBytes) Equal(other HexBytes) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	enc := make([]byte, hex.EncodedLen(len(b))+4)
	enc[0] = '"'
	enc[1] = '0'
	enc[2] = 'x'
	hex.Encode(enc[3:], b)
	enc[len(enc)-1] = '"'
	return enc, nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts hex strings with or
// without the "0x" prefix.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("types: invalid hex JSON string: %q", data)
	}
	data = data[1 : len(data)-1]
	if len(data) >= 2 && data[0] == '0' && (data[1] == 'x' || data[1] == 'X') {
		data = data[2:]
	}
	decoded := make([]byte, hex.DecodedLen(len(data)))
	if _, err := hex.Decode(decoded, data); err != nil {
		return fmt.Errorf("types: decoding hex JSON string: %w", err)
	}
	*b = decoded
	return nil
}

// FromHex decodes a hex string (with or without "0x" prefix) into HexBytes.
func FromHex(s string) (HexBytes, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("types: decoding hex string %q: %w", s, err)
	}
	return b, nil
}
