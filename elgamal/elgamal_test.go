package elgamal

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/guardianvote/group"
)

func newKeyPair(c *qt.C, p *group.Params) *KeyPair {
	secret, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	kp, err := KeyPairFromSecret(secret)
	c.Assert(err, qt.IsNil)
	return kp
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	kp := newKeyPair(c, p)
	dlog := NewDiscreteLog(p, 10)

	for _, m := range []int{0, 1, 3, 7} {
		r, err := group.RandQNonZero(p)
		c.Assert(err, qt.IsNil)
		ct, err := Encrypt(m, r, kp.PublicKey)
		c.Assert(err, qt.IsNil)

		got, err := DecryptKnownSecret(dlog, ct, kp.SecretKey)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, m)

		got, err = DecryptKnownNonce(dlog, ct, kp.PublicKey, r)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, m)
	}
}

func TestEncryptRejectsZeroNonce(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	kp := newKeyPair(c, p)
	_, err := Encrypt(1, group.ZeroModQ(p), kp.PublicKey)
	c.Assert(err, qt.IsNotNil)
}

func TestKeyPairFromSecretRejectsDegenerateSecrets(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()

	_, err := KeyPairFromSecret(group.ZeroModQ(p))
	c.Assert(err, qt.IsNotNil)

	_, err = KeyPairFromSecret(group.OneModQ(p))
	c.Assert(err, qt.IsNotNil)
}

func TestAddIsHomomorphic(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	kp := newKeyPair(c, p)
	dlog := NewDiscreteLog(p, 20)

	r1, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	r2, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	c1, err := Encrypt(3, r1, kp.PublicKey)
	c.Assert(err, qt.IsNil)
	c2, err := Encrypt(4, r2, kp.PublicKey)
	c.Assert(err, qt.IsNil)

	sum := Add(c1, c2)
	got, err := DecryptKnownSecret(dlog, sum, kp.SecretKey)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, 7)
}

func TestCiphertextJSONRoundTrip(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	kp := newKeyPair(c, p)
	r, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)
	ct, err := Encrypt(2, r, kp.PublicKey)
	c.Assert(err, qt.IsNil)

	data, err := json.Marshal(ct)
	c.Assert(err, qt.IsNil)

	var decoded Ciphertext
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	decoded.Rehydrate(p)

	dlog := NewDiscreteLog(p, 10)
	got, err := DecryptKnownSecret(dlog, &decoded, kp.SecretKey)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, 2)
}

func TestHashedEncryptDecryptRoundTrip(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	kp := newKeyPair(c, p)
	r, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	payload := []byte("write-in: Jane Doe")
	ct, err := HashedEncrypt(payload, r, kp.PublicKey, "guardian-1->guardian-2")
	c.Assert(err, qt.IsNil)

	got, err := HashedDecrypt(ct, kp.SecretKey, "guardian-1->guardian-2")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, payload)
}

func TestHashedDecryptRejectsWrongSeed(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	kp := newKeyPair(c, p)
	r, err := group.RandQNonZero(p)
	c.Assert(err, qt.IsNil)

	ct, err := HashedEncrypt([]byte("payload"), r, kp.PublicKey, "a->b")
	c.Assert(err, qt.IsNil)

	_, err = HashedDecrypt(ct, kp.SecretKey, "a->c")
	c.Assert(err, qt.IsNotNil)
}

func TestDiscreteLogDiscoversSequentially(t *testing.T) {
	c := qt.New(t)
	p := group.TestParams()
	dlog := NewDiscreteLog(p, 50)

	for _, target := range []int{0, 1, 2, 10, 30} {
		g := group.PowPInt(group.GModP(p), big.NewInt(int64(target)))
		m, err := dlog.Discover(g)
		c.Assert(err, qt.IsNil)
		c.Assert(m, qt.Equals, target)
	}
}
