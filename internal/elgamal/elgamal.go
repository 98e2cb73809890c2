package elgamal

import (
	"errors"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
)

type (
	PublicKey = curve.Point
	SecretKey = curve.Scalar
	Nonce     = curve.Scalar
)

// Parameters fixes the generator G used both to encode messages and to derive keys.
type Parameters struct {
	G curve.Point
}

// Ciphertext is an exponent ElGamal encryption of a scalar m.
type Ciphertext struct {
	// L = nonce⋅G
	L curve.Point
	// M = m⋅G + nonce⋅public
	M curve.Point
}

// Empty returns a ciphertext with both components set to the identity.
func Empty(group curve.Curve) *Ciphertext {
	return &Ciphertext{
		L: group.NewPoint(),
		M: group.NewPoint(),
	}
}

// KeyGen samples a secret key x and returns it with public = x⋅G.
func (p Parameters) KeyGen(rand io.Reader) (SecretKey, PublicKey, error) {
	secret, err := sample.Scalar(rand, p.G.Curve())
	if err != nil {
		return nil, nil, err
	}
	return secret, secret.Act(p.G), nil
}

// Encrypt samples a fresh nonce and encrypts message.
func (p Parameters) Encrypt(rand io.Reader, public PublicKey, message curve.Scalar) (*Ciphertext, Nonce, error) {
	nonce, err := sample.Scalar(rand, p.G.Curve())
	if err != nil {
		return nil, nil, err
	}
	return p.EncryptWithNonce(public, message, nonce), nonce, nil
}

// EncryptWithNonce returns (nonce⋅G, message⋅G + nonce⋅public).
func (p Parameters) EncryptWithNonce(public PublicKey, message curve.Scalar, nonce Nonce) *Ciphertext {
	return &Ciphertext{
		L: nonce.Act(p.G),
		M: message.Act(p.G).Add(nonce.Act(public)),
	}
}

// Decrypt returns m⋅G = M - secret⋅L.
//
// Recovering m itself would require a discrete logarithm, which the protocols
// built on top never need.
func Decrypt(secret SecretKey, c *Ciphertext) curve.Point {
	return c.M.Sub(secret.Act(c.L))
}

// Add returns the component-wise sum c + other, an encryption of the sum of the plaintexts.
func (c *Ciphertext) Add(other *Ciphertext) *Ciphertext {
	return &Ciphertext{
		L: c.L.Add(other.L),
		M: c.M.Add(other.M),
	}
}

// Act returns s⋅c, an encryption of s times the plaintext.
func (c *Ciphertext) Act(s curve.Scalar) *Ciphertext {
	return &Ciphertext{
		L: s.Act(c.L),
		M: s.Act(c.M),
	}
}

// Clone returns a deep copy of c.
func (c *Ciphertext) Clone() *Ciphertext {
	group := c.L.Curve()
	return &Ciphertext{
		L: group.NewPoint().Set(c.L),
		M: group.NewPoint().Set(c.M),
	}
}

// Equal returns true if both components match.
func (c *Ciphertext) Equal(other *Ciphertext) bool {
	return c.L.Equal(other.L) && c.M.Equal(other.M)
}

// Valid checks that both components are set.
//
// The identity is a legitimate value here: a nonce may be zero in tests, and
// an honestly computed linear combination may cancel out.
func (c *Ciphertext) Valid() bool {
	return c != nil && c.L != nil && c.M != nil
}

// WriteTo implements io.WriterTo.
func (c *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range []curve.Point{c.L, c.M} {
		buf, err := p.MarshalBinary()
		if err != nil {
			return total, err
		}
		n, err := w.Write(buf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Ciphertext) Domain() string {
	return "ElGamal Ciphertext"
}

type ciphertextCBOR struct {
	L *curve.MarshallablePoint
	M *curve.MarshallablePoint
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	if !c.Valid() {
		return nil, errors.New("elgamal: marshal invalid ciphertext")
	}
	return cbor.Marshal(ciphertextCBOR{
		L: curve.NewMarshallablePoint(c.L),
		M: curve.NewMarshallablePoint(c.M),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	var v ciphertextCBOR
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.L == nil || v.M == nil {
		return errors.New("elgamal: unmarshal ciphertext: missing component")
	}
	c.L, c.M = v.L.Point, v.M.Point
	return nil
}
