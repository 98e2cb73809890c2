package elgamal

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
)

func setup(t *testing.T) (Parameters, SecretKey, PublicKey) {
	group := curve.Secp256k1{}
	g, err := sample.Point(rand.Reader, group)
	require.NoError(t, err)
	p := Parameters{G: g}
	sk, pk, err := p.KeyGen(rand.Reader)
	require.NoError(t, err)
	return p, sk, pk
}

func TestEncryptDecrypt(t *testing.T) {
	p, sk, pk := setup(t)
	group := p.G.Curve()
	for _, m := range []uint64{0, 1, 5, 1 << 40} {
		message := curve.SetUint64(group.NewScalar(), m)
		c, _, err := p.Encrypt(rand.Reader, pk, message)
		require.NoError(t, err)
		assert.True(t, Decrypt(sk, c).Equal(message.Act(p.G)))
	}
}

func TestHomomorphism(t *testing.T) {
	p, sk, pk := setup(t)
	group := p.G.Curve()
	a := curve.SetUint64(group.NewScalar(), 17)
	b := curve.SetUint64(group.NewScalar(), 25)
	s := curve.SetUint64(group.NewScalar(), 3)

	ca, _, err := p.Encrypt(rand.Reader, pk, a)
	require.NoError(t, err)
	cb, _, err := p.Encrypt(rand.Reader, pk, b)
	require.NoError(t, err)

	// 3⋅(17 + 25) = 126
	sum := ca.Add(cb).Act(s)
	expected := curve.SetUint64(group.NewScalar(), 126).Act(p.G)
	assert.True(t, Decrypt(sk, sum).Equal(expected))

	// operands are left untouched
	assert.True(t, Decrypt(sk, ca).Equal(a.Act(p.G)))
}

func TestEncryptWithNonce(t *testing.T) {
	p, _, pk := setup(t)
	group := p.G.Curve()
	m := group.NewScalar().SetUInt32(9)
	nonce, err := sample.Scalar(rand.Reader, group)
	require.NoError(t, err)
	c1 := p.EncryptWithNonce(pk, m, nonce)
	c2 := p.EncryptWithNonce(pk, m, nonce)
	assert.True(t, c1.Equal(c2))
	assert.True(t, c1.L.Equal(nonce.Act(p.G)))
}

func TestMarshal(t *testing.T) {
	p, sk, pk := setup(t)
	m := p.G.Curve().NewScalar().SetUInt32(2)
	c, _, err := p.Encrypt(rand.Reader, pk, m)
	require.NoError(t, err)
	data, err := c.MarshalBinary()
	require.NoError(t, err)
	c2 := Empty(p.G.Curve())
	require.NoError(t, c2.UnmarshalBinary(data))
	assert.True(t, c.Equal(c2))
	assert.True(t, Decrypt(sk, c2).Equal(m.Act(p.G)))
}
