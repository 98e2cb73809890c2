package pedersen

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
)

func newParameters(t *testing.T) *Parameters {
	points, err := sample.Points(rand.Reader, curve.Secp256k1{}, 2)
	require.NoError(t, err)
	require.NoError(t, ValidateParameters(points[0], points[1]))
	return New(points[0], points[1])
}

func TestValidateParameters(t *testing.T) {
	group := curve.Secp256k1{}
	g := group.NewBasePoint()
	assert.ErrorIs(t, ValidateParameters(nil, g), ErrNilFields)
	assert.ErrorIs(t, ValidateParameters(g, group.NewPoint()), ErrIdentity)
	assert.ErrorIs(t, ValidateParameters(g, g), ErrGEqualH)
}

func TestHomomorphism(t *testing.T) {
	p := newParameters(t)
	group := curve.Secp256k1{}
	for i := 0; i < 10; i++ {
		values, err := sample.Scalars(rand.Reader, group, 4)
		require.NoError(t, err)
		a, ra, b, rb := values[0], values[1], values[2], values[3]

		sum := Add(p.Commit(a, ra), p.Commit(b, rb))
		ab := group.NewScalar().Set(a).Add(b)
		rab := group.NewScalar().Set(ra).Add(rb)
		assert.True(t, sum.Equal(p.Commit(ab, rab)))
		assert.True(t, p.Verify(sum, ab, rab))
		assert.False(t, p.Verify(sum, a, rab))
	}
}

func TestCommitZero(t *testing.T) {
	p := newParameters(t)
	zero := curve.Secp256k1{}.NewScalar()
	assert.True(t, p.Commit(zero, zero).IsIdentity())
}

func TestWriteTo(t *testing.T) {
	points, err := sample.Points(rand.Reader, curve.Secp256k1{}, 2)
	require.NoError(t, err)
	g, h := points[0], points[1]

	var buf, swapped bytes.Buffer
	n, err := New(g, h).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	_, err = New(h, g).WriteTo(&swapped)
	require.NoError(t, err)
	assert.NotEqual(t, buf.Bytes(), swapped.Bytes())

	gBytes, err := g.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, gBytes, buf.Bytes()[:len(gBytes)])

	_, err = (*Parameters)(nil).WriteTo(&buf)
	assert.Error(t, err)
}
