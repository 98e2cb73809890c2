package ublu

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/ublu/internal/elgamal"
	"github.com/taurusgroup/ublu/internal/params"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
)

func TestIndicator(t *testing.T) {
	for _, d := range []int{2, 3, 10} {
		u := newTestEngine(t, d, uint64(d))
		p := u.Params().Indicator()
		group := u.group()
		assert.Equal(t, d, p.Degree())
		assert.True(t, p.Coefficient(d).Equal(group.NewScalar().SetUInt32(1)), "monic")
		for y := uint32(0); y < uint32(d)+3; y++ {
			value := p.Evaluate(group.NewScalar().SetUInt32(y))
			assert.Equal(t, y < uint32(d), value.IsZero(), "d = %d, y = %d", d, y)
		}
		minusOne := group.NewScalar().SetUInt32(1).Negate()
		assert.False(t, p.Evaluate(minusOne).IsZero())
	}
}

func TestEvaluate(t *testing.T) {
	u := newTestEngine(t, 4, 12)
	group := u.group()
	sk, pk, err := u.params.elgamal().KeyGen(rand.Reader)
	require.NoError(t, err)
	nonces, err := sample.Scalars(rand.Reader, group, 4)
	require.NoError(t, err)
	beta, err := sample.Scalar(rand.Reader, group)
	require.NoError(t, err)
	phi, err := sample.Scalar(rand.Reader, group)
	require.NoError(t, err)

	for _, y := range []curve.Scalar{
		group.NewScalar(),
		group.NewScalar().SetUInt32(2),
		group.NewScalar().SetUInt32(7),
		group.NewScalar().SetUInt32(3).Negate(),
	} {
		e := u.evaluate(pk, u.encryptPowers(pk, y, nonces), beta, phi)
		// 1 + β⋅P(y)
		expected := u.Params().Indicator().Evaluate(y).Mul(beta).Add(group.NewScalar().SetUInt32(1))
		assert.True(t, elgamal.Decrypt(sk, e).Equal(expected.Act(u.params.G)))
	}
}

func TestParametersValidate(t *testing.T) {
	u := newTestEngine(t, 3, 13)
	require.NoError(t, u.Params().Validate())

	p := *u.Params()
	p.W = p.W[:2]
	assert.ErrorIs(t, p.Validate(), ErrDimension)

	p = *u.Params()
	p.Stirling = append([]curve.Scalar{}, p.Stirling...)
	p.Stirling[0] = groupOf(u).NewScalar().SetUInt32(1)
	assert.Error(t, p.Validate())

	p = *u.Params()
	p.H = p.G
	assert.Error(t, p.Validate())

	p = *u.Params()
	p.CRS = nil
	assert.ErrorIs(t, p.Validate(), ErrNil)

	_, err := NewFromParameters(&p, rand.Reader)
	assert.ErrorIs(t, err, ErrNil)
}

func TestParametersDecodeDegree(t *testing.T) {
	u := newTestEngine(t, 3, 15)
	p := u.Params()
	encode := func(degree int, w []curve.Point) []byte {
		data, err := cbor.Marshal(parametersCBOR{
			Group:  p.Group.Name(),
			Lambda: p.Lambda,
			Degree: degree,
			G:      curve.NewMarshallablePoint(p.G),
			H:      curve.NewMarshallablePoint(p.H),
			W:      curve.MarshallablePoints(w),
			CRS:    p.CRS,
		})
		require.NoError(t, err)
		return data
	}

	decoded := &Parameters{}
	require.NoError(t, decoded.UnmarshalBinary(encode(3, p.W)))
	assert.Equal(t, 3, decoded.Degree)

	for _, tc := range []struct {
		degree int
		w      []curve.Point
		err    error
	}{
		{4000, p.W, ErrDegree},
		{1 << 30, p.W, ErrDegree},
		{1, p.W[:1], ErrDegree},
		{4, p.W, ErrDimension},
		{params.MaxDegree, p.W, ErrDimension},
		{2, p.W, ErrDimension},
	} {
		err := (&Parameters{}).UnmarshalBinary(encode(tc.degree, tc.w))
		assert.ErrorIs(t, err, tc.err, "degree %d, |W| = %d", tc.degree, len(tc.w))
	}

	w := make([]curve.Point, params.MaxDegree+1)
	for i := range w {
		w[i] = p.W[i%len(p.W)]
	}
	assert.ErrorIs(t, (&Parameters{}).UnmarshalBinary(encode(len(w), w)), ErrDegree)

	_, err := Setup(0, params.MaxDegree+1, rand.Reader)
	assert.ErrorIs(t, err, ErrDegree)
}

func groupOf(u *Ublu) curve.Curve { return u.Params().Group }
