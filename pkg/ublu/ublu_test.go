package ublu

import (
	"bytes"
	"crypto/rand"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/ublu/internal/elgamal"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
	"github.com/taurusgroup/ublu/pkg/pool"
	zkalgebraic "github.com/taurusgroup/ublu/pkg/zk/algebraic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine(t *testing.T, d int, seed uint64, opts ...Option) *Ublu {
	u, err := Setup(0, d, sample.NewSeeded(seed), opts...)
	require.NoError(t, err)
	return u
}

type session struct {
	u    *Ublu
	pk   *PublicKey
	sk   *SecretKey
	hint *Hint
}

func newSession(t *testing.T, d int, threshold, seed uint64) *session {
	u := newTestEngine(t, d, seed)
	pk, sk, hint, err := u.KeyGen(threshold)
	require.NoError(t, err)
	return &session{u: u, pk: pk, sk: sk, hint: hint}
}

// run folds increments into the genesis hint and escrows the result.
func (s *session) run(t *testing.T, increments ...uint64) bool {
	hint := s.hint
	var tag *Tag
	for _, delta := range increments {
		next, nextTag, err := s.u.Update(s.pk, hint, tag, delta)
		require.NoError(t, err)
		require.NoError(t, s.u.VerifyTag(s.pk, hint, next, nextTag))
		hint, tag = next, nextTag
	}
	escrow, err := s.u.Escrow(s.pk, hint)
	require.NoError(t, err)
	require.NoError(t, s.u.VerifyEscrow(s.pk, hint, escrow))
	return s.u.Decrypt(s.sk, escrow)
}

func TestScenario(t *testing.T) {
	s := newSession(t, 10, 5, 1)
	assert.False(t, s.run(t, 4), "4 has not reached 5")
	assert.True(t, s.run(t, 4, 4), "8 has reached 5")
}

func TestThresholdWindow(t *testing.T) {
	const (
		d         = 3
		threshold = 5
	)
	s := newSession(t, d, threshold, 2)
	assert.False(t, s.run(t), "genesis hint has total 0")
	for total := uint64(0); total < 10; total++ {
		expected := total >= threshold && total < threshold+d
		assert.Equal(t, expected, s.run(t, total), "total %d", total)
	}
	assert.True(t, s.run(t, 2, 1, 0, 3))
}

func TestUpdatePowers(t *testing.T) {
	u := newTestEngine(t, 6, 2)
	group := u.group()
	sk, pk, err := u.params.elgamal().KeyGen(rand.Reader)
	require.NoError(t, err)

	zeros := make([]curve.Scalar, u.params.Degree)
	for i := range zeros {
		zeros[i] = group.NewScalar()
	}
	random, err := sample.Scalars(rand.Reader, group, u.params.Degree)
	require.NoError(t, err)

	for _, tc := range []struct{ y, delta uint32 }{{0, 0}, {3, 4}, {7, 0}, {0, 9}, {11, 13}} {
		y := group.NewScalar().SetUInt32(tc.y)
		delta := group.NewScalar().SetUInt32(tc.delta)
		expected := group.NewScalar().SetUInt32(tc.y + tc.delta)

		for _, nonces := range [][]curve.Scalar{zeros, random} {
			old := u.encryptPowers(pk, y, zeros)
			updated := u.updatePowers(pk, old, delta, nonces)
			require.Len(t, updated, u.params.Degree)
			for i, c := range updated {
				want := curve.Pow(expected, i+1).Act(u.params.G)
				assert.True(t, elgamal.Decrypt(sk, c).Equal(want), "(%d+%d)^%d", tc.y, tc.delta, i+1)
			}
		}
	}
}

func TestUpdateDoesNotMutate(t *testing.T) {
	s := newSession(t, 4, 2, 3)
	before, err := s.hint.MarshalBinary()
	require.NoError(t, err)
	_, _, err = s.u.Update(s.pk, s.hint, nil, 3)
	require.NoError(t, err)
	after, err := s.hint.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after))
	assert.NoError(t, s.u.VerifyHint(s.pk, s.hint))
}

func TestSetupErrors(t *testing.T) {
	_, err := Setup(128, 1, rand.Reader)
	assert.ErrorIs(t, err, ErrDegree)

	_, err = Setup(128, 4, bytes.NewReader(make([]byte, 10)))
	assert.ErrorIs(t, err, ErrRandomness)

	u := newTestEngine(t, 3, 3)
	assert.Equal(t, 3, u.Params().Degree)
	assert.Len(t, u.Params().W, 3)
	assert.Len(t, u.Params().Stirling, 3)
}

func TestSetupLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pl := pool.NewPool(2)
	defer pl.TearDown()
	_, err := Setup(0, 3, sample.NewSeeded(16), WithLogger(zap.New(core)), WithPool(pl))
	require.NoError(t, err)

	entries := logs.FilterMessage("setup").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(2), fields["workers"])
	assert.Equal(t, int64(3), fields["degree"])
	assert.Equal(t, "secp256k1", fields["group"])
}

func TestRandomnessExhausted(t *testing.T) {
	u := newTestEngine(t, 3, 4)
	drained, err := NewFromParameters(u.Params(), bytes.NewReader(make([]byte, 40)))
	require.NoError(t, err)
	_, _, _, err = drained.KeyGen(1)
	assert.ErrorIs(t, err, ErrRandomness)
}

func TestDimension(t *testing.T) {
	s := newSession(t, 4, 2, 4)
	short := &Hint{Ciphers: s.hint.Ciphers[:3], ComX: s.hint.ComX, Proof: s.hint.Proof}

	_, _, err := s.u.Update(s.pk, short, nil, 1)
	assert.ErrorIs(t, err, ErrDimension)
	_, err = s.u.Escrow(s.pk, short)
	assert.ErrorIs(t, err, ErrDimension)
	assert.ErrorIs(t, s.u.VerifyHint(s.pk, short), ErrDimension)

	// a hint from a deployment with another degree
	other := newSession(t, 5, 2, 5)
	_, _, err = s.u.Update(s.pk, other.hint, nil, 1)
	assert.ErrorIs(t, err, ErrDimension)

	_, _, err = s.u.Update(s.pk, nil, nil, 1)
	assert.ErrorIs(t, err, ErrNil)
}

func TestLineage(t *testing.T) {
	s := newSession(t, 3, 2, 6)
	h1, tag1, err := s.u.Update(s.pk, s.hint, nil, 1)
	require.NoError(t, err)
	h2, tag2, err := s.u.Update(s.pk, h1, tag1, 1)
	require.NoError(t, err)
	require.NoError(t, s.u.VerifyTag(s.pk, h1, h2, tag2))

	_, _, err = s.u.Update(s.pk, s.hint, tag1, 1)
	assert.ErrorIs(t, err, ErrLineage)
	_, _, err = s.u.Update(s.pk, h1, tag2, 1)
	assert.ErrorIs(t, err, ErrLineage)

	assert.ErrorIs(t, s.u.VerifyTag(s.pk, h1, h2, tag1), ErrLineage)
	assert.ErrorIs(t, s.u.VerifyTag(s.pk, s.hint, h2, tag2), ErrInvalidProof)
}

func TestProofs(t *testing.T) {
	s := newSession(t, 5, 3, 7)
	require.NoError(t, s.u.VerifyPublicKey(s.pk))
	require.NoError(t, s.u.VerifyHint(s.pk, s.hint))
	assert.True(t, s.hint.IsGenesis())

	next, tag, err := s.u.Update(s.pk, s.hint, nil, 2)
	require.NoError(t, err)
	require.NoError(t, s.u.VerifyTag(s.pk, s.hint, next, tag))
	assert.False(t, next.IsGenesis())
	assert.ErrorIs(t, s.u.VerifyHint(s.pk, next), ErrPlaceholderProof)

	escrow, err := s.u.Escrow(s.pk, next)
	require.NoError(t, err)
	require.NoError(t, s.u.VerifyEscrow(s.pk, next, escrow))
	assert.ErrorIs(t, s.u.VerifyEscrow(s.pk, s.hint, escrow), ErrInvalidProof)

	other := newSession(t, 5, 3, 8)
	assert.Error(t, s.u.VerifyPublicKey(&PublicKey{PK: s.pk.PK, ComT: other.pk.ComT, Anchor: s.pk.Anchor, Proof: s.pk.Proof}))
	assert.ErrorIs(t, s.u.VerifyHint(other.pk, s.hint), ErrInvalidProof)
}

// A genesis hint for y = +t matches the anchor, since it only encrypts y² = t²,
// and has a valid consistency proof for the running total x = 2t.
func TestVerifyHintShiftedTotal(t *testing.T) {
	const (
		d         = 4
		threshold = 2
	)
	u := newTestEngine(t, d, 14)
	p := u.params
	group := u.group()
	ped := p.pedersen()

	sk, pkPoint, err := p.elgamal().KeyGen(rand.Reader)
	require.NoError(t, err)
	secrets, err := sample.Scalars(rand.Reader, group, 2)
	require.NoError(t, err)
	rT, rX := secrets[0], secrets[1]
	nonces, err := sample.Scalars(rand.Reader, group, d)
	require.NoError(t, err)

	tScalar := curve.SetUint64(group.NewScalar(), threshold)
	comT := ped.Commit(tScalar, rT)
	y := group.NewScalar().Set(tScalar)
	x := group.NewScalar().Set(tScalar).Add(tScalar)
	comX := ped.Commit(x, rX)

	ciphers := u.encryptPowers(pkPoint, y, nonces)
	pk := &PublicKey{PK: pkPoint, ComT: comT, Anchor: ciphers[1].Clone()}
	proof, err := zkalgebraic.Prove(rand.Reader, p.CRS, consistencyLanguage{params: p, pk: pkPoint},
		consistencyStatement(comT, comX, ciphers), consistencyWitness(tScalar, rT, x, rX, y, nonces))
	require.NoError(t, err)
	hint := &Hint{Ciphers: ciphers, ComX: comX, Proof: newProof(ProofAlgebraic, proof)}

	assert.ErrorIs(t, u.VerifyHint(pk, hint), ErrInvalidProof)

	// accepted, this hint would report the threshold as reached without any increment
	escrow, err := u.Escrow(pk, hint)
	require.NoError(t, err)
	assert.True(t, u.Decrypt(&SecretKey{SK: sk}, escrow))

	// the honest genesis hint for the same key material is accepted
	minusT := group.NewScalar().Set(tScalar).Negate()
	zero := group.NewScalar()
	honestCiphers := u.encryptPowers(pkPoint, minusT, nonces)
	honestPK := &PublicKey{PK: pkPoint, ComT: comT, Anchor: honestCiphers[1].Clone()}
	comZero := ped.Commit(zero, zero)
	honestProof, err := zkalgebraic.Prove(rand.Reader, p.CRS, consistencyLanguage{params: p, pk: pkPoint},
		consistencyStatement(comT, comZero, honestCiphers), consistencyWitness(tScalar, rT, zero, zero, minusT, nonces))
	require.NoError(t, err)
	honest := &Hint{Ciphers: honestCiphers, ComX: comZero, Proof: newProof(ProofAlgebraic, honestProof)}
	assert.NoError(t, u.VerifyHint(honestPK, honest))
}

func TestTamper(t *testing.T) {
	s := newSession(t, 4, 1, 9)
	group := s.u.group()
	g := group.NewBasePoint()
	shift := func(c *elgamal.Ciphertext) *elgamal.Ciphertext {
		return &elgamal.Ciphertext{L: c.L, M: c.M.Add(g)}
	}
	replace := func(ciphers []*elgamal.Ciphertext, i int) []*elgamal.Ciphertext {
		out := append([]*elgamal.Ciphertext{}, ciphers...)
		out[i] = shift(out[i])
		return out
	}

	t.Run("public key", func(t *testing.T) {
		pk := *s.pk
		pk.Anchor = shift(pk.Anchor)
		assert.ErrorIs(t, s.u.VerifyPublicKey(&pk), ErrInvalidProof)
		pk = *s.pk
		pk.PK = pk.PK.Add(g)
		assert.ErrorIs(t, s.u.VerifyPublicKey(&pk), ErrInvalidProof)
		pk = *s.pk
		pk.Proof = placeholder()
		assert.ErrorIs(t, s.u.VerifyPublicKey(&pk), ErrPlaceholderProof)
	})

	t.Run("hint", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			hint := &Hint{Ciphers: replace(s.hint.Ciphers, i), ComX: s.hint.ComX, Proof: s.hint.Proof}
			assert.ErrorIs(t, s.u.VerifyHint(s.pk, hint), ErrInvalidProof, "ciphertext %d", i)
		}
		hint := &Hint{Ciphers: s.hint.Ciphers, ComX: s.hint.ComX.Add(g), Proof: s.hint.Proof}
		assert.ErrorIs(t, s.u.VerifyHint(s.pk, hint), ErrInvalidProof)
	})

	next, tag, err := s.u.Update(s.pk, s.hint, nil, 2)
	require.NoError(t, err)

	t.Run("tag", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			bad := &Hint{Ciphers: replace(next.Ciphers, i), ComX: next.ComX, Proof: next.Proof}
			assert.ErrorIs(t, s.u.VerifyTag(s.pk, s.hint, bad, tag), ErrInvalidProof, "ciphertext %d", i)
		}
		powers := append([]curve.Point{}, tag.Powers...)
		powers[1] = powers[1].Add(g)
		bad := &Tag{Com: tag.Com, Powers: powers, Proof: tag.Proof}
		assert.ErrorIs(t, s.u.VerifyTag(s.pk, s.hint, next, bad), ErrInvalidProof)
		bad = &Tag{Com: tag.Com, Powers: tag.Powers[1:], Proof: tag.Proof}
		assert.ErrorIs(t, s.u.VerifyTag(s.pk, s.hint, next, bad), ErrDimension)
	})

	escrow, err := s.u.Escrow(s.pk, next)
	require.NoError(t, err)

	t.Run("escrow", func(t *testing.T) {
		e := *escrow
		e.Enc = shift(e.Enc)
		assert.ErrorIs(t, s.u.VerifyEscrow(s.pk, next, &e), ErrInvalidProof)

		e = *escrow
		e.Blinded = replace(e.Blinded, 2)
		assert.ErrorIs(t, s.u.VerifyEscrow(s.pk, next, &e), ErrInvalidProof)

		e = *escrow
		e.ComAlpha = e.ComAlpha.Add(g)
		assert.ErrorIs(t, s.u.VerifyEscrow(s.pk, next, &e), ErrInvalidProof)

		e = *escrow
		e.ComBeta = e.ComBeta.Add(g)
		assert.ErrorIs(t, s.u.VerifyEscrow(s.pk, next, &e), ErrInvalidProof)

		e = *escrow
		e.ProofEval = e.ProofBlind
		assert.ErrorIs(t, s.u.VerifyEscrow(s.pk, next, &e), ErrInvalidProof)

		e = *escrow
		e.ProofBlind = nil
		assert.ErrorIs(t, s.u.VerifyEscrow(s.pk, next, &e), ErrNil)
	})
}

func TestEscrowUnlinkable(t *testing.T) {
	s := newSession(t, 3, 1, 10)
	e1, err := s.u.Escrow(s.pk, s.hint)
	require.NoError(t, err)
	e2, err := s.u.Escrow(s.pk, s.hint)
	require.NoError(t, err)
	assert.False(t, e1.Enc.Equal(e2.Enc))
	for i := range e1.Blinded {
		assert.False(t, e1.Blinded[i].Equal(e2.Blinded[i]))
		assert.False(t, e1.Blinded[i].Equal(s.hint.Ciphers[i]))
	}
	assert.True(t, e1.ComX.Equal(e2.ComX))
}

func TestMarshal(t *testing.T) {
	s := newSession(t, 4, 6, 11)
	group := s.u.group()
	next, tag, err := s.u.Update(s.pk, s.hint, nil, 7)
	require.NoError(t, err)
	escrow, err := s.u.Escrow(s.pk, next)
	require.NoError(t, err)

	data, err := s.u.Params().MarshalBinary()
	require.NoError(t, err)
	params := &Parameters{}
	require.NoError(t, params.UnmarshalBinary(data))
	u, err := NewFromParameters(params, rand.Reader)
	require.NoError(t, err)

	pk := roundTrip(t, s.pk, EmptyPublicKey(group))
	sk := roundTrip(t, s.sk, EmptySecretKey(group))
	genesis := roundTrip(t, s.hint, EmptyHint(group))
	next2 := roundTrip(t, next, EmptyHint(group))
	tag2 := roundTrip(t, tag, EmptyTag(group))
	escrow2 := roundTrip(t, escrow, EmptyEscrow(group))

	assert.NoError(t, u.VerifyPublicKey(pk))
	assert.NoError(t, u.VerifyHint(pk, genesis))
	assert.ErrorIs(t, u.VerifyHint(pk, next2), ErrPlaceholderProof)
	assert.NoError(t, u.VerifyTag(pk, genesis, next2, tag2))
	assert.NoError(t, u.VerifyEscrow(pk, next2, escrow2))
	assert.True(t, u.Decrypt(sk, escrow2))

	// the decoded hint can be updated further
	_, _, err = u.Update(pk, next2, tag2, 1)
	assert.NoError(t, err)
}

type binary interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}

func roundTrip[T binary](t *testing.T, in T, out T) T {
	data, err := in.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, out.UnmarshalBinary(data))
	return out
}

func TestSharedEngine(t *testing.T) {
	pl := pool.NewPool(2)
	defer pl.TearDown()
	u, err := Setup(0, 3, rand.Reader, WithPool(pl))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = func() error {
				pk, sk, hint, err := u.KeyGen(uint64(i))
				if err != nil {
					return err
				}
				next, _, err := u.Update(pk, hint, nil, uint64(i))
				if err != nil {
					return err
				}
				escrow, err := u.Escrow(pk, next)
				if err != nil {
					return err
				}
				if err = u.VerifyEscrow(pk, next, escrow); err != nil {
					return err
				}
				if !u.Decrypt(sk, escrow) {
					return errors.New("threshold not reached")
				}
				return nil
			}()
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		assert.NoError(t, err, "session %d", i)
	}
}
