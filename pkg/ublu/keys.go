package ublu

import (
	"fmt"

	"github.com/taurusgroup/ublu/internal/elgamal"
	"github.com/taurusgroup/ublu/internal/hash"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
	"github.com/taurusgroup/ublu/pkg/pedersen"
	"github.com/taurusgroup/ublu/pkg/pool"
	zkalgebraic "github.com/taurusgroup/ublu/pkg/zk/algebraic"
	zksigma "github.com/taurusgroup/ublu/pkg/zk/sigma"
	"go.uber.org/zap"
)

// PublicKey is the escrow authority's encryption key, bound to a committed threshold.
type PublicKey struct {
	// PK = sk⋅G
	PK elgamal.PublicKey
	// ComT commits to the threshold t.
	ComT pedersen.Commitment
	// Anchor is the genesis encryption of t², which ties the key proof to the genesis hint.
	Anchor *elgamal.Ciphertext
	// Proof is a Σ proof of knowledge of sk and of the opening of ComT.
	Proof *Proof
}

// SecretKey is held by the escrow authority.
type SecretKey struct {
	SK elgamal.SecretKey
}

// KeyGen creates a key pair for threshold t, and the genesis hint with running total 0.
func (u *Ublu) KeyGen(t uint64) (*PublicKey, *SecretKey, *Hint, error) {
	group := u.group()
	p := u.params
	d := p.Degree

	sk, pk, err := p.elgamal().KeyGen(u.rand)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ublu: keygen: %w", err)
	}

	tScalar := curve.SetUint64(group.NewScalar(), t)
	rT, err := sample.Scalar(u.rand, group)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ublu: keygen: %w", err)
	}
	comT := p.pedersen().Commit(tScalar, rT)

	// y = x - t with x = 0
	y := group.NewScalar().Set(tScalar).Negate()
	nonces, err := sample.Scalars(u.rand, group, d)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ublu: keygen: %w", err)
	}
	ciphers := u.encryptPowers(pk, y, nonces)

	zero := group.NewScalar()
	comX := p.pedersen().Commit(zero, zero)

	public := &PublicKey{
		PK:     pk,
		ComT:   comT,
		Anchor: ciphers[1].Clone(),
	}

	tau := group.NewScalar().Set(tScalar).Mul(tScalar)
	keyWitness := zksigma.Witness{
		sk,
		tScalar,
		rT,
		tau,
		group.NewScalar().Set(tScalar).Mul(rT),
		nonces[1],
	}
	keyProof, err := zksigma.Prove(u.rand, hash.New(p), keyLanguage(p, pk, comT), keyStatement(public), keyWitness)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ublu: keygen: key proof: %w", err)
	}
	public.Proof = newProof(ProofSigma, keyProof)

	lang := consistencyLanguage{params: p, pk: pk}
	consistencyProof, err := zkalgebraic.Prove(u.rand, p.CRS, lang,
		consistencyStatement(comT, comX, ciphers), consistencyWitness(tScalar, rT, zero, zero, y, nonces))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ublu: keygen: consistency proof: %w", err)
	}

	hint := &Hint{
		Ciphers: ciphers,
		ComX:    comX,
		Proof:   newProof(ProofAlgebraic, consistencyProof),
	}

	u.log.Debug("keygen", zap.Int("ciphertexts", len(ciphers)))
	return public, &SecretKey{SK: sk}, hint, nil
}

// consistencyWitness is (t, r_t, x, r_x, y, r₁…r_d, y⋅r₁…y⋅r_{d-1}).
func consistencyWitness(t, rT, x, rX, y curve.Scalar, nonces []curve.Scalar) zksigma.Witness {
	d := len(nonces)
	w := make(zksigma.Witness, 0, consistencyCols(d))
	w = append(w, t, rT, x, rX, y)
	w = append(w, nonces...)
	for i := 0; i < d-1; i++ {
		w = append(w, y.Curve().NewScalar().Set(y).Mul(nonces[i]))
	}
	return w
}

// encryptPowers returns Enc(yⁱ; nonces[i-1]) for i = 1…d.
func (u *Ublu) encryptPowers(pk curve.Point, y curve.Scalar, nonces []curve.Scalar) []*elgamal.Ciphertext {
	group := u.group()
	powers := make([]curve.Scalar, len(nonces))
	acc := group.NewScalar().SetUInt32(1)
	for i := range powers {
		acc.Mul(y)
		powers[i] = group.NewScalar().Set(acc)
	}
	eg := u.params.elgamal()
	return pool.Map(u.pool, len(nonces), func(i int) *elgamal.Ciphertext {
		return eg.EncryptWithNonce(pk, powers[i], nonces[i])
	})
}
