package ublu

import (
	"fmt"

	"github.com/taurusgroup/ublu/internal/elgamal"
	"github.com/taurusgroup/ublu/pkg/math/combinatorics"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
	"github.com/taurusgroup/ublu/pkg/pedersen"
	"github.com/taurusgroup/ublu/pkg/pool"
	zkalgebraic "github.com/taurusgroup/ublu/pkg/zk/algebraic"
	zksigma "github.com/taurusgroup/ublu/pkg/zk/sigma"
	"go.uber.org/zap"
)

// Hint is the encrypted running total x.
//
// Ciphers[i-1] encrypts (x-t)ⁱ and ComX commits to x. A hint is never
// modified: Update returns a new one.
type Hint struct {
	Ciphers []*elgamal.Ciphertext
	ComX    pedersen.Commitment
	// Proof is the consistency proof for a genesis hint, and a placeholder
	// for hints returned by Update.
	Proof *Proof
}

// Tag links a hint to its predecessor.
type Tag struct {
	// Com is the running total commitment of the new hint.
	Com pedersen.Commitment
	// Powers commits to Δ², …, Δᵈ.
	Powers []pedersen.Commitment
	Proof  *Proof
}

// IsGenesis returns true if the hint carries its own consistency proof.
func (h *Hint) IsGenesis() bool {
	return h != nil && !h.Proof.IsPlaceholder()
}

func (u *Ublu) validateHint(hint *Hint) error {
	if hint == nil || hint.ComX == nil {
		return fmt.Errorf("hint: %w", ErrNil)
	}
	if len(hint.Ciphers) != u.params.Degree {
		return fmt.Errorf("%w: hint has %d ciphertexts, d = %d", ErrDimension, len(hint.Ciphers), u.params.Degree)
	}
	for i, c := range hint.Ciphers {
		if !c.Valid() {
			return fmt.Errorf("hint ciphertext %d: %w", i, ErrNil)
		}
	}
	return nil
}

func validatePublicKey(pk *PublicKey) error {
	if pk == nil || pk.PK == nil || pk.ComT == nil || !pk.Anchor.Valid() {
		return fmt.Errorf("public key: %w", ErrNil)
	}
	return nil
}

// Update folds the increment delta into hint, and returns the successor hint
// together with a tag proving the transition.
//
// prior is the tag that produced hint, or nil for a genesis hint. When given,
// it must commit to the same running total as hint.
func (u *Ublu) Update(pk *PublicKey, hint *Hint, prior *Tag, delta uint64) (*Hint, *Tag, error) {
	if err := validatePublicKey(pk); err != nil {
		return nil, nil, fmt.Errorf("ublu: update: %w", err)
	}
	if err := u.validateHint(hint); err != nil {
		return nil, nil, fmt.Errorf("ublu: update: %w", err)
	}
	if prior != nil && (prior.Com == nil || !prior.Com.Equal(hint.ComX)) {
		return nil, nil, fmt.Errorf("ublu: update: %w", ErrLineage)
	}

	group := u.group()
	d := u.params.Degree
	ped := u.params.pedersen()

	// δₖ = Δᵏ
	deltas := make([]curve.Scalar, d)
	deltas[0] = curve.SetUint64(group.NewScalar(), delta)
	for k := 1; k < d; k++ {
		deltas[k] = group.NewScalar().Set(deltas[k-1]).Mul(deltas[0])
	}
	rho, err := sample.Scalars(u.rand, group, d)
	if err != nil {
		return nil, nil, fmt.Errorf("ublu: update: %w", err)
	}
	nonces, err := sample.Scalars(u.rand, group, d)
	if err != nil {
		return nil, nil, fmt.Errorf("ublu: update: %w", err)
	}

	comX := pedersen.Add(hint.ComX, ped.Commit(deltas[0], rho[0]))
	ciphers := u.updatePowers(pk.PK, hint.Ciphers, deltas[0], nonces)
	powers := pool.Map(u.pool, d-1, func(i int) pedersen.Commitment {
		return ped.Commit(deltas[i+1], rho[i+1])
	})

	next := &Hint{
		Ciphers: ciphers,
		ComX:    comX,
		Proof:   placeholder(),
	}
	tag := &Tag{
		Com:    comX,
		Powers: powers,
	}

	lang := updateLanguage{params: u.params, pk: pk.PK, old: hint.Ciphers}
	proof, err := zkalgebraic.Prove(u.rand, u.params.CRS, lang,
		updateStatement(hint, next, tag), updateWitness(deltas, rho, nonces))
	if err != nil {
		return nil, nil, fmt.Errorf("ublu: update: %w", err)
	}
	tag.Proof = newProof(ProofAlgebraic, proof)

	u.log.Debug("update",
		zap.Bool("genesis", hint.IsGenesis()),
		zap.Bool("prior_tag", prior != nil))
	return next, tag, nil
}

// updatePowers returns C' with
//
//	C'ᵢ = Σⱼ₌₁ⁱ C(i,j)⋅Δⁱ⁻ʲ⋅Cⱼ + Enc(Δⁱ; nonces[i-1]),
//
// so that if Cⱼ encrypts yʲ, C'ᵢ encrypts (y+Δ)ⁱ. The fresh encryption is the
// j = 0 term of the binomial expansion, and also rerandomises the result.
func (u *Ublu) updatePowers(pk curve.Point, old []*elgamal.Ciphertext, delta curve.Scalar, nonces []curve.Scalar) []*elgamal.Ciphertext {
	group := u.group()
	d := len(old)
	binomials := combinatorics.BinomialTable(d)
	deltaPowers := make([]curve.Scalar, d+1)
	deltaPowers[0] = group.NewScalar().SetUInt32(1)
	for k := 1; k <= d; k++ {
		deltaPowers[k] = group.NewScalar().Set(deltaPowers[k-1]).Mul(delta)
	}
	eg := u.params.elgamal()

	return pool.Map(u.pool, d, func(idx int) *elgamal.Ciphertext {
		i := idx + 1
		out := eg.EncryptWithNonce(pk, deltaPowers[i], nonces[idx])
		for j := 1; j <= i; j++ {
			c := combinatorics.Scalar(group, binomials[i][j])
			c.Mul(deltaPowers[i-j])
			out = out.Add(old[j-1].Act(c))
		}
		return out
	})
}

// updateStatement is (P₁, …, P_d, P₂, …, P_d, C'-C), in the row order of updateLanguage.
func updateStatement(old, next *Hint, tag *Tag) zksigma.Statement {
	d := len(old.Ciphers)
	x := make(zksigma.Statement, 0, updateSize(d))
	x = append(x, tag.Com.Sub(old.ComX))
	x = append(x, tag.Powers...)
	x = append(x, tag.Powers...)
	for i := 0; i < d; i++ {
		x = append(x, next.Ciphers[i].L.Sub(old.Ciphers[i].L))
	}
	for i := 0; i < d; i++ {
		x = append(x, next.Ciphers[i].M.Sub(old.Ciphers[i].M))
	}
	return x
}

// updateWitness is (δ₁…δ_d, ρ₁…ρ_d, τ₁…τ_{d-1}, r'₁…r'_d) with τₖ = ρₖ₊₁ - δ₁⋅ρₖ.
func updateWitness(deltas, rho, nonces []curve.Scalar) zksigma.Witness {
	d := len(deltas)
	w := make(zksigma.Witness, 0, updateSize(d))
	w = append(w, deltas...)
	w = append(w, rho...)
	for k := 0; k < d-1; k++ {
		tau := deltas[0].Curve().NewScalar().Set(deltas[0]).Mul(rho[k])
		tau.Negate().Add(rho[k+1])
		w = append(w, tau)
	}
	w = append(w, nonces...)
	return w
}
