package ublu

import (
	"fmt"

	"github.com/taurusgroup/ublu/internal/elgamal"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
	"github.com/taurusgroup/ublu/pkg/pedersen"
	"github.com/taurusgroup/ublu/pkg/pool"
	zkalgebraic "github.com/taurusgroup/ublu/pkg/zk/algebraic"
	zksigma "github.com/taurusgroup/ublu/pkg/zk/sigma"
	"go.uber.org/zap"
)

// Escrow is a one-shot threshold test handed to the escrow authority.
//
// Two escrows built from the same hint share only ComX.
type Escrow struct {
	// Enc encrypts 1 + β⋅(y)_d with y = x-t.
	Enc *elgamal.Ciphertext
	// Blinded is the power vector, rerandomised and shifted by α⋅W.
	Blinded  []*elgamal.Ciphertext
	ComX     pedersen.Commitment
	ComAlpha pedersen.Commitment
	ComBeta  pedersen.Commitment
	// ProofBlind shows Blinded was derived from the hint.
	ProofBlind *Proof
	// ProofEval shows Enc was derived from Blinded.
	ProofEval *Proof
}

// Escrow builds a fresh escrow for the running total of hint.
func (u *Ublu) Escrow(pk *PublicKey, hint *Hint) (*Escrow, error) {
	if err := validatePublicKey(pk); err != nil {
		return nil, fmt.Errorf("ublu: escrow: %w", err)
	}
	if err := u.validateHint(hint); err != nil {
		return nil, fmt.Errorf("ublu: escrow: %w", err)
	}

	group := u.group()
	p := u.params
	d := p.Degree
	ped := p.pedersen()

	// α, r_α, β, r_β, φ
	secrets, err := sample.Scalars(u.rand, group, 5)
	if err != nil {
		return nil, fmt.Errorf("ublu: escrow: %w", err)
	}
	alpha, rAlpha, beta, rBeta, phi := secrets[0], secrets[1], secrets[2], secrets[3], secrets[4]
	rho, err := sample.Scalars(u.rand, group, d)
	if err != nil {
		return nil, fmt.Errorf("ublu: escrow: %w", err)
	}

	comAlpha := ped.Commit(alpha, rAlpha)
	comBeta := ped.Commit(beta, rBeta)

	blinded := pool.Map(u.pool, d, func(i int) *elgamal.Ciphertext {
		c := hint.Ciphers[i]
		return &elgamal.Ciphertext{
			L: c.L.Add(rho[i].Act(p.G)),
			M: c.M.Add(rho[i].Act(pk.PK)).Add(alpha.Act(p.W[i])),
		}
	})

	enc := u.evaluate(pk.PK, hint.Ciphers, beta, phi)

	blindWitness := make(zksigma.Witness, 0, d+2)
	blindWitness = append(blindWitness, alpha, rAlpha)
	blindWitness = append(blindWitness, rho...)
	proofBlind, err := zkalgebraic.Prove(u.rand, p.CRS, blindLanguage{params: p, pk: pk.PK},
		blindStatement(comAlpha, hint.Ciphers, blinded), blindWitness)
	if err != nil {
		return nil, fmt.Errorf("ublu: escrow: blinding proof: %w", err)
	}

	// ψ = β⋅Σcᵢρᵢ - φ
	psi := group.NewScalar()
	for i := range rho {
		psi.Add(group.NewScalar().Set(p.Stirling[i]).Mul(rho[i]))
	}
	psi.Mul(beta).Sub(phi)
	evalWitness := zksigma.Witness{
		beta,
		rBeta,
		group.NewScalar().Set(alpha).Mul(beta),
		group.NewScalar().Set(rAlpha).Mul(beta),
		psi,
	}
	lang := evalLanguage{params: p, pk: pk.PK, comAlpha: comAlpha, blinded: blinded}
	proofEval, err := zkalgebraic.Prove(u.rand, p.CRS, lang, evalStatement(p, comBeta, enc), evalWitness)
	if err != nil {
		return nil, fmt.Errorf("ublu: escrow: evaluation proof: %w", err)
	}

	u.log.Debug("escrow", zap.Int("blinded", len(blinded)))
	return &Escrow{
		Enc:        enc,
		Blinded:    blinded,
		ComX:       hint.ComX,
		ComAlpha:   comAlpha,
		ComBeta:    comBeta,
		ProofBlind: newProof(ProofAlgebraic, proofBlind),
		ProofEval:  newProof(ProofAlgebraic, proofEval),
	}, nil
}

// evaluate returns E = β⋅Σcᵢ⋅Cᵢ + Enc(1; φ).
//
// If Cᵢ encrypts yⁱ, E encrypts 1 + β⋅y(y-1)…(y-d+1), which is 1 exactly when
// y ∈ {0, …, d-1}, and uniformly random otherwise.
func (u *Ublu) evaluate(pk curve.Point, ciphers []*elgamal.Ciphertext, beta, phi curve.Scalar) *elgamal.Ciphertext {
	group := u.group()
	one := group.NewScalar().SetUInt32(1)
	fresh := u.params.elgamal().EncryptWithNonce(pk, one, phi)
	return weightedSum(group, u.params.Stirling, ciphers).Act(beta).Add(fresh)
}
