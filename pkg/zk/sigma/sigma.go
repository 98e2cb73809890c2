// Package zksigma implements non-interactive Maurer proofs of knowledge of a
// preimage under a linear map between ℤqⁿ and 𝔾ᵐ.
//
// Every relation used by the escrow scheme is expressed as such a map, so this
// single prover and verifier cover all of them.
package zksigma

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/ublu/internal/hash"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
)

var (
	// ErrDimension is returned when a statement or witness does not match the language.
	ErrDimension = errors.New("zksigma: dimension mismatch")
	// ErrNotInLanguage is returned when the prover is handed a false statement.
	ErrNotInLanguage = errors.New("zksigma: statement is not the image of the witness")
)

// Proof is (A, z) where A = M⋅a is the commitment for a random a,
// and z = a + e⋅w for the challenge e.
type Proof struct {
	group curve.Curve
	A     []curve.Point
	Z     []curve.Scalar
}

// Empty returns a proof ready to be unmarshalled.
func Empty(group curve.Curve) *Proof {
	return &Proof{group: group}
}

// Prove generates a proof that the prover knows w such that x = M⋅w.
//
// The hash is cloned before use, so that the same transcript may be passed to
// several proofs.
func Prove(rand io.Reader, hash *hash.Hash, lang *Language, x Statement, w Witness) (*Proof, error) {
	if len(x) != lang.Rows() || len(w) != lang.Cols() {
		return nil, fmt.Errorf("%w: %s is %d×%d, got statement %d and witness %d",
			ErrDimension, lang.Name(), lang.Rows(), lang.Cols(), len(x), len(w))
	}
	if !lang.Contains(x, w) {
		return nil, fmt.Errorf("%w: %s", ErrNotInLanguage, lang.Name())
	}

	group := lang.Group()
	a, err := sample.Scalars(rand, group, lang.Cols())
	if err != nil {
		return nil, err
	}
	A, err := lang.Image(a)
	if err != nil {
		return nil, err
	}

	e, err := challenge(hash, lang, x, A)
	if err != nil {
		return nil, err
	}

	z := make([]curve.Scalar, len(w))
	for j := range w {
		z[j] = group.NewScalar().Set(e).Mul(w[j]).Add(a[j])
	}

	return &Proof{
		group: group,
		A:     A,
		Z:     z,
	}, nil
}

// IsValid checks the shape of the proof against the language.
func (p *Proof) IsValid(lang *Language) bool {
	if p == nil || len(p.A) != lang.Rows() || len(p.Z) != lang.Cols() {
		return false
	}
	for _, a := range p.A {
		if a == nil {
			return false
		}
	}
	for _, z := range p.Z {
		if z == nil {
			return false
		}
	}
	return true
}

// Verify checks that M⋅z = A + e⋅x.
func (p *Proof) Verify(hash *hash.Hash, lang *Language, x Statement) bool {
	if !p.IsValid(lang) || len(x) != lang.Rows() {
		return false
	}
	for _, xi := range x {
		if xi == nil {
			return false
		}
	}

	e, err := challenge(hash, lang, x, p.A)
	if err != nil {
		return false
	}

	lhs, err := lang.Image(p.Z)
	if err != nil {
		return false
	}
	for i := range lhs {
		rhs := e.Act(x[i]).Add(p.A[i])
		if !lhs[i].Equal(rhs) {
			return false
		}
	}
	return true
}

func challenge(hash *hash.Hash, lang *Language, x Statement, A []curve.Point) (e curve.Scalar, err error) {
	h := hash.Clone()
	if err = h.WriteAny(lang); err != nil {
		return
	}
	for _, xi := range x {
		if err = h.WriteAny(xi); err != nil {
			return
		}
	}
	for _, a := range A {
		if err = h.WriteAny(a); err != nil {
			return
		}
	}
	e, err = sample.Scalar(h.Digest(), lang.Group())
	return
}

type proofCBOR struct {
	A []*curve.MarshallablePoint
	Z []*curve.MarshallableScalar
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	z := make([]*curve.MarshallableScalar, len(p.Z))
	for i, s := range p.Z {
		z[i] = curve.NewMarshallableScalar(s)
	}
	return cbor.Marshal(proofCBOR{
		A: curve.MarshallablePoints(p.A),
		Z: z,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var v proofCBOR
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	A, err := curve.UnwrapPoints(v.A)
	if err != nil {
		return err
	}
	z := make([]curve.Scalar, len(v.Z))
	for i, s := range v.Z {
		if s == nil || s.Scalar == nil {
			return fmt.Errorf("zksigma: missing response at index %d", i)
		}
		z[i] = s.Scalar
	}
	if p.group != nil {
		for _, a := range A {
			if a.Curve().Name() != p.group.Name() {
				return fmt.Errorf("zksigma: point from group %s, expected %s", a.Curve().Name(), p.group.Name())
			}
		}
	} else if len(A) > 0 {
		p.group = A[0].Curve()
	}
	p.A, p.Z = A, z
	return nil
}
