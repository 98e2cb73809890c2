package ublu

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/ublu/internal/elgamal"
	"github.com/taurusgroup/ublu/internal/params"
	"github.com/taurusgroup/ublu/pkg/math/combinatorics"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/polynomial"
	"github.com/taurusgroup/ublu/pkg/math/sample"
	"github.com/taurusgroup/ublu/pkg/pedersen"
	zkalgebraic "github.com/taurusgroup/ublu/pkg/zk/algebraic"
)

// Parameters are the public values fixed for a deployment. They are never
// mutated after Setup.
type Parameters struct {
	Group curve.Curve
	// Lambda is the targeted bit strength. It is informational.
	Lambda int
	// Degree is the number of powers tracked by a hint.
	Degree int
	// G is the encryption and commitment base.
	G curve.Point
	// H is the hiding base of commitments.
	H curve.Point
	// W blinds power ciphertexts during escrow, one generator per power.
	W []curve.Point
	// Stirling holds s(d, 1), …, s(d, d), the signed Stirling numbers of the
	// first kind, used as evaluation weights:
	//   Σᵢ s(d, i)⋅yⁱ = y(y-1)…(y-d+1).
	Stirling []curve.Scalar
	CRS      *zkalgebraic.CRS
}

func checkDegree(d int) error {
	if d < params.MinDegree || d > params.MaxDegree {
		return fmt.Errorf("%w: got %d, need %d ≤ d ≤ %d", ErrDegree, d, params.MinDegree, params.MaxDegree)
	}
	return nil
}

func newParameters(rand io.Reader, group curve.Curve, lambda, d int) (*Parameters, error) {
	if err := checkDegree(d); err != nil {
		return nil, err
	}
	generators, err := sample.Points(rand, group, d+2)
	if err != nil {
		return nil, fmt.Errorf("ublu: setup: sample generators: %w", err)
	}
	crs, err := zkalgebraic.Setup(rand, group)
	if err != nil {
		return nil, fmt.Errorf("ublu: setup: %w", err)
	}
	return &Parameters{
		Group:    group,
		Lambda:   lambda,
		Degree:   d,
		G:        generators[0],
		H:        generators[1],
		W:        generators[2:],
		Stirling: evaluationWeights(group, d),
		CRS:      crs,
	}, nil
}

func evaluationWeights(group curve.Curve, d int) []curve.Scalar {
	return combinatorics.Scalars(group, combinatorics.FallingFactorialCoefficients(d))
}

// Validate checks the invariants |W| = |Stirling| = d and that G and H are
// usable commitment bases. The evaluation weights are only recomputed once
// the dimensions match.
func (p *Parameters) Validate() error {
	if p == nil || p.Group == nil || p.CRS == nil {
		return fmt.Errorf("parameters: %w", ErrNil)
	}
	if err := checkDegree(p.Degree); err != nil {
		return err
	}
	if len(p.W) != p.Degree {
		return fmt.Errorf("%w: |W| = %d, d = %d", ErrDimension, len(p.W), p.Degree)
	}
	if len(p.Stirling) != p.Degree {
		return fmt.Errorf("%w: |Stirling| = %d, d = %d", ErrDimension, len(p.Stirling), p.Degree)
	}
	for i, c := range evaluationWeights(p.Group, p.Degree) {
		if p.Stirling[i] == nil || !p.Stirling[i].Equal(c) {
			return fmt.Errorf("parameters: evaluation weight %d does not match degree %d", i+1, p.Degree)
		}
	}
	if err := pedersen.ValidateParameters(p.G, p.H); err != nil {
		return err
	}
	for i, w := range p.W {
		if w == nil || w.IsIdentity() {
			return fmt.Errorf("parameters: W[%d]: %w", i, ErrNil)
		}
	}
	return nil
}

// Indicator returns the polynomial Σᵢ s(d, i)⋅Xⁱ = X(X-1)…(X-d+1) evaluated
// under encryption by an escrow. Its roots are 0, …, d-1.
func (p *Parameters) Indicator() *polynomial.Polynomial {
	coefficients := make([]curve.Scalar, 0, p.Degree+1)
	coefficients = append(coefficients, p.Group.NewScalar())
	coefficients = append(coefficients, p.Stirling...)
	return polynomial.New(p.Group, coefficients)
}

func (p *Parameters) elgamal() elgamal.Parameters {
	return elgamal.Parameters{G: p.G}
}

func (p *Parameters) pedersen() *pedersen.Parameters {
	return pedersen.New(p.G, p.H)
}

// WriteTo implements io.WriterTo, and binds every public value to a transcript.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	total, err := p.pedersen().WriteTo(w)
	if err != nil {
		return total, err
	}
	for _, point := range p.W {
		buf, err := point.MarshalBinary()
		if err != nil {
			return total, err
		}
		n, err := w.Write(buf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err := p.CRS.WriteTo(w)
	total += n
	return total, err
}

// Domain implements hash.WriterToWithDomain.
func (*Parameters) Domain() string {
	return "Ublu Parameters"
}

type parametersCBOR struct {
	Group  string
	Lambda int
	Degree int
	G      *curve.MarshallablePoint
	H      *curve.MarshallablePoint
	W      []*curve.MarshallablePoint
	CRS    *zkalgebraic.CRS
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The evaluation weights are a function of the degree and are not encoded.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(parametersCBOR{
		Group:  p.Group.Name(),
		Lambda: p.Lambda,
		Degree: p.Degree,
		G:      curve.NewMarshallablePoint(p.G),
		H:      curve.NewMarshallablePoint(p.H),
		W:      curve.MarshallablePoints(p.W),
		CRS:    p.CRS,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	var v parametersCBOR
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	group, err := curve.FromName(v.Group)
	if err != nil {
		return err
	}
	if v.G == nil || v.H == nil || v.CRS == nil {
		return errors.New("ublu: unmarshal parameters: missing field")
	}
	if err = checkDegree(v.Degree); err != nil {
		return fmt.Errorf("ublu: unmarshal parameters: %w", err)
	}
	if len(v.W) != v.Degree {
		return fmt.Errorf("ublu: unmarshal parameters: %w: |W| = %d, d = %d", ErrDimension, len(v.W), v.Degree)
	}
	w, err := curve.UnwrapPoints(v.W)
	if err != nil {
		return err
	}
	out := Parameters{
		Group:    group,
		Lambda:   v.Lambda,
		Degree:   v.Degree,
		G:        v.G.Point,
		H:        v.H.Point,
		W:        w,
		Stirling: evaluationWeights(group, v.Degree),
		CRS:      v.CRS,
	}
	if err = out.Validate(); err != nil {
		return fmt.Errorf("ublu: unmarshal parameters: %w", err)
	}
	*p = out
	return nil
}
