package pedersen

import (
	"fmt"
	"io"

	"github.com/taurusgroup/ublu/pkg/math/curve"
)

type Error string

const (
	ErrNilFields Error = "contains nil field"
	ErrGEqualH   Error = "G cannot be equal to H"
	ErrIdentity  Error = "G and H must not be the identity"
)

func (e Error) Error() string {
	return fmt.Sprintf("pedersen: %s", string(e))
}

// Commitment is a group element x⋅G + r⋅H.
type Commitment = curve.Point

// Parameters are two independent generators.
//
// Nobody may know the discrete logarithm of H with respect to G, otherwise
// commitments are no longer binding.
type Parameters struct {
	g, h curve.Point
}

// New returns a new set of Pedersen parameters.
// Assumes ValidateParameters(g, h) returns nil.
func New(g, h curve.Point) *Parameters {
	return &Parameters{
		g: g,
		h: h,
	}
}

// ValidateParameters check g and h, and returns an error if any of the following is true:
// - g or h is nil.
// - g or h is the identity.
// - g = h.
func ValidateParameters(g, h curve.Point) error {
	if g == nil || h == nil {
		return ErrNilFields
	}
	if g.IsIdentity() || h.IsIdentity() {
		return ErrIdentity
	}
	if g.Equal(h) {
		return ErrGEqualH
	}
	return nil
}

// Commit computes x⋅G + r⋅H.
func (p Parameters) Commit(x, r curve.Scalar) Commitment {
	return x.Act(p.g).Add(r.Act(p.h))
}

// Verify returns true if c = x⋅G + r⋅H.
func (p Parameters) Verify(c Commitment, x, r curve.Scalar) bool {
	if c == nil || x == nil || r == nil {
		return false
	}
	return p.Commit(x, r).Equal(c)
}

// Add returns a + b, a commitment to the sum of the committed values, with the
// sum of their randomness.
func Add(a, b Commitment) Commitment {
	return a.Add(b)
}

// WriteTo implements io.WriterTo, writing G then H.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	nAll := int64(0)
	for _, point := range []curve.Point{p.g, p.h} {
		buf, err := point.MarshalBinary()
		if err != nil {
			return nAll, err
		}
		n, err := w.Write(buf)
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

