package polynomial

import (
	"github.com/taurusgroup/ublu/pkg/math/curve"
)

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ over ℤq.
type Polynomial struct {
	group        curve.Curve
	coefficients []curve.Scalar
}

// New returns the polynomial with the given coefficients, lowest degree first.
//
// The coefficients are copied.
func New(group curve.Curve, coefficients []curve.Scalar) *Polynomial {
	p := &Polynomial{
		group:        group,
		coefficients: make([]curve.Scalar, len(coefficients)),
	}
	for i, c := range coefficients {
		p.coefficients[i] = group.NewScalar().Set(c)
	}
	return p
}

// Evaluate evaluates a polynomial in a given variable index
// We use Horner's method: https://en.wikipedia.org/wiki/Horner%27s_method
func (p *Polynomial) Evaluate(index curve.Scalar) curve.Scalar {
	result := p.group.NewScalar()
	// reverse order
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ * x + aₙ₋₁
		result.Mul(index).Add(p.coefficients[i])
	}
	return result
}

// Coefficient returns a copy of aᵢ, or 0 if i exceeds the degree.
func (p *Polynomial) Coefficient(i int) curve.Scalar {
	if i < 0 || i >= len(p.coefficients) {
		return p.group.NewScalar()
	}
	return p.group.NewScalar().Set(p.coefficients[i])
}

// Degree is the highest power of the Polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}
