package curve

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve represents a prime order group, together with its scalar field.
type Curve interface {
	// NewPoint returns the identity element.
	NewPoint() Point
	// NewBasePoint returns the canonical generator of the group.
	NewBasePoint() Point
	// NewScalar returns the zero scalar.
	NewScalar() Scalar
	// Name returns a unique identifier for this group.
	Name() string
	// ScalarBits returns the number of significant bits in a scalar.
	ScalarBits() int
	// SafeScalarBytes returns the number of random bytes needed to sample a scalar
	// with negligible bias through modular reduction.
	SafeScalarBytes() int
	// Order returns the order of the group, as a modulus.
	Order() *saferith.Modulus
	// LiftX returns the point with even y coordinate whose x coordinate is
	// given by data, or an error if no such point exists.
	LiftX(data []byte) (Point, error)
}

// Scalar represents an element of ℤq.
//
// Operations mutate the receiver and return it, so that calls can be chained:
//
//	group.NewScalar().Set(a).Mul(b).Add(c)
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Invert() Scalar
	Negate() Scalar
	Equal(Scalar) bool
	IsZero() bool
	Set(Scalar) Scalar
	SetNat(*saferith.Nat) Scalar
	SetUInt32(uint32) Scalar
	// Act returns s⋅P as a new point.
	Act(Point) Point
	// ActOnBase returns s⋅G as a new point, where G is the base point of the curve.
	ActOnBase() Point
}

// Point represents an element of the group.
//
// Unlike scalars, arithmetic on points returns a new value and leaves the
// receiver untouched.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Point) Point
	Sub(Point) Point
	Negate() Point
	// Set sets the receiver to the given point and returns it.
	Set(Point) Point
	Equal(Point) bool
	IsIdentity() bool
}

// SetUint64 sets s to the integer x, reduced modulo the group order.
func SetUint64(s Scalar, x uint64) Scalar {
	return s.SetNat(new(saferith.Nat).SetUint64(x))
}

// Pow returns bᵉ as a new scalar.
//
// The number of multiplications only depends on e, which is always public.
func Pow(b Scalar, e int) Scalar {
	out := b.Curve().NewScalar().SetUInt32(1)
	for i := 0; i < e; i++ {
		out.Mul(b)
	}
	return out
}
