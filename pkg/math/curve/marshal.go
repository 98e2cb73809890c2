package curve

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// FromName returns the group registered under name.
func FromName(name string) (Curve, error) {
	switch name {
	case Secp256k1{}.Name():
		return Secp256k1{}, nil
	default:
		return nil, fmt.Errorf("curve: unknown group %q", name)
	}
}

type marshallableValue struct {
	Group string
	Data  []byte
}

// MarshallablePoint wraps a Point so that it can be decoded without knowing its group in advance.
type MarshallablePoint struct {
	Point Point
}

func NewMarshallablePoint(p Point) *MarshallablePoint {
	return &MarshallablePoint{Point: p}
}

func (p *MarshallablePoint) MarshalCBOR() ([]byte, error) {
	data, err := p.Point.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(marshallableValue{Group: p.Point.Curve().Name(), Data: data})
}

func (p *MarshallablePoint) UnmarshalCBOR(data []byte) error {
	var v marshallableValue
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	group, err := FromName(v.Group)
	if err != nil {
		return err
	}
	point := group.NewPoint()
	if err = point.UnmarshalBinary(v.Data); err != nil {
		return err
	}
	p.Point = point
	return nil
}

// MarshallableScalar wraps a Scalar so that it can be decoded without knowing its group in advance.
type MarshallableScalar struct {
	Scalar Scalar
}

func NewMarshallableScalar(s Scalar) *MarshallableScalar {
	return &MarshallableScalar{Scalar: s}
}

func (s *MarshallableScalar) MarshalCBOR() ([]byte, error) {
	data, err := s.Scalar.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(marshallableValue{Group: s.Scalar.Curve().Name(), Data: data})
}

func (s *MarshallableScalar) UnmarshalCBOR(data []byte) error {
	var v marshallableValue
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	group, err := FromName(v.Group)
	if err != nil {
		return err
	}
	scalar := group.NewScalar()
	if err = scalar.UnmarshalBinary(v.Data); err != nil {
		return err
	}
	s.Scalar = scalar
	return nil
}

// MarshallablePoints wraps a slice of points.
func MarshallablePoints(points []Point) []*MarshallablePoint {
	out := make([]*MarshallablePoint, len(points))
	for i, p := range points {
		out[i] = NewMarshallablePoint(p)
	}
	return out
}

// UnwrapPoints is the inverse of MarshallablePoints.
func UnwrapPoints(points []*MarshallablePoint) ([]Point, error) {
	out := make([]Point, len(points))
	for i, p := range points {
		if p == nil || p.Point == nil {
			return nil, fmt.Errorf("curve: missing point at index %d", i)
		}
		out[i] = p.Point
	}
	return out, nil
}
