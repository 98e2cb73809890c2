package sample

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/ublu/pkg/math/curve"
)

// maxLiftIterations bounds the number of x coordinates tried when sampling a point.
//
// Each attempt succeeds with probability close to 1/2.
const maxLiftIterations = 255

// ErrExhausted is returned when the randomness source fails to produce output.
//
// It is never retried: a source that fails once is considered unusable.
var ErrExhausted = errors.New("sample: randomness source exhausted")

var errLift = fmt.Errorf("sample: failed to lift a point after %d iterations", maxLiftIterations)

func readBytes(rand io.Reader, buf []byte) error {
	if _, err := io.ReadFull(rand, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrExhausted, err)
	}
	return nil
}

// Scalar returns a uniformly distributed element of ℤq.
//
// SafeScalarBytes are read and reduced modulo q, so that the bias is negligible.
func Scalar(rand io.Reader, group curve.Curve) (curve.Scalar, error) {
	buf := make([]byte, group.SafeScalarBytes())
	if err := readBytes(rand, buf); err != nil {
		return nil, err
	}
	out := new(saferith.Nat).SetBytes(buf)
	return group.NewScalar().SetNat(out), nil
}

// Scalars returns n independent uniform scalars.
func Scalars(rand io.Reader, group curve.Curve, n int) ([]curve.Scalar, error) {
	out := make([]curve.Scalar, n)
	for i := range out {
		s, err := Scalar(rand, group)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Point returns a uniformly distributed group element whose discrete logarithm
// with respect to any other generator is unknown, including to the caller.
//
// Random x coordinates are tried until one lies on the curve.
func Point(rand io.Reader, group curve.Curve) (curve.Point, error) {
	buf := make([]byte, (group.ScalarBits()+7)/8)
	for i := 0; i < maxLiftIterations; i++ {
		if err := readBytes(rand, buf); err != nil {
			return nil, err
		}
		p, err := group.LiftX(buf)
		if err != nil {
			continue
		}
		return p, nil
	}
	return nil, errLift
}

// Points returns n independent uniform group elements.
func Points(rand io.Reader, group curve.Curve, n int) ([]curve.Point, error) {
	out := make([]curve.Point, n)
	for i := range out {
		p, err := Point(rand, group)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
