package ublu

import (
	"errors"

	"github.com/taurusgroup/ublu/pkg/math/sample"
)

var (
	// ErrDegree is returned when d lies outside [params.MinDegree, params.MaxDegree].
	ErrDegree = errors.New("ublu: degree bound out of range")
	// ErrDimension is returned when a vector does not have length d.
	ErrDimension = errors.New("ublu: dimension mismatch")
	// ErrRandomness is returned when the randomness source fails. It is never retried.
	ErrRandomness = sample.ErrExhausted
	// ErrInvalidProof is returned when a proof is rejected.
	ErrInvalidProof = errors.New("ublu: invalid proof")
	// ErrPlaceholderProof is returned when a proof slot holds no proof at all.
	ErrPlaceholderProof = errors.New("ublu: placeholder proof cannot be verified")
	// ErrLineage is returned by Update when the prior tag does not commit to the
	// running total of the hint.
	ErrLineage = errors.New("ublu: tag does not match hint")
	// ErrNil is returned when a required argument or field is missing.
	ErrNil = errors.New("ublu: missing value")
)
