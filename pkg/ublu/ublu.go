// Package ublu implements an updatable threshold escrow.
//
// A party holding a Hint folds private increments into an encrypted running
// total x. At any time it can produce an Escrow, which the holder of the
// secret key tests against the threshold t committed at key generation,
// learning only whether x has reached t.
//
// A hint encrypts the powers (x-t)¹, …, (x-t)ᵈ. Increments are folded in by
// expanding (x+Δ-t)ⁱ with the binomial theorem over the encrypted powers, and
// an escrow encrypts 1 + β⋅(y)_d for y = x-t and a random β, where
// (y)_d = y(y-1)…(y-d+1). Decryption yields the generator exactly when
// 0 ≤ x-t < d.
package ublu

import (
	"fmt"
	"io"

	"github.com/taurusgroup/ublu/internal/params"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/pool"
	"go.uber.org/zap"
)

// Ublu is the protocol engine. It owns the public parameters and a randomness
// source, and never retains protocol values passed to it.
//
// An engine may be shared between goroutines: reads from its randomness
// source are serialized. Independent sessions should rather use independent
// engines, created with NewFromParameters.
type Ublu struct {
	params *Parameters
	rand   io.Reader
	pool   *pool.Pool
	log    *zap.Logger
}

// Option configures an engine.
type Option func(u *Ublu)

// WithLogger sets the logger used for debug events. Only public values are logged.
func WithLogger(logger *zap.Logger) Option {
	return func(u *Ublu) {
		if logger != nil {
			u.log = logger
		}
	}
}

// WithPool spreads per-power arithmetic over the workers of pl.
func WithPool(pl *pool.Pool) Option {
	return func(u *Ublu) {
		u.pool = pl
	}
}

// Setup samples fresh parameters for degree bound d and returns an engine
// drawing randomness from rand.
//
// lambda is recorded in the parameters; a value ≤ 0 selects params.DefaultLambda.
func Setup(lambda, d int, rand io.Reader, opts ...Option) (*Ublu, error) {
	if lambda <= 0 {
		lambda = params.DefaultLambda
	}
	locked := pool.NewLockedReader(rand)
	p, err := newParameters(locked, curve.Secp256k1{}, lambda, d)
	if err != nil {
		return nil, err
	}
	u := newEngine(p, locked, opts)
	u.log.Debug("setup",
		zap.Int("lambda", p.Lambda),
		zap.String("group", p.Group.Name()),
		zap.Int("workers", u.pool.Workers()))
	return u, nil
}

// NewFromParameters returns an engine over existing parameters, with its own
// randomness source.
func NewFromParameters(p *Parameters, rand io.Reader, opts ...Option) (*Ublu, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("ublu: %w", err)
	}
	return newEngine(p, pool.NewLockedReader(rand), opts), nil
}

func newEngine(p *Parameters, rand io.Reader, opts []Option) *Ublu {
	u := &Ublu{
		params: p,
		rand:   rand,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.log = u.log.With(zap.Int("degree", p.Degree))
	return u
}

// Params returns the public parameters. They must not be modified.
func (u *Ublu) Params() *Parameters {
	return u.params
}

func (u *Ublu) group() curve.Curve {
	return u.params.Group
}
