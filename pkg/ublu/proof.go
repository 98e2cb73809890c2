package ublu

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	zksigma "github.com/taurusgroup/ublu/pkg/zk/sigma"
)

// ProofKind tells how a Proof must be checked.
type ProofKind uint8

const (
	// ProofPlaceholder marks an empty slot. It is the zero value, so that a
	// zero Proof never verifies.
	ProofPlaceholder ProofKind = iota
	// ProofSigma is a Σ-protocol proof over a fixed linear relation.
	ProofSigma
	// ProofAlgebraic is a CRS-bound proof over a statement dependent relation.
	ProofAlgebraic
)

func (k ProofKind) String() string {
	switch k {
	case ProofPlaceholder:
		return "placeholder"
	case ProofSigma:
		return "sigma"
	case ProofAlgebraic:
		return "algebraic"
	default:
		return fmt.Sprintf("ProofKind(%d)", uint8(k))
	}
}

// Proof is a tagged proof value.
//
// Hints produced by Update carry a placeholder: their consistency follows from
// the genesis proof and the chain of tags, not from a proof of their own.
type Proof struct {
	Kind ProofKind
	Body *zksigma.Proof
}

func placeholder() *Proof {
	return &Proof{Kind: ProofPlaceholder}
}

func newProof(kind ProofKind, body *zksigma.Proof) *Proof {
	return &Proof{Kind: kind, Body: body}
}

// IsPlaceholder returns true if p holds no proof.
func (p *Proof) IsPlaceholder() bool {
	return p == nil || p.Kind == ProofPlaceholder
}

// check returns nil if p is a proof of the expected kind accepted by verify.
func (p *Proof) check(what string, kind ProofKind, verify func(*zksigma.Proof) bool) error {
	if p == nil {
		return fmt.Errorf("%s: %w", what, ErrNil)
	}
	if p.Kind == ProofPlaceholder {
		return fmt.Errorf("%s: %w", what, ErrPlaceholderProof)
	}
	if p.Kind != kind {
		return fmt.Errorf("%s: %w: expected %s proof, got %s", what, ErrInvalidProof, kind, p.Kind)
	}
	if p.Body == nil || !verify(p.Body) {
		return fmt.Errorf("%s: %w", what, ErrInvalidProof)
	}
	return nil
}

type proofCBOR struct {
	Kind ProofKind
	Body *zksigma.Proof
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(proofCBOR{Kind: p.Kind, Body: p.Body})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var v proofCBOR
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Kind > ProofAlgebraic {
		return fmt.Errorf("ublu: unknown proof kind %d", v.Kind)
	}
	if v.Kind != ProofPlaceholder && v.Body == nil {
		return errors.New("ublu: proof without body")
	}
	p.Kind, p.Body = v.Kind, v.Body
	return nil
}
