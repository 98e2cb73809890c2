// Package zkalgebraic proves membership in algebraic languages, where the
// linear map itself depends on the statement.
//
// Relations such as "this ciphertext encrypts the square of that one" are not
// linear in the witness alone, but become linear once the statement's group
// elements are allowed as matrix entries. Proofs are compiled with Fiat-Shamir
// over a transcript seeded by a common reference string.
package zkalgebraic

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/ublu/internal/hash"
	"github.com/taurusgroup/ublu/internal/params"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/taurusgroup/ublu/pkg/math/sample"
	zksigma "github.com/taurusgroup/ublu/pkg/zk/sigma"
)

type Proof = zksigma.Proof

// Language builds the matrix M(x) for a statement x.
type Language interface {
	// Name identifies the relation, and is bound into the transcript.
	Name() string
	// Matrix returns M(x), or an error if x does not have the expected shape.
	Matrix(x zksigma.Statement) (*zksigma.Language, error)
}

// CRS is the common reference string shared by provers and verifiers.
type CRS struct {
	group curve.Curve
	Seed  []byte
}

// Setup samples a fresh CRS.
func Setup(rand io.Reader, group curve.Curve) (*CRS, error) {
	seed := make([]byte, params.CRSSeedBytes)
	if _, err := io.ReadFull(rand, seed); err != nil {
		return nil, fmt.Errorf("zkalgebraic: setup: %w: %v", sample.ErrExhausted, err)
	}
	return &CRS{group: group, Seed: seed}, nil
}

// EmptyCRS returns a CRS ready to be unmarshalled.
func EmptyCRS(group curve.Curve) *CRS {
	return &CRS{group: group}
}

func (crs *CRS) Group() curve.Curve { return crs.group }

// Empty returns a proof ready to be unmarshalled.
func Empty(group curve.Curve) *Proof {
	return zksigma.Empty(group)
}

// Prove returns a proof that w is a preimage of x under M(x).
func Prove(rand io.Reader, crs *CRS, lang Language, x zksigma.Statement, w zksigma.Witness) (*Proof, error) {
	m, err := lang.Matrix(x)
	if err != nil {
		return nil, fmt.Errorf("zkalgebraic: %s: %w", lang.Name(), err)
	}
	return zksigma.Prove(rand, transcript(crs, lang), m, x, w)
}

// Verify returns true if proof shows knowledge of a preimage of x under M(x).
func Verify(crs *CRS, lang Language, x zksigma.Statement, proof *Proof) bool {
	if crs == nil || proof == nil {
		return false
	}
	m, err := lang.Matrix(x)
	if err != nil {
		return false
	}
	return proof.Verify(transcript(crs, lang), m, x)
}

func transcript(crs *CRS, lang Language) *hash.Hash {
	return hash.New(crs, hash.BytesWithDomain{
		TheDomain: "Algebraic Language",
		Bytes:     []byte(lang.Name()),
	})
}

// WriteTo implements io.WriterTo.
func (crs *CRS) WriteTo(w io.Writer) (int64, error) {
	if crs == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(crs.Seed)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*CRS) Domain() string {
	return "Algebraic CRS"
}

type crsCBOR struct {
	Group string
	Seed  []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (crs *CRS) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(crsCBOR{Group: crs.group.Name(), Seed: crs.Seed})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (crs *CRS) UnmarshalBinary(data []byte) error {
	var v crsCBOR
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v.Seed) != params.CRSSeedBytes {
		return errors.New("zkalgebraic: invalid CRS seed length")
	}
	group, err := curve.FromName(v.Group)
	if err != nil {
		return err
	}
	crs.group, crs.Seed = group, v.Seed
	return nil
}
