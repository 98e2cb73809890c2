package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/ublu/internal/params"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	"github.com/zeebo/blake3"
)

const DigestLengthBytes = params.SecBytes * 2 // 64

// Hash is the transcript hash used to derive Fiat-Shamir challenges.
//
// Internally, this is a wrapper around blake3, whose extendable output is used
// to sample challenges.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash, and writes the initial data to it.
func New(init ...interface{}) *Hash {
	hash := &Hash{h: blake3.New()}
	_ = hash.WriteAny(BytesWithDomain{TheDomain: "Protocol", Bytes: []byte("ublu")})
	for _, d := range init {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - int
//   - *saferith.Nat
//   - curve.Point
//   - curve.Scalar
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for all types but the last,
// which already suggests which domain to use.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var toBeWritten WriterToWithDomain
		switch t := d.(type) {
		case []byte:
			toBeWritten = BytesWithDomain{"[]byte", t}
		case string:
			toBeWritten = BytesWithDomain{"string", []byte(t)}
		case int:
			toBeWritten = BytesWithDomain{"int", binary.AppendVarint(nil, int64(t))}
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			toBeWritten = BytesWithDomain{"saferith.Nat", t.Bytes()}
		case curve.Point:
			if t == nil {
				return fmt.Errorf("hash.Hash: write curve.Point: nil")
			}
			bytes, err := t.MarshalBinary()
			if err != nil {
				return fmt.Errorf("hash.Hash: write curve.Point: %w", err)
			}
			toBeWritten = BytesWithDomain{"curve.Point", bytes}
		case curve.Scalar:
			if t == nil {
				return fmt.Errorf("hash.Hash: write curve.Scalar: nil")
			}
			bytes, err := t.MarshalBinary()
			if err != nil {
				return fmt.Errorf("hash.Hash: write curve.Scalar: %w", err)
			}
			toBeWritten = BytesWithDomain{"curve.Scalar", bytes}
		case WriterToWithDomain:
			toBeWritten = t
		default:
			panic("hash.Hash: unsupported type")
		}
		if err := writeWithDomain(hash.h, toBeWritten); err != nil {
			return fmt.Errorf("hash.Hash: write %s: %w", toBeWritten.Domain(), err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
