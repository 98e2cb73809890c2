package hash

import (
	"bytes"
	"encoding/binary"
	"io"
)

// WriterToWithDomain is a value that can serialize itself into a transcript,
// and names the domain its encoding belongs to.
type WriterToWithDomain interface {
	io.WriterTo

	// Domain returns a context string, unique for each implementor.
	Domain() string
}

// writeWithDomain writes len(domain) ∥ domain ∥ len(data) ∥ data.
//
// Both parts are length prefixed, so that no two different sequences of
// writes lead to the same stream.
func writeWithDomain(w io.Writer, object WriterToWithDomain) error {
	var data bytes.Buffer
	if _, err := object.WriteTo(&data); err != nil {
		return err
	}
	domain := object.Domain()
	prefix := make([]byte, 0, 2*binary.MaxVarintLen64+len(domain))
	prefix = binary.AppendUvarint(prefix, uint64(len(domain)))
	prefix = append(prefix, domain...)
	prefix = binary.AppendUvarint(prefix, uint64(data.Len()))
	if _, err := w.Write(prefix); err != nil {
		return err
	}
	_, err := w.Write(data.Bytes())
	return err
}

// BytesWithDomain annotates a chunk of data with a domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

// WriteTo implements io.WriterTo.
func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}
