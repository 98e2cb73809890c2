package zksigma

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/taurusgroup/ublu/pkg/math/curve"
)

type (
	// Statement is the claimed image X = M⋅w.
	Statement []curve.Point
	// Witness is the preimage w.
	Witness []curve.Scalar
)

// Language is the linear map w ↦ M⋅w from ℤqⁿ to 𝔾ᵐ, described by an m×n
// matrix of group elements.
//
// A nil entry stands for the identity, so that sparse relations stay cheap.
type Language struct {
	group  curve.Curve
	name   string
	matrix [][]curve.Point
}

// NewLanguage returns the zero map with the given dimensions.
//
// The name is bound into every challenge, and should identify the relation.
func NewLanguage(group curve.Curve, name string, rows, cols int) *Language {
	matrix := make([][]curve.Point, rows)
	for i := range matrix {
		matrix[i] = make([]curve.Point, cols)
	}
	return &Language{
		group:  group,
		name:   name,
		matrix: matrix,
	}
}

// Set sets M[row][col] = p, and returns the language.
func (l *Language) Set(row, col int, p curve.Point) *Language {
	l.matrix[row][col] = p
	return l
}

// Entry returns M[row][col], or nil if it is the identity.
func (l *Language) Entry(row, col int) curve.Point {
	return l.matrix[row][col]
}

func (l *Language) Group() curve.Curve { return l.group }

func (l *Language) Name() string { return l.name }

// Rows is the dimension of statements.
func (l *Language) Rows() int { return len(l.matrix) }

// Cols is the dimension of witnesses.
func (l *Language) Cols() int {
	if len(l.matrix) == 0 {
		return 0
	}
	return len(l.matrix[0])
}

// Image returns M⋅w.
func (l *Language) Image(w Witness) (Statement, error) {
	if len(w) != l.Cols() {
		return nil, fmt.Errorf("%w: witness has length %d, expected %d", ErrDimension, len(w), l.Cols())
	}
	x := make(Statement, l.Rows())
	for i, row := range l.matrix {
		acc := l.group.NewPoint()
		for j, m := range row {
			if m == nil {
				continue
			}
			acc = acc.Add(w[j].Act(m))
		}
		x[i] = acc
	}
	return x, nil
}

// Contains returns true if x = M⋅w.
func (l *Language) Contains(x Statement, w Witness) bool {
	if len(x) != l.Rows() {
		return false
	}
	image, err := l.Image(w)
	if err != nil {
		return false
	}
	for i := range x {
		if x[i] == nil || !x[i].Equal(image[i]) {
			return false
		}
	}
	return true
}

// WriteTo implements io.WriterTo, and writes the name, dimensions and every
// entry of the matrix.
func (l *Language) WriteTo(w io.Writer) (int64, error) {
	var total int64
	header := binary.AppendUvarint(nil, uint64(len(l.name)))
	header = append(header, l.name...)
	header = binary.AppendUvarint(header, uint64(l.Rows()))
	header = binary.AppendUvarint(header, uint64(l.Cols()))
	n, err := w.Write(header)
	total += int64(n)
	if err != nil {
		return total, err
	}
	identity := l.group.NewPoint()
	for _, row := range l.matrix {
		for _, m := range row {
			if m == nil {
				m = identity
			}
			buf, err := m.MarshalBinary()
			if err != nil {
				return total, err
			}
			n, err = w.Write(buf)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Language) Domain() string {
	return "Sigma Language"
}
