// Package combinatorics computes the binomial and Stirling number tables used
// to manipulate encrypted power vectors.
//
// All values are public and small in practice, so exact integers are used and
// reduced into the scalar field only when needed.
package combinatorics

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/ublu/pkg/math/curve"
)

// Binomial returns C(n, k), or 0 when k < 0 or k > n.
func Binomial(n, k int) *big.Int {
	if k < 0 || n < 0 || k > n {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}

// BinomialTable returns the table C(n, k) for 0 ≤ k ≤ n ≤ d.
func BinomialTable(d int) [][]*big.Int {
	table := make([][]*big.Int, d+1)
	for n := 0; n <= d; n++ {
		table[n] = make([]*big.Int, n+1)
		table[n][0] = big.NewInt(1)
		table[n][n] = big.NewInt(1)
		for k := 1; k < n; k++ {
			table[n][k] = new(big.Int).Add(table[n-1][k-1], table[n-1][k])
		}
	}
	return table
}

// Stirling2Table returns the Stirling numbers of the second kind S(n, k) for 0 ≤ k ≤ n ≤ d,
// using S(n, k) = k⋅S(n-1, k) + S(n-1, k-1).
//
// They express powers in terms of falling factorials: yⁿ = Σₖ S(n, k)⋅(y)ₖ.
func Stirling2Table(d int) [][]*big.Int {
	table := make([][]*big.Int, d+1)
	for n := 0; n <= d; n++ {
		table[n] = make([]*big.Int, n+1)
		for k := 0; k <= n; k++ {
			switch {
			case n == 0 && k == 0:
				table[n][k] = big.NewInt(1)
			case k == 0 || k > n:
				table[n][k] = new(big.Int)
			default:
				v := new(big.Int).Mul(big.NewInt(int64(k)), at(table[n-1], k))
				table[n][k] = v.Add(v, at(table[n-1], k-1))
			}
		}
	}
	return table
}

// Stirling1Table returns the signed Stirling numbers of the first kind s(n, k) for 0 ≤ k ≤ n ≤ d,
// using s(n, k) = s(n-1, k-1) - (n-1)⋅s(n-1, k).
//
// They are the coefficients of falling factorials: (y)ₙ = y(y-1)…(y-n+1) = Σₖ s(n, k)⋅yᵏ.
func Stirling1Table(d int) [][]*big.Int {
	table := make([][]*big.Int, d+1)
	for n := 0; n <= d; n++ {
		table[n] = make([]*big.Int, n+1)
		for k := 0; k <= n; k++ {
			switch {
			case n == 0 && k == 0:
				table[n][k] = big.NewInt(1)
			case k == 0:
				table[n][k] = new(big.Int)
			default:
				v := new(big.Int).Mul(big.NewInt(int64(n-1)), at(table[n-1], k))
				table[n][k] = v.Sub(at(table[n-1], k-1), v)
			}
		}
	}
	return table
}

// FallingFactorialCoefficients returns s(d, 1), …, s(d, d), so that
//
//	y(y-1)…(y-d+1) = Σᵢ₌₁ᵈ s(d, i)⋅yⁱ.
//
// The constant term s(d, 0) is zero for d ≥ 1 and is omitted. Only one row of
// the table is kept, so memory stays linear in d.
func FallingFactorialCoefficients(d int) []*big.Int {
	row := []*big.Int{big.NewInt(1)}
	for n := 1; n <= d; n++ {
		next := make([]*big.Int, n+1)
		for k := 0; k <= n; k++ {
			// s(n, k) = s(n-1, k-1) - (n-1)⋅s(n-1, k)
			v := new(big.Int).Mul(big.NewInt(int64(n-1)), at(row, k))
			next[k] = v.Sub(at(row, k-1), v)
		}
		row = next
	}
	return row[1:]
}

// Scalar reduces a signed integer into ℤq.
func Scalar(group curve.Curve, x *big.Int) curve.Scalar {
	abs := new(big.Int).Abs(x)
	s := group.NewScalar().SetNat(new(saferith.Nat).SetBytes(abs.Bytes()))
	if x.Sign() < 0 {
		s.Negate()
	}
	return s
}

// Scalars reduces every integer of xs into ℤq.
func Scalars(group curve.Curve, xs []*big.Int) []curve.Scalar {
	out := make([]curve.Scalar, len(xs))
	for i, x := range xs {
		out[i] = Scalar(group, x)
	}
	return out
}

func at(row []*big.Int, k int) *big.Int {
	if k < 0 || k >= len(row) {
		return new(big.Int)
	}
	return row[k]
}
