package ublu

import (
	"fmt"

	"github.com/taurusgroup/ublu/internal/elgamal"
	"github.com/taurusgroup/ublu/pkg/math/combinatorics"
	"github.com/taurusgroup/ublu/pkg/math/curve"
	zksigma "github.com/taurusgroup/ublu/pkg/zk/sigma"
)

// Each relation below is a matrix M acting on a witness vector; comments give
// the rows as "statement entry = Σ witness⋅base".

func checkLength(name string, x zksigma.Statement, n int) error {
	if len(x) != n {
		return fmt.Errorf("%w: %s statement has length %d, expected %d", ErrDimension, name, len(x), n)
	}
	for i, xi := range x {
		if xi == nil {
			return fmt.Errorf("%s statement[%d]: %w", name, i, ErrNil)
		}
	}
	return nil
}

// keyLanguage binds the public key to the committed threshold through the
// second power ciphertext (A₂, B₂).
//
// Witness (sk, t, r_t, τ, u, r₂):
//
//	pk    = sk⋅G
//	com_t = t⋅G + r_t⋅H
//	0     = t⋅com_t - τ⋅G - u⋅H
//	A₂    = r₂⋅G
//	B₂    = τ⋅G + r₂⋅pk
//
// The third row forces τ = t², so C₂ encrypts the square of the committed t.
func keyLanguage(p *Parameters, pk, comT curve.Point) *zksigma.Language {
	const (
		colSK = iota
		colT
		colRT
		colTau
		colU
		colR2
	)
	g, h := p.G, p.H
	return zksigma.NewLanguage(p.Group, "ublu/key", 5, 6).
		Set(0, colSK, g).
		Set(1, colT, g).Set(1, colRT, h).
		Set(2, colT, comT).Set(2, colTau, g.Negate()).Set(2, colU, h.Negate()).
		Set(3, colR2, g).
		Set(4, colTau, g).Set(4, colR2, pk)
}

func keyStatement(pk *PublicKey) zksigma.Statement {
	return zksigma.Statement{
		pk.PK,
		pk.ComT,
		pk.PK.Curve().NewPoint(),
		pk.Anchor.L,
		pk.Anchor.M,
	}
}

// consistencyLanguage states that the ciphertexts (Aᵢ, Bᵢ) encrypt yⁱ under
// pk, where y = x - t for the t committed in com_t and the x committed in com_x.
//
// Witness (t, r_t, x, r_x, y, r₁…r_d, s₁…s_{d-1}), with sᵢ = y⋅rᵢ:
//
//	com_t = t⋅G + r_t⋅H
//	com_x = x⋅G + r_x⋅H
//	0     = x⋅G - t⋅G - y⋅G
//	Aᵢ    = rᵢ⋅G                          for i = 1…d
//	B₁    = y⋅G + r₁⋅pk
//	0     = y⋅Aᵢ - sᵢ⋅G                    for i = 1…d-1
//	Bᵢ₊₁  = y⋅Bᵢ + rᵢ₊₁⋅pk - sᵢ⋅pk
//
// The last two rows are interleaved per i.
type consistencyLanguage struct {
	params *Parameters
	pk     curve.Point
}

func (consistencyLanguage) Name() string { return "ublu/consistency" }

func consistencyRows(d int) int { return 3*d + 2 }

func consistencyCols(d int) int { return 2*d + 4 }

func (l consistencyLanguage) Matrix(x zksigma.Statement) (*zksigma.Language, error) {
	d := l.params.Degree
	if err := checkLength(l.Name(), x, consistencyRows(d)); err != nil {
		return nil, err
	}
	const (
		colT = iota
		colRT
		colX
		colRX
		colY
	)
	colR := func(i int) int { return 5 + i - 1 }
	colS := func(i int) int { return 5 + d + i - 1 }
	A := func(i int) curve.Point { return x[3+i-1] }
	B := func(i int) curve.Point { return x[3+d+2*(i-1)] }

	g, h, pk := l.params.G, l.params.H, l.pk
	m := zksigma.NewLanguage(l.params.Group, l.Name(), consistencyRows(d), consistencyCols(d))
	m.Set(0, colT, g).Set(0, colRT, h)
	m.Set(1, colX, g).Set(1, colRX, h)
	m.Set(2, colX, g).Set(2, colT, g.Negate()).Set(2, colY, g.Negate())
	for i := 1; i <= d; i++ {
		m.Set(3+i-1, colR(i), g)
	}
	m.Set(3+d, colY, g).Set(3+d, colR(1), pk)
	for i := 1; i < d; i++ {
		rowO := 3 + d + 1 + 2*(i-1)
		rowB := rowO + 1
		m.Set(rowO, colY, A(i)).Set(rowO, colS(i), g.Negate())
		m.Set(rowB, colY, B(i)).Set(rowB, colR(i+1), pk).Set(rowB, colS(i), pk.Negate())
	}
	return m, nil
}

func consistencyStatement(comT, comX curve.Point, ciphers []*elgamal.Ciphertext) zksigma.Statement {
	d := len(ciphers)
	identity := comT.Curve().NewPoint()
	x := make(zksigma.Statement, 0, consistencyRows(d))
	x = append(x, comT, comX, identity)
	for _, c := range ciphers {
		x = append(x, c.L)
	}
	x = append(x, ciphers[0].M)
	for i := 1; i < d; i++ {
		x = append(x, identity, ciphers[i].M)
	}
	return x
}

// updateLanguage states that new ciphertexts C' are obtained from old ones C
// by folding in the increment committed in com'_x - com_x.
//
// P₁ = com'_x - com_x, and P₂…P_d are commitments to the powers of the
// increment, published in the tag. Witness (δ₁…δ_d, ρ₁…ρ_d, τ₁…τ_{d-1},
// r'₁…r'_d), with δₖ = Δᵏ:
//
//	Pₖ        = δₖ⋅G + ρₖ⋅H                                  for k = 1…d
//	Pₖ₊₁      = δ₁⋅Pₖ + τₖ⋅H                                 for k = 1…d-1
//	A'ᵢ - Aᵢ  = Σ_{m<i} C(i,m)⋅δₘ⋅Aᵢ₋ₘ + r'ᵢ⋅G               for i = 1…d
//	B'ᵢ - Bᵢ  = Σ_{m<i} C(i,m)⋅δₘ⋅Bᵢ₋ₘ + δᵢ⋅G + r'ᵢ⋅pk
//
// Binding of commitments turns the second row into δₖ₊₁ = δ₁⋅δₖ.
type updateLanguage struct {
	params *Parameters
	pk     curve.Point
	old    []*elgamal.Ciphertext
}

func (updateLanguage) Name() string { return "ublu/update" }

func updateSize(d int) int { return 4*d - 1 }

func (l updateLanguage) Matrix(x zksigma.Statement) (*zksigma.Language, error) {
	d := l.params.Degree
	if len(l.old) != d {
		return nil, fmt.Errorf("%w: %d ciphertexts, d = %d", ErrDimension, len(l.old), d)
	}
	if err := checkLength(l.Name(), x, updateSize(d)); err != nil {
		return nil, err
	}
	colDelta := func(k int) int { return k - 1 }
	colRho := func(k int) int { return d + k - 1 }
	colTau := func(k int) int { return 2*d + k - 1 }
	colR := func(i int) int { return 3*d - 1 + i - 1 }
	P := func(k int) curve.Point { return x[k-1] }

	group := l.params.Group
	g, h, pk := l.params.G, l.params.H, l.pk
	m := zksigma.NewLanguage(group, l.Name(), updateSize(d), updateSize(d))
	for k := 1; k <= d; k++ {
		m.Set(k-1, colDelta(k), g).Set(k-1, colRho(k), h)
	}
	for k := 1; k < d; k++ {
		row := d + k - 1
		m.Set(row, colDelta(1), P(k)).Set(row, colTau(k), h)
	}
	binomials := combinatorics.BinomialTable(d)
	for i := 1; i <= d; i++ {
		rowA := 2*d - 1 + i - 1
		rowB := 3*d - 1 + i - 1
		for mm := 1; mm < i; mm++ {
			c := combinatorics.Scalar(group, binomials[i][mm])
			m.Set(rowA, colDelta(mm), c.Act(l.old[i-mm-1].L))
			m.Set(rowB, colDelta(mm), c.Act(l.old[i-mm-1].M))
		}
		m.Set(rowA, colR(i), g)
		m.Set(rowB, colDelta(i), g).Set(rowB, colR(i), pk)
	}
	return m, nil
}

// blindLanguage states that Dᵢ is Cᵢ rerandomised by ρᵢ and shifted by α⋅Wᵢ,
// for the α committed in com_α.
//
// Witness (α, r_α, ρ₁…ρ_d):
//
//	com_α        = α⋅G + r_α⋅H
//	D.Lᵢ - Aᵢ    = ρᵢ⋅G
//	D.Mᵢ - Bᵢ    = ρᵢ⋅pk + α⋅Wᵢ
type blindLanguage struct {
	params *Parameters
	pk     curve.Point
}

func (blindLanguage) Name() string { return "ublu/blind" }

func (l blindLanguage) Matrix(x zksigma.Statement) (*zksigma.Language, error) {
	d := l.params.Degree
	if err := checkLength(l.Name(), x, 2*d+1); err != nil {
		return nil, err
	}
	const (
		colAlpha = iota
		colRAlpha
	)
	colRho := func(i int) int { return 2 + i - 1 }
	g, h, pk := l.params.G, l.params.H, l.pk
	m := zksigma.NewLanguage(l.params.Group, l.Name(), 2*d+1, d+2)
	m.Set(0, colAlpha, g).Set(0, colRAlpha, h)
	for i := 1; i <= d; i++ {
		m.Set(i, colRho(i), g)
		m.Set(d+i, colRho(i), pk).Set(d+i, colAlpha, l.params.W[i-1])
	}
	return m, nil
}

func blindStatement(comAlpha curve.Point, old, blinded []*elgamal.Ciphertext) zksigma.Statement {
	d := len(old)
	x := make(zksigma.Statement, 2*d+1)
	x[0] = comAlpha
	for i := 0; i < d; i++ {
		x[1+i] = blinded[i].L.Sub(old[i].L)
		x[1+d+i] = blinded[i].M.Sub(old[i].M)
	}
	return x
}

// evalLanguage states that E is β times the weighted sum of the blinded
// vector, with the α⋅W shift removed, plus an encryption of 1.
//
// With S_L = Σ cᵢ⋅D.Lᵢ, S_M = Σ cᵢ⋅D.Mᵢ and S_W = Σ cᵢ⋅Wᵢ, the witness
// (β, r_β, γ, δ, ψ) satisfies:
//
//	com_β   = β⋅G + r_β⋅H
//	0       = β⋅com_α - γ⋅G - δ⋅H
//	E.L     = β⋅S_L - ψ⋅G
//	E.M - G = β⋅S_M - γ⋅S_W - ψ⋅pk
//
// The second row forces γ = α⋅β.
type evalLanguage struct {
	params   *Parameters
	pk       curve.Point
	comAlpha curve.Point
	blinded  []*elgamal.Ciphertext
}

func (evalLanguage) Name() string { return "ublu/evaluate" }

func (l evalLanguage) Matrix(x zksigma.Statement) (*zksigma.Language, error) {
	d := l.params.Degree
	if len(l.blinded) != d {
		return nil, fmt.Errorf("%w: %d blinded ciphertexts, d = %d", ErrDimension, len(l.blinded), d)
	}
	if err := checkLength(l.Name(), x, 4); err != nil {
		return nil, err
	}
	const (
		colBeta = iota
		colRBeta
		colGamma
		colDelta
		colPsi
	)
	group := l.params.Group
	sum := weightedSum(group, l.params.Stirling, l.blinded)
	sW := group.NewPoint()
	for i, w := range l.params.W {
		sW = sW.Add(l.params.Stirling[i].Act(w))
	}
	g, h := l.params.G, l.params.H
	return zksigma.NewLanguage(group, l.Name(), 4, 5).
		Set(0, colBeta, g).Set(0, colRBeta, h).
		Set(1, colBeta, l.comAlpha).Set(1, colGamma, g.Negate()).Set(1, colDelta, h.Negate()).
		Set(2, colBeta, sum.L).Set(2, colPsi, g.Negate()).
		Set(3, colBeta, sum.M).Set(3, colGamma, sW.Negate()).Set(3, colPsi, l.pk.Negate()), nil
}

func evalStatement(p *Parameters, comBeta curve.Point, e *elgamal.Ciphertext) zksigma.Statement {
	return zksigma.Statement{
		comBeta,
		p.Group.NewPoint(),
		e.L,
		e.M.Sub(p.G),
	}
}

// weightedSum returns Σ cᵢ⋅Cᵢ.
func weightedSum(group curve.Curve, c []curve.Scalar, ciphers []*elgamal.Ciphertext) *elgamal.Ciphertext {
	sum := elgamal.Empty(group)
	for i, ct := range ciphers {
		sum = sum.Add(ct.Act(c[i]))
	}
	return sum
}
