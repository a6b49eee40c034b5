// Package numeric holds the small linear algebra kernels shared by the heat and
// substance solvers.
package numeric

import "errors"

// ErrSingular is returned when a pivot of the tridiagonal elimination vanishes.
var ErrSingular = errors.New("numeric: singular tridiagonal system")

// Tridiag is a reusable Thomas algorithm workspace of fixed size.
type Tridiag struct {
	cPrime []float64
	dPrime []float64
}

func NewTridiag(n int) *Tridiag {
	return &Tridiag{
		cPrime: make([]float64, n),
		dPrime: make([]float64, n),
	}
}

// Solve solves the system with sub diagonal a, main diagonal b, super diagonal c
// and right hand side d, writing the solution to x. a[0] and c[n-1] are ignored.
// x may alias d.
func (t *Tridiag) Solve(a, b, c, d, x []float64) error {
	n := len(b)
	if n == 0 {
		return nil
	}
	if len(t.cPrime) < n {
		t.cPrime = make([]float64, n)
		t.dPrime = make([]float64, n)
	}
	cp, dp := t.cPrime[:n], t.dPrime[:n]

	// 前向消元, 主对角归一
	if b[0] == 0 {
		return ErrSingular
	}
	cp[0] = c[0] / b[0]
	dp[0] = d[0] / b[0]
	for i := 1; i < n; i++ {
		den := b[i] - a[i]*cp[i-1]
		if den == 0 {
			return ErrSingular
		}
		if i < n-1 {
			cp[i] = c[i] / den
		}
		dp[i] = (d[i] - a[i]*dp[i-1]) / den
	}

	// 回代
	x[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return nil
}

// SolveTridiag is a one-shot convenience wrapper around Tridiag.Solve.
func SolveTridiag(a, b, c, d, x []float64) error {
	return NewTridiag(len(b)).Solve(a, b, c, d, x)
}
