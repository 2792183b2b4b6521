/*
Package basis computes B-spline basis functions and their derivatives.

The algorithms follow chapter 2 of

	The NURBS Book, 2nd ed. -- Les Piegl, Wayne Tiller
	Springer 1997

Functions and Derivatives compute the degree+1 non-vanishing basis
functions at a knot span (A2.2, A2.3). One evaluates a single basis
function of arbitrary index (A2.4); it is the building block of the
rational composites CurveRi and SurfaceRij.

All functions are pure: they never modify the knot vector or weights handed
to them and are safe for concurrent use.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package basis

import (
	"github.com/npillmayer/bspline/knots"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'basis'
func tracer() tracing.Trace {
	return tracing.Select("basis")
}

// Functions computes the non-vanishing basis functions N[span-degree…span]
// at parameter u (Algorithm A2.2). The result has degree+1 entries which sum
// to 1.0. span has to be a valid span for u, i.e. kv[span] ≤ u < kv[span+1];
// then all denominators are positive.
func Functions(degree int, kv knots.Vector, span int, u float64) []float64 {
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	N := make([]float64, degree+1)
	N[0] = 1.0
	for j := 1; j <= degree; j++ {
		left[j] = u - kv[span+1-j]
		right[j] = kv[span+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			temp := N[r] / (right[r+1] + left[j-r])
			N[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		N[j] = saved
	}
	return N
}

// FunctionsAll computes the basis functions of all degrees 0…degree at a
// span. The result is a triangular table N[j][i], where column i holds the
// i+1 non-vanishing functions of degree i. Entries with j > i are 0.
func FunctionsAll(degree int, kv knots.Vector, span int, u float64) [][]float64 {
	N := zeros(degree+1, degree+1)
	for i := 0; i <= degree; i++ {
		funcs := Functions(i, kv, span, u)
		for j := 0; j <= i; j++ {
			N[j][i] = funcs[j]
		}
	}
	return N
}

// Derivatives computes the non-vanishing basis functions and their
// derivatives at parameter u (Algorithm A2.3). The result ders has order+1
// rows of degree+1 entries; ders[k][j] is the k-th derivative of basis
// function N[span-degree+j]. ders[0] equals Functions(degree, kv, span, u).
//
// Derivatives of order greater than the degree vanish; their rows are
// returned as zeros without being computed.
func Derivatives(degree int, kv knots.Vector, span int, u float64, order int) [][]float64 {
	if order < 0 {
		order = 0
	}
	du := min(degree, order)
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	ndu := zeros(degree+1, degree+1) // upper triangle: functions, lower: knot differences
	ndu[0][0] = 1.0
	for j := 1; j <= degree; j++ {
		left[j] = u - kv[span+1-j]
		right[j] = kv[span+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}
	ders := zeros(order+1, degree+1)
	for j := 0; j <= degree; j++ {
		ders[0][j] = ndu[j][degree]
	}
	a := zeros(2, degree+1) // rows are swapped between derivative orders
	for r := 0; r <= degree; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1.0
		for k := 1; k <= du; k++ {
			d := 0.0
			rk, pk := r-k, degree-k
			if r >= k {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}
			j1, j2 := 1, k-1
			if rk < -1 {
				j1 = -rk
			}
			if r-1 > pk {
				j2 = degree - r
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][k] = -a[s1][k-1] / ndu[pk+1][r]
				d += a[s2][k] * ndu[r][pk]
			}
			ders[k][r] = d
			s1, s2 = s2, s1
		}
	}
	f := float64(degree)
	for k := 1; k <= du; k++ {
		for j := 0; j <= degree; j++ {
			ders[k][j] *= f
		}
		f *= float64(degree - k)
	}
	return ders
}

// One computes the single basis function N[i] of the given degree at
// parameter u (Algorithm A2.4). Other than Functions, i may be any index
// 0 ≤ i < len(kv)-degree-1; u need not lie in span i. The function is 1.0
// at the very first knot for i = 0 and at the very last knot for the last
// index, and 0.0 outside of its local support [kv[i], kv[i+degree+1]).
func One(degree int, kv knots.Vector, i int, u float64) float64 {
	m := len(kv) - 1
	if (i == 0 && u == kv[0]) || (i == m-degree-1 && u == kv[m]) {
		return 1.0
	}
	if u < kv[i] || u >= kv[i+degree+1] {
		return 0.0
	}
	N := make([]float64, degree+1)
	for j := 0; j <= degree; j++ { // degree 0 functions
		if u >= kv[i+j] && u < kv[i+j+1] {
			N[j] = 1.0
		}
	}
	for k := 1; k <= degree; k++ {
		saved := 0.0
		if N[0] != 0.0 {
			saved = (u - kv[i]) * N[0] / (kv[i+k] - kv[i])
		}
		for j := 0; j < degree-k+1; j++ {
			uleft, uright := kv[i+j+1], kv[i+j+k+1]
			if N[j+1] == 0.0 {
				N[j] = saved
				saved = 0.0
			} else {
				temp := N[j+1] / (uright - uleft)
				N[j] = saved + (uright-u)*temp
				saved = (u - uleft) * temp
			}
		}
	}
	return N[0]
}

func zeros(rows, cols int) [][]float64 {
	t := make([][]float64, rows)
	for i := range t {
		t[i] = make([]float64, cols)
	}
	return t
}
