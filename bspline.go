/*
Package bspline evaluates and manipulates B-spline and NURBS curves and
surfaces.

The root package holds the numeric helpers, the point type and the error
values shared by the sub-packages:

	knots     knot vectors: generation, normalization, validation, spans
	basis     B-spline basis functions, their derivatives, rational composites
	nurbs     curve and surface evaluation, derivatives and knot insertion
	polygon   control polygons and convex hulls of planar curves

The notation follows

	The NURBS Book, 2nd ed. -- Les Piegl, Wayne Tiller
	Springer 1997

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package bspline

import (
	"errors"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bspline'
func tracer() tracing.Trace {
	return tracing.Select("bspline")
}

// === Numeric Data Type =====================================================

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Zap returns 0 for numbers within Epsilon of zero, and n otherwise.
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// RoundTo rounds n to a fixed number of decimal places.
func RoundTo(n float64, decimals int) float64 {
	if decimals < 0 {
		return n
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(n*p) / p
}

// Binomial returns the binomial coefficient "n choose k".
// It returns 0 for k outside of 0…n.
func Binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := 1.0
	for i := 1; i <= k; i++ {
		c = c * float64(n-k+i) / float64(i)
	}
	return math.Round(c)
}

// === Errors ================================================================

var (
	// ErrMalformedKnotVector indicates an empty knot vector where a non-empty one
	// is required, a length not matching degree + #control points + 1, or a
	// decreasing sequence of knots.
	ErrMalformedKnotVector = errors.New("malformed knot vector")
	// ErrOutOfDomain indicates a parameter outside of [0,1] or outside of
	// the requested evaluation range.
	ErrOutOfDomain = errors.New("parameter out of domain")
	// ErrInvalidInsertionCount indicates a negative knot insertion count or
	// one exceeding degree - multiplicity.
	ErrInvalidInsertionCount = errors.New("invalid knot insertion count")
	// ErrDimensionMismatch indicates points or vectors of unexpected dimension,
	// or weight/control point sequences of different length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDegenerateVector indicates a zero-length vector where a direction is needed.
	ErrDegenerateVector = errors.New("degenerate vector")
	// ErrInvalidWeight indicates a NURBS weight which is not a positive number.
	ErrInvalidWeight = errors.New("invalid weight")
)
