/*
Package knots deals with knot vectors of B-spline and NURBS curves and
surfaces: generation of clamped uniform vectors, normalization to [0,1],
validation, knot multiplicities and knot span location.

A knot vector for a spline of degree p with n control points has
m = p + n + 1 non-decreasing entries (The NURBS Book, section 2.2).

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package knots

import (
	"fmt"

	"github.com/npillmayer/bspline"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'knots'
func tracer() tracing.Trace {
	return tracing.Select("knots")
}

// DefaultTolerance is the absolute tolerance used for comparing knots, e.g.,
// when counting multiplicities or locating the final span.
const DefaultTolerance = 0.001

// DefaultDecimals is the number of decimal places knots are rounded to
// during normalization.
const DefaultDecimals = 4

// Vector is a non-decreasing sequence of knots.
type Vector []float64

// Clone returns a copy of kv.
func (kv Vector) Clone() Vector {
	return append(Vector(nil), kv...)
}

// First returns the first knot, or 0 for an empty vector.
func (kv Vector) First() float64 {
	if len(kv) == 0 {
		return 0
	}
	return kv[0]
}

// Last returns the last knot, or 0 for an empty vector.
func (kv Vector) Last() float64 {
	if len(kv) == 0 {
		return 0
	}
	return kv[len(kv)-1]
}

// Generate creates a clamped, uniformly spaced knot vector for a spline of
// the given degree with n control points. The first and last degree+1 knots
// are 0.0 and 1.0 respectively; the interior knots are equally spaced.
//
// Example: degree 2 and 4 control points yield [0, 0, 0, 0.5, 1, 1, 1].
func Generate(degree, n int) (Vector, error) {
	if degree <= 0 || n <= 0 {
		return nil, fmt.Errorf("%w: degree (%d) and control point count (%d) must be positive",
			bspline.ErrMalformedKnotVector, degree, n)
	}
	if n <= degree {
		return nil, fmt.Errorf("%w: %d control points are too few for degree %d",
			bspline.ErrMalformedKnotVector, n, degree)
	}
	m := degree + n + 1
	segments := m - 2*(degree+1) + 1
	spacing := 1.0 / float64(segments)
	kv := make(Vector, 0, m)
	for i := 0; i < degree; i++ {
		kv = append(kv, 0.0)
	}
	for i := 0; i < segments; i++ {
		kv = append(kv, float64(i)*spacing)
	}
	kv = append(kv, 1.0)
	for i := 0; i < degree; i++ {
		kv = append(kv, 1.0)
	}
	return kv, nil
}

// Normalize maps a knot vector onto [0,1], with the first knot becoming 0.0
// and the last one 1.0. Knots are rounded to the given number of decimal
// places. The argument is unchanged and a new vector is returned.
//
// Normalizing an already normalized vector returns an equal vector.
func Normalize(kv Vector, decimals int) Vector {
	if len(kv) == 0 {
		return Vector{}
	}
	first, last := kv.First(), kv.Last()
	width := last - first
	if width <= 0 {
		tracer().Errorf("cannot normalize knot vector of zero width: %v", kv)
		return kv.Clone()
	}
	out := make(Vector, len(kv))
	for i, k := range kv {
		out[i] = bspline.RoundTo((k-first)/width, decimals)
	}
	return out
}

// Check tests if a knot vector follows the mathematical rules for a spline
// of the given degree with n control points: it must have degree + n + 1
// knots in non-decreasing order. Violations are reported as
// bspline.ErrMalformedKnotVector.
func Check(degree int, kv Vector, n int) error {
	if len(kv) == 0 {
		return fmt.Errorf("%w: knot vector is empty", bspline.ErrMalformedKnotVector)
	}
	if len(kv) != degree+n+1 {
		return fmt.Errorf("%w: expected %d knots for degree %d and %d control points, got %d",
			bspline.ErrMalformedKnotVector, degree+n+1, degree, n, len(kv))
	}
	for i := 1; i < len(kv); i++ {
		if kv[i-1] > kv[i] {
			return fmt.Errorf("%w: knot %d (%g) is less than knot %d (%g)",
				bspline.ErrMalformedKnotVector, i, kv[i], i-1, kv[i-1])
		}
	}
	return nil
}

// Validate is a predicate: does kv satisfy Check?
func Validate(degree int, kv Vector, n int) bool {
	return Check(degree, kv, n) == nil
}

// Multiplicity counts the knots of kv within tol of knot.
func Multiplicity(knot float64, kv Vector, tol float64) int {
	mult := 0
	for _, k := range kv {
		if k-knot <= tol && knot-k <= tol {
			mult++
		}
	}
	return mult
}
