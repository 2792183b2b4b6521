/*
Package nurbs evaluates B-spline and NURBS curves and surfaces and inserts
knots into them.

Curves and surfaces are immutable value holders: a degree (per direction),
a normalized knot vector (per direction), control points and, for rational
curves and surfaces, one weight per control point. Whether a curve is
rational is told by the presence of weights. All computation is done by an
Evaluator, which locates knot spans, computes basis functions and sums them
against the control points:

	ev := nurbs.NewEvaluator(nurbs.WithSpanStrategy(knots.BinarySearch))
	pt, err := ev.CurvePoint(curve, 0.5)

Knot insertion (Boehm's algorithm) never modifies a curve or surface, but
returns a new one representing the same shape.

Surface control points are stored as a flat sequence in u-major order. The
control point (i,j), with i in u-direction and j in v-direction, is found at
index i*SizeV()+j, i.e. v varies fastest.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package nurbs

import (
	"fmt"

	"github.com/npillmayer/bspline"
	"github.com/npillmayer/bspline/knots"
	"github.com/npillmayer/bspline/polygon"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'nurbs'
func tracer() tracing.Trace {
	return tracing.Select("nurbs")
}

// Interval is a closed parameter range [Start, Stop].
type Interval struct {
	Start, Stop float64
}

// Curve is a B-spline or NURBS curve.
type Curve struct {
	degree  int
	knots   knots.Vector    // normalized
	ctrl    []bspline.Point // cartesian control points
	weights []float64       // nil for non-rational curves
	cw      []bspline.Point // control points used for evaluation, homogeneous if rational
}

// NewCurve creates a curve of the given degree from 2D or 3D control points.
// weights may be nil for a non-rational curve; otherwise there has to be one
// weight per control point. If kv is nil, a clamped uniform knot vector is
// generated, else kv is normalized to [0,1] and checked.
func NewCurve(degree int, ctrl []bspline.Point, weights []float64, kv knots.Vector) (*Curve, error) {
	if degree < 1 {
		return nil, fmt.Errorf("%w: degree must be positive, is %d", bspline.ErrMalformedKnotVector, degree)
	}
	if err := checkPoints(ctrl); err != nil {
		return nil, err
	}
	if weights != nil && len(weights) != len(ctrl) {
		return nil, fmt.Errorf("%w: %d weights for %d control points", bspline.ErrDimensionMismatch,
			len(weights), len(ctrl))
	}
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	if len(ctrl) <= degree {
		return nil, fmt.Errorf("%w: %d control points are too few for degree %d",
			bspline.ErrDimensionMismatch, len(ctrl), degree)
	}
	var err error
	if kv == nil {
		if kv, err = knots.Generate(degree, len(ctrl)); err != nil {
			return nil, err
		}
	} else {
		kv = knots.Normalize(kv, knots.DefaultDecimals)
	}
	if err = knots.Check(degree, kv, len(ctrl)); err != nil {
		return nil, err
	}
	return newCurve(degree, kv, copyPoints(ctrl), copyWeights(weights)), nil
}

// newCurve assembles a curve from checked parts without copying them.
func newCurve(degree int, kv knots.Vector, ctrl []bspline.Point, weights []float64) *Curve {
	c := &Curve{degree: degree, knots: kv, ctrl: ctrl, weights: weights}
	if weights != nil {
		c.cw = homogenize(ctrl, weights)
	} else {
		c.cw = ctrl
	}
	return c
}

// Degree returns the degree of the curve.
func (c *Curve) Degree() int {
	return c.degree
}

// Knots returns a copy of the normalized knot vector.
func (c *Curve) Knots() knots.Vector {
	return c.knots.Clone()
}

// ControlPoints returns a copy of the control points.
func (c *Curve) ControlPoints() []bspline.Point {
	return copyPoints(c.ctrl)
}

// Weights returns a copy of the weights, or nil for a non-rational curve.
func (c *Curve) Weights() []float64 {
	return copyWeights(c.weights)
}

// N returns the number of control points.
func (c *Curve) N() int {
	return len(c.ctrl)
}

// Dim returns the dimension of the control points (2 or 3).
func (c *Curve) Dim() int {
	return c.ctrl[0].Dim()
}

// IsRational is a predicate: is this a NURBS curve, i.e. does it carry weights?
func (c *Curve) IsRational() bool {
	return c.weights != nil
}

// Domain returns the default evaluation interval, which is spanned by the
// knots at positions degree and len(knots)-degree-1.
func (c *Curve) Domain() Interval {
	return Interval{Start: c.knots[c.degree], Stop: c.knots[len(c.knots)-c.degree-1]}
}

// ControlPolygon returns the open polygon connecting the control points of
// a planar curve.
func (c *Curve) ControlPolygon() (*polygon.Polygon, error) {
	return polygon.FromPoints(c.ctrl, false)
}

// ConvexHull returns the convex hull of the control points of a planar
// curve. By the convex hull property of B-splines, the curve lies within it.
func (c *Curve) ConvexHull() (*polygon.Polygon, error) {
	return polygon.ConvexHull(c.ctrl)
}

func (c *Curve) String() string {
	kind := "B-spline"
	if c.IsRational() {
		kind = "NURBS"
	}
	return fmt.Sprintf("%s curve[degree=%d, #ctrl=%d, dim=%d]", kind, c.degree, len(c.ctrl), c.Dim())
}

// --- Helpers ---------------------------------------------------------------

// checkPoints makes sure pts is non-empty and holds 2D or 3D points only,
// all of the same dimension.
func checkPoints(pts []bspline.Point) error {
	if len(pts) == 0 {
		return fmt.Errorf("%w: no control points", bspline.ErrDimensionMismatch)
	}
	dim := pts[0].Dim()
	if dim != 2 && dim != 3 {
		return fmt.Errorf("%w: control points must be 2D or 3D, got %d-D", bspline.ErrDimensionMismatch, dim)
	}
	for i, p := range pts {
		if p.Dim() != dim {
			return fmt.Errorf("%w: control point %d is %d-D, expected %d-D", bspline.ErrDimensionMismatch,
				i, p.Dim(), dim)
		}
	}
	return nil
}

// checkWeights makes sure all weights are positive.
func checkWeights(weights []float64) error {
	for i, w := range weights {
		if !(w > 0) {
			return fmt.Errorf("%w: weight %d is %g, must be positive", bspline.ErrInvalidWeight, i, w)
		}
	}
	return nil
}

func copyPoints(pts []bspline.Point) []bspline.Point {
	cp := make([]bspline.Point, len(pts))
	for i, p := range pts {
		cp[i] = p.Copy()
	}
	return cp
}

func copyWeights(w []float64) []float64 {
	if w == nil {
		return nil
	}
	return append([]float64(nil), w...)
}

// homogenize maps control points and weights to homogeneous points
// (w⋅x, w⋅y, [w⋅z,] w).
func homogenize(pts []bspline.Point, weights []float64) []bspline.Point {
	pw := make([]bspline.Point, len(pts))
	for i, p := range pts {
		q := make(bspline.Point, p.Dim()+1)
		for d, x := range p {
			q[d] = x * weights[i]
		}
		q[p.Dim()] = weights[i]
		pw[i] = q
	}
	return pw
}

// dehomogenize projects a homogeneous point back to cartesian space.
func dehomogenize(pw bspline.Point) bspline.Point {
	dim := pw.Dim() - 1
	return pw[:dim].Scaled(1 / pw[dim])
}

// split separates homogeneous points into cartesian points and weights.
func split(pws []bspline.Point) ([]bspline.Point, []float64) {
	pts := make([]bspline.Point, len(pws))
	w := make([]float64, len(pws))
	for i, pw := range pws {
		pts[i] = dehomogenize(pw)
		w[i] = pw[pw.Dim()-1]
	}
	return pts, w
}
