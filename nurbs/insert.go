package nurbs

import (
	"errors"
	"fmt"

	"github.com/npillmayer/bspline"
	"github.com/npillmayer/bspline/knots"
)

// InsertKnot inserts knot u r times into the knot vector kv of a curve of
// the given degree with control points ctrl (Boehm's algorithm). weights may
// be nil for non-rational curves. s is the current multiplicity of u in kv.
// If enforce is set, r must not exceed degree - s.
//
// The arguments are unchanged; a new knot vector with len(kv)+r knots, new
// control points and, for rational curves, new weights (r more each) are
// returned. The new representation describes the same curve.
func InsertKnot(degree int, kv knots.Vector, ctrl []bspline.Point, weights []float64,
	u float64, r, s int, enforce bool) (knots.Vector, []bspline.Point, []float64, error) {
	if err := checkPoints(ctrl); err != nil {
		return nil, nil, nil, err
	}
	if weights != nil && len(weights) != len(ctrl) {
		return nil, nil, nil, fmt.Errorf("%w: %d weights for %d control points", bspline.ErrDimensionMismatch,
			len(weights), len(ctrl))
	}
	if err := checkWeights(weights); err != nil {
		return nil, nil, nil, err
	}
	if err := knots.Check(degree, kv, len(ctrl)); err != nil {
		return nil, nil, nil, err
	}
	if err := checkInsertion(degree, kv, u, r, s, enforce); err != nil {
		return nil, nil, nil, err
	}
	pts := ctrl
	if weights != nil {
		pts = homogenize(ctrl, weights)
	}
	UQ, Q := insertKnot(degree, kv, pts, u, r)
	if weights != nil {
		pts, w := split(Q)
		return UQ, pts, w, nil
	}
	return UQ, copyPoints(Q), nil, nil
}

// checkInsertion tests if knot u may be inserted r times into kv, s being
// the multiplicity of u. Inserting beyond degree - s is rejected if enforce
// is set; insertions at the very ends of the knot vector are always rejected.
func checkInsertion(degree int, kv knots.Vector, u float64, r, s int, enforce bool) error {
	if err := checkParam("knot", u); err != nil {
		return err
	}
	if r < 0 {
		return fmt.Errorf("%w: cannot insert a knot %d times", bspline.ErrInvalidInsertionCount, r)
	}
	if enforce && r > 0 && r > degree-s {
		return fmt.Errorf("%w: cannot insert knot %g of multiplicity %d %d times into degree %d spline",
			bspline.ErrInvalidInsertionCount, u, s, r, degree)
	}
	if r > 0 && (u <= kv.First() || u >= kv.Last()) {
		return fmt.Errorf("%w: cannot insert knot %g at the end of the knot vector",
			bspline.ErrInvalidInsertionCount, u)
	}
	return nil
}

// insertKnot inserts u r times, one knot at a time. For a single knot in span
// k the new control points are
//
//	Q[i] = α[i]⋅P[i] + (1−α[i])⋅P[i−1],   α[i] = (u − U[i]) / (U[i+p] − U[i])
//
// with α[i] = 1 for i ≤ k−p and α[i] = 0 for i > k.
func insertKnot(p int, kv knots.Vector, P []bspline.Point, u float64, r int) (knots.Vector, []bspline.Point) {
	UQ, Q := kv, P
	for ; r > 0; r-- {
		UQ, Q = insertOnce(p, UQ, Q, u)
	}
	return UQ.Clone(), Q
}

// multiplicity returns the multiplicity of knot u in kv. Inserted knots are
// not rounded, so knots are told apart down to Epsilon.
func multiplicity(u float64, kv knots.Vector) int {
	return knots.CountMultiplicities(kv, bspline.Epsilon).Of(u)
}

func insertOnce(p int, kv knots.Vector, P []bspline.Point, u float64) (knots.Vector, []bspline.Point) {
	n := len(P)
	k := knots.FindSpanLinear(p, kv, n, u)
	Q := make([]bspline.Point, n+1)
	for i := 0; i <= n; i++ {
		switch {
		case i <= k-p:
			Q[i] = P[i]
		case i > k:
			Q[i] = P[i-1]
		default:
			alpha := 0.0
			if den := kv[i+p] - kv[i]; den > 0 {
				alpha = (u - kv[i]) / den
			}
			Q[i] = P[i].Scaled(alpha).Add(P[i-1].Scaled(1 - alpha))
		}
	}
	UQ := make(knots.Vector, 0, len(kv)+1)
	UQ = append(UQ, kv[:k+1]...)
	UQ = append(UQ, u)
	UQ = append(UQ, kv[k+1:]...)
	return UQ, Q
}

// InsertKnot inserts knot u r times and returns the resulting curve, which
// has the same shape as c. The multiplicity of u is taken from the knot
// vector of c; if enforce is set, r must not exceed degree - multiplicity.
func (c *Curve) InsertKnot(u float64, r int, enforce bool) (*Curve, error) {
	s := multiplicity(u, c.knots)
	if err := checkInsertion(c.degree, c.knots, u, r, s, enforce); err != nil {
		return nil, err
	}
	UQ, Q := insertKnot(c.degree, c.knots, c.cw, u, r)
	tracer().Debugf("inserted knot %g %d times into %s", u, r, c)
	if c.IsRational() {
		pts, w := split(Q)
		return newCurve(c.degree, UQ, pts, w), nil
	}
	return newCurve(c.degree, UQ, copyPoints(Q), nil), nil
}

// InsertKnotU inserts knot u r times in u-direction. Every column of control
// points (fixed v-index) is refined like a curve.
func (s *Surface) InsertKnotU(u float64, r int, enforce bool) (*Surface, error) {
	mult := multiplicity(u, s.knotsU)
	if err := checkInsertion(s.degreeU, s.knotsU, u, r, mult, enforce); err != nil {
		return nil, fmt.Errorf("u-direction: %w", err)
	}
	sizeU := s.sizeU + r
	cw := make([]bspline.Point, sizeU*s.sizeV)
	var UQ knots.Vector
	for j := 0; j < s.sizeV; j++ {
		var Q []bspline.Point
		UQ, Q = insertKnot(s.degreeU, s.knotsU, s.column(j), u, r)
		for i, q := range Q {
			cw[i*s.sizeV+j] = q
		}
	}
	return s.refined(UQ, s.knotsV.Clone(), sizeU, s.sizeV, cw), nil
}

// InsertKnotV inserts knot v r times in v-direction. Every row of control
// points (fixed u-index) is refined like a curve.
func (s *Surface) InsertKnotV(v float64, r int, enforce bool) (*Surface, error) {
	mult := multiplicity(v, s.knotsV)
	if err := checkInsertion(s.degreeV, s.knotsV, v, r, mult, enforce); err != nil {
		return nil, fmt.Errorf("v-direction: %w", err)
	}
	sizeV := s.sizeV + r
	cw := make([]bspline.Point, 0, s.sizeU*sizeV)
	var VQ knots.Vector
	for i := 0; i < s.sizeU; i++ {
		var Q []bspline.Point
		VQ, Q = insertKnot(s.degreeV, s.knotsV, s.row(i), v, r)
		cw = append(cw, Q...)
	}
	return s.refined(s.knotsU.Clone(), VQ, s.sizeU, sizeV, cw), nil
}

// InsertKnot inserts knot u ru times in u-direction, then knot v rv times
// in v-direction. A count of 0 leaves a direction untouched.
//
// Both directions are independent of each other: if the insertion count
// for one direction is illegal, that direction is skipped with a warning
// and the other one is refined nevertheless. Other errors abort the call.
func (s *Surface) InsertKnot(u, v float64, ru, rv int, enforce bool) (*Surface, error) {
	result := s
	if ru != 0 {
		refined, err := result.InsertKnotU(u, ru, enforce)
		switch {
		case errors.Is(err, bspline.ErrInvalidInsertionCount):
			tracer().Errorf("skipping knot insertion: %v", err)
		case err != nil:
			return nil, err
		default:
			result = refined
		}
	}
	if rv != 0 {
		refined, err := result.InsertKnotV(v, rv, enforce)
		switch {
		case errors.Is(err, bspline.ErrInvalidInsertionCount):
			tracer().Errorf("skipping knot insertion: %v", err)
		case err != nil:
			return nil, err
		default:
			result = refined
		}
	}
	return result, nil
}

// refined creates a surface sharing degrees and rationality with s from
// refined knot vectors and evaluation points.
func (s *Surface) refined(kvU, kvV knots.Vector, sizeU, sizeV int, cw []bspline.Point) *Surface {
	if s.IsRational() {
		pts, w := split(cw)
		return newSurface(s.degreeU, s.degreeV, kvU, kvV, sizeU, sizeV, pts, w)
	}
	return newSurface(s.degreeU, s.degreeV, kvU, kvV, sizeU, sizeV, copyPoints(cw), nil)
}
