package nurbs

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/bspline"
	"github.com/npillmayer/bspline/knots"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fixtures --------------------------------------------------------------

func arc(t *testing.T) *Curve {
	t.Helper()
	pts := []bspline.Point{bspline.P(0, 0), bspline.P(1, 2), bspline.P(2, 2), bspline.P(3, 0)}
	c, err := NewCurve(2, pts, nil, knots.Vector{0, 0, 0, 0.5, 1, 1, 1})
	require.NoError(t, err)
	return c
}

// quarterCircle is the unit circle arc from (1,0) to (0,1), as a rational
// quadratic Bézier curve.
func quarterCircle(t *testing.T) *Curve {
	t.Helper()
	pts := []bspline.Point{bspline.P(1, 0), bspline.P(1, 1), bspline.P(0, 1)}
	c, err := NewCurve(2, pts, []float64{1, math.Sqrt2 / 2, 1}, nil)
	require.NoError(t, err)
	return c
}

func cubic3D(t *testing.T) *Curve {
	t.Helper()
	pts := []bspline.Point{
		bspline.P(0, 0, 0), bspline.P(1, 3, 1), bspline.P(2, -1, 2), bspline.P(4, 2, 0),
		bspline.P(5, 5, -1), bspline.P(7, 1, 1), bspline.P(8, 0, 3),
	}
	c, err := NewCurve(3, pts, nil, knots.Vector{0, 0, 0, 0, 0.2, 0.5, 0.5, 1, 1, 1, 1})
	require.NoError(t, err)
	return c
}

func params(n int) []float64 {
	us := make([]float64, n+1)
	for i := range us {
		us[i] = float64(i) / float64(n)
	}
	return us
}

func assertClose(t *testing.T, want, got bspline.Point, tol float64, msgAndArgs ...any) {
	t.Helper()
	if !want.EqualTol(got, tol) {
		assert.Fail(t, "points differ: want "+want.String()+", got "+got.String(), msgAndArgs...)
	}
}

func collect(t *testing.T, seq func(func(bspline.Point) bool)) []bspline.Point {
	t.Helper()
	var pts []bspline.Point
	for p := range seq {
		pts = append(pts, p)
	}
	return pts
}

// --- Construction ----------------------------------------------------------

func TestNewCurve(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := arc(t)
	assert.Equal(t, 2, c.Degree())
	assert.Equal(t, 4, c.N())
	assert.Equal(t, 2, c.Dim())
	assert.False(t, c.IsRational())
	assert.Nil(t, c.Weights())
	assert.Equal(t, Interval{Start: 0, Stop: 1}, c.Domain())
	assert.Equal(t, "B-spline curve[degree=2, #ctrl=4, dim=2]", c.String())
	assert.Equal(t, "NURBS curve[degree=2, #ctrl=3, dim=2]", quarterCircle(t).String())
}

func TestNewCurveGeneratesAndNormalizesKnots(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := []bspline.Point{bspline.P(0, 0), bspline.P(1, 2), bspline.P(2, 2), bspline.P(3, 0)}
	c, err := NewCurve(2, pts, nil, nil)
	require.NoError(t, err)
	want := knots.Vector{0, 0, 0, 0.5, 1, 1, 1}
	if d := cmp.Diff(want, c.Knots()); d != "" {
		t.Error(d)
	}
	c, err = NewCurve(2, pts, nil, knots.Vector{2, 2, 2, 7, 12, 12, 12})
	require.NoError(t, err)
	if d := cmp.Diff(want, c.Knots()); d != "" {
		t.Error(d)
	}
}

func TestNewCurveCopiesInput(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := []bspline.Point{bspline.P(0, 0), bspline.P(1, 2), bspline.P(2, 2)}
	w := []float64{1, 2, 1}
	c, err := NewCurve(2, pts, w, nil)
	require.NoError(t, err)
	pts[1][0] = 99
	w[1] = 99
	assert.True(t, c.ControlPoints()[1].Equal(bspline.P(1, 2)))
	assert.Equal(t, []float64{1, 2, 1}, c.Weights())
	c.ControlPoints()[0][0] = 42
	assert.True(t, c.ControlPoints()[0].Equal(bspline.P(0, 0)))
}

func TestNewCurveFails(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p2 := []bspline.Point{bspline.P(0, 0), bspline.P(1, 2), bspline.P(2, 2), bspline.P(3, 0)}
	tests := []struct {
		name    string
		degree  int
		pts     []bspline.Point
		weights []float64
		kv      knots.Vector
		err     error
	}{
		{"degree 0", 0, p2, nil, nil, bspline.ErrMalformedKnotVector},
		{"no points", 2, nil, nil, nil, bspline.ErrDimensionMismatch},
		{"too few points", 4, p2, nil, nil, bspline.ErrDimensionMismatch},
		{"weight count", 2, p2, []float64{1, 1}, nil, bspline.ErrDimensionMismatch},
		{"zero weights", 2, p2, []float64{1, 0, 0, 1}, nil, bspline.ErrInvalidWeight},
		{"negative weight", 2, p2, []float64{1, -0.5, 1, 1}, nil, bspline.ErrInvalidWeight},
		{"NaN weight", 2, p2, []float64{1, math.NaN(), 1, 1}, nil, bspline.ErrInvalidWeight},
		{"4D points", 1, []bspline.Point{bspline.P(0, 0, 0, 0), bspline.P(1, 1, 1, 1)}, nil, nil,
			bspline.ErrDimensionMismatch},
		{"mixed dimensions", 1, []bspline.Point{bspline.P(0, 0), bspline.P(1, 1, 1)}, nil, nil,
			bspline.ErrDimensionMismatch},
		{"knot count", 2, p2, nil, knots.Vector{0, 0, 1, 1}, bspline.ErrMalformedKnotVector},
		{"decreasing knots", 2, p2, nil, knots.Vector{0, 0, 0, 0.7, 0.5, 1, 1}, bspline.ErrMalformedKnotVector},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCurve(tc.degree, tc.pts, tc.weights, tc.kv)
			assert.True(t, errors.Is(err, tc.err), "expected %v, got %v", tc.err, err)
		})
	}
}

// --- Evaluation ------------------------------------------------------------

func TestCurvePointScenario(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := arc(t)
	for _, strategy := range []knots.SpanStrategy{knots.LinearSearch, knots.BinarySearch} {
		ev := NewEvaluator(WithSpanStrategy(strategy))
		for _, tc := range []struct {
			u    float64
			want bspline.Point
		}{
			{0, bspline.P(0, 0)},
			{0.25, bspline.P(0.875, 1.5)},
			{0.5, bspline.P(1.5, 2)},
			{1, bspline.P(3, 0)},
		} {
			pt, err := ev.CurvePoint(c, tc.u)
			require.NoError(t, err)
			assertClose(t, tc.want, pt, 1e-12, "%s search, u=%g", strategy, tc.u)
		}
	}
}

func TestCurvePointOutOfDomain(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator()
	c := arc(t)
	for _, u := range []float64{-0.1, 1.1} {
		_, err := ev.CurvePoint(c, u)
		assert.True(t, errors.Is(err, bspline.ErrOutOfDomain), "u=%g", u)
	}
	_, err := ev.EvaluateCurve(c, Interval{Start: 0.5, Stop: 0.2})
	assert.True(t, errors.Is(err, bspline.ErrOutOfDomain))
	_, err = ev.EvaluateCurve(c, Interval{Start: 0, Stop: 2})
	assert.True(t, errors.Is(err, bspline.ErrOutOfDomain))
	_, err = ev.CurveDerivatives(c, 1.5, 1)
	assert.True(t, errors.Is(err, bspline.ErrOutOfDomain))
}

func TestSpanStrategiesEvaluateAlike(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := cubic3D(t)
	lin := NewEvaluator()
	bin := NewEvaluator(WithSpanStrategy(knots.BinarySearch), WithSpanTolerance(1e-6))
	for _, u := range params(50) {
		p1, err := lin.CurvePoint(c, u)
		require.NoError(t, err)
		p2, err := bin.CurvePoint(c, u)
		require.NoError(t, err)
		assertClose(t, p1, p2, 1e-12, "u=%g", u)
	}
}

func TestSpanStrategiesEvaluateAlikeNearEndKnot(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := []bspline.Point{bspline.P(0, 0), bspline.P(1, 2), bspline.P(2, 2), bspline.P(3, 0)}
	c, err := NewCurve(2, pts, nil, knots.Vector{0, 0, 0, 0.9995, 1, 1, 1})
	require.NoError(t, err)
	lin := NewEvaluator()
	bin := NewEvaluator(WithSpanStrategy(knots.BinarySearch))
	for _, u := range []float64{0.5, 0.998, 0.9992, 0.9994, 0.9995, 0.9998, 1} {
		p1, err := lin.CurvePoint(c, u)
		require.NoError(t, err)
		p2, err := bin.CurvePoint(c, u)
		require.NoError(t, err)
		assertClose(t, p1, p2, 1e-12, "u=%g", u)
	}
}

func TestEvaluateCurveIsLazyAndRestartable(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator(WithSampleSize(10))
	assert.Equal(t, 10, ev.SampleSize())
	c := arc(t)
	seq, err := ev.EvaluateCurve(c, c.Domain())
	require.NoError(t, err)
	first := collect(t, seq)
	second := collect(t, seq)
	require.Len(t, first, 10)
	assert.Equal(t, first, second)
	assertClose(t, bspline.P(0, 0), first[0], 1e-12)
	assertClose(t, bspline.P(3, 0), first[9], 1e-12)
	count := 0
	for range seq {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestEvaluateCurveSubInterval(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator(WithSampleSize(3))
	c := arc(t)
	seq, err := ev.EvaluateCurve(c, Interval{Start: 0.25, Stop: 0.5})
	require.NoError(t, err)
	pts := collect(t, seq)
	require.Len(t, pts, 3)
	assertClose(t, bspline.P(0.875, 1.5), pts[0], 1e-12)
	assertClose(t, bspline.P(1.5, 2), pts[2], 1e-12)
}

func TestSampleSizeOption(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Equal(t, DefaultSampleSize, NewEvaluator().SampleSize())
	assert.Equal(t, DefaultSampleSize, NewEvaluator(WithSampleSize(1)).SampleSize())
	assert.Equal(t, 2, NewEvaluator(WithSampleSize(2)).SampleSize())
}

func TestEvaluateCurveList(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator()
	c := arc(t)
	pts := ev.EvaluateCurveList(c, []float64{0, 1e-9, 0.25, 0.5, 1 - 1e-9, 1})
	require.Len(t, pts, 2)
	assertClose(t, bspline.P(0.875, 1.5), pts[0], 1e-12)
	assertClose(t, bspline.P(1.5, 2), pts[1], 1e-12)
	ev = NewEvaluator(WithDomainTolerance(0.3))
	assert.Len(t, ev.EvaluateCurveList(c, []float64{0.25, 0.5}), 1)
	assert.Empty(t, ev.EvaluateCurveList(c, nil))
}

func TestRationalCurveOnCircle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator()
	c := quarterCircle(t)
	assert.True(t, c.IsRational())
	for _, u := range params(20) {
		pt, err := ev.CurvePoint(c, u)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, pt.Length(), 1e-12, "u=%g", u)
	}
	pt, _ := ev.CurvePoint(c, 0.5)
	assertClose(t, bspline.P(math.Sqrt2/2, math.Sqrt2/2), pt, 1e-12)
}

func TestUnitWeightsAreNonRational(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator()
	c := cubic3D(t)
	w := make([]float64, c.N())
	for i := range w {
		w[i] = 1
	}
	r, err := NewCurve(c.Degree(), c.ControlPoints(), w, c.Knots())
	require.NoError(t, err)
	for _, u := range params(30) {
		p1, _ := ev.CurvePoint(c, u)
		p2, _ := ev.CurvePoint(r, u)
		assertClose(t, p1, p2, 1e-12, "u=%g", u)
	}
}

// --- Derivatives -----------------------------------------------------------

func finiteDifferences(t *testing.T, ev *Evaluator, c *Curve, u, h float64) (bspline.Point, bspline.Point) {
	t.Helper()
	p0, err := ev.CurvePoint(c, u)
	require.NoError(t, err)
	pm, err := ev.CurvePoint(c, u-h)
	require.NoError(t, err)
	pp, err := ev.CurvePoint(c, u+h)
	require.NoError(t, err)
	d1 := pp.Sub(pm).Scaled(1 / (2 * h))
	d2 := pp.Add(pm).Sub(p0.Scaled(2)).Scaled(1 / (h * h))
	return d1, d2
}

func TestCurveDerivatives(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator()
	for _, c := range []*Curve{arc(t), cubic3D(t), quarterCircle(t)} {
		// stay clear of knots, where second derivatives may jump
		for _, u := range []float64{0.1, 0.3, 0.45, 0.7, 0.9} {
			ders, err := ev.CurveDerivatives(c, u, 2)
			require.NoError(t, err)
			require.Len(t, ders, 3)
			pt, _ := ev.CurvePoint(c, u)
			assertClose(t, pt, ders[0], 1e-12, "%s at u=%g", c, u)
			d1, d2 := finiteDifferences(t, ev, c, u, 1e-4)
			assertClose(t, d1, ders[1], 1e-5, "%s: 1st derivative at u=%g", c, u)
			assertClose(t, d2, ders[2], 1e-3, "%s: 2nd derivative at u=%g", c, u)
		}
	}
}

func TestCurveDerivativesBeyondDegree(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator()
	c := arc(t)
	ders, err := ev.CurveDerivatives(c, 0.3, 5)
	require.NoError(t, err)
	require.Len(t, ders, 6)
	for k := 3; k <= 5; k++ {
		assert.True(t, ders[k].Equal(bspline.Zero(2)), "derivative %d = %s", k, ders[k])
	}
	ders, err = ev.CurveDerivatives(c, 0.3, 0)
	require.NoError(t, err)
	require.Len(t, ders, 1)
	_, err = ev.CurveDerivatives(c, 0.3, -1)
	assert.Error(t, err)
}

func TestRationalDerivativesAreZapped(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator()
	ders, err := ev.CurveDerivatives(quarterCircle(t), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ders[1].X()) // tangent at (1,0) is vertical
	assert.Greater(t, ders[1].Y(), 0.0)
	SKL, err := ev.SurfaceDerivatives(cylinder(t), 0.3, 0.4, 2)
	require.NoError(t, err)
	assert.Equal(t, bspline.Zero(3), SKL[0][2])
	assert.Equal(t, bspline.Zero(3), SKL[1][1])
}

func TestCircleDerivativesAreTangential(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ev := NewEvaluator()
	c := quarterCircle(t)
	for _, u := range params(10) {
		ders, err := ev.CurveDerivatives(c, u, 1)
		require.NoError(t, err)
		dot, err := ders[0].Dot(ders[1])
		require.NoError(t, err)
		assert.InDelta(t, 0.0, dot, 1e-10, "u=%g", u)
	}
}

// --- Polygons --------------------------------------------------------------

func TestControlPolygonAndHull(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := arc(t)
	pg, err := c.ControlPolygon()
	require.NoError(t, err)
	assert.Equal(t, 4, pg.N())
	assert.False(t, pg.IsCycle())
	hull, err := c.ConvexHull()
	require.NoError(t, err)
	assert.Equal(t, 4, hull.N())
	ev := NewEvaluator()
	us := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	for i, pt := range ev.EvaluateCurveList(c, us) {
		assert.True(t, hull.Contains(pt), "curve point %s at u=%g outside hull", pt, us[i])
	}
	_, err = cubic3D(t).ConvexHull()
	assert.True(t, errors.Is(err, bspline.ErrDimensionMismatch))
	_, err = cubic3D(t).ControlPolygon()
	assert.True(t, errors.Is(err, bspline.ErrDimensionMismatch))
}

func TestKnotsAreCopied(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := arc(t)
	kv := c.Knots()
	kv[3] = 0.9
	if d := cmp.Diff(knots.Vector{0, 0, 0, 0.5, 1, 1, 1}, c.Knots(), cmpopts.EquateApprox(0, 1e-12)); d != "" {
		t.Error(d)
	}
}
