package nurbs

import (
	"fmt"
	"iter"

	"github.com/npillmayer/bspline"
	"github.com/npillmayer/bspline/basis"
	"github.com/npillmayer/bspline/knots"
)

// DefaultSampleSize is the number of parameter values per direction used for
// ranged evaluation.
const DefaultSampleSize = 100

// DefaultDomainTolerance is the distance from the domain ends 0 and 1 within
// which parameters of list evaluation are discarded.
const DefaultDomainTolerance = 1e-8

// Evaluator computes points and derivatives of curves and surfaces.
// An Evaluator holds configuration only; it is safe for concurrent use.
type Evaluator struct {
	span       knots.SpanStrategy
	spanTol    float64
	domainTol  float64
	sampleSize int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSpanStrategy selects linear or binary search for knot span location.
// The default is linear search.
func WithSpanStrategy(s knots.SpanStrategy) Option {
	return func(e *Evaluator) {
		e.span = s
	}
}

// WithSpanTolerance sets the tolerance for detecting parameters at the end of
// the knot vector during binary span search.
func WithSpanTolerance(tol float64) Option {
	return func(e *Evaluator) {
		e.spanTol = tol
	}
}

// WithDomainTolerance sets the tolerance for discarding parameters close to
// the domain ends during list evaluation.
func WithDomainTolerance(tol float64) Option {
	return func(e *Evaluator) {
		e.domainTol = tol
	}
}

// WithSampleSize sets the number of samples per direction for ranged
// evaluation. Sizes below 2 are ignored.
func WithSampleSize(n int) Option {
	return func(e *Evaluator) {
		if n < 2 {
			tracer().Errorf("sample size must be at least 2, ignoring %d", n)
			return
		}
		e.sampleSize = n
	}
}

// NewEvaluator creates an evaluator, configured by options.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		span:       knots.LinearSearch,
		spanTol:    knots.DefaultTolerance,
		domainTol:  DefaultDomainTolerance,
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SampleSize returns the number of samples per direction for ranged evaluation.
func (e *Evaluator) SampleSize() int {
	return e.sampleSize
}

func (e *Evaluator) findSpan(degree int, kv knots.Vector, n int, u float64) int {
	return e.span.FindSpan(degree, kv, n, u, e.spanTol)
}

// checkParam makes sure u lies within [0,1].
func checkParam(name string, u float64) error {
	if u < 0 || u > 1 {
		return fmt.Errorf("%w: %s = %g not in [0,1]", bspline.ErrOutOfDomain, name, u)
	}
	return nil
}

func checkInterval(name string, iv Interval) error {
	if err := checkParam(name+" start", iv.Start); err != nil {
		return err
	}
	if err := checkParam(name+" stop", iv.Stop); err != nil {
		return err
	}
	if iv.Start > iv.Stop {
		return fmt.Errorf("%w: %s range [%g,%g] is empty", bspline.ErrOutOfDomain, name, iv.Start, iv.Stop)
	}
	return nil
}

// samples returns the n regularly spaced parameters of iv, including both ends.
func samples(iv Interval, n int) []float64 {
	params := make([]float64, n)
	step := (iv.Stop - iv.Start) / float64(n-1)
	for i := range params {
		params[i] = iv.Start + float64(i)*step
	}
	params[n-1] = iv.Stop
	return params
}

// insideOpenDomain is a predicate: is u in (tol, 1-tol)?
func (e *Evaluator) insideOpenDomain(u float64) bool {
	return u > e.domainTol && u < 1-e.domainTol
}

// === Curves ================================================================

// CurvePoint evaluates a curve at parameter u ∈ [0,1].
func (e *Evaluator) CurvePoint(c *Curve, u float64) (bspline.Point, error) {
	if err := checkParam("u", u); err != nil {
		return nil, err
	}
	return e.curvePoint(c, u), nil
}

func (e *Evaluator) curvePoint(c *Curve, u float64) bspline.Point {
	p := c.degree
	span := e.findSpan(p, c.knots, len(c.cw), u)
	N := basis.Functions(p, c.knots, span, u)
	pt := bspline.Zero(c.cw[0].Dim())
	for i := 0; i <= p; i++ {
		pt.AddScaled(N[i], c.cw[span-p+i])
	}
	if c.IsRational() {
		return dehomogenize(pt)
	}
	return pt
}

// EvaluateCurve evaluates a curve at regularly spaced parameters across iv,
// including both ends; c.Domain() is the usual choice for iv. The resulting
// sequence is lazy: points are computed while iterating, and every iteration
// computes them afresh.
func (e *Evaluator) EvaluateCurve(c *Curve, iv Interval) (iter.Seq[bspline.Point], error) {
	if err := checkInterval("u", iv); err != nil {
		return nil, err
	}
	params := samples(iv, e.sampleSize)
	tracer().Debugf("evaluating %s at %d samples in [%g,%g]", c, len(params), iv.Start, iv.Stop)
	return func(yield func(bspline.Point) bool) {
		for _, u := range params {
			if !yield(e.curvePoint(c, u)) {
				return
			}
		}
	}, nil
}

// EvaluateCurveList evaluates a curve at a list of parameters. Parameters
// not strictly inside the domain (0,1) by more than the domain tolerance are
// skipped.
func (e *Evaluator) EvaluateCurveList(c *Curve, us []float64) []bspline.Point {
	pts := make([]bspline.Point, 0, len(us))
	for _, u := range us {
		if e.insideOpenDomain(u) {
			pts = append(pts, e.curvePoint(c, u))
		}
	}
	return pts
}

// CurveDerivatives computes the derivatives of a curve at parameter u up to
// the given order. CK[0] is the curve point, CK[k] the k-th derivative.
// For non-rational curves, derivatives of order greater than the degree
// are zero vectors.
func (e *Evaluator) CurveDerivatives(c *Curve, u float64, order int) ([]bspline.Point, error) {
	if err := checkParam("u", u); err != nil {
		return nil, err
	}
	if order < 0 {
		return nil, fmt.Errorf("derivative order must not be negative, is %d", order)
	}
	p := c.degree
	du := min(order, p)
	span := e.findSpan(p, c.knots, len(c.cw), u)
	nders := basis.Derivatives(p, c.knots, span, u, du)
	dim := c.cw[0].Dim()
	ders := make([]bspline.Point, order+1) // homogeneous if rational
	for k := range ders {
		ders[k] = bspline.Zero(dim)
	}
	for k := 0; k <= du; k++ {
		for j := 0; j <= p; j++ {
			ders[k].AddScaled(nders[k][j], c.cw[span-p+j])
		}
	}
	if !c.IsRational() {
		return ders, nil
	}
	return rationalCurveDerivatives(ders), nil
}

// rationalCurveDerivatives applies Algorithm A4.2: the derivatives of the
// projected curve follow from those of the homogeneous curve
// Cw = (A, w) by
//
//	C(k) = ( A(k) − ∑ binom(k,i)⋅w(i)⋅C(k−i) ) / w
func rationalCurveDerivatives(cwders []bspline.Point) []bspline.Point {
	dim := cwders[0].Dim() - 1
	CK := make([]bspline.Point, len(cwders))
	for k := range cwders {
		v := cwders[k][:dim].Copy()
		for i := 1; i <= k; i++ {
			v.AddScaled(-bspline.Binomial(k, i)*cwders[i][dim], CK[k-i])
		}
		CK[k] = v.Scaled(1 / cwders[0][dim]).Zap()
	}
	return CK
}

// === Surfaces ==============================================================

// SurfacePoint evaluates a surface at parameters (u,v) ∈ [0,1]².
func (e *Evaluator) SurfacePoint(s *Surface, u, v float64) (bspline.Point, error) {
	if err := checkParam("u", u); err != nil {
		return nil, err
	}
	if err := checkParam("v", v); err != nil {
		return nil, err
	}
	return e.surfacePoint(s, u, v), nil
}

func (e *Evaluator) surfacePoint(s *Surface, u, v float64) bspline.Point {
	p, q := s.degreeU, s.degreeV
	uspan := e.findSpan(p, s.knotsU, s.sizeU, u)
	vspan := e.findSpan(q, s.knotsV, s.sizeV, v)
	Nu := basis.Functions(p, s.knotsU, uspan, u)
	Nv := basis.Functions(q, s.knotsV, vspan, v)
	dim := s.cw[0].Dim()
	pt := bspline.Zero(dim)
	for l := 0; l <= q; l++ {
		temp := bspline.Zero(dim)
		for k := 0; k <= p; k++ {
			temp.AddScaled(Nu[k], s.cw[(uspan-p+k)*s.sizeV+vspan-q+l])
		}
		pt.AddScaled(Nv[l], temp)
	}
	if s.IsRational() {
		return dehomogenize(pt)
	}
	return pt
}

// EvaluateSurface evaluates a surface on a regular grid of parameters across
// ivU×ivV, including the interval ends. Points are produced row by row, u
// in the outer and v in the inner loop, matching the flattening order of
// control points. The sequence is lazy and may be iterated repeatedly.
func (e *Evaluator) EvaluateSurface(s *Surface, ivU, ivV Interval) (iter.Seq[bspline.Point], error) {
	if err := checkInterval("u", ivU); err != nil {
		return nil, err
	}
	if err := checkInterval("v", ivV); err != nil {
		return nil, err
	}
	us, vs := samples(ivU, e.sampleSize), samples(ivV, e.sampleSize)
	tracer().Debugf("evaluating %s at %d×%d samples", s, len(us), len(vs))
	return func(yield func(bspline.Point) bool) {
		for _, u := range us {
			for _, v := range vs {
				if !yield(e.surfacePoint(s, u, v)) {
					return
				}
			}
		}
	}, nil
}

// EvaluateSurfaceList evaluates a surface at a list of (u,v) parameter
// pairs. Pairs with a parameter not strictly inside (0,1) by more than the
// domain tolerance are skipped.
func (e *Evaluator) EvaluateSurfaceList(s *Surface, uvs [][2]float64) []bspline.Point {
	pts := make([]bspline.Point, 0, len(uvs))
	for _, uv := range uvs {
		if e.insideOpenDomain(uv[0]) && e.insideOpenDomain(uv[1]) {
			pts = append(pts, e.surfacePoint(s, uv[0], uv[1]))
		}
	}
	return pts
}

// SurfaceDerivatives computes the partial derivatives of a surface at (u,v)
// up to the given order (Algorithm A3.6). SKL[k][l] is the derivative
// k times with respect to u and l times with respect to v; SKL[0][0] is the
// surface point. Entries with k+l > order are zero vectors, as are, for
// non-rational surfaces, entries with k or l greater than the respective degree.
func (e *Evaluator) SurfaceDerivatives(s *Surface, u, v float64, order int) ([][]bspline.Point, error) {
	if err := checkParam("u", u); err != nil {
		return nil, err
	}
	if err := checkParam("v", v); err != nil {
		return nil, err
	}
	if order < 0 {
		return nil, fmt.Errorf("derivative order must not be negative, is %d", order)
	}
	p, q := s.degreeU, s.degreeV
	du, dv := min(order, p), min(order, q)
	uspan := e.findSpan(p, s.knotsU, s.sizeU, u)
	vspan := e.findSpan(q, s.knotsV, s.sizeV, v)
	Nu := basis.Derivatives(p, s.knotsU, uspan, u, du)
	Nv := basis.Derivatives(q, s.knotsV, vspan, v, dv)
	dim := s.cw[0].Dim()
	SKL := zeroTable(order+1, dim)
	temp := make([]bspline.Point, q+1)
	for k := 0; k <= du; k++ {
		for l := 0; l <= q; l++ {
			temp[l] = bspline.Zero(dim)
			for r := 0; r <= p; r++ {
				temp[l].AddScaled(Nu[k][r], s.cw[(uspan-p+r)*s.sizeV+vspan-q+l])
			}
		}
		dd := min(order-k, dv)
		for l := 0; l <= dd; l++ {
			for r := 0; r <= q; r++ {
				SKL[k][l].AddScaled(Nv[l][r], temp[r])
			}
		}
	}
	if !s.IsRational() {
		return SKL, nil
	}
	return rationalSurfaceDerivatives(SKL, order), nil
}

// rationalSurfaceDerivatives applies Algorithm A4.4 to the derivatives of
// the homogeneous surface Sw = (A, w).
func rationalSurfaceDerivatives(swders [][]bspline.Point, order int) [][]bspline.Point {
	dim := swders[0][0].Dim() - 1
	SKL := zeroTable(order+1, dim)
	w := func(k, l int) float64 { return swders[k][l][dim] }
	for k := 0; k <= order; k++ {
		for l := 0; l <= order-k; l++ {
			v := swders[k][l][:dim].Copy()
			for j := 1; j <= l; j++ {
				v.AddScaled(-bspline.Binomial(l, j)*w(0, j), SKL[k][l-j])
			}
			for i := 1; i <= k; i++ {
				v.AddScaled(-bspline.Binomial(k, i)*w(i, 0), SKL[k-i][l])
				v2 := bspline.Zero(dim)
				for j := 1; j <= l; j++ {
					v2.AddScaled(bspline.Binomial(l, j)*w(i, j), SKL[k-i][l-j])
				}
				v.AddScaled(-bspline.Binomial(k, i), v2)
			}
			SKL[k][l] = v.Scaled(1 / w(0, 0)).Zap()
		}
	}
	return SKL
}

func zeroTable(n, dim int) [][]bspline.Point {
	t := make([][]bspline.Point, n)
	for k := range t {
		t[k] = make([]bspline.Point, n)
		for l := range t[k] {
			t[k][l] = bspline.Zero(dim)
		}
	}
	return t
}
