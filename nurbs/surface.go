package nurbs

import (
	"fmt"

	"github.com/npillmayer/bspline"
	"github.com/npillmayer/bspline/knots"
)

// Surface is a tensor product B-spline or NURBS surface.
//
// Control points are flattened in u-major order: control point (i,j) is
// found at index i*sizeV + j.
type Surface struct {
	degreeU, degreeV int
	knotsU, knotsV   knots.Vector    // normalized
	sizeU, sizeV     int             // number of control points per direction
	ctrl             []bspline.Point // cartesian control points, u-major
	weights          []float64       // nil for non-rational surfaces
	cw               []bspline.Point // control points used for evaluation, homogeneous if rational
}

// NewSurface creates a surface from a flat sequence of sizeU×sizeV control
// points in u-major order (v varies fastest). weights may be nil for a
// non-rational surface. Nil knot vectors are generated as clamped uniform
// vectors, others are normalized and checked.
func NewSurface(degreeU, degreeV, sizeU, sizeV int, ctrl []bspline.Point, weights []float64,
	kvU, kvV knots.Vector) (*Surface, error) {
	if degreeU < 1 || degreeV < 1 {
		return nil, fmt.Errorf("%w: degrees must be positive, are (%d,%d)", bspline.ErrMalformedKnotVector,
			degreeU, degreeV)
	}
	if err := checkPoints(ctrl); err != nil {
		return nil, err
	}
	if sizeU*sizeV != len(ctrl) {
		return nil, fmt.Errorf("%w: %d control points do not form a %d×%d grid", bspline.ErrDimensionMismatch,
			len(ctrl), sizeU, sizeV)
	}
	if weights != nil && len(weights) != len(ctrl) {
		return nil, fmt.Errorf("%w: %d weights for %d control points", bspline.ErrDimensionMismatch,
			len(weights), len(ctrl))
	}
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	if sizeU <= degreeU || sizeV <= degreeV {
		return nil, fmt.Errorf("%w: %d×%d control points are too few for degree (%d,%d)",
			bspline.ErrDimensionMismatch, sizeU, sizeV, degreeU, degreeV)
	}
	var err error
	if kvU, err = prepareKnots(degreeU, kvU, sizeU); err != nil {
		return nil, fmt.Errorf("u-direction: %w", err)
	}
	if kvV, err = prepareKnots(degreeV, kvV, sizeV); err != nil {
		return nil, fmt.Errorf("v-direction: %w", err)
	}
	return newSurface(degreeU, degreeV, kvU, kvV, sizeU, sizeV, copyPoints(ctrl), copyWeights(weights)), nil
}

// NewSurfaceFromGrid creates a surface from control points given as
// grid[i][j], with i running in u-direction and j in v-direction. weights,
// if not nil, are given in the same layout.
func NewSurfaceFromGrid(degreeU, degreeV int, grid [][]bspline.Point, weights [][]float64,
	kvU, kvV knots.Vector) (*Surface, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty control point grid", bspline.ErrDimensionMismatch)
	}
	sizeU, sizeV := len(grid), len(grid[0])
	ctrl := make([]bspline.Point, 0, sizeU*sizeV)
	var w []float64
	if weights != nil {
		w = make([]float64, 0, sizeU*sizeV)
		if len(weights) != sizeU {
			return nil, fmt.Errorf("%w: weight grid has %d rows, expected %d", bspline.ErrDimensionMismatch,
				len(weights), sizeU)
		}
	}
	for i, row := range grid {
		if len(row) != sizeV {
			return nil, fmt.Errorf("%w: grid row %d has %d points, expected %d", bspline.ErrDimensionMismatch,
				i, len(row), sizeV)
		}
		ctrl = append(ctrl, row...)
		if weights != nil {
			if len(weights[i]) != sizeV {
				return nil, fmt.Errorf("%w: weight row %d has %d entries, expected %d",
					bspline.ErrDimensionMismatch, i, len(weights[i]), sizeV)
			}
			w = append(w, weights[i]...)
		}
	}
	return NewSurface(degreeU, degreeV, sizeU, sizeV, ctrl, w, kvU, kvV)
}

func prepareKnots(degree int, kv knots.Vector, n int) (knots.Vector, error) {
	var err error
	if kv == nil {
		if kv, err = knots.Generate(degree, n); err != nil {
			return nil, err
		}
	} else {
		kv = knots.Normalize(kv, knots.DefaultDecimals)
	}
	if err = knots.Check(degree, kv, n); err != nil {
		return nil, err
	}
	return kv, nil
}

// newSurface assembles a surface from checked parts without copying them.
func newSurface(degreeU, degreeV int, kvU, kvV knots.Vector, sizeU, sizeV int,
	ctrl []bspline.Point, weights []float64) *Surface {
	s := &Surface{
		degreeU: degreeU, degreeV: degreeV,
		knotsU: kvU, knotsV: kvV,
		sizeU: sizeU, sizeV: sizeV,
		ctrl: ctrl, weights: weights,
	}
	if weights != nil {
		s.cw = homogenize(ctrl, weights)
	} else {
		s.cw = ctrl
	}
	return s
}

// Degrees returns the degrees in u- and v-direction.
func (s *Surface) Degrees() (int, int) {
	return s.degreeU, s.degreeV
}

// KnotsU returns a copy of the normalized knot vector in u-direction.
func (s *Surface) KnotsU() knots.Vector {
	return s.knotsU.Clone()
}

// KnotsV returns a copy of the normalized knot vector in v-direction.
func (s *Surface) KnotsV() knots.Vector {
	return s.knotsV.Clone()
}

// SizeU returns the number of control points in u-direction.
func (s *Surface) SizeU() int {
	return s.sizeU
}

// SizeV returns the number of control points in v-direction.
func (s *Surface) SizeV() int {
	return s.sizeV
}

// ControlPoint returns control point (i,j).
func (s *Surface) ControlPoint(i, j int) bspline.Point {
	return s.ctrl[i*s.sizeV+j].Copy()
}

// Weight returns the weight of control point (i,j), which is 1 for
// non-rational surfaces.
func (s *Surface) Weight(i, j int) float64 {
	if s.weights == nil {
		return 1
	}
	return s.weights[i*s.sizeV+j]
}

// ControlPoints returns a copy of the flat, u-major sequence of control points.
func (s *Surface) ControlPoints() []bspline.Point {
	return copyPoints(s.ctrl)
}

// Weights returns a copy of the weights (u-major), or nil for a non-rational surface.
func (s *Surface) Weights() []float64 {
	return copyWeights(s.weights)
}

// Dim returns the dimension of the control points (2 or 3).
func (s *Surface) Dim() int {
	return s.ctrl[0].Dim()
}

// IsRational is a predicate: is this a NURBS surface?
func (s *Surface) IsRational() bool {
	return s.weights != nil
}

// Domain returns the default evaluation intervals in u- and v-direction.
func (s *Surface) Domain() (Interval, Interval) {
	du := Interval{Start: s.knotsU[s.degreeU], Stop: s.knotsU[len(s.knotsU)-s.degreeU-1]}
	dv := Interval{Start: s.knotsV[s.degreeV], Stop: s.knotsV[len(s.knotsV)-s.degreeV-1]}
	return du, dv
}

// Transpose returns a surface with u- and v-direction swapped. Evaluating
// the transposed surface at (v,u) yields the same point as evaluating s
// at (u,v).
func (s *Surface) Transpose() *Surface {
	ctrl := make([]bspline.Point, len(s.ctrl))
	var w []float64
	if s.weights != nil {
		w = make([]float64, len(s.weights))
	}
	for i := 0; i < s.sizeU; i++ {
		for j := 0; j < s.sizeV; j++ {
			ctrl[j*s.sizeU+i] = s.ctrl[i*s.sizeV+j].Copy()
			if w != nil {
				w[j*s.sizeU+i] = s.weights[i*s.sizeV+j]
			}
		}
	}
	return newSurface(s.degreeV, s.degreeU, s.knotsV.Clone(), s.knotsU.Clone(), s.sizeV, s.sizeU, ctrl, w)
}

func (s *Surface) String() string {
	kind := "B-spline"
	if s.IsRational() {
		kind = "NURBS"
	}
	return fmt.Sprintf("%s surface[degree=(%d,%d), #ctrl=%d×%d, dim=%d]", kind, s.degreeU, s.degreeV,
		s.sizeU, s.sizeV, s.Dim())
}

// column extracts the evaluation points (i,j) for fixed j, i = 0…sizeU-1.
func (s *Surface) column(j int) []bspline.Point {
	col := make([]bspline.Point, s.sizeU)
	for i := range col {
		col[i] = s.cw[i*s.sizeV+j]
	}
	return col
}

// row extracts the evaluation points (i,j) for fixed i, j = 0…sizeV-1.
func (s *Surface) row(i int) []bspline.Point {
	return s.cw[i*s.sizeV : (i+1)*s.sizeV]
}
