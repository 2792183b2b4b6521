package bspline

import (
	"fmt"
	"math"
	"strings"
)

// === Point Data Type =======================================================

// Point is a point or vector in 2 or 3 dimensions. Homogeneous points of
// rational curves carry their weight as an additional, last coordinate.
//
// Point arithmetic (Add, Sub, AddScaled) requires both operands to have the
// same dimension and panics otherwise, like indexing a slice out of range
// does. Operations whose operands commonly stem from user input (Dot, Cross,
// Lift) return ErrDimensionMismatch instead. Curves and surfaces check the
// dimensions of their control points on construction, so evaluation never
// mixes dimensions.
type Point []float64

// P is a quick notation for constructing a point from floats.
func P(coords ...float64) Point {
	return Point(coords)
}

// Zero returns the zero vector of dimension dim.
func Zero(dim int) Point {
	return make(Point, dim)
}

// Dim returns the number of coordinates of p.
func (p Point) Dim() int {
	return len(p)
}

// Pretty Stringer for points.
func (p Point) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, c := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", c)
	}
	b.WriteByte(')')
	return b.String()
}

// Copy returns a copy of p.
func (p Point) Copy() Point {
	return append(Point(nil), p...)
}

// X is the first coordinate of p.
func (p Point) X() float64 {
	return p[0]
}

// Y is the second coordinate of p.
func (p Point) Y() float64 {
	return p[1]
}

// Z is the third coordinate of p, or 0 for 2D points.
func (p Point) Z() float64 {
	if len(p) < 3 {
		return 0
	}
	return p[2]
}

// Zap returns a copy of p with coordinates within Epsilon of zero set to 0.
// Derivatives of rational curves and surfaces are zapped to suppress the
// round-off of the quotient rule.
func (p Point) Zap() Point {
	q := make(Point, len(p))
	for i, c := range p {
		q[i] = Zap(c)
	}
	return q
}

// Equal compares two points coordinate-wise within Epsilon.
func (p Point) Equal(q Point) bool {
	return p.EqualTol(q, Epsilon)
}

// EqualTol compares two points coordinate-wise within tolerance tol.
func (p Point) EqualTol(q Point, tol float64) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if math.Abs(p[i]-q[i]) > tol {
			return false
		}
	}
	return true
}

// Add returns p + q. Panics if dimensions differ.
func (p Point) Add(q Point) Point {
	mustMatch(p, q)
	r := make(Point, len(p))
	for i := range p {
		r[i] = p[i] + q[i]
	}
	return r
}

// Sub returns p - q. Panics if dimensions differ.
func (p Point) Sub(q Point) Point {
	mustMatch(p, q)
	r := make(Point, len(p))
	for i := range p {
		r[i] = p[i] - q[i]
	}
	return r
}

// Scaled returns a new point scaled by factor a.
func (p Point) Scaled(a float64) Point {
	r := make(Point, len(p))
	for i := range p {
		r[i] = p[i] * a
	}
	return r
}

// AddScaled adds a⋅q to p in place. Used for accumulating weighted sums.
// Panics if dimensions differ.
func (p Point) AddScaled(a float64, q Point) {
	mustMatch(p, q)
	for i := range p {
		p[i] += a * q[i]
	}
}

// Dot returns the scalar product of p and q.
func (p Point) Dot(q Point) (float64, error) {
	if len(p) != len(q) {
		return 0, fmt.Errorf("%w: dot product of %d-D and %d-D vectors", ErrDimensionMismatch, len(p), len(q))
	}
	var s float64
	for i := range p {
		s += p[i] * q[i]
	}
	return s, nil
}

// Cross returns the cross product of two 3D vectors. 2D vectors are lifted
// to the plane z = 0.
func (p Point) Cross(q Point) (Point, error) {
	a, err := p.Lift()
	if err != nil {
		return nil, err
	}
	b, err := q.Lift()
	if err != nil {
		return nil, err
	}
	return Point{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}, nil
}

// Lift returns p as a 3D point. 2D points get z = 0.
func (p Point) Lift() (Point, error) {
	switch len(p) {
	case 2:
		return Point{p[0], p[1], 0}, nil
	case 3:
		return p.Copy(), nil
	}
	tracer().Debugf("cannot lift %d-D point %s to 3D", len(p), p)
	return nil, fmt.Errorf("%w: expected 2-D or 3-D point, got %d-D", ErrDimensionMismatch, len(p))
}

// Length returns the Euclidean norm of p.
func (p Point) Length() float64 {
	var s float64
	for _, c := range p {
		s += c * c
	}
	return math.Sqrt(s)
}

// Unit returns p normalized to length 1.
func (p Point) Unit() (Point, error) {
	l := p.Length()
	if Is0(l) {
		return nil, fmt.Errorf("%w: cannot normalize %s", ErrDegenerateVector, p)
	}
	return p.Scaled(1 / l), nil
}

func mustMatch(p, q Point) {
	if len(p) != len(q) {
		panic(fmt.Sprintf("point dimensions differ: %d vs %d", len(p), len(q)))
	}
}
