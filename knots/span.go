package knots

import "math"

// SpanStrategy selects the algorithm used to locate knot spans.
// Both strategies return identical results for valid input.
type SpanStrategy int

// Span location strategies.
const (
	LinearSearch SpanStrategy = iota // scan the knot vector, O(m)
	BinarySearch                     // Algorithm A2.1, O(log m)
)

func (s SpanStrategy) String() string {
	switch s {
	case LinearSearch:
		return "linear"
	case BinarySearch:
		return "binary"
	}
	return "unknown"
}

// FindSpan locates the knot span of parameter u using strategy s.
// n is the number of control points; tol is used by the binary search only.
func (s SpanStrategy) FindSpan(degree int, kv Vector, n int, u, tol float64) int {
	if s == BinarySearch {
		return FindSpanBinary(degree, kv, n, u, tol)
	}
	return FindSpanLinear(degree, kv, n, u)
}

// FindSpanLinear returns the index of the knot span [kv[span], kv[span+1])
// containing u, found by a linear scan. n is the number of control points;
// the result lies within [degree, n-1] for parameters inside the domain.
func FindSpanLinear(degree int, kv Vector, n int, u float64) int {
	span := 0
	for span < n && kv[span] <= u {
		span++
	}
	if span-1 < degree {
		return degree
	}
	return span - 1
}

// FindSpanBinary returns the index of the knot span [kv[span], kv[span+1])
// containing u, found by binary search (Algorithm A2.1 of The NURBS Book).
// n is the number of control points. A parameter in the last span that lies
// within tol of the end of the domain is treated as lying on the end.
func FindSpanBinary(degree int, kv Vector, n int, u, tol float64) int {
	last := n - 1
	if u >= kv[last] && (math.Abs(kv[last+1]-u) <= tol || u >= kv[last+1]) {
		return last
	}
	if u < kv[degree] {
		return degree
	}
	low, high := degree, last+1
	mid := (low + high) / 2
	for u < kv[mid] || u >= kv[mid+1] {
		if u < kv[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}
