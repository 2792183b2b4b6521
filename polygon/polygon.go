/*
Package polygon implements planar polygons, as needed for control polygons
and convex hulls of planar spline curves. Clipping, containment and bounding
boxes are delegated to polyclip-go.

Polygons are built with a small builder API:

	pg := NullPolygon().Knot(bspline.P(0,0)).Knot(bspline.P(1,3)).Knot(bspline.P(3,0)).Cycle()

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package polygon

import (
	"fmt"
	"sort"
	"strings"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/bspline"
	"github.com/npillmayer/schuko/tracing"
)

// L traces to the polygon tracer.
func L() tracing.Trace {
	return tracing.Select("polygon")
}

// Polygon is a sequence of planar points, either open (a polyline, like the
// control polygon of an open curve) or closed (a cycle).
type Polygon struct {
	points []bspline.Point
	cycle  bool
}

// NullPolygon creates an empty polygon, to be extended by subsequent
// builder calls.
func NullPolygon() *Polygon {
	return &Polygon{}
}

// Knot appends a point to the polygon. Part of builder functionality.
func (pg *Polygon) Knot(p bspline.Point) *Polygon {
	pg.points = append(pg.points, p.Copy())
	return pg
}

// Cycle closes a polygon. Part of builder functionality.
func (pg *Polygon) Cycle() *Polygon {
	pg.cycle = true
	return pg
}

// End ends an open polygon. Part of builder functionality.
func (pg *Polygon) End() *Polygon {
	return pg
}

// FromPoints creates a polygon from 2D points. 3D points are rejected with
// bspline.ErrDimensionMismatch.
func FromPoints(pts []bspline.Point, cycle bool) (*Polygon, error) {
	pg := NullPolygon()
	for i, p := range pts {
		if p.Dim() != 2 {
			return nil, fmt.Errorf("%w: polygon point %d is %d-D, expected 2-D", bspline.ErrDimensionMismatch,
				i, p.Dim())
		}
		pg.Knot(p)
	}
	if cycle {
		pg.Cycle()
	}
	return pg, nil
}

// Box creates a rectangular cyclic polygon from two opposite corners.
func Box(p1, p2 bspline.Point) *Polygon {
	xmin, xmax := min(p1.X(), p2.X()), max(p1.X(), p2.X())
	ymin, ymax := min(p1.Y(), p2.Y()), max(p1.Y(), p2.Y())
	return NullPolygon().Knot(bspline.P(xmin, ymin)).Knot(bspline.P(xmax, ymin)).
		Knot(bspline.P(xmax, ymax)).Knot(bspline.P(xmin, ymax)).Cycle()
}

// N returns the number of points of the polygon.
func (pg *Polygon) N() int {
	return len(pg.points)
}

// Pt returns point i.
func (pg *Polygon) Pt(i int) bspline.Point {
	return pg.points[i].Copy()
}

// IsCycle is a predicate: is this polygon closed?
func (pg *Polygon) IsCycle() bool {
	return pg.cycle
}

// AsString returns a polygon as a (debugging) string, e.g.
// "(0,0) -- (1,3) -- (3,0) -- cycle".
func AsString(pg *Polygon) string {
	var b strings.Builder
	for i, p := range pg.points {
		if i > 0 {
			b.WriteString(" -- ")
		}
		b.WriteString(p.String())
	}
	if pg.cycle {
		b.WriteString(" -- cycle")
	}
	return b.String()
}

func (pg *Polygon) contour() polyclip.Contour {
	c := make(polyclip.Contour, len(pg.points))
	for i, p := range pg.points {
		c[i] = polyclip.Point{X: p.X(), Y: p.Y()}
	}
	return c
}

func fromContour(c polyclip.Contour) *Polygon {
	pg := NullPolygon()
	for _, p := range c {
		pg.Knot(bspline.P(p.X, p.Y))
	}
	return pg.Cycle()
}

// BoundingBox returns the lower left and upper right corner of the
// smallest axis-parallel rectangle containing the polygon.
func (pg *Polygon) BoundingBox() (bspline.Point, bspline.Point) {
	if pg.N() == 0 {
		return bspline.P(0, 0), bspline.P(0, 0)
	}
	bb := pg.contour().BoundingBox()
	return bspline.P(bb.Min.X, bb.Min.Y), bspline.P(bb.Max.X, bb.Max.Y)
}

// Contains is a predicate: does the interior of a closed polygon contain p?
// Open polygons contain no points. Points on the boundary may be reported
// either way.
func (pg *Polygon) Contains(p bspline.Point) bool {
	if !pg.cycle || pg.N() < 3 {
		return false
	}
	return pg.contour().Contains(polyclip.Point{X: p.X(), Y: p.Y()})
}

// Intersection clips two closed polygons against each other and returns the
// polygons making up their common area. The result is empty if the polygons
// do not overlap.
func Intersection(pg1, pg2 *Polygon) []*Polygon {
	if !pg1.cycle || !pg2.cycle {
		L().Errorf("cannot intersect open polygons")
		return nil
	}
	subject := polyclip.Polygon{pg1.contour()}
	clipping := polyclip.Polygon{pg2.contour()}
	result := subject.Construct(polyclip.INTERSECTION, clipping)
	pgs := make([]*Polygon, 0, len(result))
	for _, c := range result {
		if len(c) > 0 {
			pgs = append(pgs, fromContour(c))
		}
	}
	return pgs
}

// ConvexHull returns the convex hull of a set of 2D points as a cyclic
// polygon in counter-clockwise order (Andrew's monotone chain). Collinear
// points on the hull's edges are omitted.
func ConvexHull(pts []bspline.Point) (*Polygon, error) {
	sorted := make([]bspline.Point, 0, len(pts))
	for i, p := range pts {
		if p.Dim() != 2 {
			return nil, fmt.Errorf("%w: hull point %d is %d-D, expected 2-D", bspline.ErrDimensionMismatch,
				i, p.Dim())
		}
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X() != sorted[j].X() {
			return sorted[i].X() < sorted[j].X()
		}
		return sorted[i].Y() < sorted[j].Y()
	})
	if len(sorted) < 3 {
		pg, _ := FromPoints(sorted, true)
		return pg, nil
	}
	hull := make([]bspline.Point, 0, 2*len(sorted))
	for _, p := range sorted { // lower hull
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- { // upper hull
		p := sorted[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1] // last point equals the first one
	L().Debugf("convex hull of %d points has %d corners", len(pts), len(hull))
	pg, _ := FromPoints(hull, true)
	return pg, nil
}

// turn is > 0 for a counter-clockwise turn a → b → c, < 0 for a clockwise
// one and 0 for collinear points.
func turn(a, b, c bspline.Point) float64 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (b.Y()-a.Y())*(c.X()-a.X())
}
