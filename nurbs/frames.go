package nurbs

import (
	"fmt"

	"github.com/npillmayer/bspline"
)

// CurveTangent returns the curve point at u and the unit tangent vector there.
func (e *Evaluator) CurveTangent(c *Curve, u float64) (bspline.Point, bspline.Point, error) {
	ders, err := e.CurveDerivatives(c, u, 1)
	if err != nil {
		return nil, nil, err
	}
	t, err := ders[1].Unit()
	if err != nil {
		return nil, nil, fmt.Errorf("tangent at u=%g: %w", u, err)
	}
	return ders[0], t, nil
}

// CurveBinormal returns the curve point at u and the unit binormal vector
// there, which is perpendicular to the osculating plane. Planar 2D curves
// are treated as lying in the plane z = 0, so their binormal is (0,0,±1).
// Straight parts of a curve have no binormal; ErrDegenerateVector is
// returned for them.
func (e *Evaluator) CurveBinormal(c *Curve, u float64) (bspline.Point, bspline.Point, error) {
	ders, err := e.CurveDerivatives(c, u, 2)
	if err != nil {
		return nil, nil, err
	}
	b, err := binormal(ders[1], ders[2])
	if err != nil {
		return nil, nil, fmt.Errorf("binormal at u=%g: %w", u, err)
	}
	return ders[0], b, nil
}

// CurveNormal returns the curve point at u and the unit principal normal
// there, i.e. binormal × tangent. It is 3D even for planar 2D curves.
func (e *Evaluator) CurveNormal(c *Curve, u float64) (bspline.Point, bspline.Point, error) {
	ders, err := e.CurveDerivatives(c, u, 2)
	if err != nil {
		return nil, nil, err
	}
	b, err := binormal(ders[1], ders[2])
	if err != nil {
		return nil, nil, fmt.Errorf("normal at u=%g: %w", u, err)
	}
	t, err := ders[1].Lift()
	if err != nil {
		return nil, nil, err
	}
	if t, err = t.Unit(); err != nil {
		return nil, nil, fmt.Errorf("normal at u=%g: %w", u, err)
	}
	n, err := b.Cross(t)
	if err != nil {
		return nil, nil, err
	}
	return ders[0], n, nil
}

func binormal(d1, d2 bspline.Point) (bspline.Point, error) {
	b, err := d1.Cross(d2)
	if err != nil {
		return nil, err
	}
	return b.Unit()
}

// SurfaceTangent returns the surface point at (u,v) and the unit tangent
// vectors in u- and v-direction there.
func (e *Evaluator) SurfaceTangent(s *Surface, u, v float64) (pt, tu, tv bspline.Point, err error) {
	SKL, err := e.SurfaceDerivatives(s, u, v, 1)
	if err != nil {
		return nil, nil, nil, err
	}
	if tu, err = SKL[1][0].Unit(); err != nil {
		return nil, nil, nil, fmt.Errorf("u-tangent at (%g,%g): %w", u, v, err)
	}
	if tv, err = SKL[0][1].Unit(); err != nil {
		return nil, nil, nil, fmt.Errorf("v-tangent at (%g,%g): %w", u, v, err)
	}
	return SKL[0][0], tu, tv, nil
}

// SurfaceNormal returns the surface point at (u,v) and the unit normal
// vector Su × Sv there.
func (e *Evaluator) SurfaceNormal(s *Surface, u, v float64) (bspline.Point, bspline.Point, error) {
	SKL, err := e.SurfaceDerivatives(s, u, v, 1)
	if err != nil {
		return nil, nil, err
	}
	n, err := SKL[1][0].Cross(SKL[0][1])
	if err != nil {
		return nil, nil, err
	}
	if n, err = n.Unit(); err != nil {
		return nil, nil, fmt.Errorf("normal at (%g,%g): %w", u, v, err)
	}
	return SKL[0][0], n, nil
}
