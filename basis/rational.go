package basis

import (
	"fmt"

	"github.com/npillmayer/bspline"
	"github.com/npillmayer/bspline/knots"
)

// CurveRi computes the rational composite basis function
//
//	R[i](u) = N[i](u)⋅w[i] / ∑ N[k](u)⋅w[k]
//
// of a NURBS curve. weights holds one weight per control point. The
// denominator is summed over all basis functions on every call, as weights
// vary from control point to control point.
func CurveRi(degree int, kv knots.Vector, i int, u float64, weights []float64) (float64, error) {
	n := len(kv) - degree - 1
	if len(weights) != n {
		return 0, fmt.Errorf("%w: %d weights for %d control points", bspline.ErrDimensionMismatch, len(weights), n)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: basis function index %d not in [0,%d)", bspline.ErrDimensionMismatch, i, n)
	}
	denom := 0.0
	for k := 0; k < n; k++ {
		denom += One(degree, kv, k, u) * weights[k]
	}
	if bspline.Is0(denom) {
		tracer().Debugf("rational denominator vanishes at u=%g", u)
		return 0, fmt.Errorf("%w: rational basis undefined at u=%g", bspline.ErrOutOfDomain, u)
	}
	return One(degree, kv, i, u) * weights[i] / denom, nil
}

// SurfaceRij computes the rational composite basis function
//
//	R[i,j](u,v) = N[i](u)⋅N[j](v)⋅w[i,j] / ∑∑ N[k](u)⋅N[l](v)⋅w[k,l]
//
// of a NURBS surface. The weights are flattened with v varying fastest,
// i.e. w[i,j] = weights[i*nv + j], nv being the number of control points
// in v-direction.
func SurfaceRij(degreeU, degreeV int, kvU, kvV knots.Vector, i, j int, u, v float64,
	weights []float64) (float64, error) {
	nu := len(kvU) - degreeU - 1
	nv := len(kvV) - degreeV - 1
	if len(weights) != nu*nv {
		return 0, fmt.Errorf("%w: %d weights for %d×%d control points", bspline.ErrDimensionMismatch,
			len(weights), nu, nv)
	}
	if i < 0 || i >= nu || j < 0 || j >= nv {
		return 0, fmt.Errorf("%w: basis function index (%d,%d) not in [0,%d)×[0,%d)",
			bspline.ErrDimensionMismatch, i, j, nu, nv)
	}
	Nv := make([]float64, nv)
	for l := 0; l < nv; l++ {
		Nv[l] = One(degreeV, kvV, l, v)
	}
	denom := 0.0
	for k := 0; k < nu; k++ {
		Nku := One(degreeU, kvU, k, u)
		if Nku == 0 {
			continue
		}
		for l := 0; l < nv; l++ {
			denom += Nku * Nv[l] * weights[k*nv+l]
		}
	}
	if bspline.Is0(denom) {
		tracer().Debugf("rational denominator vanishes at (u,v)=(%g,%g)", u, v)
		return 0, fmt.Errorf("%w: rational basis undefined at (u,v)=(%g,%g)", bspline.ErrOutOfDomain, u, v)
	}
	return One(degreeU, kvU, i, u) * Nv[j] * weights[i*nv+j] / denom, nil
}
