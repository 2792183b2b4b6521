package knots

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// Multiplicities is a table of the distinct knots (breakpoints) of a knot
// vector together with their multiplicities. Knots closer than the table's
// tolerance are counted as one breakpoint.
//
// We store the breakpoints in a TreeMap (sorted map), keyed by knot value.
type Multiplicities struct {
	breaks *treemap.Map
	tol    float64
}

// CountMultiplicities builds the multiplicity table of a knot vector.
func CountMultiplicities(kv Vector, tol float64) *Multiplicities {
	mt := &Multiplicities{
		breaks: treemap.NewWith(utils.Float64Comparator),
		tol:    tol,
	}
	for _, k := range kv {
		if key, found := mt.lookup(k); found {
			m, _ := mt.breaks.Get(key)
			mt.breaks.Put(key, m.(int)+1)
		} else {
			mt.breaks.Put(k, 1)
		}
	}
	return mt
}

// lookup finds the breakpoint within tolerance of knot, if any.
func (mt *Multiplicities) lookup(knot float64) (float64, bool) {
	if key, _ := mt.breaks.Floor(knot); key != nil {
		if k := key.(float64); knot-k <= mt.tol {
			return k, true
		}
	}
	if key, _ := mt.breaks.Ceiling(knot); key != nil {
		if k := key.(float64); k-knot <= mt.tol {
			return k, true
		}
	}
	return 0, false
}

// Of returns the multiplicity of knot, which is 0 if knot is not a breakpoint.
func (mt *Multiplicities) Of(knot float64) int {
	if key, found := mt.lookup(knot); found {
		m, _ := mt.breaks.Get(key)
		return m.(int)
	}
	return 0
}

// Size returns the number of distinct knots.
func (mt *Multiplicities) Size() int {
	return mt.breaks.Size()
}

// Breakpoints returns the distinct knots in ascending order.
func (mt *Multiplicities) Breakpoints() []float64 {
	keys := mt.breaks.Keys()
	bps := make([]float64, len(keys))
	for i, k := range keys {
		bps[i] = k.(float64)
	}
	return bps
}

// Debug Stringer for a multiplicity table, e.g. "{0:3 0.5:1 1:3}".
func (mt *Multiplicities) String() string {
	var b strings.Builder
	b.WriteByte('{')
	it := mt.breaks.Iterator()
	for i := 0; it.Next(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g:%d", it.Key(), it.Value())
	}
	b.WriteByte('}')
	return b.String()
}

// IsClamped is a predicate: do the first and last knot of kv each have
// multiplicity degree+1 (within DefaultTolerance)?
func IsClamped(degree int, kv Vector) bool {
	if len(kv) < 2*(degree+1) {
		return false
	}
	mt := CountMultiplicities(kv, DefaultTolerance)
	return mt.Of(kv.First()) == degree+1 && mt.Of(kv.Last()) == degree+1
}
