package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateEpsilon is the in-plane magnitude below which a direction is
// treated as parallel to the docking axis.
const degenerateEpsilon = 1e-9

// ProjectOnPlane removes from v its component along normal. A zero normal
// leaves v unchanged.
func ProjectOnPlane(v, normal r3.Vec) r3.Vec {
	n2 := r3.Norm2(normal)
	if n2 == 0 {
		return v
	}
	return r3.Sub(v, r3.Scale(r3.Dot(v, normal)/n2, normal))
}

// Normalize returns the unit vector in the direction of v, or the zero
// vector when v has no length.
func Normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or +1 according to the sign of v.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// inBasis expresses v in the (forward, left, up) basis.
func inBasis(v, forward, left, up r3.Vec) r3.Vec {
	return r3.Vec{
		X: r3.Dot(forward, v),
		Y: r3.Dot(left, v),
		Z: r3.Dot(up, v),
	}
}

// finite reports whether every component of v is a finite number.
func finite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
