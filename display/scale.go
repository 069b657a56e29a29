package display

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/docking-alignment-display/core"
)

// ScaleMode selects the dynamic range compressed by the logarithmic
// placement of distance and speed indicators.
type ScaleMode int

const (
	// ScaleStandard compresses 0.1 to 990 units into the indicator range.
	ScaleStandard ScaleMode = iota
	// ScaleFine compresses 0.01 to 90 units, for final approach.
	ScaleFine
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleStandard:
		return "standard"
	case ScaleFine:
		return "fine"
	default:
		return "unknown"
	}
}

// ParseScaleMode parses the String form of a ScaleMode. An empty string
// selects ScaleStandard.
func ParseScaleMode(s string) (ScaleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return ScaleStandard, nil
	case "fine":
		return ScaleFine, nil
	default:
		return ScaleStandard, fmt.Errorf("unknown scale mode %q", s)
	}
}

// Bounds returns the clamp range of the mode. Magnitudes below lo snap to the
// centre; magnitudes above hi pin to the edge.
func (m ScaleMode) Bounds() (lo, hi float64) {
	if m == ScaleFine {
		return 0.01, 90
	}
	return 0.1, 990
}

// logDivisor spreads the compressed range over just under half an extent.
const logDivisor = 8

// Angle crosshair and roll marker limits, as fractions of the half extent.
const (
	angleLimit  = 0.99
	rollRadius  = 0.98
	maxAngleArg = 1.0
)

// LogOffset maps a signed distance or speed onto a screen extent with
// logarithmic compression:
//
//	sign(v) * extent * (log10(clamp(|v|, lo, hi)) - log10(lo)) / 8
//
// For ScaleStandard this is sign(v)*extent*(log10(clamp(|v|,0.1,990))+1)/8.
// The magnitude is clamped to the positive floor before the logarithm, so a
// zero input yields 0 rather than -Inf. NaN yields 0.
func LogOffset(v, extent float64, mode ScaleMode) float64 {
	if math.IsNaN(v) {
		return 0
	}
	lo, hi := mode.Bounds()
	mag := core.Clamp(math.Abs(v), lo, hi)
	return core.Sign(v) * extent * (math.Log10(mag) - math.Log10(lo)) / logDivisor
}

// TangentPosition places the lateral-error crosshair for an (x, y) error in
// metres. The returned Y is negated into screen coordinates.
func TangentPosition(x, y float64, vp Viewport, mode ScaleMode) r2.Vec {
	return r2.Vec{
		X: LogOffset(x, vp.Width, mode),
		Y: -LogOffset(y, vp.Height, mode),
	}
}

// AngleOffset converts one pointing-error component into a fraction of the
// half extent in [-0.99, 0.99]. gain is the field-of-view scale factor.
func AngleOffset(o, gain float64) float64 {
	if math.IsNaN(o) || math.IsNaN(gain) {
		return 0
	}
	a := math.Asin(core.Clamp(-o, -maxAngleArg, maxAngleArg))
	return core.Clamp(gain*a*2/math.Pi, -angleLimit, angleLimit)
}

// AnglePosition places the pointing-error crosshair for the in-plane
// components (ox, oy) of the craft's alignment axis.
func AnglePosition(ox, oy, gain float64, vp Viewport) r2.Vec {
	return r2.Vec{
		X: vp.Width * AngleOffset(ox, gain) / 2,
		Y: vp.Height * AngleOffset(oy, gain) / 2,
	}
}

// RollPosition places the roll marker on a fixed-radius orbit around the
// viewport centre. A zero roll sits at the top.
func RollPosition(roll float64, vp Viewport) r2.Vec {
	if math.IsNaN(roll) || math.IsInf(roll, 0) {
		roll = 0
	}
	sin, cos := math.Sincos(roll)
	return r2.Vec{
		X: rollRadius * sin * vp.Width / 2,
		Y: -rollRadius * cos * vp.Height / 2,
	}
}

// VelocityArrow returns the rotation and on-screen length of the lateral
// velocity arrow for a lateral velocity (vx, vy).
//
// The rotation is the counter-clockwise angle in radians from screen up to
// (vx, -vy). The length uses the same compression as LogOffset over half the
// viewport height.
func VelocityArrow(vx, vy float64, vp Viewport, mode ScaleMode) (rotation, length float64) {
	t := r2.Vec{X: vx, Y: -vy}
	if math.IsNaN(t.X) || math.IsNaN(t.Y) || (t.X == 0 && t.Y == 0) {
		return 0, 0
	}
	up := r2.Vec{Y: 1}
	rotation = math.Atan2(r2.Cross(up, t), r2.Dot(up, t))
	length = LogOffset(r2.Norm(t), vp.Height/2, mode)
	return rotation, length
}
