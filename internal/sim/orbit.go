package sim

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"
)

// ISS sample TLE, used when no TLE is configured.
const (
	DefaultTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	DefaultTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

const kmToM = 1000.0

// MotionModel returns a body's inertial position and velocity at a given time.
type MotionModel interface {
	StateAt(t time.Time) (position, velocity r3.Vec)
}

// StaticMotionModel keeps a body at a fixed position.
type StaticMotionModel struct {
	Position r3.Vec
}

// StateAt returns the fixed position and zero velocity.
func (m StaticMotionModel) StateAt(time.Time) (r3.Vec, r3.Vec) {
	return m.Position, r3.Vec{}
}

// OrbitModel propagates a body from a TLE with SGP4. Positions
// are ECI metres and velocities metres per second.
type OrbitModel struct {
	sat satellite.Satellite
}

// NewOrbitModelFromTLE parses a two-line element set.
func NewOrbitModelFromTLE(line1, line2 string) (m *OrbitModel, err error) {
	line1 = strings.TrimRight(line1, " \r\n")
	line2 = strings.TrimRight(line2, " \r\n")
	if len(line1) != 69 || !strings.HasPrefix(line1, "1 ") {
		return nil, fmt.Errorf("invalid TLE line 1 %q", line1)
	}
	if len(line2) != 69 || !strings.HasPrefix(line2, "2 ") {
		return nil, fmt.Errorf("invalid TLE line 2 %q", line2)
	}

	// go-satellite panics on malformed numeric fields.
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("parse TLE: %v", r)
		}
	}()
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitModel{sat: sat}, nil
}

// StateAt propagates the satellite to t. go-satellite works in whole seconds
// and kilometres; the sub-second remainder is extrapolated linearly so frame
// rates above 1 Hz still see smooth motion.
func (m *OrbitModel) StateAt(t time.Time) (r3.Vec, r3.Vec) {
	t = t.UTC()
	whole := t.Truncate(time.Second)
	frac := t.Sub(whole).Seconds()

	year, month, day := whole.Date()
	hour, min, sec := whole.Clock()
	posKm, velKm := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)

	vel := r3.Vec{X: velKm.X * kmToM, Y: velKm.Y * kmToM, Z: velKm.Z * kmToM}
	pos := r3.Vec{X: posKm.X * kmToM, Y: posKm.Y * kmToM, Z: posKm.Z * kmToM}
	pos = r3.Add(pos, r3.Scale(frac, vel))
	if !finite(pos) || !finite(vel) {
		return r3.Vec{}, r3.Vec{}
	}
	return pos, vel
}

func finite(v r3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
