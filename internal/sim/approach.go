package sim

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

// ApproachProfile scripts the chaser's motion relative to the target port.
// Offsets are in the port's (forward, left, up) axes.
type ApproachProfile struct {
	// InitialOffset is (lateralX, lateralY, closing distance) in metres at
	// the start of the approach.
	InitialOffset r3.Vec `yaml:"initial_offset"`
	// ClosingSpeed is the approach rate in m/s; positive closes the gap.
	ClosingSpeed float64 `yaml:"closing_speed"`
	// LateralDecay is the time constant with which the lateral offset is
	// nulled. Zero disables the correction.
	LateralDecay time.Duration `yaml:"lateral_decay"`
	// LateralDrift is a constant lateral velocity (X, Y) in m/s.
	LateralDrift r3.Vec `yaml:"lateral_drift"`
	// Roll is the initial roll error in radians; RollRate changes it over
	// time in rad/s.
	Roll     float64 `yaml:"roll"`
	RollRate float64 `yaml:"roll_rate"`
	// Tilt is a fixed pointing error about the port's left axis, radians.
	Tilt float64 `yaml:"tilt"`
	// Contact is the closing distance at which the approach holds.
	Contact float64 `yaml:"contact"`
}

// DefaultApproach returns a slow approach from 60 m with some lateral and
// roll error to null out.
func DefaultApproach() ApproachProfile {
	return ApproachProfile{
		InitialOffset: r3.Vec{X: 8, Y: -3, Z: 60},
		ClosingSpeed:  0.5,
		LateralDecay:  40 * time.Second,
		Roll:          0.35,
		RollRate:      -0.005,
		Tilt:          0.05,
		Contact:       0.1,
	}
}

// At returns the chaser's offset and velocity relative to the port, and its
// attitude relative to the port basis, elapsed into the approach.
//
// The attitude faces the port: the chaser's alignment axis points against
// the port's docking axis while its forward axis is rotated from the port's
// forward axis by the scripted roll, then tilted by Tilt.
func (p ApproachProfile) At(elapsed time.Duration) (offset, velocity r3.Vec, attitude r3.Rotation) {
	t := elapsed.Seconds()
	if t < 0 {
		t = 0
	}

	decay, decayRate := 1.0, 0.0
	if p.LateralDecay > 0 {
		tau := p.LateralDecay.Seconds()
		decay = math.Exp(-t / tau)
		decayRate = -decay / tau
	}
	offset.X = p.InitialOffset.X*decay + p.LateralDrift.X*t
	offset.Y = p.InitialOffset.Y*decay + p.LateralDrift.Y*t
	velocity.X = p.InitialOffset.X*decayRate + p.LateralDrift.X
	velocity.Y = p.InitialOffset.Y*decayRate + p.LateralDrift.Y

	offset.Z = p.InitialOffset.Z - p.ClosingSpeed*t
	velocity.Z = -p.ClosingSpeed
	if p.ClosingSpeed > 0 && offset.Z <= p.Contact {
		offset.Z = math.Min(p.Contact, p.InitialOffset.Z)
		velocity.Z = 0
	}

	roll := p.Roll + p.RollRate*t
	attitude = compose(
		r3.NewRotation(p.Tilt, model.AxisLeft),
		compose(
			// The solver reports a positive roll for a clockwise offset about
			// the docking axis.
			r3.NewRotation(-roll, model.AxisUp),
			r3.NewRotation(math.Pi, model.AxisForward),
		),
	)
	return offset, velocity, attitude
}

// compose returns the rotation that applies b and then a.
func compose(a, b r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}
