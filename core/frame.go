package core

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

// WorldFrame is the identity frame. It suits hosts whose poses are already
// expressed relative to the target.
type WorldFrame struct{}

// ToLocalPosition returns p unchanged.
func (WorldFrame) ToLocalPosition(p r3.Vec) r3.Vec { return p }

// ToLocalVector returns v unchanged.
func (WorldFrame) ToLocalVector(v r3.Vec) r3.Vec { return v }

// PoseFrame is centred on a pose, with the pose's Forward, Left and Up axes
// as local X, Y and Z.
type PoseFrame struct {
	origin            r3.Vec
	forward, left, up r3.Vec
}

// NewPoseFrame constructs the target-parallel frame of p.
func NewPoseFrame(p model.Pose) PoseFrame {
	return PoseFrame{origin: p.Position, forward: p.Forward, left: p.Left, up: p.Up}
}

// ToLocalPosition expresses the world point p in the frame.
func (f PoseFrame) ToLocalPosition(p r3.Vec) r3.Vec {
	return f.ToLocalVector(r3.Sub(p, f.origin))
}

// ToLocalVector expresses the world direction v in the frame.
func (f PoseFrame) ToLocalVector(v r3.Vec) r3.Vec {
	return inBasis(v, f.forward, f.left, f.up)
}

// RotationFrame is centred on origin and rotated by rot relative to the
// world axes.
type RotationFrame struct {
	origin  r3.Vec
	inverse r3.Rotation
}

// NewRotationFrame constructs a frame whose axes are the world axes rotated
// by rot. rot must be a unit rotation, as produced by r3.NewRotation.
func NewRotationFrame(origin r3.Vec, rot r3.Rotation) RotationFrame {
	return RotationFrame{
		origin:  origin,
		inverse: r3.Rotation(quat.Conj(quat.Number(rot))),
	}
}

// ToLocalPosition expresses the world point p in the frame.
func (f RotationFrame) ToLocalPosition(p r3.Vec) r3.Vec {
	return f.inverse.Rotate(r3.Sub(p, f.origin))
}

// ToLocalVector expresses the world direction v in the frame.
func (f RotationFrame) ToLocalVector(v r3.Vec) r3.Vec {
	return f.inverse.Rotate(v)
}

var (
	_ model.ReferenceFrame = WorldFrame{}
	_ model.ReferenceFrame = PoseFrame{}
	_ model.ReferenceFrame = RotationFrame{}
)
