package model

import "gonum.org/v1/gonum/spatial/r3"

// Pose is a rigid body's kinematic state at a sample instant.
//
// Position and Velocity are in the world (orbital) frame, metres and metres
// per second, relative to a common non-rotating reference. Forward, Up and
// Left form a right-handed orthonormal basis; Up is the body's alignment
// axis, which for a docking port is the outward docking axis.
type Pose struct {
	Position r3.Vec
	Velocity r3.Vec

	Forward r3.Vec
	Up      r3.Vec
	Left    r3.Vec
}

// Canonical body axes. A pose with no rotation has Forward along +X,
// Left along +Y and Up along +Z.
var (
	AxisForward = r3.Vec{X: 1}
	AxisLeft    = r3.Vec{Y: 1}
	AxisUp      = r3.Vec{Z: 1}
)

// PoseFromRotation builds a pose whose basis is the canonical basis rotated
// by rot.
func PoseFromRotation(position, velocity r3.Vec, rot r3.Rotation) Pose {
	return Pose{
		Position: position,
		Velocity: velocity,
		Forward:  rot.Rotate(AxisForward),
		Up:       rot.Rotate(AxisUp),
		Left:     rot.Rotate(AxisLeft),
	}
}

// Basis returns the pose axes in (Forward, Left, Up) order.
func (p Pose) Basis() (forward, left, up r3.Vec) {
	return p.Forward, p.Left, p.Up
}

// ReferenceFrame maps world coordinates into a body-centred, body-oriented
// coordinate system. Both methods are linear maps; ToLocalPosition also
// removes the frame origin.
type ReferenceFrame interface {
	ToLocalPosition(p r3.Vec) r3.Vec
	ToLocalVector(v r3.Vec) r3.Vec
}

// Target is the object the active craft is aligning with.
type Target struct {
	Name string
	Pose Pose

	// Frame is the coordinate system centred on Pose. Callers guarantee the
	// correspondence; a nil Frame makes the solver derive one from Pose.
	Frame ReferenceFrame

	// Dockable is true when the target is a dockable part (a docking port)
	// rather than a whole vessel or celestial object.
	Dockable bool
}
