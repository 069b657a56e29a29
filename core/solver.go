package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

// Solver reduces an own-craft pose and a target port into the relative
// alignment state shown on the display. The zero value is ready to use and
// Solver holds no state, so one value may be shared between goroutines.
type Solver struct{}

// Solve computes the relative state of own with respect to target using a
// zero Solver.
func Solve(own model.Pose, target *model.Target, domainsMatch bool) model.RelativeState {
	return Solver{}.Solve(own, target, domainsMatch)
}

// Solve computes the relative state of own with respect to target.
//
// domainsMatch reports whether both bodies orbit the same reference body.
// The result is valid only when domainsMatch holds and the target is
// dockable; otherwise the physical fields are still computed on a best-effort
// basis but must be treated as stale. A nil target yields an invalid, zero
// state.
func (Solver) Solve(own model.Pose, target *model.Target, domainsMatch bool) model.RelativeState {
	if target == nil {
		return model.RelativeState{Reason: model.ReasonNoTarget}
	}

	frame := target.Frame
	if frame == nil {
		frame = NewPoseFrame(target.Pose)
	}
	b := newTargetBasis(frame, target.Pose)

	state := model.RelativeState{
		Position:    b.relativePosition(frame, own.Position, target.Pose.Position),
		Velocity:    b.relativeVelocity(frame, own.Velocity, target.Pose.Velocity),
		Orientation: b.relativeOrientation(frame, own.Up),
		Roll:        b.relativeRoll(frame, own.Forward),
	}
	sanitize(&state)

	switch {
	case !target.Dockable:
		state.Reason = model.ReasonNotDockable
	case !domainsMatch:
		state.Reason = model.ReasonDomainMismatch
	default:
		state.Valid = true
	}
	return state
}

// targetBasis holds the target port axes expressed in the target frame.
type targetBasis struct {
	forward, left, up r3.Vec
}

func newTargetBasis(frame model.ReferenceFrame, p model.Pose) targetBasis {
	return targetBasis{
		forward: frame.ToLocalVector(p.Forward),
		left:    frame.ToLocalVector(p.Left),
		up:      frame.ToLocalVector(p.Up),
	}
}

// relativePosition returns (lateralX, lateralY, closingDistance).
func (b targetBasis) relativePosition(frame model.ReferenceFrame, own, target r3.Vec) r3.Vec {
	tgtToVessel := r3.Sub(frame.ToLocalPosition(own), frame.ToLocalPosition(target))
	offset := ProjectOnPlane(tgtToVessel, b.up)
	return r3.Vec{
		X: r3.Dot(b.forward, offset),
		Y: r3.Dot(b.left, offset),
		Z: r3.Dot(b.up, tgtToVessel),
	}
}

// relativeVelocity returns (lateralVX, lateralVY, closingVelocity). The
// closing component is negated so that an approaching craft reads positive,
// matching the closing distance being positive in front of the port.
func (b targetBasis) relativeVelocity(frame model.ReferenceFrame, own, target r3.Vec) r3.Vec {
	velDiff := r3.Sub(frame.ToLocalVector(own), frame.ToLocalVector(target))
	velProj := ProjectOnPlane(velDiff, b.up)
	return r3.Vec{
		X: r3.Dot(b.forward, velProj),
		Y: r3.Dot(b.left, velProj),
		Z: -r3.Dot(b.up, velDiff),
	}
}

// relativeOrientation returns the pointing error of the craft's alignment
// axis and its facing component along the docking axis.
func (b targetBasis) relativeOrientation(frame model.ReferenceFrame, ownUp r3.Vec) r3.Vec {
	localUp := frame.ToLocalVector(ownUp)
	upProj := ProjectOnPlane(localUp, b.up)
	return r3.Vec{
		X: r3.Dot(b.forward, upProj),
		Y: r3.Dot(b.left, upProj),
		Z: r3.Dot(b.up, localUp),
	}
}

// relativeRoll returns the signed angle about the docking axis between the
// craft's forward axis and the port's forward axis, in (-Pi, Pi].
//
// Roll is undefined when the craft's forward axis lies along the docking
// axis; that singularity reports 0.
func (b targetBasis) relativeRoll(frame model.ReferenceFrame, ownForward r3.Vec) float64 {
	localFwd := Normalize(frame.ToLocalVector(ownForward))
	fwd := Normalize(b.forward)
	left := Normalize(b.left)

	cosRoll := r3.Dot(localFwd, fwd)
	sinSide := r3.Dot(localFwd, left)
	if math.Hypot(cosRoll, sinSide) < degenerateEpsilon {
		return 0
	}

	magnitude := math.Acos(Clamp(cosRoll, -1, 1))
	if sinSide > 0 && magnitude < math.Pi {
		return -magnitude
	}
	return magnitude
}

// sanitize zeroes any non-finite component so downstream mapping never sees
// NaN.
func sanitize(s *model.RelativeState) {
	if !finite(s.Position) {
		s.Position = r3.Vec{}
	}
	if !finite(s.Velocity) {
		s.Velocity = r3.Vec{}
	}
	if !finite(s.Orientation) {
		s.Orientation = r3.Vec{}
	}
	if math.IsNaN(s.Roll) || math.IsInf(s.Roll, 0) {
		s.Roll = 0
	}
}
