package model

import "gonum.org/v1/gonum/spatial/r3"

// InvalidReason explains why a RelativeState is not valid.
type InvalidReason int

const (
	ReasonNone InvalidReason = iota
	ReasonNoTarget
	ReasonNotDockable
	ReasonDomainMismatch
)

func (r InvalidReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoTarget:
		return "no_target"
	case ReasonNotDockable:
		return "not_dockable"
	case ReasonDomainMismatch:
		return "domain_mismatch"
	default:
		return "unknown"
	}
}

// RelativeState is the alignment error of the active craft with respect to a
// target port, expressed in the target-parallel frame. It is recomputed every
// tick and carries no identity.
//
// Vector components are ordered (lateral forward, lateral left, docking
// axis). When Valid is false the physical fields must not be trusted.
type RelativeState struct {
	// Position is (lateralX, lateralY, closingDistance). Closing distance is
	// positive when the craft is in front of the port.
	Position r3.Vec

	// Velocity is (lateralVX, lateralVY, closingVelocity). Closing velocity
	// is positive when the gap is shrinking.
	Velocity r3.Vec

	// Orientation is the craft's alignment axis in the port frame: two
	// in-plane pointing error components, then the facing sign component
	// (negative when pointed toward the port).
	Orientation r3.Vec

	// Roll is the signed rotation about the docking axis in (-Pi, Pi].
	Roll float64

	Valid  bool
	Reason InvalidReason
}

// ClosingDistance returns the along-axis separation.
func (s RelativeState) ClosingDistance() float64 { return s.Position.Z }

// ClosingVelocity returns the along-axis approach rate.
func (s RelativeState) ClosingVelocity() float64 { return s.Velocity.Z }

// Facing returns the out-of-plane component of the craft's alignment axis.
func (s RelativeState) Facing() float64 { return s.Orientation.Z }
