package model

// BodyKind indicates what kind of simulation object a Body is.
type BodyKind int

const (
	BodyKindUnknown BodyKind = iota
	BodyKindVessel           // a whole craft
	BodyKindPort             // a dockable part attached to a vessel
)

func (k BodyKind) String() string {
	switch k {
	case BodyKindVessel:
		return "vessel"
	case BodyKindPort:
		return "port"
	default:
		return "unknown"
	}
}

// Body is a simulation object that can be flown or targeted.
type Body struct {
	ID   string
	Name string
	Kind BodyKind

	// ReferenceBody is the celestial body this object orbits. Two bodies
	// share a reference domain when their ReferenceBody values match.
	ReferenceBody string

	// VesselID links a port to the vessel it is attached to. Empty for
	// vessels.
	VesselID string

	Pose Pose
}

// Dockable reports whether the body can be used as a docking target.
func (b *Body) Dockable() bool {
	return b != nil && b.Kind == BodyKindPort
}
