package model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPoseFromRotationIsRightHanded(t *testing.T) {
	rot := r3.NewRotation(1.1, r3.Vec{X: 0.3, Y: -1, Z: 2})
	p := PoseFromRotation(r3.Vec{X: 1}, r3.Vec{}, rot)

	f, l, u := p.Basis()
	c := r3.Cross(f, l)
	if d := r3.Norm(r3.Sub(c, u)); d > 1e-12 {
		t.Fatalf("forward x left = %+v, want up %+v", c, u)
	}
	for name, v := range map[string]r3.Vec{"forward": f, "left": l, "up": u} {
		if n := r3.Norm(v); math.Abs(n-1) > 1e-12 {
			t.Fatalf("|%s| = %v, want 1", name, n)
		}
	}
}

func TestRelativeStateAccessors(t *testing.T) {
	s := RelativeState{
		Position:    r3.Vec{X: 1, Y: 2, Z: 3},
		Velocity:    r3.Vec{Z: -0.5},
		Orientation: r3.Vec{Z: -0.9},
	}
	if s.ClosingDistance() != 3 || s.ClosingVelocity() != -0.5 || s.Facing() != -0.9 {
		t.Fatalf("accessors = %v %v %v", s.ClosingDistance(), s.ClosingVelocity(), s.Facing())
	}
}

func TestInvalidReasonString(t *testing.T) {
	tests := map[InvalidReason]string{
		ReasonNone:           "none",
		ReasonNoTarget:       "no_target",
		ReasonNotDockable:    "not_dockable",
		ReasonDomainMismatch: "domain_mismatch",
		InvalidReason(42):    "unknown",
	}
	for r, want := range tests {
		if got := r.String(); got != want {
			t.Fatalf("InvalidReason(%d).String() = %q, want %q", int(r), got, want)
		}
	}
}

func TestBodyDockable(t *testing.T) {
	var nilBody *Body
	if nilBody.Dockable() {
		t.Fatalf("nil body reported dockable")
	}
	if (&Body{Kind: BodyKindVessel}).Dockable() {
		t.Fatalf("vessel reported dockable")
	}
	if !(&Body{Kind: BodyKindPort}).Dockable() {
		t.Fatalf("port not dockable")
	}
}
