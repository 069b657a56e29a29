package sim

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

func TestApproachStartsAtInitialOffset(t *testing.T) {
	p := DefaultApproach()
	offset, vel, _ := p.At(0)
	if offset != p.InitialOffset {
		t.Fatalf("offset = %+v, want %+v", offset, p.InitialOffset)
	}
	if vel.Z != -p.ClosingSpeed {
		t.Fatalf("closing rate = %v, want %v", vel.Z, -p.ClosingSpeed)
	}
}

func TestApproachHoldsAtContact(t *testing.T) {
	p := ApproachProfile{InitialOffset: r3.Vec{Z: 10}, ClosingSpeed: 1, Contact: 0.5}
	offset, vel, _ := p.At(time.Minute)
	if offset.Z != 0.5 || vel.Z != 0 {
		t.Fatalf("after contact offset.Z = %v vel.Z = %v, want 0.5 and 0", offset.Z, vel.Z)
	}
}

func TestApproachLateralVelocityMatchesOffset(t *testing.T) {
	p := ApproachProfile{
		InitialOffset: r3.Vec{X: 8, Y: -3, Z: 50},
		LateralDecay:  20 * time.Second,
		LateralDrift:  r3.Vec{X: 0.01, Y: 0.02},
	}
	const dt = time.Millisecond
	at := 7 * time.Second
	o1, v, _ := p.At(at)
	o2, _, _ := p.At(at + dt)

	for _, c := range []struct {
		name     string
		got, num float64
	}{
		{"x", v.X, (o2.X - o1.X) / dt.Seconds()},
		{"y", v.Y, (o2.Y - o1.Y) / dt.Seconds()},
	} {
		if math.Abs(c.got-c.num) > 1e-3 {
			t.Fatalf("lateral %s velocity = %v, numeric derivative %v", c.name, c.got, c.num)
		}
	}
	if math.Abs(o1.X) >= 8 {
		t.Fatalf("lateral offset did not decay: %v", o1.X)
	}
}

func TestApproachAttitudeFacesPort(t *testing.T) {
	p := ApproachProfile{Roll: 0.3}
	_, _, att := p.At(0)

	up := att.Rotate(model.AxisUp)
	if math.Abs(up.Z+1) > 1e-12 {
		t.Fatalf("alignment axis = %+v, want -Z", up)
	}
	fwd := att.Rotate(model.AxisForward)
	if got := math.Acos(fwd.X); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("forward offset angle = %v, want 0.3", got)
	}
	if fwd.Y >= 0 {
		t.Fatalf("forward.Y = %v, want negative for a positive roll", fwd.Y)
	}
}
