package hud

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/model"
)

type fakeProvider struct {
	sample Sample
	err    error
	calls  int
}

func (p *fakeProvider) Sample(context.Context, time.Time) (Sample, error) {
	p.calls++
	return p.sample, p.err
}

type captureSink struct {
	frames []display.Frame
	err    error
}

func (s *captureSink) Render(_ context.Context, f display.Frame) error {
	s.frames = append(s.frames, f)
	return s.err
}

type countingObserver struct {
	ticks int
	last  model.RelativeState
}

func (o *countingObserver) ObserveTick(s model.RelativeState, _ time.Duration) {
	o.ticks++
	o.last = s
}

type memRecorder struct {
	times []time.Time
}

func (r *memRecorder) Record(now time.Time, _ model.RelativeState, _ display.Frame) error {
	r.times = append(r.times, now)
	return nil
}

var viewport = display.Viewport{Width: 800, Height: 600}

// validSample puts the craft 3 m in front of a port at the origin, offset
// (5, -2) laterally and facing the port.
func validSample() Sample {
	flip := r3.NewRotation(math.Pi, model.AxisForward)
	own := model.PoseFromRotation(r3.Vec{X: 5, Y: -2, Z: 3}, r3.Vec{Z: -0.2}, flip)
	port := model.PoseFromRotation(r3.Vec{}, r3.Vec{}, r3.NewRotation(0, model.AxisUp))
	return Sample{
		Own:          own,
		Target:       &model.Target{Name: "port", Pose: port, Dockable: true},
		DomainsMatch: true,
		Viewport:     viewport,
	}
}

func TestTickProducesFrame(t *testing.T) {
	provider := &fakeProvider{sample: validSample()}
	sink := &captureSink{}
	obs := &countingObserver{}
	rec := &memRecorder{}
	c := NewController(provider, display.NewMapper(display.DefaultConfig()), sink,
		WithObserver(obs), WithRecorder(rec))

	now := time.Unix(100, 0)
	frame, err := c.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !frame.Enabled || frame.NoTarget {
		t.Fatalf("frame = enabled %v noTarget %v, want enabled with target", frame.Enabled, frame.NoTarget)
	}
	if frame.TangentCrosshair.Color != display.ColorGreen {
		t.Fatalf("tangent color = %v, want green", frame.TangentCrosshair.Color)
	}
	if !strings.HasPrefix(frame.Metrics.ClosingDistance, display.LabelClosingDistance) {
		t.Fatalf("closing distance line = %q", frame.Metrics.ClosingDistance)
	}
	if len(sink.frames) != 1 {
		t.Fatalf("sink got %d frames, want 1", len(sink.frames))
	}
	if obs.ticks != 1 || math.Abs(obs.last.ClosingVelocity()-0.2) > 1e-9 {
		t.Fatalf("observer ticks %d closing velocity %v", obs.ticks, obs.last.ClosingVelocity())
	}
	if len(rec.times) != 1 || !rec.times[0].Equal(now) {
		t.Fatalf("recorder times = %v", rec.times)
	}

	snap, ok := c.Snapshot()
	if !ok || !snap.Time.Equal(now) || !snap.State.Valid {
		t.Fatalf("Snapshot = %+v, %v", snap, ok)
	}
}

func TestTickDisabledSkipsProvider(t *testing.T) {
	provider := &fakeProvider{sample: validSample()}
	c := NewController(provider, nil, nil)
	c.SetEnabled(false)

	frame, err := c.Tick(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if frame.Enabled {
		t.Fatalf("disabled controller produced an enabled frame")
	}
	if provider.calls != 0 {
		t.Fatalf("provider called %d times", provider.calls)
	}
	if _, ok := c.Snapshot(); ok {
		t.Fatalf("snapshot recorded while disabled")
	}
}

func TestTickNoActiveVesselDisables(t *testing.T) {
	provider := &fakeProvider{err: ErrNoActiveVessel}
	c := NewController(provider, nil, nil)

	if _, err := c.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if c.Enabled() {
		t.Fatalf("controller still enabled without an active vessel")
	}
}

func TestTickProviderError(t *testing.T) {
	boom := errors.New("boom")
	c := NewController(&fakeProvider{err: boom}, nil, nil)

	if _, err := c.Tick(context.Background(), time.Now()); !errors.Is(err, boom) {
		t.Fatalf("Tick error = %v, want wrapped boom", err)
	}
	if !c.Enabled() {
		t.Fatalf("provider failure disabled the controller")
	}
}

func TestTickSinkError(t *testing.T) {
	boom := errors.New("draw failed")
	obs := &countingObserver{}
	rec := &memRecorder{}
	c := NewController(&fakeProvider{sample: validSample()}, nil, &captureSink{err: boom},
		WithObserver(obs), WithRecorder(rec))

	frame, err := c.Tick(context.Background(), time.Now())
	if !errors.Is(err, boom) {
		t.Fatalf("Tick error = %v, want wrapped sink error", err)
	}
	if !frame.Enabled {
		t.Fatalf("frame should still be returned on sink error")
	}
	if obs.ticks != 1 || len(rec.times) != 1 {
		t.Fatalf("observer ticks = %d, recorded = %d; want the failed render still observed and recorded", obs.ticks, len(rec.times))
	}
}

func TestValidityListeners(t *testing.T) {
	provider := &fakeProvider{sample: validSample()}
	c := NewController(provider, nil, nil)

	type change struct {
		valid  bool
		reason model.InvalidReason
	}
	var got []change
	c.OnValidityChange(func(valid bool, reason model.InvalidReason) {
		got = append(got, change{valid, reason})
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Tick(ctx, time.Now()); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	provider.sample.Target = nil
	if _, err := c.Tick(ctx, time.Now()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	want := []change{{true, model.ReasonNone}, {false, model.ReasonNoTarget}}
	if len(got) != len(want) {
		t.Fatalf("changes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("change %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestToggle(t *testing.T) {
	c := NewController(&fakeProvider{}, nil, nil)
	if !c.Enabled() {
		t.Fatalf("default controller should start enabled")
	}
	if c.Toggle() {
		t.Fatalf("Toggle() = true, want false")
	}
	if !c.Toggle() || !c.Enabled() {
		t.Fatalf("second Toggle did not re-enable")
	}

	off := display.DefaultConfig()
	off.Enabled = false
	if NewController(&fakeProvider{}, display.NewMapper(off), nil).Enabled() {
		t.Fatalf("controller ignored disabled mapper config")
	}
}
