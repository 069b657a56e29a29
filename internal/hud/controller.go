// Package hud runs the docking alignment display once per frame: it samples
// the host, solves the relative geometry, maps it to screen placements and
// hands the result to a sink.
package hud

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/docking-alignment-display/core"
	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/internal/logging"
	"github.com/signalsfoundry/docking-alignment-display/model"
)

const tracerName = "github.com/signalsfoundry/docking-alignment-display/internal/hud"

// ErrNoActiveVessel is returned by a Provider when the player is not
// controlling a vessel. The controller disables itself when it sees it.
var ErrNoActiveVessel = errors.New("no active vessel")

// Sample is one tick's worth of host state.
type Sample struct {
	Own          model.Pose
	Target       *model.Target
	DomainsMatch bool
	Viewport     display.Viewport
}

// Provider supplies host state at a given time.
type Provider interface {
	Sample(ctx context.Context, now time.Time) (Sample, error)
}

// Sink draws frames.
type Sink interface {
	Render(ctx context.Context, frame display.Frame) error
}

// TickObserver receives per-tick measurements, typically for metrics.
type TickObserver interface {
	ObserveTick(state model.RelativeState, elapsed time.Duration)
}

// FrameRecorder persists ticks.
type FrameRecorder interface {
	Record(now time.Time, state model.RelativeState, frame display.Frame) error
}

// Snapshot is the result of the latest completed tick.
type Snapshot struct {
	Time  time.Time
	State model.RelativeState
	Frame display.Frame
}

// Option customises a Controller.
type Option func(*Controller)

// WithObserver attaches a tick observer.
func WithObserver(o TickObserver) Option {
	return func(c *Controller) { c.observer = o }
}

// WithRecorder attaches a frame recorder.
func WithRecorder(r FrameRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the controller's logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// Controller owns the display's enabled flag and runs ticks.
type Controller struct {
	provider Provider
	solver   core.Solver
	mapper   *display.Mapper
	sink     Sink
	observer TickObserver
	recorder FrameRecorder
	log      logging.Logger
	tracer   trace.Tracer

	mu        sync.RWMutex
	enabled   bool
	last      Snapshot
	haveLast  bool
	lastValid bool
	lastWhy   model.InvalidReason
	listeners []func(valid bool, reason model.InvalidReason)
}

// NewController constructs a controller. The display starts enabled when the
// mapper's configuration says so.
func NewController(provider Provider, mapper *display.Mapper, sink Sink, opts ...Option) *Controller {
	if mapper == nil {
		mapper = display.NewMapper(display.DefaultConfig())
	}
	c := &Controller{
		provider: provider,
		mapper:   mapper,
		sink:     sink,
		log:      logging.Noop(),
		tracer:   otel.Tracer(tracerName),
		enabled:  mapper.Config().Enabled,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetEnabled switches the display on or off.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// Toggle flips the display and returns the new state.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = !c.enabled
	return c.enabled
}

// Enabled reports whether the display is on.
func (c *Controller) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// OnValidityChange registers fn to be called whenever the target becomes
// valid or invalid. fn runs on the ticking goroutine.
func (c *Controller) OnValidityChange(fn func(valid bool, reason model.InvalidReason)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Snapshot returns the latest tick, if any has completed.
func (c *Controller) Snapshot() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.haveLast
}

// Tick runs one display frame at now. A disabled controller returns an empty
// frame without consulting the provider.
func (c *Controller) Tick(ctx context.Context, now time.Time) (display.Frame, error) {
	if !c.Enabled() {
		return display.Frame{}, nil
	}

	ctx, span := c.tracer.Start(ctx, "hud.Tick")
	defer span.End()
	start := time.Now()

	sample, err := c.provider.Sample(ctx, now)
	if errors.Is(err, ErrNoActiveVessel) {
		c.SetEnabled(false)
		span.SetAttributes(attribute.Bool("docking.enabled", false))
		c.log.Info(ctx, "no active vessel; display disabled")
		return display.Frame{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return display.Frame{}, fmt.Errorf("sample host state: %w", err)
	}

	state := c.solver.Solve(sample.Own, sample.Target, sample.DomainsMatch)
	frame := c.mapper.Map(state, sample.Viewport)

	span.SetAttributes(
		attribute.Bool("docking.valid", state.Valid),
		attribute.String("docking.reason", state.Reason.String()),
	)
	if state.Valid {
		span.SetAttributes(attribute.Float64("docking.closing_distance", state.ClosingDistance()))
	}

	c.publish(ctx, now, state, frame)

	if c.recorder != nil {
		if err := c.recorder.Record(now, state, frame); err != nil {
			c.log.Warn(ctx, "record frame failed", logging.Err(err))
		}
	}
	if c.observer != nil {
		c.observer.ObserveTick(state, time.Since(start))
	}
	if c.sink != nil {
		if err := c.sink.Render(ctx, frame); err != nil {
			span.RecordError(err)
			return frame, fmt.Errorf("render frame: %w", err)
		}
	}
	return frame, nil
}

func (c *Controller) publish(ctx context.Context, now time.Time, state model.RelativeState, frame display.Frame) {
	c.mu.Lock()
	changed := !c.haveLast || c.lastValid != state.Valid || c.lastWhy != state.Reason
	c.last = Snapshot{Time: now, State: state, Frame: frame}
	c.haveLast = true
	c.lastValid = state.Valid
	c.lastWhy = state.Reason
	var listeners []func(bool, model.InvalidReason)
	if changed {
		listeners = make([]func(bool, model.InvalidReason), len(c.listeners))
		copy(listeners, c.listeners)
	}
	c.mu.Unlock()

	if !changed {
		return
	}
	if state.Valid {
		c.log.Info(ctx, "docking target acquired")
	} else {
		c.log.Info(ctx, "docking target unavailable", logging.String("reason", state.Reason.String()))
	}
	for _, fn := range listeners {
		fn(state.Valid, state.Reason)
	}
}
