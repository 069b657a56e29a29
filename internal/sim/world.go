// Package sim is a small host world for the docking display: a station on
// an SGP4 orbit with a docking port, a chaser flying a scripted approach to
// it, and a relay station around another body.
package sim

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/docking-alignment-display/core"
	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/internal/hud"
	"github.com/signalsfoundry/docking-alignment-display/internal/logging"
	"github.com/signalsfoundry/docking-alignment-display/kb"
	"github.com/signalsfoundry/docking-alignment-display/model"
)

// Body IDs in the simulated world.
const (
	StationID   = "station"
	PortID      = "station-port"
	ChaserID    = "chaser"
	RelayID     = "relay"
	RelayPortID = "relay-port"
)

const (
	homeBody  = "Earth"
	relayBody = "Moon"

	// Distance from the station's centre to its forward docking port.
	portOffset = 12.0
)

// relayPosition parks the relay at roughly lunar distance.
var relayPosition = r3.Vec{X: 3.844e8}

// TargetMode selects what the chaser is targeting.
type TargetMode int

const (
	// TargetPort targets the station's docking port.
	TargetPort TargetMode = iota
	// TargetStation targets the station vessel itself, which is not dockable.
	TargetStation
	// TargetNone clears the target.
	TargetNone
	// TargetRelay targets a docking port orbiting a different body.
	TargetRelay
)

func (m TargetMode) String() string {
	switch m {
	case TargetPort:
		return "port"
	case TargetStation:
		return "station"
	case TargetNone:
		return "none"
	case TargetRelay:
		return "relay"
	default:
		return fmt.Sprintf("TargetMode(%d)", int(m))
	}
}

// ParseTargetMode parses the String form of a TargetMode.
func ParseTargetMode(s string) (TargetMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "port":
		return TargetPort, nil
	case "station":
		return TargetStation, nil
	case "none":
		return TargetNone, nil
	case "relay":
		return TargetRelay, nil
	default:
		return 0, fmt.Errorf("unknown target mode %q", s)
	}
}

// WorldConfig configures NewWorld.
type WorldConfig struct {
	// Start is the time the approach begins.
	Start time.Time
	// Orbit moves the station. Defaults to the sample ISS TLE.
	Orbit    MotionModel
	Approach ApproachProfile
	Viewport display.Viewport
	Target   TargetMode
	// Logger receives selection changes. Defaults to a noop logger.
	Logger logging.Logger
}

// World implements hud.Provider over a knowledge base of bodies.
type World struct {
	kb       *kb.KnowledgeBase
	orbit    MotionModel
	relay    MotionModel
	approach ApproachProfile
	start    time.Time
	log      logging.Logger

	unsubscribe func()

	mu       sync.RWMutex
	viewport display.Viewport
}

var _ hud.Provider = (*World)(nil)

// NewWorld populates a knowledge base with the station, its port, the chaser
// and the relay, and selects the chaser as the active vessel.
func NewWorld(cfg WorldConfig) (*World, error) {
	if cfg.Orbit == nil {
		orbit, err := NewOrbitModelFromTLE(DefaultTLE1, DefaultTLE2)
		if err != nil {
			return nil, fmt.Errorf("default orbit: %w", err)
		}
		cfg.Orbit = orbit
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Noop()
	}
	w := &World{
		kb:       kb.NewKnowledgeBase(),
		orbit:    cfg.Orbit,
		relay:    StaticMotionModel{Position: relayPosition},
		approach: cfg.Approach,
		start:    cfg.Start,
		viewport: cfg.Viewport,
		log:      cfg.Logger,
	}

	bodies := []*model.Body{
		{ID: StationID, Name: "Station", Kind: model.BodyKindVessel, ReferenceBody: homeBody},
		{ID: PortID, Name: "Station Forward Port", Kind: model.BodyKindPort, ReferenceBody: homeBody, VesselID: StationID},
		{ID: ChaserID, Name: "Chaser", Kind: model.BodyKindVessel, ReferenceBody: homeBody},
		{ID: RelayID, Name: "Relay", Kind: model.BodyKindVessel, ReferenceBody: relayBody},
		{ID: RelayPortID, Name: "Relay Port", Kind: model.BodyKindPort, ReferenceBody: relayBody, VesselID: RelayID},
	}
	for _, b := range bodies {
		if err := w.kb.AddBody(b); err != nil {
			return nil, err
		}
	}
	w.unsubscribe = w.kb.Subscribe(w.onSelection)
	if err := w.kb.SetActive(ChaserID); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.SelectTarget(cfg.Target); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Advance(cfg.Start); err != nil {
		w.Close()
		return nil, err
	}
	w.log.Debug(context.Background(), "world populated", logging.Int("bodies", len(w.kb.ListBodies())))
	return w, nil
}

// Close stops logging selection changes.
func (w *World) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
}

func (w *World) onSelection(ev kb.Event) {
	var msg string
	switch ev.Type {
	case kb.EventActiveChanged:
		msg = "active vessel changed"
	case kb.EventTargetChanged:
		msg = "docking target changed"
	default:
		return
	}
	fields := []logging.Field{
		logging.String("selected", ev.Body.ID),
		logging.String("previous", ev.PreviousID),
	}
	if ev.Body.ID != "" {
		fields = append(fields, logging.String("kind", ev.Body.Kind.String()), logging.String("reference_body", ev.Body.ReferenceBody))
	}
	if prev, ok := w.kb.GetBody(ev.PreviousID); ok {
		fields = append(fields, logging.String("previous_name", prev.Name))
	}
	w.log.Info(context.Background(), msg, fields...)
}

// KnowledgeBase exposes the world's bodies.
func (w *World) KnowledgeBase() *kb.KnowledgeBase { return w.kb }

// SelectTarget changes the chaser's target.
func (w *World) SelectTarget(mode TargetMode) error {
	switch mode {
	case TargetPort:
		return w.kb.SetTarget(PortID)
	case TargetStation:
		return w.kb.SetTarget(StationID)
	case TargetNone:
		return w.kb.SetTarget("")
	case TargetRelay:
		return w.kb.SetTarget(RelayPortID)
	default:
		return fmt.Errorf("unknown target mode %s", mode)
	}
}

// SetViewport records the host's current screen size.
func (w *World) SetViewport(vp display.Viewport) {
	w.mu.Lock()
	w.viewport = vp
	w.mu.Unlock()
}

// Advance moves every body to its state at now.
func (w *World) Advance(now time.Time) error {
	station := vesselPose(w.orbit.StateAt(now))
	port := portPose(station)
	chaser := w.chaserPose(port, now.Sub(w.start))

	relay := vesselPose(w.relay.StateAt(now))
	relayPort := portPose(relay)

	for id, pose := range map[string]model.Pose{
		StationID:   station,
		PortID:      port,
		ChaserID:    chaser,
		RelayID:     relay,
		RelayPortID: relayPort,
	} {
		if err := w.kb.UpdatePose(id, pose); err != nil {
			return fmt.Errorf("advance %s: %w", id, err)
		}
	}
	return nil
}

// Sample advances the world to now and reports the chaser and its target.
func (w *World) Sample(_ context.Context, now time.Time) (hud.Sample, error) {
	if err := w.Advance(now); err != nil {
		return hud.Sample{}, err
	}

	w.mu.RLock()
	vp := w.viewport
	w.mu.RUnlock()

	active, ok := w.kb.Active()
	if !ok {
		return hud.Sample{}, hud.ErrNoActiveVessel
	}
	sample := hud.Sample{Own: active.Pose, Viewport: vp}

	target, ok := w.kb.Target()
	if !ok {
		return sample, nil
	}
	sample.Target = &model.Target{
		Name:     target.Name,
		Pose:     target.Pose,
		Frame:    core.NewPoseFrame(target.Pose),
		Dockable: target.Dockable(),
	}
	sample.DomainsMatch = active.ReferenceBody == target.ReferenceBody
	return sample, nil
}

func (w *World) chaserPose(port model.Pose, elapsed time.Duration) model.Pose {
	offset, vel, attitude := w.approach.At(elapsed)
	return model.Pose{
		Position: r3.Add(port.Position, fromBasis(port, offset)),
		Velocity: r3.Add(port.Velocity, fromBasis(port, vel)),
		Forward:  fromBasis(port, attitude.Rotate(model.AxisForward)),
		Left:     fromBasis(port, attitude.Rotate(model.AxisLeft)),
		Up:       fromBasis(port, attitude.Rotate(model.AxisUp)),
	}
}

// vesselPose orients a vessel in its local orbital frame: Up radial,
// Forward along-track.
func vesselPose(position, velocity r3.Vec) model.Pose {
	up := core.Normalize(position)
	if up == (r3.Vec{}) {
		up = model.AxisUp
	}
	forward := core.Normalize(core.ProjectOnPlane(velocity, up))
	if forward == (r3.Vec{}) {
		forward = core.Normalize(core.ProjectOnPlane(model.AxisForward, up))
		if forward == (r3.Vec{}) {
			forward = core.Normalize(core.ProjectOnPlane(model.AxisLeft, up))
		}
	}
	return model.Pose{
		Position: position,
		Velocity: velocity,
		Forward:  forward,
		Up:       up,
		Left:     r3.Cross(up, forward),
	}
}

// portPose places a docking port on the vessel's forward end with its
// docking axis along-track.
func portPose(vessel model.Pose) model.Pose {
	return model.Pose{
		Position: r3.Add(vessel.Position, r3.Scale(portOffset, vessel.Forward)),
		Velocity: vessel.Velocity,
		Forward:  vessel.Up,
		Up:       vessel.Forward,
		Left:     r3.Scale(-1, vessel.Left),
	}
}

// fromBasis expresses a vector given in p's (Forward, Left, Up) axes in world
// coordinates.
func fromBasis(p model.Pose, v r3.Vec) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(v.X, p.Forward), r3.Scale(v.Y, p.Left)), r3.Scale(v.Z, p.Up))
}
