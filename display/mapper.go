package display

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

// Viewport is the size of the host's display area in abstract pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// Color is the classification applied to an indicator.
type Color int

const (
	ColorNone Color = iota
	ColorGreen
	ColorRed
	ColorGold
)

func (c Color) String() string {
	switch c {
	case ColorGreen:
		return "green"
	case ColorRed:
		return "red"
	case ColorGold:
		return "gold"
	default:
		return "none"
	}
}

// Indicator is the placement of one display element.
type Indicator struct {
	Visible  bool
	Position r2.Vec
	Rotation float64 // radians, counter-clockwise
	Length   float64 // velocity arrow only
	Size     r2.Vec  // angle crosshair arm lengths only
	Color    Color
}

// Frame is everything the host needs to draw one tick of the display.
type Frame struct {
	// Enabled is false when the display is switched off; nothing is drawn.
	Enabled bool
	// NoTarget selects the "no target" screen.
	NoTarget bool

	TangentCrosshair Indicator
	AngleCrosshair   Indicator
	RollMarker       Indicator
	VelocityArrow    Indicator

	Metrics Metrics
}

// Config controls the mapping. It replaces process-wide UI state.
type Config struct {
	// Enabled switches the whole display on or off.
	Enabled bool
	// Scale selects the logarithmic compression range.
	Scale ScaleMode
	// AngleGain is the angle crosshair field-of-view factor.
	// Default: 2.25
	AngleGain float64
	// RollTolerance is the largest roll error, in degrees, drawn green.
	// Default: 5
	RollTolerance float64
	// AngleArmFraction is the angle crosshair arm length as a fraction of
	// the viewport.
	// Default: 0.3
	AngleArmFraction float64
}

// DefaultConfig returns the configuration of a freshly enabled display.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Scale:            ScaleStandard,
		AngleGain:        2.25,
		RollTolerance:    5,
		AngleArmFraction: 0.3,
	}
}

// ApplyDefaults fills zero or invalid numeric fields with their defaults.
// Enabled and Scale are kept as given.
func (c Config) ApplyDefaults() Config {
	def := DefaultConfig()
	if c.AngleGain <= 0 || math.IsNaN(c.AngleGain) {
		c.AngleGain = def.AngleGain
	}
	if c.RollTolerance <= 0 || math.IsNaN(c.RollTolerance) {
		c.RollTolerance = def.RollTolerance
	}
	if c.AngleArmFraction <= 0 || math.IsNaN(c.AngleArmFraction) {
		c.AngleArmFraction = def.AngleArmFraction
	}
	if c.Scale != ScaleStandard && c.Scale != ScaleFine {
		c.Scale = def.Scale
	}
	return c
}

// Mapper turns relative states into frames. It is immutable after
// construction and safe for concurrent use.
type Mapper struct {
	cfg Config
}

// NewMapper constructs a mapper with cfg, defaulting unset numeric fields.
func NewMapper(cfg Config) *Mapper {
	return &Mapper{cfg: cfg.ApplyDefaults()}
}

// Config returns the effective configuration.
func (m *Mapper) Config() Config { return m.cfg }

// Map produces the frame for s on a viewport of size vp.
func (m *Mapper) Map(s model.RelativeState, vp Viewport) Frame {
	if !m.cfg.Enabled {
		return Frame{}
	}
	if !s.Valid {
		return Frame{
			Enabled:  true,
			NoTarget: true,
			Metrics:  PlaceholderMetrics(),
		}
	}

	return Frame{
		Enabled:          true,
		TangentCrosshair: m.tangentCrosshair(s, vp),
		AngleCrosshair:   m.angleCrosshair(s, vp),
		RollMarker:       m.rollMarker(s, vp),
		VelocityArrow:    m.velocityArrow(s, vp),
		Metrics:          FormatMetrics(s),
	}
}

func (m *Mapper) tangentCrosshair(s model.RelativeState, vp Viewport) Indicator {
	return Indicator{
		Visible:  true,
		Position: TangentPosition(s.Position.X, s.Position.Y, vp, m.cfg.Scale),
		Color:    TangentColor(s.ClosingDistance()),
	}
}

func (m *Mapper) angleCrosshair(s model.RelativeState, vp Viewport) Indicator {
	return Indicator{
		Visible:  true,
		Position: AnglePosition(s.Orientation.X, s.Orientation.Y, m.cfg.AngleGain, vp),
		Size: r2.Vec{
			X: m.cfg.AngleArmFraction * vp.Width,
			Y: m.cfg.AngleArmFraction * vp.Height,
		},
		Color: AngleColor(s.Facing()),
	}
}

func (m *Mapper) rollMarker(s model.RelativeState, vp Viewport) Indicator {
	return Indicator{
		Visible:  true,
		Position: RollPosition(s.Roll, vp),
		Rotation: s.Roll,
		Color:    RollColor(s.Roll, m.cfg.RollTolerance),
	}
}

func (m *Mapper) velocityArrow(s model.RelativeState, vp Viewport) Indicator {
	rotation, length := VelocityArrow(s.Velocity.X, s.Velocity.Y, vp, m.cfg.Scale)
	return Indicator{
		Visible:  true,
		Rotation: rotation,
		Length:   length,
	}
}

// TangentColor is green while the craft is in front of the port and red
// when it is level with or behind the port plane.
func TangentColor(closingDistance float64) Color {
	if closingDistance > 0 {
		return ColorGreen
	}
	return ColorRed
}

// AngleColor is gold while the craft points toward the port.
func AngleColor(facing float64) Color {
	if facing < 0 {
		return ColorGold
	}
	return ColorRed
}

// RollColor is green while |roll| in degrees is within tolerance.
func RollColor(roll, toleranceDeg float64) Color {
	if math.Abs(roll*180/math.Pi) <= toleranceDeg {
		return ColorGreen
	}
	return ColorRed
}
