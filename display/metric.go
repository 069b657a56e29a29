package display

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

// Prefix is the unit prefix tier chosen for a displayed metric.
type Prefix int

const (
	PrefixNone Prefix = iota
	PrefixKilo
	PrefixMega
	PrefixCenti
)

// Symbol returns the single-character prefix, or a space for PrefixNone.
func (p Prefix) Symbol() string {
	switch p {
	case PrefixKilo:
		return "k"
	case PrefixMega:
		return "M"
	case PrefixCenti:
		return "c"
	default:
		return " "
	}
}

// Multiplier returns the factor that turns a scaled value back into base
// units.
func (p Prefix) Multiplier() float64 {
	switch p {
	case PrefixKilo:
		return 1e3
	case PrefixMega:
		return 1e6
	case PrefixCenti:
		return 1e-2
	default:
		return 1
	}
}

// FieldWidth is the width of every formatted metric field: seven characters
// of fixed-point number, a space and the prefix slot.
const FieldWidth = 9

// Largest magnitudes that fit the seven-character number; values beyond
// the mega tier saturate.
const (
	maxField = 99999.9
	minField = -9999.9
)

// Placeholder is rendered in place of a metric when no valid target exists.
// It has the same width as a formatted value so labels do not jitter.
var Placeholder = fmt.Sprintf("%7s %1s", "N/A", "")

// ErrUnavailable is returned by ParseDisplay for the placeholder field.
var ErrUnavailable = errors.New("metric unavailable")

// Scale picks the prefix tier for value and returns the value scaled into
// it. Magnitudes of at least 1 use none, kilo or mega by floor(log10|v|/3);
// smaller magnitudes, including zero, use centi.
func Scale(value float64) (float64, Prefix) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value, PrefixNone
	}
	abs := math.Abs(value)
	if abs < 1 {
		return value / PrefixCenti.Multiplier(), PrefixCenti
	}
	p := Prefix(math.Floor(math.Log10(abs) / 3))
	if p > PrefixMega {
		p = PrefixMega
	}
	return value / p.Multiplier(), p
}

// ToDisplay formats value as a fixed-width field with one decimal and a unit
// prefix, e.g. "    1.2 k" for 1234.5. Non-finite values render as the
// placeholder.
func ToDisplay(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	scaled, p := Scale(value)
	switch {
	case scaled > maxField:
		scaled = maxField
	case scaled < minField:
		scaled = minField
	case math.Abs(scaled) < 0.05:
		// Rounds to zero; avoid rendering "-0.0".
		scaled = 0
	}
	return fmt.Sprintf("%7.1f %s", scaled, p.Symbol())
}

// ParseDisplay reverses ToDisplay, returning the value in base units as
// rounded by the display.
func ParseDisplay(field string) (float64, error) {
	if field == Placeholder {
		return 0, ErrUnavailable
	}
	if len(field) < 2 {
		return 0, fmt.Errorf("metric field %q too short", field)
	}
	number := strings.TrimSpace(field[:len(field)-1])
	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("parse metric field %q: %w", field, err)
	}

	var p Prefix
	switch symbol := field[len(field)-1:]; symbol {
	case " ":
		p = PrefixNone
	case "k":
		p = PrefixKilo
	case "M":
		p = PrefixMega
	case "c":
		p = PrefixCenti
	default:
		return 0, fmt.Errorf("unknown metric prefix %q", symbol)
	}
	return v * p.Multiplier(), nil
}

// Metric labels and units as shown on the display.
const (
	LabelClosingDistance = "CDST:"
	LabelClosingVelocity = "CVEL:"
	LabelTangentOffset   = "TOFS:"
	LabelTangentVelocity = "TVEL:"

	unitDistance = "m"
	unitVelocity = "m/s"
)

// Metrics holds the four formatted metric lines.
type Metrics struct {
	ClosingDistance string
	ClosingVelocity string
	TangentOffset   string
	TangentVelocity string
}

// Lines returns the metrics in display order.
func (m Metrics) Lines() []string {
	return []string{m.ClosingDistance, m.ClosingVelocity, m.TangentOffset, m.TangentVelocity}
}

// FormatMetrics renders the closing distance, closing velocity, tangential
// offset and tangential velocity of s. An invalid state renders every field
// as the placeholder.
func FormatMetrics(s model.RelativeState) Metrics {
	if !s.Valid {
		return PlaceholderMetrics()
	}
	tOfs := r2.Norm(r2.Vec{X: s.Position.X, Y: s.Position.Y})
	tVel := r2.Norm(r2.Vec{X: s.Velocity.X, Y: s.Velocity.Y})
	return Metrics{
		ClosingDistance: LabelClosingDistance + ToDisplay(s.ClosingDistance()) + unitDistance,
		ClosingVelocity: LabelClosingVelocity + ToDisplay(s.ClosingVelocity()) + unitVelocity,
		TangentOffset:   LabelTangentOffset + ToDisplay(tOfs) + unitDistance,
		TangentVelocity: LabelTangentVelocity + ToDisplay(tVel) + unitVelocity,
	}
}

// PlaceholderMetrics returns the metrics shown without a valid target.
func PlaceholderMetrics() Metrics {
	return Metrics{
		ClosingDistance: LabelClosingDistance + Placeholder + unitDistance,
		ClosingVelocity: LabelClosingVelocity + Placeholder + unitVelocity,
		TangentOffset:   LabelTangentOffset + Placeholder + unitDistance,
		TangentVelocity: LabelTangentVelocity + Placeholder + unitVelocity,
	}
}
