package display

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

func TestScaleTierSelection(t *testing.T) {
	tests := []struct {
		value float64
		want  Prefix
	}{
		{value: 1234.5, want: PrefixKilo},
		{value: 1.2345, want: PrefixNone},
		{value: 0.012345, want: PrefixCenti},
		{value: 0, want: PrefixCenti},
		{value: -999, want: PrefixNone},
		{value: -2500, want: PrefixKilo},
		{value: 7.5e6, want: PrefixMega},
		{value: 4e10, want: PrefixMega},
	}
	for _, tt := range tests {
		if _, got := Scale(tt.value); got != tt.want {
			t.Errorf("Scale(%v) prefix = %v, want %v", tt.value, got.Symbol(), tt.want.Symbol())
		}
	}
}

func TestToDisplay(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: 1234.5, want: "    1.2 k"},
		{value: 1.2345, want: "    1.2  "},
		{value: 0.012345, want: "    1.2 c"},
		{value: -3.26, want: "   -3.3  "},
		{value: 5.385, want: "    5.4  "},
		{value: math.NaN(), want: Placeholder},
		{value: 1.5e11, want: "99999.9 M"},
		{value: 2e13, want: "99999.9 M"},
		{value: -2e13, want: "-9999.9 M"},
		{value: -0.0004, want: "    0.0 c"},
	}
	for _, tt := range tests {
		got := ToDisplay(tt.value)
		if got != tt.want {
			t.Errorf("ToDisplay(%v) = %q, want %q", tt.value, got, tt.want)
		}
		if len(got) != FieldWidth {
			t.Errorf("ToDisplay(%v) width = %d, want %d", tt.value, len(got), FieldWidth)
		}
	}
	if len(Placeholder) != FieldWidth {
		t.Errorf("Placeholder width = %d, want %d", len(Placeholder), FieldWidth)
	}
}

func TestToDisplayInverseScaling(t *testing.T) {
	for _, v := range []float64{0.012345, 0.5, 1.2345, 87.21, 1234.5, 45678, 2.5e6, -12.34, -0.07} {
		field := ToDisplay(v)
		got, err := ParseDisplay(field)
		if err != nil {
			t.Fatalf("ParseDisplay(%q): %v", field, err)
		}
		_, p := Scale(v)
		if limit := 0.05*p.Multiplier() + 1e-12; math.Abs(got-v) > limit {
			t.Errorf("ParseDisplay(ToDisplay(%v)) = %v, want within %v", v, got, limit)
		}
	}

	if _, err := ParseDisplay(Placeholder); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("ParseDisplay(Placeholder) error = %v, want ErrUnavailable", err)
	}
	if _, err := ParseDisplay("    1.2 x"); err == nil {
		t.Fatalf("ParseDisplay with unknown prefix returned nil error")
	}
}

func TestFormatMetrics(t *testing.T) {
	s := model.RelativeState{
		Position: r3.Vec{X: 5, Y: -2, Z: 3},
		Velocity: r3.Vec{X: 0.3, Y: 0.4, Z: 0.25},
		Valid:    true,
	}
	got := FormatMetrics(s)
	want := Metrics{
		ClosingDistance: "CDST:    3.0  m",
		ClosingVelocity: "CVEL:   25.0 cm/s",
		TangentOffset:   "TOFS:    5.4  m",
		TangentVelocity: "TVEL:   50.0 cm/s",
	}
	if got != want {
		t.Fatalf("FormatMetrics = %+v, want %+v", got, want)
	}
}

func TestFormatMetricsInvalid(t *testing.T) {
	got := FormatMetrics(model.RelativeState{Position: r3.Vec{X: math.NaN()}})
	for _, line := range got.Lines() {
		if !strings.Contains(line, Placeholder) {
			t.Errorf("metric %q does not use the placeholder", line)
		}
		if strings.Contains(line, "NaN") {
			t.Errorf("metric %q contains NaN", line)
		}
	}
	if got.ClosingDistance != "CDST:    N/A  m" {
		t.Errorf("ClosingDistance = %q", got.ClosingDistance)
	}
}
