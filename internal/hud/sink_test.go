package hud

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/signalsfoundry/docking-alignment-display/core"
	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/model"
)

func TestTextSinkValidFrame(t *testing.T) {
	s := validSample()
	state := core.Solve(s.Own, s.Target, s.DomainsMatch)
	frame := display.NewMapper(display.DefaultConfig()).Map(state, s.Viewport)

	var buf bytes.Buffer
	if err := NewTextSink(&buf).Render(context.Background(), frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CDST:", "CVEL:", "TOFS:", "TVEL:", "tangent", "angle", "roll", "tvel", "green"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "NO TARGET") {
		t.Fatalf("valid frame rendered NO TARGET:\n%s", out)
	}
}

func TestTextSinkNoTarget(t *testing.T) {
	frame := display.NewMapper(display.DefaultConfig()).Map(model.RelativeState{Reason: model.ReasonNoTarget}, viewport)

	out := FormatFrame(frame)
	if !strings.Contains(out, "NO TARGET") || !strings.Contains(out, display.Placeholder) {
		t.Fatalf("output = %q", out)
	}
	if strings.Contains(out, "tangent") {
		t.Fatalf("hidden indicators rendered:\n%s", out)
	}
}

func TestTextSinkSkipsDisabledFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextSink(&buf).Render(context.Background(), display.Frame{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("disabled frame wrote %q", buf.String())
	}
}
