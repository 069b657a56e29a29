package hud

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/signalsfoundry/docking-alignment-display/display"
)

// TextSink renders a compact textual HUD, one block per frame.
type TextSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextSink writes frames to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Render writes frame. Disabled frames are skipped.
func (s *TextSink) Render(_ context.Context, frame display.Frame) error {
	if !frame.Enabled {
		return nil
	}
	text := FormatFrame(frame)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, text)
	return err
}

// FormatFrame renders frame as text: the metric lines followed by one line
// per visible indicator, or a NO TARGET banner.
func FormatFrame(frame display.Frame) string {
	var b strings.Builder
	b.WriteString(strings.Join(frame.Metrics.Lines(), " | "))
	b.WriteByte('\n')
	if frame.NoTarget {
		b.WriteString("  NO TARGET\n")
		return b.String()
	}
	writeIndicator(&b, "tangent", frame.TangentCrosshair, false)
	writeIndicator(&b, "angle", frame.AngleCrosshair, false)
	writeIndicator(&b, "roll", frame.RollMarker, false)
	writeIndicator(&b, "tvel", frame.VelocityArrow, true)
	return b.String()
}

func writeIndicator(b *strings.Builder, name string, ind display.Indicator, arrow bool) {
	if !ind.Visible {
		return
	}
	fmt.Fprintf(b, "  %-7s (%+8.1f, %+8.1f)", name, ind.Position.X, ind.Position.Y)
	if arrow {
		fmt.Fprintf(b, " rot %+6.3f len %6.1f", ind.Rotation, ind.Length)
	}
	if ind.Color != display.ColorNone {
		fmt.Fprintf(b, " %s", ind.Color)
	}
	b.WriteByte('\n')
}
