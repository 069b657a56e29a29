package recorder

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/model"
)

func testEntries() []Entry {
	start := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	mapper := display.NewMapper(display.DefaultConfig())
	vp := display.Viewport{Width: 800, Height: 600}

	valid := model.RelativeState{
		Position:    r3.Vec{X: 5, Y: -2, Z: 3},
		Velocity:    r3.Vec{X: 0.1, Y: 0, Z: 0.2},
		Orientation: r3.Vec{Z: -1},
		Roll:        0.1,
		Valid:       true,
	}
	invalid := model.RelativeState{Reason: model.ReasonNotDockable}
	return []Entry{
		{Time: start, State: valid, Frame: mapper.Map(valid, vp)},
		{Time: start.Add(time.Second), State: invalid, Frame: mapper.Map(invalid, vp)},
	}
}

func TestRecordAndReplay(t *testing.T) {
	var buf bytes.Buffer
	header := Header{
		SessionID: uuid.NewString(),
		Started:   time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		Display:   display.DefaultConfig(),
	}
	rec, err := NewWriter(&buf, header)
	require.NoError(t, err)

	want := testEntries()
	for _, e := range want {
		require.NoError(t, rec.Record(e.Time, e.State, e.Frame))
	}
	require.Equal(t, len(want), rec.Entries())
	require.NoError(t, rec.Close())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	got := r.Header()
	require.Equal(t, header.SessionID, got.SessionID)
	require.True(t, header.Started.Equal(got.Started))
	require.Equal(t, header.Display, got.Display)

	for i, w := range want {
		e, err := r.Next()
		require.NoError(t, err, "entry %d", i)
		require.True(t, w.Time.Equal(e.Time), "entry %d time", i)
		require.Equal(t, w.State, e.State, "entry %d state", i)
		require.Equal(t, w.Frame, e.Frame, "entry %d frame", i)
	}
	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestRecordAfterClose(t *testing.T) {
	rec, err := NewWriter(io.Discard, Header{SessionID: uuid.NewString()})
	require.NoError(t, err)
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close(), "second Close")

	err = rec.Record(time.Now(), model.RelativeState{}, display.Frame{})
	require.True(t, errors.Is(err, ErrRecorderClosed), "got %v", err)
}

func TestCreateAndOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approach.dad")
	rec, err := Create(path, Header{SessionID: "session-1"})
	require.NoError(t, err)

	frame := display.Frame{
		Enabled:          true,
		TangentCrosshair: display.Indicator{Visible: true, Position: r2.Vec{X: 12.5, Y: -3}, Color: display.ColorGreen},
		Metrics:          display.PlaceholderMetrics(),
	}
	require.NoError(t, rec.Record(time.Unix(10, 0), model.RelativeState{Valid: true}, frame))
	require.NoError(t, rec.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, "session-1", r.Header().SessionID)

	e, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, frame, e.Frame)
	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("not a recording")))
	require.Error(t, err)
}
