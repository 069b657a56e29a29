// Package recorder persists display ticks to a compressed stream for later
// replay.
//
// A recording is a zstd stream of msgpack values: one Header followed by any
// number of Entry records.
package recorder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/model"
)

// ErrRecorderClosed is returned by Record after Close.
var ErrRecorderClosed = errors.New("recorder closed")

// Header describes a recording session.
type Header struct {
	SessionID string         `msgpack:"session_id"`
	Started   time.Time      `msgpack:"started"`
	Display   display.Config `msgpack:"display"`
}

// Entry is one recorded tick.
type Entry struct {
	Time  time.Time           `msgpack:"t"`
	State model.RelativeState `msgpack:"state"`
	Frame display.Frame       `msgpack:"frame"`
}

// Recorder appends entries to a recording. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	closer  io.Closer
	zw      *zstd.Encoder
	enc     *msgpack.Encoder
	entries int
	closed  bool
}

// Create opens path for writing and starts a recording there.
func Create(path string, h Header) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	r, err := newRecorder(f, f, h)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewWriter starts a recording on w. Closing the recorder flushes the
// stream but does not close w.
func NewWriter(w io.Writer, h Header) (*Recorder, error) {
	return newRecorder(w, nil, h)
}

func newRecorder(w io.Writer, closer io.Closer, h Header) (*Recorder, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	r := &Recorder{closer: closer, zw: zw, enc: msgpack.NewEncoder(zw)}
	if err := r.enc.Encode(&h); err != nil {
		zw.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return r, nil
}

// Record appends one tick.
func (r *Recorder) Record(now time.Time, state model.RelativeState, frame display.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	if err := r.enc.Encode(&Entry{Time: now, State: state, Frame: frame}); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	r.entries++
	return nil
}

// Entries returns the number of entries written so far.
func (r *Recorder) Entries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

// Close flushes the stream. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.zw.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("close recording: %w", err)
	}
	return nil
}

// Reader replays a recording.
type Reader struct {
	closer io.Closer
	zr     *zstd.Decoder
	dec    *msgpack.Decoder
	header Header
}

// Open opens the recording at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	r, err := newReader(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewReader reads a recording from src.
func NewReader(src io.Reader) (*Reader, error) {
	return newReader(src, nil)
}

func newReader(src io.Reader, closer io.Closer) (*Reader, error) {
	zr, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	r := &Reader{closer: closer, zr: zr, dec: msgpack.NewDecoder(zr)}
	if err := r.dec.Decode(&r.header); err != nil {
		zr.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	return r, nil
}

// Header returns the recording's header.
func (r *Reader) Header() Header { return r.header }

// Next returns the next entry, or io.EOF at the end of the recording.
func (r *Reader) Next() (Entry, error) {
	var e Entry
	if err := r.dec.Decode(&e); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("read entry: %w", err)
	}
	return e, nil
}

// Close releases the reader.
func (r *Reader) Close() error {
	r.zr.Close()
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
