package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/rbright/parley/internal/fsm"
)

// PulseSource delivers fixed-size frames from one selected Pulse input.
type PulseSource struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream
	gate   *gate

	frames chan Frame
	stopCh chan struct{}

	mu       sync.Mutex
	splitter frameSplitter
	stopped  bool

	inflight  sync.WaitGroup
	bytes     atomic.Int64
	dropped   atomic.Int64
	closeOnce sync.Once
}

// OpenPulse creates and starts a 16kHz mono s16 record stream on the selected device.
func OpenPulse(selected Device) (*PulseSource, error) {
	client, err := newPulseClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	s := &PulseSource{
		device:   selected,
		client:   client,
		gate:     newGate(),
		frames:   make(chan Frame, 16),
		stopCh:   make(chan struct{}),
		splitter: frameSplitter{size: FrameBytes},
	}

	writer := pulse.NewWriter(writerFunc(s.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(FrameBytes),
		pulse.RecordMediaName("parley dialogue"),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	s.stream = stream
	stream.Start()
	return s, nil
}

// Device returns capture metadata for logging and diagnostics.
func (s *PulseSource) Device() Device {
	return s.device
}

// BytesCaptured reports total bytes accepted from Pulse.
func (s *PulseSource) BytesCaptured() int64 {
	return s.bytes.Load()
}

// DroppedFrames reports frames discarded because capture was paused or the
// consumer fell behind.
func (s *PulseSource) DroppedFrames() int64 {
	return s.dropped.Load()
}

// Pull blocks until one frame is available, the source is closed, or ctx ends.
func (s *PulseSource) Pull(ctx context.Context) (Frame, error) {
	for {
		changed, err := s.gate.wait(ctx)
		if err != nil {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.stopCh:
			return nil, ErrClosedSource
		case <-changed:
			// paused or closed while waiting; re-check the gate
		case frame := <-s.frames:
			return frame, nil
		}
	}
}

// Pause corks the record stream without releasing the Pulse connection.
func (s *PulseSource) Pause() {
	changed, err := s.gate.apply(fsm.EventPause)
	if err != nil || !changed || s.stream == nil {
		return
	}
	s.stream.Stop()
}

// Resume uncorks the record stream after Pause.
func (s *PulseSource) Resume() {
	changed, err := s.gate.apply(fsm.EventResume)
	if err != nil || !changed || s.stream == nil {
		return
	}
	s.stream.Start()
}

// Close halts the stream and releases the Pulse client exactly once.
func (s *PulseSource) Close() error {
	s.closeOnce.Do(func() {
		_, _ = s.gate.apply(fsm.EventClose)

		s.mu.Lock()
		s.stopped = true
		close(s.stopCh)
		s.mu.Unlock()

		if s.stream != nil {
			s.stream.Stop()
			s.stream.Close()
		}
		if s.client != nil {
			s.client.Close()
		}
		s.inflight.Wait()
	})
	return nil
}

// onPCM receives raw Pulse buffers and emits FrameBytes slices to s.frames.
// It runs on the pulse client's read loop, which must stay free to answer
// the cork request sent by Pause, so it never blocks on the consumer.
func (s *PulseSource) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, io.EOF
	}
	// Guard Add under the same mutex as s.stopped to avoid Add/Wait races.
	s.inflight.Add(1)
	frames := s.splitter.push(buffer)
	s.mu.Unlock()
	defer s.inflight.Done()

	s.bytes.Add(int64(len(buffer)))

	capturing := s.gate.State() == fsm.StateCapturing
	for _, frame := range frames {
		if !capturing {
			s.dropped.Add(1)
			continue
		}
		select {
		case <-s.stopCh:
			return 0, io.EOF
		case s.frames <- frame:
		default:
			s.dropped.Add(1)
		}
	}

	return len(buffer), nil
}

// frameSplitter accumulates arbitrary PCM writes into fixed-size frames.
type frameSplitter struct {
	size    int
	pending []byte
}

func (f *frameSplitter) push(buffer []byte) []Frame {
	f.pending = append(f.pending, buffer...)

	frames := make([]Frame, 0, len(f.pending)/f.size)
	for len(f.pending) >= f.size {
		frame := make(Frame, f.size)
		copy(frame, f.pending[:f.size])
		f.pending = f.pending[f.size:]
		frames = append(frames, frame)
	}
	return frames
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
