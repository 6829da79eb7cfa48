package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/rbright/parley/internal/fsm"
)

// PortAudioSource reads frames from the default PortAudio input device.
type PortAudioSource struct {
	gate *gate

	// mu serializes blocking device reads with pause/resume/close.
	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []int16

	closeOnce sync.Once
	closeErr  error
}

// OpenPortAudio initializes PortAudio and starts a 16kHz mono input stream.
func OpenPortAudio() (*PortAudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	buf := make([]int16, FrameSamples)
	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open portaudio input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start portaudio input stream: %w", err)
	}

	return &PortAudioSource{gate: newGate(), stream: stream, buf: buf}, nil
}

// Pull performs one blocking device read once the source is capturing.
func (s *PortAudioSource) Pull(ctx context.Context) (Frame, error) {
	for {
		if _, err := s.gate.wait(ctx); err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.gate.State() != fsm.StateCapturing {
			s.mu.Unlock()
			continue
		}
		err := s.stream.Read()
		frame := FrameFromSamples(s.buf)
		s.mu.Unlock()

		if err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			return nil, fmt.Errorf("read portaudio stream: %w", err)
		}
		return frame, nil
	}
}

// Pause stops the input stream while keeping it open.
func (s *PortAudioSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.gate.apply(fsm.EventPause)
	if err != nil || !changed {
		return
	}
	_ = s.stream.Stop()
}

// Resume restarts the input stream after Pause.
func (s *PortAudioSource) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.gate.apply(fsm.EventResume)
	if err != nil || !changed {
		return
	}
	_ = s.stream.Start()
}

// Close stops and closes the stream, then terminates PortAudio exactly once.
func (s *PortAudioSource) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		wasCapturing := s.gate.State() == fsm.StateCapturing
		_, _ = s.gate.apply(fsm.EventClose)

		if wasCapturing {
			_ = s.stream.Stop()
		}
		if err := s.stream.Close(); err != nil {
			s.closeErr = fmt.Errorf("close portaudio stream: %w", err)
		}
		if err := portaudio.Terminate(); err != nil && s.closeErr == nil {
			s.closeErr = fmt.Errorf("terminate portaudio: %w", err)
		}
	})
	return s.closeErr
}
