// Package recognition turns a frame source into a pull-based utterance stream.
package recognition

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/rbright/parley/internal/audio"
)

// ErrStreamClosed is returned by Next once the stream has stopped.
var ErrStreamClosed = errors.New("recognition stream is closed")

// Feeder consumes one frame and optionally yields a finalized utterance.
type Feeder interface {
	Feed(frame audio.Frame) (string, bool, error)
}

// Stream yields normalized utterances one at a time. It is not restartable.
type Stream struct {
	source audio.Source
	feeder Feeder
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	pullMu    sync.Mutex
	stateMu   sync.Mutex
	stopped   bool
	closeOnce sync.Once
	closeErr  error

	frames     int
	utterances int
}

// New builds a stream over source and feeder.
func New(source audio.Source, feeder Feeder, logger *slog.Logger) *Stream {
	ctx, cancel := context.WithCancel(context.Background())
	return &Stream{
		source: source,
		feeder: feeder,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Next blocks until the recognizer finalizes an utterance, ctx is cancelled,
// or the stream stops. Recognizer errors are logged and skipped.
func (s *Stream) Next(ctx context.Context) (string, error) {
	s.pullMu.Lock()
	defer s.pullMu.Unlock()

	for {
		if s.isStopped() {
			return "", ErrStreamClosed
		}

		frame, err := s.pull(ctx)
		if err != nil {
			if errors.Is(err, audio.ErrClosedSource) || s.isStopped() {
				s.stop()
				return "", ErrStreamClosed
			}
			return "", err
		}
		s.frames++

		utterance, ok, err := s.feeder.Feed(frame)
		if err != nil {
			s.logWarn("recognition step failed", "error", err.Error())
			continue
		}
		if !ok {
			continue
		}
		if s.isStopped() {
			s.stop()
			return "", ErrStreamClosed
		}
		s.utterances++
		return utterance, nil
	}
}

// Stop requests cancellation, waits for any in-flight pull to finish, and
// closes the source exactly once. It is safe to call repeatedly.
func (s *Stream) Stop() error {
	s.stateMu.Lock()
	s.stopped = true
	s.stateMu.Unlock()
	s.cancel()

	s.pullMu.Lock()
	defer s.pullMu.Unlock()
	return s.stop()
}

// Stats reports frames pulled and utterances yielded so far.
func (s *Stream) Stats() (frames int, utterances int) {
	s.pullMu.Lock()
	defer s.pullMu.Unlock()
	return s.frames, s.utterances
}

func (s *Stream) pull(ctx context.Context) (audio.Frame, error) {
	pullCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()
	return s.source.Pull(pullCtx)
}

func (s *Stream) stop() error {
	s.stateMu.Lock()
	s.stopped = true
	s.stateMu.Unlock()
	s.cancel()

	s.closeOnce.Do(func() {
		s.closeErr = s.source.Close()
		if s.closeErr != nil {
			s.logWarn("close audio source failed", "error", s.closeErr.Error())
		}
	})
	return s.closeErr
}

func (s *Stream) isStopped() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.stopped
}

func (s *Stream) logWarn(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, args...)
}
