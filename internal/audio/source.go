// Package audio handles device discovery, PCM frame capture, and playback.
package audio

import (
	"context"
	"errors"
	"sync"

	"github.com/rbright/parley/internal/fsm"
)

// ErrClosedSource is returned by Pull once the source has been closed.
var ErrClosedSource = errors.New("audio source is closed")

// Source produces fixed-size PCM frames on demand.
//
// Pull blocks until one frame is available and blocks while the source is paused.
// Pause stops frame delivery without releasing the device; Resume re-arms it.
// Close releases the device and is safe to call more than once.
type Source interface {
	Pull(ctx context.Context) (Frame, error)
	Pause()
	Resume()
	Close() error
}

// gate tracks the capture lifecycle and wakes blocked pullers on every change.
type gate struct {
	mu      sync.Mutex
	state   fsm.State
	changed chan struct{}
}

func newGate() *gate {
	return &gate{state: fsm.StateCapturing, changed: make(chan struct{})}
}

// State returns the current lifecycle state.
func (g *gate) State() fsm.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// apply runs one lifecycle event and reports whether the state changed.
func (g *gate) apply(event fsm.Event) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next, err := fsm.Transition(g.state, event)
	if err != nil {
		return false, err
	}
	if next == g.state {
		return false, nil
	}
	g.state = next
	close(g.changed)
	g.changed = make(chan struct{})
	return true, nil
}

// wait blocks until the gate is capturing and returns a channel closed on the next change.
func (g *gate) wait(ctx context.Context) (<-chan struct{}, error) {
	for {
		g.mu.Lock()
		state := g.state
		changed := g.changed
		g.mu.Unlock()

		switch state {
		case fsm.StateCapturing:
			return changed, nil
		case fsm.StateClosed:
			return nil, ErrClosedSource
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-changed:
		}
	}
}
