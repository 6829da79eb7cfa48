// Package speech synthesizes and plays spoken responses without letting them
// leak back into capture.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rbright/parley/internal/audio"
)

// Pauser is the capture side of echo avoidance.
type Pauser interface {
	Pause()
	Resume()
}

// Synthesizer renders text to PCM with a voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, voice Voice, text string) (audio.PCM, error)
}

// Player plays PCM to completion.
type Player interface {
	Play(ctx context.Context, pcm audio.PCM) error
}

// Output speaks text. Capture is paused for the whole synthesis and playback
// window and resumed on every exit path.
type Output struct {
	capture     Pauser
	synthesizer Synthesizer
	player      Player
	voice       Voice
	logger      *slog.Logger

	mu sync.Mutex
}

// NewOutput wires capture, synthesis, and playback.
func NewOutput(capture Pauser, synthesizer Synthesizer, player Player, voice Voice, logger *slog.Logger) *Output {
	return &Output{
		capture:     capture,
		synthesizer: synthesizer,
		player:      player,
		voice:       voice,
		logger:      logger,
	}
}

// Voice returns the selected voice.
func (o *Output) Voice() Voice {
	return o.voice
}

// Say synthesizes text and blocks until playback finishes.
func (o *Output) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.capture.Pause()
	defer o.capture.Resume()

	pcm, err := o.synthesizer.Synthesize(ctx, o.voice, text)
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	if err := o.player.Play(ctx, pcm); err != nil {
		return fmt.Errorf("play speech: %w", err)
	}

	if o.logger != nil {
		o.logger.Debug("spoke response", "voice", o.voice.ID, "chars", len(text), "audio_ms", pcm.Duration().Milliseconds())
	}
	return nil
}

// Chime plays a prerendered cue under the same capture guard as Say.
func (o *Output) Chime(ctx context.Context, pcm audio.PCM) error {
	if len(pcm.Samples) == 0 {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.capture.Pause()
	defer o.capture.Resume()

	if err := o.player.Play(ctx, pcm); err != nil {
		return fmt.Errorf("play cue: %w", err)
	}
	return nil
}
