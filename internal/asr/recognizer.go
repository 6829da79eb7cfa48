// Package asr turns captured audio frames into finalized utterances.
package asr

import (
	"log/slog"

	"github.com/rbright/parley/internal/audio"
	"github.com/rbright/parley/internal/transcript"
)

// Step is the engine output for one accepted frame.
type Step struct {
	// Endpoint reports that the engine closed an utterance on this frame.
	Endpoint bool
	// Text is the decoded utterance text, meaningful only when Endpoint is set.
	Text string
}

// Engine is the incremental speech recognizer boundary.
type Engine interface {
	Accept(frame audio.Frame) (Step, error)
}

// Recognizer filters engine steps down to finalized, non-empty utterances.
type Recognizer struct {
	engine Engine
	logger *slog.Logger
}

// NewRecognizer wraps an engine.
func NewRecognizer(engine Engine, logger *slog.Logger) *Recognizer {
	return &Recognizer{engine: engine, logger: logger}
}

// Feed passes one frame to the engine. It reports an utterance only when the
// engine signalled an endpoint and the normalized text is non-empty; silence,
// partial speech, and noise that decodes to nothing all report no utterance.
func (r *Recognizer) Feed(frame audio.Frame) (string, bool, error) {
	step, err := r.engine.Accept(frame)
	if err != nil {
		return "", false, err
	}
	if !step.Endpoint {
		return "", false, nil
	}

	utterance := transcript.Normalize(step.Text)
	if utterance == "" {
		if r.logger != nil {
			r.logger.Debug("discarded empty utterance", "raw", step.Text)
		}
		return "", false, nil
	}
	return utterance, true, nil
}
