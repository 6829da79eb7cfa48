package asr

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// minInferenceSamples pads short utterances to one second at 16kHz; whisper.cpp
// refuses input shorter than that.
const minInferenceSamples = 16000

// Transcriber decodes one complete utterance into text segments.
type Transcriber interface {
	Transcribe(samples []int16) ([]string, error)
}

// Whisper is a Transcriber backed by a local whisper.cpp model.
type Whisper struct {
	model    whisperlib.Model
	language string
	logger   *slog.Logger
}

// LoadWhisper loads the model at modelPath. The model is shared across
// inferences and must be released with Close.
func LoadWhisper(modelPath string, language string, logger *slog.Logger) (*Whisper, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("whisper model path is empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %q: %w", modelPath, err)
	}
	if strings.TrimSpace(language) == "" {
		language = "en"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Whisper{model: model, language: language, logger: logger}, nil
}

// Transcribe runs inference on a fresh context and returns non-empty segments.
func (w *Whisper) Transcribe(samples []int16) ([]string, error) {
	wctx, err := w.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}
	if err := wctx.SetLanguage(w.language); err != nil {
		w.logger.Warn("whisper language rejected, using model default", "language", w.language, "error", err.Error())
	}

	if err := wctx.Process(toFloat32(samples), nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper inference: %w", err)
	}

	var segments []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read whisper segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			segments = append(segments, text)
		}
	}
	return segments, nil
}

// Close releases the model.
func (w *Whisper) Close() error {
	if w == nil || w.model == nil {
		return nil
	}
	return w.model.Close()
}

// toFloat32 converts PCM to whisper's float range, zero-padding short input.
func toFloat32(samples []int16) []float32 {
	n := len(samples)
	if n < minInferenceSamples {
		n = minInferenceSamples
	}
	out := make([]float32, n)
	for i, s := range samples {
		out[i] = float32(s) / math.MaxInt16
	}
	return out
}
