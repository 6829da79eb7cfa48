package asr

import (
	"github.com/rbright/parley/internal/audio"
	"github.com/rbright/parley/internal/transcript"
)

// UtteranceHook observes the PCM of each closed utterance before decoding.
type UtteranceHook func(pcm audio.PCM)

// SegmentingEngine buffers voiced frames between endpoints and decodes each
// closed utterance with a Transcriber.
type SegmentingEngine struct {
	endpointer  *Endpointer
	transcriber Transcriber
	onUtterance UtteranceHook

	preroll []int16
	buffer  []int16
}

// NewSegmentingEngine constructs an engine over transcriber.
func NewSegmentingEngine(transcriber Transcriber, cfg EndpointConfig, hook UtteranceHook) *SegmentingEngine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = audio.SampleRate
	}
	return &SegmentingEngine{
		endpointer:  NewEndpointer(cfg),
		transcriber: transcriber,
		onUtterance: hook,
	}
}

// Accept consumes one frame. Text is produced only on endpoint frames.
func (e *SegmentingEngine) Accept(frame audio.Frame) (Step, error) {
	samples := frame.Samples()

	switch e.endpointer.Observe(samples) {
	case DecisionSilence:
		// Keep the last unvoiced frame so soft word onsets are not clipped.
		e.preroll = append(e.preroll[:0], samples...)
		return Step{}, nil
	case DecisionSpeech:
		e.open()
		e.buffer = append(e.buffer, samples...)
		return Step{}, nil
	default:
		e.open()
		e.buffer = append(e.buffer, samples...)
	}

	pcm := e.buffer
	e.buffer = nil
	e.preroll = e.preroll[:0]

	if e.onUtterance != nil {
		e.onUtterance(audio.PCM{Samples: pcm, SampleRate: audio.SampleRate})
	}

	segments, err := e.transcriber.Transcribe(pcm)
	if err != nil {
		return Step{Endpoint: true}, err
	}
	return Step{Endpoint: true, Text: transcript.Assemble(segments)}, nil
}

func (e *SegmentingEngine) open() {
	if e.buffer != nil || len(e.preroll) == 0 {
		return
	}
	e.buffer = append(make([]int16, 0, len(e.preroll)*4), e.preroll...)
	e.preroll = e.preroll[:0]
}
