package asr

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Decision classifies one observed frame.
type Decision int

const (
	// DecisionSilence means the frame carries no speech and no utterance is open.
	DecisionSilence Decision = iota
	// DecisionSpeech means the frame belongs to an open utterance.
	DecisionSpeech
	// DecisionEndpoint means the frame closes the open utterance.
	DecisionEndpoint
)

// EndpointConfig tunes voice activity and utterance boundary detection.
type EndpointConfig struct {
	SampleRate     int
	RMSThreshold   float64
	FluxRatio      float64
	SilenceMS      int
	MaxUtteranceMS int
}

// DefaultEndpointConfig suits 16kHz frames of a few hundred milliseconds.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		SampleRate:     16000,
		RMSThreshold:   0.02,
		FluxRatio:      1.75,
		SilenceMS:      500,
		MaxUtteranceMS: 10000,
	}
}

// Endpointer detects utterance boundaries from frame energy and spectral flux.
//
// A frame is voiced when its RMS level clears RMSThreshold, or when it clears
// half the threshold while its spectral flux jumps by FluxRatio over the
// previous frame (soft onsets). An open utterance ends after SilenceMS of
// unvoiced frames or once it reaches MaxUtteranceMS.
type Endpointer struct {
	cfg EndpointConfig

	prevSpectrum []float64
	lastFlux     float64

	inSpeech  bool
	speechMS  int
	silenceMS int
}

// NewEndpointer constructs an endpointer, filling zero fields from defaults.
func NewEndpointer(cfg EndpointConfig) *Endpointer {
	def := DefaultEndpointConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.RMSThreshold <= 0 {
		cfg.RMSThreshold = def.RMSThreshold
	}
	if cfg.FluxRatio <= 0 {
		cfg.FluxRatio = def.FluxRatio
	}
	if cfg.SilenceMS <= 0 {
		cfg.SilenceMS = def.SilenceMS
	}
	if cfg.MaxUtteranceMS <= 0 {
		cfg.MaxUtteranceMS = def.MaxUtteranceMS
	}
	return &Endpointer{cfg: cfg}
}

// Observe classifies one frame of samples.
func (e *Endpointer) Observe(samples []int16) Decision {
	if len(samples) == 0 {
		if e.inSpeech {
			return DecisionSpeech
		}
		return DecisionSilence
	}

	level := rms(samples)
	flux := e.spectralFlux(samples)
	voiced := level >= e.cfg.RMSThreshold ||
		(level >= e.cfg.RMSThreshold/2 && e.lastFlux > 0 && flux >= e.lastFlux*e.cfg.FluxRatio)
	e.lastFlux = flux

	frameMS := len(samples) * 1000 / e.cfg.SampleRate

	if !e.inSpeech {
		if !voiced {
			return DecisionSilence
		}
		e.inSpeech = true
		e.speechMS = frameMS
		e.silenceMS = 0
		if e.speechMS >= e.cfg.MaxUtteranceMS {
			e.Reset()
			return DecisionEndpoint
		}
		return DecisionSpeech
	}

	e.speechMS += frameMS
	if voiced {
		e.silenceMS = 0
	} else {
		e.silenceMS += frameMS
	}

	if e.silenceMS >= e.cfg.SilenceMS || e.speechMS >= e.cfg.MaxUtteranceMS {
		e.Reset()
		return DecisionEndpoint
	}
	return DecisionSpeech
}

// InSpeech reports whether an utterance is currently open.
func (e *Endpointer) InSpeech() bool {
	return e.inSpeech
}

// Reset closes any open utterance.
func (e *Endpointer) Reset() {
	e.inSpeech = false
	e.speechMS = 0
	e.silenceMS = 0
}

// spectralFlux returns the mean positive magnitude change against the previous frame.
func (e *Endpointer) spectralFlux(samples []int16) float64 {
	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s) / math.MaxInt16
	}

	coeffs := fft.FFTReal(input)
	bins := len(coeffs)/2 + 1
	spectrum := make([]float64, bins)
	for i := 0; i < bins; i++ {
		spectrum[i] = cmplx.Abs(coeffs[i])
	}

	prev := e.prevSpectrum
	e.prevSpectrum = spectrum
	if len(prev) != bins {
		return 0
	}

	var flux float64
	for i := range spectrum {
		if diff := spectrum[i] - prev[i]; diff > 0 {
			flux += diff
		}
	}
	return flux / float64(bins)
}

// rms returns the normalized root-mean-square level of samples in [0, 1].
func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
