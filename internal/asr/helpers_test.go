package asr

import (
	"math"

	"github.com/rbright/parley/internal/audio"
)

func toneFrame(amplitude float64, hz float64) audio.Frame {
	samples := make([]int16, audio.FrameSamples)
	for i := range samples {
		v := amplitude * math.Sin(2*math.Pi*hz*float64(i)/audio.SampleRate)
		samples[i] = int16(v * math.MaxInt16)
	}
	return audio.FrameFromSamples(samples)
}

func silentFrame() audio.Frame {
	return audio.FrameFromSamples(make([]int16, audio.FrameSamples))
}
