package audio

import (
	"encoding/binary"
	"time"
)

const (
	// SampleRate is the capture rate expected by the recognizer.
	SampleRate = 16000
	// FrameSamples is the number of mono s16 samples in one Frame (250ms).
	FrameSamples = 4000
	// FrameBytes is the fixed byte length of one Frame.
	FrameBytes = FrameSamples * 2
)

// Frame is one fixed-length buffer of little-endian s16 mono PCM at SampleRate.
type Frame []byte

// Samples decodes the frame into int16 samples.
func (f Frame) Samples() []int16 {
	out := make([]int16, len(f)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(f[i*2:]))
	}
	return out
}

// FrameFromSamples encodes int16 samples as a little-endian frame.
func FrameFromSamples(samples []int16) Frame {
	out := make(Frame, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// PCM is a decoded mono sample buffer ready for playback.
type PCM struct {
	Samples    []int16
	SampleRate int
}

// Duration reports the playback length of the buffer.
func (p PCM) Duration() time.Duration {
	if p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(p.Samples)) * time.Second / time.Duration(p.SampleRate)
}
