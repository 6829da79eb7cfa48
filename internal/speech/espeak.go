package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/rbright/parley/internal/audio"
)

// Espeak drives the espeak-ng command line synthesizer.
type Espeak struct {
	Binary string
	// WordsPerMinute is passed as -s when positive.
	WordsPerMinute int
	Timeout        time.Duration
}

// NewEspeak returns an engine using binary, defaulting to espeak-ng.
func NewEspeak(binary string) *Espeak {
	if strings.TrimSpace(binary) == "" {
		binary = "espeak-ng"
	}
	return &Espeak{Binary: binary, Timeout: 30 * time.Second}
}

// Voices lists installed voices in synthesizer order.
func (e *Espeak) Voices(ctx context.Context) ([]Voice, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	out, err := exec.CommandContext(runCtx, e.Binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("list voices with %s: %w", e.Binary, err)
	}

	voices := parseVoiceList(string(out))
	if len(voices) == 0 {
		return nil, ErrNoVoices
	}
	return voices, nil
}

// Synthesize renders text to a temporary WAV file and decodes it.
func (e *Espeak) Synthesize(ctx context.Context, voice Voice, text string) (audio.PCM, error) {
	tmp, err := os.CreateTemp("", "parley-tts-*.wav")
	if err != nil {
		return audio.PCM{}, fmt.Errorf("create speech file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	args := []string{"-w", path, "--stdin"}
	if voice.ID != "" {
		args = append([]string{"-v", voice.ID}, args...)
	}
	if e.WordsPerMinute > 0 {
		args = append([]string{"-s", fmt.Sprint(e.WordsPerMinute)}, args...)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.Binary, args...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return audio.PCM{}, fmt.Errorf("run %s: %w (%s)", e.Binary, err, strings.TrimSpace(string(out)))
	}

	return decodeWAVFile(path)
}

func (e *Espeak) timeout() time.Duration {
	if e.Timeout <= 0 {
		return 30 * time.Second
	}
	return e.Timeout
}

func decodeWAVFile(path string) (audio.PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.PCM{}, fmt.Errorf("open speech file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return audio.PCM{}, errors.New("synthesizer produced an invalid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.PCM{}, fmt.Errorf("decode speech wav: %w", err)
	}
	return monoPCM(buf, int(dec.BitDepth)), nil
}

// monoPCM downmixes buf to 16-bit mono.
func monoPCM(buf *goaudio.IntBuffer, bitDepth int) audio.PCM {
	if buf == nil || buf.Format == nil {
		return audio.PCM{}
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	shift := bitDepth - 16
	frames := len(buf.Data) / channels
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c]
		}
		v := sum / channels
		switch {
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		samples[i] = int16(v)
	}
	return audio.PCM{Samples: samples, SampleRate: buf.Format.SampleRate}
}
