package speech

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/parley/internal/audio"
)

type recordingCapture struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingCapture) Pause()  { r.record("pause") }
func (r *recordingCapture) Resume() { r.record("resume") }

func (r *recordingCapture) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingCapture) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeSynth struct {
	capture *recordingCapture
	err     error
	texts   []string
}

func (f *fakeSynth) Synthesize(_ context.Context, _ Voice, text string) (audio.PCM, error) {
	f.capture.record("synthesize")
	f.texts = append(f.texts, text)
	if f.err != nil {
		return audio.PCM{}, f.err
	}
	return audio.PCM{Samples: make([]int16, 160), SampleRate: 16000}, nil
}

type fakePlayer struct {
	capture *recordingCapture
	err     error
}

func (f *fakePlayer) Play(context.Context, audio.PCM) error {
	f.capture.record("play")
	return f.err
}

func TestSayPausesAroundPlayback(t *testing.T) {
	capture := &recordingCapture{}
	synth := &fakeSynth{capture: capture}
	out := NewOutput(capture, synth, &fakePlayer{capture: capture}, Voice{ID: "en"}, nil)

	require.NoError(t, out.Say(context.Background(), "  hello there "))
	require.Equal(t, []string{"pause", "synthesize", "play", "resume"}, capture.Events())
	require.Equal(t, []string{"hello there"}, synth.texts)
}

func TestSayResumesOnSynthesisFailure(t *testing.T) {
	capture := &recordingCapture{}
	out := NewOutput(capture, &fakeSynth{capture: capture, err: errors.New("no engine")}, &fakePlayer{capture: capture}, Voice{}, nil)

	err := out.Say(context.Background(), "hello")
	require.ErrorContains(t, err, "synthesize speech")
	require.Equal(t, []string{"pause", "synthesize", "resume"}, capture.Events())
}

func TestSayResumesOnPlaybackFailure(t *testing.T) {
	capture := &recordingCapture{}
	out := NewOutput(capture, &fakeSynth{capture: capture}, &fakePlayer{capture: capture, err: errors.New("no sink")}, Voice{}, nil)

	err := out.Say(context.Background(), "hello")
	require.ErrorContains(t, err, "play speech")
	require.Equal(t, []string{"pause", "synthesize", "play", "resume"}, capture.Events())
}

func TestSaySkipsBlankText(t *testing.T) {
	capture := &recordingCapture{}
	out := NewOutput(capture, &fakeSynth{capture: capture}, &fakePlayer{capture: capture}, Voice{}, nil)

	require.NoError(t, out.Say(context.Background(), "   "))
	require.Empty(t, capture.Events())
}

func TestSayCallsDoNotOverlap(t *testing.T) {
	capture := &recordingCapture{}
	out := NewOutput(capture, &fakeSynth{capture: capture}, &fakePlayer{capture: capture}, Voice{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = out.Say(context.Background(), "hi")
		}()
	}
	wg.Wait()

	events := capture.Events()
	require.Len(t, events, 32)
	for i := 0; i < len(events); i += 4 {
		require.Equal(t, []string{"pause", "synthesize", "play", "resume"}, events[i:i+4])
	}
}

func TestChimePausesAroundPlayback(t *testing.T) {
	capture := &recordingCapture{}
	out := NewOutput(capture, &fakeSynth{capture: capture}, &fakePlayer{capture: capture, err: errors.New("boom")}, Voice{}, nil)

	require.Error(t, out.Chime(context.Background(), audio.PCM{Samples: []int16{1, 2}, SampleRate: 16000}))
	require.Equal(t, []string{"pause", "play", "resume"}, capture.Events())

	require.NoError(t, out.Chime(context.Background(), audio.PCM{}))
	require.Len(t, capture.Events(), 3)
}
