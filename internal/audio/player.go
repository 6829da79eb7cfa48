package audio

import (
	"context"
	"fmt"

	"github.com/jfreymuth/pulse"
)

// PulsePlayer plays PCM buffers through the default Pulse sink.
type PulsePlayer struct {
	MediaName string
}

// Play blocks until the whole buffer has drained. ctx is only checked before playback starts.
func (p PulsePlayer) Play(ctx context.Context, pcm PCM) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(pcm.Samples) == 0 {
		return nil
	}
	if pcm.SampleRate <= 0 {
		return fmt.Errorf("invalid playback sample rate %d", pcm.SampleRate)
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName(clientName),
		pulse.ClientApplicationIconName("audio-speakers"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	samples := pcm.Samples
	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}

		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	mediaName := p.MediaName
	if mediaName == "" {
		mediaName = "parley speech"
	}

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(pcm.SampleRate),
		pulse.PlaybackLatency(0.05),
		pulse.PlaybackMediaName(mediaName),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play pulse stream: %w", err)
	}
	return nil
}
