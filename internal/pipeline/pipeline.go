// Package pipeline wires capture, recognition, and debug artifacts into one runtime.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/rbright/parley/internal/asr"
	"github.com/rbright/parley/internal/audio"
	"github.com/rbright/parley/internal/config"
	"github.com/rbright/parley/internal/recognition"
)

// Runtime owns the capture source, the recognition stream, and the model.
type Runtime struct {
	Source audio.Source
	Stream *recognition.Stream
	// Device describes the capture input for logs.
	Device string

	model  io.Closer
	dumper *utteranceDumper
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// deps are the seams Open uses to reach hardware and the model.
type deps struct {
	openSource      func(ctx context.Context, cfg config.Config, logger *slog.Logger) (audio.Source, string, error)
	loadTranscriber func(cfg config.Config, logger *slog.Logger) (asr.Transcriber, io.Closer, error)
	fs              afero.Fs
}

func defaultDeps() deps {
	return deps{
		openSource:      openSource,
		loadTranscriber: loadWhisper,
		fs:              afero.NewOsFs(),
	}
}

// Open selects the capture backend, loads the recognizer model, and builds
// the utterance stream.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	return open(ctx, cfg, logger, defaultDeps())
}

func open(ctx context.Context, cfg config.Config, logger *slog.Logger, d deps) (*Runtime, error) {
	transcriber, model, err := d.loadTranscriber(cfg, logger)
	if err != nil {
		return nil, err
	}

	source, device, err := d.openSource(ctx, cfg, logger)
	if err != nil {
		if model != nil {
			_ = model.Close()
		}
		return nil, err
	}

	rt := &Runtime{Source: source, Device: device, model: model, logger: logger}

	var hook asr.UtteranceHook
	if cfg.Debug.EnableAudioDump {
		dir, derr := debugDir()
		if derr != nil {
			logWarn(logger, "debug audio dump disabled", "error", derr.Error())
		} else {
			rt.dumper = newUtteranceDumper(d.fs, dir, logger)
			hook = rt.dumper.Dump
		}
	}

	engine := asr.NewSegmentingEngine(transcriber, asr.EndpointConfig{
		SampleRate:     audio.SampleRate,
		RMSThreshold:   cfg.Endpoint.RMSThreshold,
		SilenceMS:      cfg.Endpoint.SilenceMS,
		MaxUtteranceMS: cfg.Endpoint.MaxUtteranceMS,
	}, hook)
	rt.Stream = recognition.New(source, asr.NewRecognizer(engine, logger), logger)

	return rt, nil
}

// Close stops the stream (closing the source) and releases the model.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	r.closeOnce.Do(func() {
		var errs []error
		if r.Stream != nil {
			if err := r.Stream.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop recognition stream: %w", err))
			}
		}
		if r.model != nil {
			if err := r.model.Close(); err != nil {
				errs = append(errs, fmt.Errorf("release model: %w", err))
			}
		}
		r.closeErr = errors.Join(errs...)
	})
	return r.closeErr
}

// DumpedUtterances reports how many debug WAV files were written.
func (r *Runtime) DumpedUtterances() int {
	if r == nil || r.dumper == nil {
		return 0
	}
	return r.dumper.Count()
}

func openSource(ctx context.Context, cfg config.Config, logger *slog.Logger) (audio.Source, string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Audio.Backend)) {
	case config.BackendPortAudio:
		source, err := audio.OpenPortAudio()
		if err != nil {
			return nil, "", err
		}
		return source, "portaudio default input", nil
	default:
		selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
		if err != nil {
			return nil, "", err
		}
		if selection.Warning != "" {
			logWarn(logger, selection.Warning)
		}
		source, err := audio.OpenPulse(selection.Device)
		if err != nil {
			return nil, "", err
		}
		return source, describeDevice(selection.Device), nil
	}
}

func loadWhisper(cfg config.Config, logger *slog.Logger) (asr.Transcriber, io.Closer, error) {
	model, err := asr.LoadWhisper(cfg.ModelPath, cfg.Language, logger)
	if err != nil {
		return nil, nil, err
	}
	return model, model, nil
}

// describeDevice formats device metadata for logs.
func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

func logWarn(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, args...)
}
