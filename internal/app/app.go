// Package app dispatches parley's commands and wires the dialogue runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/rbright/parley/internal/audio"
	"github.com/rbright/parley/internal/cli"
	"github.com/rbright/parley/internal/config"
	"github.com/rbright/parley/internal/dialogue"
	"github.com/rbright/parley/internal/doctor"
	"github.com/rbright/parley/internal/indicator"
	"github.com/rbright/parley/internal/ipc"
	"github.com/rbright/parley/internal/logging"
	"github.com/rbright/parley/internal/lookup"
	"github.com/rbright/parley/internal/output"
	"github.com/rbright/parley/internal/pipeline"
	"github.com/rbright/parley/internal/session"
	"github.com/rbright/parley/internal/speech"
	"github.com/rbright/parley/internal/version"
)

const (
	binaryName    = "parley"
	assistantName = "Parley"
	forwardWait   = 220 * time.Millisecond
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfg, err := config.Apply(config.Default(), parsed.Overrides)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 2
	}
	warnings, err := config.Validate(cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 2
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"model", cfg.ModelPath,
		"backend", cfg.Audio.Backend,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandListen:
		return r.commandListen(ctx, cfg, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.commandStop(ctx)
	case cli.CommandVoices:
		return r.commandVoices(ctx, cfg)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfg)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandListen(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath := ipc.SocketPath()
	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	// Closing a unix listener unlinks its socket file.
	defer func() { _ = listener.Close() }()

	synth := speech.NewEspeak(cfg.Voice.Binary)
	synth.WordsPerMinute = cfg.Voice.WordsPerMinute
	voices, err := synth.Voices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: initialize speech: %v\n", err)
		return 1
	}
	voice, err := speech.SelectVoice(voices, cfg.Voice.Index)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: select voice: %v\n", err)
		return 1
	}
	if voice.Index != cfg.Voice.Index {
		logger.Warn("voice index out of range, using first voice", "requested", cfg.Voice.Index, "voice", voice.ID)
	}

	runtime, err := pipeline.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if err := runtime.Close(); err != nil {
			logger.Warn("close runtime failed", "error", err.Error())
		}
	}()

	speaker := speech.NewOutput(runtime.Source, synth, audio.PulsePlayer{MediaName: assistantName}, voice, logger)
	dict := lookup.New(cfg.Dictionary.BaseURL, time.Duration(cfg.Dictionary.TimeoutMS)*time.Millisecond)
	handler := dialogue.NewSession(&dialogue.State{}, dict)
	console := output.NewConsole(r.Stdout, assistantName, isTerminal(r.Stdout))

	var cues session.Cues
	if cfg.Cue.Enable {
		cues = session.Cues{
			Listening: indicator.ListeningCue(),
			Error:     indicator.ErrorCue(),
			Farewell:  indicator.FarewellCue(),
		}
	}

	controller := session.NewController(logger, runtime.Stream, handler, speaker, output.NewOpener(cfg.OpenCmd, logger), console, cues)

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controller)
	}()

	logger.Info("listening", "device", runtime.Device, "voice", voice.ID, "socket", socketPath)
	result := controller.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		logger.Warn("control socket failed", "error", serverErr.Error())
	}

	frames, utterances := runtime.Stream.Stats()
	logSessionResult(logger, result, frames, utterances, runtime.DumpedUtterances())
	return r.finishListen(result, console)
}

// finishListen reports how a session ended and maps it to an exit code.
func (r Runner) finishListen(result session.Result, console session.Console) int {
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	if result.Interrupted || result.Stopped {
		console.Notice("Shutting down...")
	}
	return 0
}

func (r Runner) commandVoices(ctx context.Context, cfg config.Config) int {
	voices, err := speech.NewEspeak(cfg.Voice.Binary).Voices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	selected, _ := speech.SelectVoice(voices, cfg.Voice.Index)

	for _, v := range voices {
		mark := " "
		if v.Index == selected.Index {
			mark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s %3d  %-12s %s\n", mark, v.Index, v.Language, v.Name)
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			yesNo(device.Available),
			yesNo(device.Muted),
		)
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	resp, err := forward(ctx, ipc.SocketPath(), ipc.CommandStatus)
	if errors.Is(err, ipc.ErrNotRunning) {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintf(r.Stdout, "%s (%s)\n", resp.State, resp.Message)
		return 0
	}
	fmt.Fprintln(r.Stdout, resp.State)
	return 0
}

func (r Runner) commandStop(ctx context.Context) int {
	resp, err := forward(ctx, ipc.SocketPath(), ipc.CommandStop)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// forward sends one control command; a rejected response becomes an error.
func forward(ctx context.Context, socketPath string, command string) (ipc.Response, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, forwardWait)
	if err != nil {
		if errors.Is(err, ipc.ErrNotRunning) {
			return ipc.Response{}, err
		}
		return ipc.Response{}, fmt.Errorf("forward command %q: %w", command, err)
	}
	if !resp.OK {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func logSessionResult(logger *slog.Logger, result session.Result, frames, utterances, dumps int) {
	if logger == nil {
		return
	}
	fields := []any{
		"closed", result.Closed,
		"interrupted", result.Interrupted,
		"stopped", result.Stopped,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"frames", frames,
		"utterances", utterances,
		"heard", result.Heard,
		"responses", result.Responses,
		"lookup_failures", result.LookupFailures,
		"speech_failures", result.SpeechFailures,
		"links_opened", result.LinksOpened,
		"debug_dumps", dumps,
	}

	if result.Err != nil {
		logger.Error("session failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("session complete", fields...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
