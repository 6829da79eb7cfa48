// Package doctor runs readiness diagnostics for the model, speech tools,
// audio capture and the dictionary endpoint.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/parley/internal/audio"
	"github.com/rbright/parley/internal/config"
	"github.com/rbright/parley/internal/lookup"
)

// probeWord is looked up to prove the dictionary endpoint answers.
const probeWord = "hello"

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

type deps struct {
	selectDevice func(ctx context.Context, input, fallback string) (audio.Selection, error)
}

// Run executes every check concurrently. Check order in the report is fixed.
func Run(ctx context.Context, cfg config.Config) Report {
	return run(ctx, cfg, deps{selectDevice: audio.SelectDevice})
}

func run(ctx context.Context, cfg config.Config, d deps) Report {
	checks := []func(context.Context) Check{
		func(context.Context) Check { return checkModel(cfg.ModelPath) },
		func(context.Context) Check { return checkBinary(cfg.Voice.Binary, "speech synthesizer") },
		func(context.Context) Check { return checkCommand(cfg.OpenCmd.Argv, "open_cmd") },
		func(ctx context.Context) Check { return checkAudio(ctx, cfg, d) },
		func(ctx context.Context) Check { return checkDictionary(ctx, cfg.Dictionary) },
	}

	results := make([]Check, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check(gctx)
			return nil
		})
	}
	_ = g.Wait()

	return Report{Checks: results}
}

func checkModel(path string) Check {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Check{Name: "model", Pass: false, Message: fmt.Sprintf("model file not found: %s", path)}
	case err != nil:
		return Check{Name: "model", Pass: false, Message: err.Error()}
	case info.IsDir():
		return Check{Name: "model", Pass: false, Message: fmt.Sprintf("model path is a directory: %s", path)}
	case info.Size() == 0:
		return Check{Name: "model", Pass: false, Message: fmt.Sprintf("model file is empty: %s", path)}
	}
	return Check{Name: "model", Pass: true, Message: fmt.Sprintf("%s (%d MiB)", path, info.Size()>>20)}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudio runs live device selection to surface selection/fallback issues.
func checkAudio(ctx context.Context, cfg config.Config, d deps) Check {
	if cfg.Audio.Backend == config.BackendPortAudio {
		return Check{Name: "audio.device", Pass: true, Message: "portaudio default input (not probed)"}
	}
	selection, err := d.selectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkDictionary looks up a known word against the configured endpoint.
func checkDictionary(ctx context.Context, cfg config.DictionaryConfig) Check {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	client := lookup.New(cfg.BaseURL, timeout)

	entry, err := client.Lookup(ctx, probeWord)
	if err != nil {
		return Check{Name: "dictionary", Pass: false, Message: err.Error()}
	}
	return Check{Name: "dictionary", Pass: true, Message: fmt.Sprintf("%s answered %q", client.BaseURL(), entry.Word)}
}
