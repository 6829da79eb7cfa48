package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/parley/internal/ipc"
	"github.com/rbright/parley/internal/output"
	"github.com/rbright/parley/internal/session"
)

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "parley")
	require.Empty(t, stderr.String())
}

func TestExecuteUsageErrors(t *testing.T) {
	setupRunnerEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown command", args: []string{"definitely-not-a-command"}, want: "unknown command"},
		{name: "unknown flag", args: []string{"--bogus", "listen"}, want: "unknown flag"},
		{name: "bad backend", args: []string{"--backend", "alsa", "doctor"}, want: "audio.backend"},
		{name: "bad dictionary url", args: []string{"--dictionary", "ftp://example.com", "doctor"}, want: "dictionary"},
		{name: "bad open command", args: []string{"--open-cmd", `"unterminated`, "listen"}, want: "parse --open-cmd"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout bytes.Buffer
			var stderr bytes.Buffer

			exitCode := Execute(context.Background(), tc.args, &stdout, &stderr)
			require.Equal(t, 2, exitCode)
			require.Contains(t, stderr.String(), tc.want)
		})
	}
}

func TestRunnerStatusIdleWhenNoListener(t *testing.T) {
	setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"status"})
	require.Equal(t, 0, exitCode)
	require.Equal(t, "idle\n", stdout.String())
	require.Empty(t, stderr.String())
}

func TestRunnerStopFailsWithoutListener(t *testing.T) {
	setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"stop"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "parley is not listening")
}

func TestRunnerForwardsCommandsToListener(t *testing.T) {
	runtimeDir := setupRunnerEnv(t)
	commands := make(chan string, 4)

	shutdown := startIPCServerForRunnerTest(t, filepath.Join(runtimeDir, "parley.sock"), func(_ context.Context, req ipc.Request) ipc.Response {
		commands <- req.Command
		switch req.Command {
		case ipc.CommandStatus:
			return ipc.Response{OK: true, State: "listening", Message: "turns=3 last=find"}
		case ipc.CommandStop:
			return ipc.Response{OK: true, State: "listening", Message: "stop requested"}
		default:
			return ipc.Response{Error: "unsupported"}
		}
	})
	defer shutdown()

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	require.Equal(t, 0, runner.Execute(context.Background(), []string{"status"}))
	require.Equal(t, "listening (turns=3 last=find)\n", stdout.String())

	stdout.Reset()
	require.Equal(t, 0, runner.Execute(context.Background(), []string{"stop"}))
	require.Equal(t, "stop requested\n", stdout.String())

	require.Equal(t, []string{ipc.CommandStatus, ipc.CommandStop}, []string{<-commands, <-commands})
}

func TestForwardRejectedResponseIsError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "parley.sock")
	shutdown := startIPCServerForRunnerTest(t, socketPath, func(context.Context, ipc.Request) ipc.Response {
		return ipc.Response{State: "stopped", Error: "session already stopped"}
	})
	defer shutdown()

	_, err := forward(context.Background(), socketPath, ipc.CommandStop)
	require.EqualError(t, err, "session already stopped")
}

func TestForwardWrapsTransportFailures(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "parley.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, acceptErr := listener.Accept()
		if acceptErr == nil {
			_ = conn.Close()
		}
	}()

	_, err = forward(context.Background(), socketPath, ipc.CommandStatus)
	require.Error(t, err)
	require.NotErrorIs(t, err, ipc.ErrNotRunning)
	require.Contains(t, err.Error(), `forward command "status":`)

	<-done
	require.NoError(t, listener.Close())
}

func TestRunnerListenRefusesSecondInstance(t *testing.T) {
	runtimeDir := setupRunnerEnv(t)
	shutdown := startIPCServerForRunnerTest(t, filepath.Join(runtimeDir, "parley.sock"), func(context.Context, ipc.Request) ipc.Response {
		return ipc.Response{OK: true, State: "listening"}
	})
	defer shutdown()

	var stderr bytes.Buffer
	runner := Runner{Stdout: &bytes.Buffer{}, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"listen"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "parley is already listening")
}

func TestRunnerListenFailsWithoutSynthesizer(t *testing.T) {
	runtimeDir := setupRunnerEnv(t)
	t.Setenv("PATH", t.TempDir())

	var stderr bytes.Buffer
	runner := Runner{Stdout: &bytes.Buffer{}, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"listen"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "initialize speech")

	_, statErr := os.Stat(filepath.Join(runtimeDir, "parley.sock"))
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRunnerVoicesMarksSelection(t *testing.T) {
	setupRunnerEnv(t)
	binDir := t.TempDir()
	script := `#!/usr/bin/env bash
cat <<'VOICES'
Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
VOICES
`
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "espeak-ng"), []byte(script), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	exitCode := runner.Execute(context.Background(), []string{"voices"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "    0  af           Afrikaans\n")
	require.Contains(t, stdout.String(), "*   1  en-us        English (America)\n")
}

func TestRunnerDevicesFailsWithoutPulse(t *testing.T) {
	setupRunnerEnv(t)
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	var stderr bytes.Buffer
	runner := Runner{Stdout: &bytes.Buffer{}, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"devices"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "error:")
}

func TestRunnerDoctorReportsFailures(t *testing.T) {
	setupRunnerEnv(t)
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	exitCode := runner.Execute(context.Background(), []string{
		"--model", filepath.Join(t.TempDir(), "missing.bin"),
		"--dictionary", "http://127.0.0.1:1",
		"doctor",
	})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout.String(), "[FAIL] model")
	require.Contains(t, stdout.String(), "[FAIL] dictionary")
}

func TestFinishListenReportsShutdownAndExitCode(t *testing.T) {
	tests := []struct {
		name       string
		result     session.Result
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "session error",
			result:     session.Result{Err: errors.New("stream broke")},
			wantCode:   1,
			wantStderr: "error: stream broke\n",
		},
		{
			name:       "interrupted",
			result:     session.Result{Interrupted: true},
			wantCode:   0,
			wantStdout: "Shutting down...\n",
		},
		{
			name:       "stopped over socket",
			result:     session.Result{Stopped: true},
			wantCode:   0,
			wantStdout: "Shutting down...\n",
		},
		{
			name:     "closed by goodbye",
			result:   session.Result{Closed: true},
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			runner := Runner{Stdout: &stdout, Stderr: &stderr}
			console := output.NewConsole(&stdout, assistantName, false)

			code := runner.finishListen(tt.result, console)
			require.Equal(t, tt.wantCode, code)
			require.Equal(t, tt.wantStdout, stdout.String())
			require.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}

func TestLogSessionResultWritesFailureAndSuccess(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	started := time.Now()
	finished := started.Add(1500 * time.Millisecond)

	logSessionResult(logger, session.Result{
		Closed:      true,
		Heard:       4,
		LinksOpened: 1,
		StartedAt:   started,
		FinishedAt:  finished,
	}, 120, 5, 0)

	require.Contains(t, logBuf.String(), "session complete")
	require.Contains(t, logBuf.String(), `"duration_ms":1500`)
	require.Contains(t, logBuf.String(), `"frames":120`)
	require.Contains(t, logBuf.String(), `"links_opened":1`)

	logBuf.Reset()
	logSessionResult(logger, session.Result{StartedAt: started, FinishedAt: finished, Err: errors.New("boom")}, 0, 0, 0)
	require.Contains(t, logBuf.String(), "session failed")
	require.Contains(t, logBuf.String(), "boom")
}

func TestIsTerminalRejectsBuffers(t *testing.T) {
	require.False(t, isTerminal(&bytes.Buffer{}))
}

func setupRunnerEnv(t *testing.T) string {
	t.Helper()

	runtimeDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)
	return runtimeDir
}

func startIPCServerForRunnerTest(t *testing.T, socketPath string, handler func(context.Context, ipc.Request) ipc.Response) func() {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ipc.Serve(ctx, listener, ipc.HandlerFunc(handler))
	}()

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}
