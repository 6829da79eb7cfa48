package doctor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/parley/internal/audio"
	"github.com/rbright/parley/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestCheckModel(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "ggml-base.en.bin")
	empty := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(model, []byte("ggml"), 0o600))
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	tests := []struct {
		name    string
		path    string
		pass    bool
		message string
	}{
		{name: "present", path: model, pass: true, message: model},
		{name: "missing", path: filepath.Join(dir, "nope.bin"), message: "not found"},
		{name: "directory", path: dir, message: "is a directory"},
		{name: "empty", path: empty, message: "is empty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check := checkModel(tc.path)
			require.Equal(t, tc.pass, check.Pass)
			require.Contains(t, check.Message, tc.message)
		})
	}
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "open_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake-open"), []byte("#!/usr/bin/env bash\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"fake-open", "--new-tab"}, "open_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "open_cmd command is available")
}

func TestCheckAudio(t *testing.T) {
	cfg := config.Default()

	ok := deps{selectDevice: func(context.Context, string, string) (audio.Selection, error) {
		return audio.Selection{Device: audio.Device{ID: "alsa_input.usb"}, Warning: "using fallback"}, nil
	}}
	check := checkAudio(context.Background(), cfg, ok)
	require.True(t, check.Pass)
	require.Equal(t, `selected "alsa_input.usb" (using fallback)`, check.Message)

	failing := deps{selectDevice: func(context.Context, string, string) (audio.Selection, error) {
		return audio.Selection{}, errors.New("no audio input devices found")
	}}
	check = checkAudio(context.Background(), cfg, failing)
	require.False(t, check.Pass)

	cfg.Audio.Backend = config.BackendPortAudio
	check = checkAudio(context.Background(), cfg, failing)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "portaudio")
}

func TestCheckDictionary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entries/hello" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[{"word":"hello","meanings":[]}]`))
	}))
	t.Cleanup(server.Close)

	check := checkDictionary(context.Background(), config.DictionaryConfig{BaseURL: server.URL + "/entries", TimeoutMS: 1000})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, `answered "hello"`)

	check = checkDictionary(context.Background(), config.DictionaryConfig{BaseURL: server.URL + "/missing", TimeoutMS: 1000})
	require.False(t, check.Pass)
}

func TestRunKeepsCheckOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.bin")
	cfg.Voice.Binary = "definitely-not-espeak"
	cfg.Dictionary.BaseURL = server.URL

	d := deps{selectDevice: func(context.Context, string, string) (audio.Selection, error) {
		return audio.Selection{Device: audio.Device{ID: "mic"}}, nil
	}}
	report := run(context.Background(), cfg, d)

	require.Len(t, report.Checks, 5)
	require.False(t, report.OK())
	require.Equal(t, "model", report.Checks[0].Name)
	require.Equal(t, "definitely-not-espeak", report.Checks[1].Name)
	require.Equal(t, "audio.device", report.Checks[3].Name)
	require.True(t, report.Checks[3].Pass)
	require.Equal(t, "dictionary", report.Checks[4].Name)
	require.False(t, report.Checks[4].Pass)
}
