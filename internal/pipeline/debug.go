package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"

	"github.com/rbright/parley/internal/audio"
)

// utteranceDumper writes each closed utterance as a WAV file.
type utteranceDumper struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger

	mu  sync.Mutex
	seq int
}

func newUtteranceDumper(fs afero.Fs, dir string, logger *slog.Logger) *utteranceDumper {
	return &utteranceDumper{fs: fs, dir: dir, logger: logger}
}

// Dump satisfies asr.UtteranceHook. Failures are logged and dropped.
func (d *utteranceDumper) Dump(pcm audio.PCM) {
	if len(pcm.Samples) == 0 {
		return
	}

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	path, err := d.write(seq, pcm)
	if err != nil {
		logWarn(d.logger, "unable to write debug audio dump", "error", err.Error())
		return
	}
	if d.logger != nil {
		d.logger.Debug("wrote debug audio dump", "path", path, "duration_ms", pcm.Duration().Milliseconds())
	}
}

// Count returns the number of dump attempts.
func (d *utteranceDumper) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

func (d *utteranceDumper) write(seq int, pcm audio.PCM) (string, error) {
	file, path, err := createDebugFile(d.fs, d.dir, fmt.Sprintf("utterance-%03d", seq), "wav")
	if err != nil {
		return "", err
	}

	writer, err := wave.NewWriter(wave.WriterParam{
		Out:           file,
		Channel:       1,
		SampleRate:    pcm.SampleRate,
		BitsPerSample: 16,
	})
	if err != nil {
		_ = file.Close()
		return "", fmt.Errorf("create wav writer: %w", err)
	}
	if _, err := writer.WriteSample16(pcm.Samples); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("write wav samples: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize wav: %w", err)
	}
	return path, nil
}

// createDebugFile creates a timestamped artifact in dir.
func createDebugFile(fs afero.Fs, dir string, prefix string, extension string) (afero.File, string, error) {
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, "", fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension))
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, "", fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, path, nil
}

func debugDir() (string, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "parley", "debug"), nil
}

// resolveStateDir returns XDG_STATE_HOME fallback path for debug artifacts.
func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}
