package asr

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWhisperRejectsEmptyPath(t *testing.T) {
	_, err := LoadWhisper("  ", "en", nil)
	require.Error(t, err)
}

func TestLoadWhisperRejectsMissingModel(t *testing.T) {
	_, err := LoadWhisper("/nonexistent/ggml-base.en.bin", "en", nil)
	require.Error(t, err)
}

func TestWhisperTranscribesSilence(t *testing.T) {
	modelPath := os.Getenv("WHISPER_MODEL_PATH")
	if modelPath == "" {
		t.Skip("WHISPER_MODEL_PATH not set")
	}

	w, err := LoadWhisper(modelPath, "en", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Transcribe(make([]int16, 8000))
	require.NoError(t, err)
}
