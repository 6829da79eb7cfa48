package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultModelFile = "ggml-base.en.bin"

// ResolveModelPath applies explicit/XDG/home fallback rules for the whisper model.
func ResolveModelPath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return expandUserPath(explicit)
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "parley", "models", defaultModelFile)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("models", defaultModelFile)
	}
	return filepath.Join(home, ".local", "share", "parley", "models", defaultModelFile)
}

func defaultModelPath() string {
	return ResolveModelPath("")
}

func expandUserPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(raw, "~"), "/"))
}
