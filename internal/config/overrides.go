package config

import (
	"fmt"
	"strings"
)

// Overrides carries command-line settings. Zero values leave defaults alone.
type Overrides struct {
	ModelPath     string
	Language      string
	Voice         *int
	Backend       string
	Input         string
	DictionaryURL string
	OpenCmd       string
	NoCue         bool
	DebugAudio    bool
}

// Apply layers overrides onto cfg.
func Apply(cfg Config, o Overrides) (Config, error) {
	if strings.TrimSpace(o.ModelPath) != "" {
		cfg.ModelPath = ResolveModelPath(o.ModelPath)
	}
	if lang := strings.TrimSpace(o.Language); lang != "" {
		cfg.Language = lang
	}
	if o.Voice != nil {
		cfg.Voice.Index = *o.Voice
	}
	if backend := strings.ToLower(strings.TrimSpace(o.Backend)); backend != "" {
		cfg.Audio.Backend = backend
	}
	if input := strings.TrimSpace(o.Input); input != "" {
		cfg.Audio.Input = input
	}
	if base := strings.TrimSpace(o.DictionaryURL); base != "" {
		cfg.Dictionary.BaseURL = strings.TrimRight(base, "/")
	}
	if raw := strings.TrimSpace(o.OpenCmd); raw != "" {
		argv, err := SplitCommand(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse --open-cmd: %w", err)
		}
		cfg.OpenCmd = CommandConfig{Raw: raw, Argv: argv}
	}
	if o.NoCue {
		cfg.Cue.Enable = false
	}
	if o.DebugAudio {
		cfg.Debug.EnableAudioDump = true
	}
	return cfg, nil
}
