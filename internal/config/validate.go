package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.ModelPath) == "" {
		return nil, fmt.Errorf("model path must not be empty")
	}
	if strings.TrimSpace(cfg.Language) == "" {
		return nil, fmt.Errorf("language must not be empty")
	}
	if strings.TrimSpace(cfg.Voice.Binary) == "" {
		return nil, fmt.Errorf("voice.binary must not be empty")
	}
	if cfg.Voice.WordsPerMinute < 0 {
		return nil, fmt.Errorf("voice.words_per_minute must be >= 0")
	}
	if cfg.Voice.Index < 0 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("voice index %d is negative; the first voice will be used", cfg.Voice.Index)})
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Audio.Backend))
	switch backend {
	case BackendPulse:
	case BackendPortAudio:
		if input := strings.TrimSpace(cfg.Audio.Input); input != "" && input != "default" {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("audio.input %q is ignored by the portaudio backend", input)})
		}
	case "":
		return nil, fmt.Errorf("audio.backend must not be empty")
	default:
		return nil, fmt.Errorf("audio.backend must be one of: %s, %s", BackendPulse, BackendPortAudio)
	}

	if cfg.Endpoint.SilenceMS <= 0 {
		return nil, fmt.Errorf("endpoint.silence_ms must be > 0")
	}
	if cfg.Endpoint.MaxUtteranceMS <= cfg.Endpoint.SilenceMS {
		return nil, fmt.Errorf("endpoint.max_utterance_ms must be > endpoint.silence_ms")
	}
	if cfg.Endpoint.RMSThreshold <= 0 || cfg.Endpoint.RMSThreshold >= 1 {
		return nil, fmt.Errorf("endpoint.rms_threshold must be in (0, 1)")
	}

	base, err := url.Parse(strings.TrimSpace(cfg.Dictionary.BaseURL))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("dictionary.base_url must be an absolute http(s) URL")
	}
	if cfg.Dictionary.TimeoutMS <= 0 {
		return nil, fmt.Errorf("dictionary.timeout_ms must be > 0")
	}

	if len(cfg.OpenCmd.Argv) == 0 {
		return nil, fmt.Errorf("open_cmd must not be empty")
	}

	return warnings, nil
}
