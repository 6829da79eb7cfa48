// Package config defines, defaults, validates, and overrides parley runtime settings.
package config

// Config is the fully materialized runtime configuration used by parley.
type Config struct {
	ModelPath  string
	Language   string
	Voice      VoiceConfig
	Audio      AudioConfig
	Endpoint   EndpointConfig
	Dictionary DictionaryConfig
	OpenCmd    CommandConfig
	Cue        CueConfig
	Debug      DebugConfig
}

// VoiceConfig selects the speech synthesizer and voice.
type VoiceConfig struct {
	// Index into the synthesizer's voice list; out of range falls back to the first voice.
	Index          int
	Binary         string
	WordsPerMinute int
}

// AudioConfig controls the capture backend and input-source selection.
type AudioConfig struct {
	Backend  string
	Input    string
	Fallback string
}

// EndpointConfig tunes utterance boundary detection.
type EndpointConfig struct {
	SilenceMS      int
	MaxUtteranceMS int
	RMSThreshold   float64
}

// DictionaryConfig points at the word lookup HTTP API.
type DictionaryConfig struct {
	BaseURL   string
	TimeoutMS int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// CueConfig controls the listening cue.
type CueConfig struct {
	Enable bool
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal validation message.
type Warning struct {
	Message string
}

const (
	BackendPulse     = "pulse"
	BackendPortAudio = "portaudio"
)
