package config

// Default returns the startup constants used when no flags override them.
func Default() Config {
	openCmd := "xdg-open"

	return Config{
		ModelPath: defaultModelPath(),
		Language:  "en",
		Voice: VoiceConfig{
			Index:  1,
			Binary: "espeak-ng",
		},
		Audio: AudioConfig{
			Backend:  BackendPulse,
			Input:    "default",
			Fallback: "default",
		},
		Endpoint: EndpointConfig{
			SilenceMS:      750,
			MaxUtteranceMS: 10000,
			RMSThreshold:   0.02,
		},
		Dictionary: DictionaryConfig{
			BaseURL:   "https://api.dictionaryapi.dev/api/v2/entries/en",
			TimeoutMS: 8000,
		},
		OpenCmd: CommandConfig{Raw: openCmd, Argv: mustSplitCommand(openCmd)},
		Cue:     CueConfig{Enable: true},
		Debug:   DebugConfig{},
	}
}
