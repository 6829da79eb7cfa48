package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseListenWithOverrides(t *testing.T) {
	parsed, err := Parse([]string{
		"--model", "~/models/small.bin",
		"--voice", "3",
		"--backend", "portaudio",
		"--dictionary", "http://127.0.0.1:9000/api",
		"--open-cmd", "firefox --new-tab",
		"--no-cue",
		"--debug-audio",
		"listen",
	})
	require.NoError(t, err)
	require.Equal(t, CommandListen, parsed.Command)
	require.False(t, parsed.ShowHelp)

	o := parsed.Overrides
	require.Equal(t, "~/models/small.bin", o.ModelPath)
	require.NotNil(t, o.Voice)
	require.Equal(t, 3, *o.Voice)
	require.Equal(t, "portaudio", o.Backend)
	require.Equal(t, "http://127.0.0.1:9000/api", o.DictionaryURL)
	require.Equal(t, "firefox --new-tab", o.OpenCmd)
	require.True(t, o.NoCue)
	require.True(t, o.DebugAudio)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
	}{
		{name: "help short flag", args: []string{"-h"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "help long flag", args: []string{"--help"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "version flag", args: []string{"--version"}, wantCmd: CommandVersion},
		{name: "flag after command", args: []string{"listen", "--no-cue"}, wantErr: "unexpected arguments after command"},
		{name: "missing model path", args: []string{"--model"}, wantErr: "--model requires a value"},
		{name: "blank language", args: []string{"--language", " ", "listen"}, wantErr: "requires a value"},
		{name: "non-numeric voice", args: []string{"--voice", "two", "listen"}, wantErr: "expects an integer"},
		{name: "negative voice", args: []string{"--voice", "-1", "listen"}, wantErr: "zero or greater"},
		{name: "unknown flag", args: []string{"--bogus"}, wantErr: "unknown flag"},
		{name: "unknown command", args: []string{"toggle"}, wantErr: "unknown command"},
		{name: "extra args after command", args: []string{"doctor", "extra"}, wantErr: "unexpected arguments"},
		{name: "status", args: []string{"status"}, wantCmd: CommandStatus},
		{name: "stop", args: []string{"stop"}, wantCmd: CommandStop},
		{name: "voices with voice", args: []string{"--voice", "0", "voices"}, wantCmd: CommandVoices},
		{name: "explicit help command", args: []string{"help"}, wantCmd: CommandHelp, wantHelp: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("parley")
	for _, want := range []string{"listen", "voices", "doctor", "--voice N", "--open-cmd CMD", `"parley voices"`} {
		require.Contains(t, text, want)
	}
}
