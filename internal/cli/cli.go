// Package cli parses parley's command line.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rbright/parley/internal/config"
)

type Command string

const (
	CommandListen  Command = "listen"
	CommandStatus  Command = "status"
	CommandStop    Command = "stop"
	CommandVoices  Command = "voices"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandListen:  {},
	CommandStatus:  {},
	CommandStop:    {},
	CommandVoices:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command   Command
	ShowHelp  bool
	Overrides config.Overrides
}

// Parse accepts flags in any position before the command word.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	o := &parsed.Overrides

	for i := 0; i < len(args); i++ {
		arg := args[i]

		value := func() (string, error) {
			i++
			if i >= len(args) || strings.TrimSpace(args[i]) == "" {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			return args[i], nil
		}

		var err error
		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--model":
			o.ModelPath, err = value()
		case "--language":
			o.Language, err = value()
		case "--backend":
			o.Backend, err = value()
		case "--input":
			o.Input, err = value()
		case "--dictionary":
			o.DictionaryURL, err = value()
		case "--open-cmd":
			o.OpenCmd, err = value()
		case "--voice":
			var raw string
			if raw, err = value(); err == nil {
				var index int
				index, err = strconv.Atoi(raw)
				if err != nil {
					err = fmt.Errorf("--voice expects an integer, got %q", raw)
				}
				o.Voice = &index
			}
		case "--no-cue":
			o.NoCue = true
		case "--debug-audio":
			o.DebugAudio = true
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
		if err != nil {
			return Parsed{}, err
		}
	}

	if o.Voice != nil && *o.Voice < 0 {
		return Parsed{}, errors.New("--voice must be zero or greater")
	}
	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] <command>

Commands:
  listen    Start the spoken dictionary dialogue
  status    Print the state of a running listener
  stop      Ask a running listener to finish
  voices    List text-to-speech voices
  devices   List available input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --model PATH       Whisper model (default: $XDG_DATA_HOME/parley/models/ggml-base.en.bin)
  --language CODE    Recognition language (default: en)
  --voice N          Voice index from "%[1]s voices" (default: 1)
  --backend NAME     Capture backend: pulse or portaudio (default: pulse)
  --input NAME       Preferred pulse input device
  --dictionary URL   Dictionary API base URL
  --open-cmd CMD     Command used to open source links (default: xdg-open)
  --no-cue           Disable the listening chime
  --debug-audio      Save each utterance as WAV under $XDG_STATE_HOME/parley/debug
  -h, --help         Show help
  --version          Show version
`, binaryName)
}
