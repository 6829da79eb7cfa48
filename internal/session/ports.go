package session

import (
	"context"

	"github.com/rbright/parley/internal/audio"
	"github.com/rbright/parley/internal/dialogue"
)

// Utterances is the recognition stream surface the loop consumes.
type Utterances interface {
	Next(context.Context) (string, error)
	Stop() error
}

// Handler interprets one utterance against the conversation state.
type Handler interface {
	Handle(context.Context, string) dialogue.Outcome
}

// Speaker voices responses and cues with capture muted.
type Speaker interface {
	Say(context.Context, string) error
	Chime(context.Context, audio.PCM) error
}

// LinkOpener opens a saved word's source link.
type LinkOpener interface {
	Open(context.Context, string) error
}

// Console prints the conversation transcript.
type Console interface {
	User(string)
	Assistant(string)
	Prompt()
	Notice(string)
}

// Cues are the optional non-speech sounds. Empty PCM disables a cue.
type Cues struct {
	Listening audio.PCM
	Error     audio.PCM
	Farewell  audio.PCM
}

type noopSpeaker struct{}

func (noopSpeaker) Say(context.Context, string) error       { return nil }
func (noopSpeaker) Chime(context.Context, audio.PCM) error { return nil }

type noopOpener struct{}

func (noopOpener) Open(context.Context, string) error { return nil }

type noopConsole struct{}

func (noopConsole) User(string)      {}
func (noopConsole) Assistant(string) {}
func (noopConsole) Prompt()          {}
func (noopConsole) Notice(string)    {}
