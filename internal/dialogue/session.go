package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbright/parley/internal/transcript"
)

// Command is the table row an utterance matched.
type Command string

const (
	CommandIgnored   Command = "ignored"
	CommandHello     Command = "hello"
	CommandFind      Command = "find"
	CommandSave      Command = "save"
	CommandMeaning   Command = "meaning"
	CommandExample   Command = "example"
	CommandLink      Command = "link"
	CommandForget    Command = "forget"
	CommandClose     Command = "close"
	CommandUnmatched Command = "unmatched"
)

// Outcome is the result of handling one utterance.
type Outcome struct {
	// Heard reports whether the utterance should be echoed to the console.
	Heard     bool
	Responses []string
	// OpenLink is a URL to open after the responses are spoken.
	OpenLink  string
	Terminate bool
	Command   Command
	// Err carries the lookup failure behind a LookupFailedText response.
	Err error
}

// Session applies the command table to a State.
type Session struct {
	state *State
	dict  Dictionary
}

// NewSession binds a session to an explicitly constructed state.
func NewSession(state *State, dict Dictionary) *Session {
	if state == nil {
		state = &State{}
	}
	return &Session{state: state, dict: dict}
}

// State returns the state the session mutates.
func (s *Session) State() *State {
	return s.state
}

// Handle interprets one normalized utterance.
//
// "find" is matched on the first token and needs a target; the last token is
// looked up. Every other command compares the whole utterance. Word-scoped
// commands exist only while a word is saved.
func (s *Session) Handle(ctx context.Context, utterance string) Outcome {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return Outcome{Command: CommandIgnored}
	}

	if text == "hello" {
		s.state.Greeted = true
		return Outcome{Heard: true, Command: CommandHello, Responses: []string{GreetingText}}
	}
	if !s.state.Greeted {
		return Outcome{Command: CommandIgnored}
	}

	fields := strings.Fields(text)
	if fields[0] == "find" && len(fields) > 1 {
		return s.find(ctx, fields[len(fields)-1])
	}

	switch {
	case text == "close":
		return Outcome{Heard: true, Command: CommandClose, Responses: []string{FarewellText}, Terminate: true}
	case text == "save" && s.state.Candidate != nil:
		saved := *s.state.Candidate
		s.state.Saved = &saved
		s.state.Candidate = nil
		return Outcome{Heard: true, Command: CommandSave, Responses: []string{SavedHelpText}}
	case s.state.Saved != nil:
		if out, ok := s.wordScoped(text); ok {
			return out
		}
	}

	return Outcome{Heard: true, Command: CommandUnmatched, Responses: []string{UnmatchedText}}
}

func (s *Session) find(ctx context.Context, word string) Outcome {
	out := Outcome{Heard: true, Command: CommandFind}
	if s.dict == nil {
		out.Responses = []string{LookupFailedText}
		return out
	}

	entry, err := s.dict.Lookup(ctx, word)
	if err != nil {
		out.Responses = []string{LookupFailedText}
		out.Err = err
		return out
	}
	if strings.TrimSpace(entry.Word) == "" {
		entry.Word = word
	}

	s.state.Candidate = &entry
	out.Responses = []string{definitionText(entry), SaveHintText}
	return out
}

func (s *Session) wordScoped(text string) (Outcome, bool) {
	saved := s.state.Saved
	switch text {
	case "meaning":
		return Outcome{Heard: true, Command: CommandMeaning, Responses: []string{definitionText(*saved)}}, true
	case "example":
		return Outcome{Heard: true, Command: CommandExample, Responses: []string{saved.Example}}, true
	case "link":
		out := Outcome{Heard: true, Command: CommandLink, Responses: []string{OneSecondText}}
		if isWebLink(saved.SourceLink) {
			out.OpenLink = saved.SourceLink
		}
		return out, true
	case "forget":
		s.state.Saved = nil
		s.state.Candidate = nil
		return Outcome{Heard: true, Command: CommandForget, Responses: []string{ForgetText}}, true
	}
	return Outcome{}, false
}

func definitionText(entry Entry) string {
	return fmt.Sprintf("%s - %s", transcript.Capitalize(entry.Word), entry.Meaning)
}

// isWebLink filters out the placeholder text stored when a lookup had no link.
func isWebLink(link string) bool {
	link = strings.ToLower(strings.TrimSpace(link))
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}
