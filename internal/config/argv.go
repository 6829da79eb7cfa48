package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	errOpenQuote  = errors.New("unterminated quote")
	errOpenEscape = errors.New("unterminated escape sequence")
)

// SplitCommand splits a shell-like command line into argv. Single and
// double quotes group words and a backslash escapes the next rune. No
// expansion is performed.
func SplitCommand(line string) ([]string, error) {
	var (
		argv   []string
		word   strings.Builder
		inWord bool
		quote  rune
		escape bool
	)

	for _, r := range strings.TrimSpace(line) {
		if escape {
			word.WriteRune(r)
			escape = false
			continue
		}

		switch {
		case r == '\\':
			escape, inWord = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			word.WriteRune(r)
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case unicode.IsSpace(r):
			if inWord {
				argv = append(argv, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	switch {
	case escape:
		return nil, fmt.Errorf("%w in command: %q", errOpenEscape, line)
	case quote != 0:
		return nil, fmt.Errorf("%w in command: %q", errOpenQuote, line)
	case inWord:
		argv = append(argv, word.String())
	}
	return argv, nil
}

func mustSplitCommand(line string) []string {
	argv, err := SplitCommand(line)
	if err != nil {
		panic(err)
	}
	return argv
}
