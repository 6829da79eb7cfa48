package transcript

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize lower-cases text, strips punctuation, and collapses whitespace so
// that "  Hello. " and "hello" compare equal. Apostrophes and hyphens inside a
// word are preserved.
func Normalize(raw string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == '\'' || r == '-':
			return r
		default:
			return ' '
		}
	}, raw)

	fields := strings.Fields(mapped)
	words := fields[:0]
	for _, field := range fields {
		field = strings.Trim(field, "'-")
		if field != "" {
			words = append(words, field)
		}
	}
	return strings.Join(words, " ")
}

// Capitalize upper-cases the first letter of text for display.
func Capitalize(text string) string {
	if text == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(r)) + text[size:]
}
