// Package transcript assembles recognizer segments and normalizes utterances.
package transcript

import "strings"

// Assemble joins recognizer segments, dropping non-speech annotations such as
// "[BLANK_AUDIO]" or "(wind blowing)", and collapses whitespace.
func Assemble(segments []string) string {
	if len(segments) == 0 {
		return ""
	}

	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = cleanSegment(stripAnnotations(segment))
		if segment == "" || isAnnotation(segment) {
			continue
		}
		parts = append(parts, segment)
	}
	return strings.Join(parts, " ")
}

// cleanSegment normalizes segment whitespace.
func cleanSegment(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}

// isAnnotation reports whether a whole segment is wrapped in a matching
// pair of markers, e.g. "*coughs*". Text that merely ends in one is speech.
func isAnnotation(segment string) bool {
	if len(segment) < 2 {
		return false
	}
	first, last := segment[0], segment[len(segment)-1]
	switch first {
	case '(':
		return last == ')'
	case '[':
		return last == ']'
	case '*':
		return last == '*'
	}
	return false
}

// stripAnnotations removes closed "(...)" and "[...]" spans embedded in a
// segment. An unclosed opener and everything after it is kept verbatim.
func stripAnnotations(segment string) string {
	if !strings.ContainsAny(segment, "([") {
		return segment
	}

	var b strings.Builder
	for {
		open := strings.IndexAny(segment, "([")
		if open < 0 {
			break
		}
		closer := ")"
		if segment[open] == '[' {
			closer = "]"
		}
		end := strings.Index(segment[open+1:], closer)
		if end < 0 {
			break
		}
		b.WriteString(segment[:open])
		b.WriteByte(' ')
		segment = segment[open+1+end+1:]
	}
	b.WriteString(segment)
	return b.String()
}
