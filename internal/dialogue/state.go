// Package dialogue holds the conversation state and its command table.
package dialogue

import "context"

// Entry is a dictionary record, used both for the lookup candidate and for the
// saved word.
type Entry struct {
	Word       string
	Meaning    string
	Example    string
	SourceLink string
}

// State is the single mutable conversation state. It is owned by one Session
// and touched only by the dialogue goroutine.
type State struct {
	Greeted   bool
	Candidate *Entry
	Saved     *Entry
}

// Dictionary resolves a word to an entry. Any failure means the word could
// not be looked up; callers do not distinguish causes.
type Dictionary interface {
	Lookup(ctx context.Context, word string) (Entry, error)
}
