// Package lookup resolves spoken words against a dictionary HTTP API.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rbright/parley/internal/dialogue"
)

// DefaultBaseURL is the free dictionary API entry endpoint.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// Placeholders used when a field is absent from an otherwise valid response.
const (
	MissingMeaning = "I couldn't find any information about this word."
	MissingExample = "I have not found any information about usage examples."
	MissingLink    = "I have not found any information about the link to this word."
)

const maxResponseBytes = 1 << 20

// ErrLookupFailed covers transport errors, non-200 statuses, and undecodable
// or empty responses alike.
var ErrLookupFailed = errors.New("dictionary lookup failed")

// Client queries GET <base>/<word>.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a client. An empty base uses DefaultBaseURL; a non-positive
// timeout uses 10s.
func New(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the endpoint root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type apiEntry struct {
	Word     string   `json:"word"`
	Meanings []struct {
		Definitions []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
	SourceURLs []string `json:"sourceUrls"`
}

// Lookup fetches word and maps the first entry onto a dialogue.Entry.
func (c *Client) Lookup(ctx context.Context, word string) (dialogue.Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return dialogue.Entry{}, fmt.Errorf("%w: empty word", ErrLookupFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return dialogue.Entry{}, fmt.Errorf("%w: build request: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dialogue.Entry{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return dialogue.Entry{}, fmt.Errorf("%w: status %d for %q", ErrLookupFailed, resp.StatusCode, word)
	}

	var entries []apiEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&entries); err != nil {
		return dialogue.Entry{}, fmt.Errorf("%w: decode response: %v", ErrLookupFailed, err)
	}
	if len(entries) == 0 {
		return dialogue.Entry{}, fmt.Errorf("%w: no entries for %q", ErrLookupFailed, word)
	}

	return toEntry(word, entries[0]), nil
}

func toEntry(word string, api apiEntry) dialogue.Entry {
	entry := dialogue.Entry{
		Word:       word,
		Meaning:    MissingMeaning,
		Example:    MissingExample,
		SourceLink: MissingLink,
	}

	if len(api.Meanings) > 0 && len(api.Meanings[0].Definitions) > 0 {
		def := api.Meanings[0].Definitions[0]
		if text := strings.TrimSpace(def.Definition); text != "" {
			entry.Meaning = text
		}
		if text := strings.TrimSpace(def.Example); text != "" {
			entry.Example = text
		}
	}
	if len(api.SourceURLs) > 0 {
		if link := strings.TrimSpace(api.SourceURLs[0]); link != "" {
			entry.SourceLink = link
		}
	}
	return entry
}
