package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/rbright/parley/internal/transcript"
)

const (
	ansiReset   = "\033[0m"
	ansiCyan    = "\033[36m"
	ansiMagenta = "\033[35m"
	ansiYellow  = "\033[33m"
)

// Console prints the role-labelled conversation transcript.
type Console struct {
	w     io.Writer
	color bool
	name  string
	mu    sync.Mutex
}

// NewConsole writes to w. Color wraps text in ANSI escapes.
func NewConsole(w io.Writer, assistant string, color bool) *Console {
	if assistant == "" {
		assistant = "Parley"
	}
	return &Console{w: w, color: color, name: assistant}
}

// User prints a recognized utterance.
func (c *Console) User(utterance string) {
	c.printf("\nYou: %s\n\n", c.paint(ansiCyan, transcript.Capitalize(utterance)))
}

// Assistant prints a spoken response.
func (c *Console) Assistant(text string) {
	c.printf("%s: %s\n", c.name, c.paint(ansiMagenta, text))
}

// Prompt prints the ready-for-input separator.
func (c *Console) Prompt() {
	c.printf("-------\n%s\n", c.paint(ansiYellow, "Say something..."))
}

// Notice prints an unlabelled status line.
func (c *Console) Notice(text string) {
	c.printf("%s\n", text)
}

func (c *Console) paint(code string, text string) string {
	if !c.color {
		return text
	}
	return code + text + ansiReset
}

func (c *Console) printf(format string, args ...any) {
	if c == nil || c.w == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, format, args...)
}
