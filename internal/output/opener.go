package output

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/rbright/parley/internal/config"
)

// Opener hands URLs to the desktop's browser launcher.
type Opener struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpener constructs an opener from the configured command.
func NewOpener(cmd config.CommandConfig, logger *slog.Logger) *Opener {
	return &Opener{argv: cmd.Argv, timeout: 5 * time.Second, logger: logger}
}

// Open runs `<argv...> <link>`. Only absolute http(s) links are accepted.
func (o *Opener) Open(ctx context.Context, link string) error {
	if len(o.argv) == 0 {
		return fmt.Errorf("open command is not configured")
	}
	link = strings.TrimSpace(link)
	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("refusing to open non-web link %q", link)
	}

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	argv := append(append([]string(nil), o.argv...), link)
	if err := runCommand(runCtx, argv); err != nil {
		return fmt.Errorf("open link: %w", err)
	}
	if o.logger != nil {
		o.logger.Info("opened link", "url", link, "command", o.argv[0])
	}
	return nil
}
