// Package output applies dialogue side effects: console transcript lines and
// opening saved links.
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// maxStderr bounds how much child stderr is quoted in an error.
const maxStderr = 200

// runCommand executes argv with no stdin and reports stderr on failure.
func runCommand(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("command argv cannot be empty")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > maxStderr {
			detail = detail[:maxStderr]
		}
		if detail != "" {
			return fmt.Errorf("run %s: %w: %s", argv[0], err, detail)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
