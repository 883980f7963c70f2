// Package runner executes external commands for probes.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrEmptyCommand is returned when the command line has no tokens.
var ErrEmptyCommand = errors.New("empty command")

// Runner runs a command line and returns its standard output.
type Runner interface {
	Output(ctx context.Context, commandLine string) (string, error)
}

// Exec runs commands as child processes. The command line is split on
// whitespace; no shell is involved.
type Exec struct {
	// Stderr receives the child's standard error. Defaults to os.Stderr.
	Stderr io.Writer
	// Timeout bounds each command when positive.
	Timeout time.Duration
}

// Output runs commandLine and returns what it wrote to stdout. A non-zero
// exit status is not an error: the output is still returned so callers can
// interpret it. Only failures to start or wait for the process are errors.
func (e Exec) Output(ctx context.Context, commandLine string) (string, error) {
	args := strings.Fields(commandLine)
	if len(args) == 0 {
		return "", ErrEmptyCommand
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	slog.Debug("running command", "command", commandLine)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = e.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return stdout.String(), fmt.Errorf("run %s: %w", args[0], ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			slog.Debug("command exited with non-zero status",
				"command", args[0],
				"exit_code", exitErr.ExitCode(),
				"duration_ms", duration.Milliseconds(),
			)
			return stdout.String(), nil
		}
		return "", fmt.Errorf("run %s: %w", args[0], err)
	}

	slog.Debug("command completed", "command", args[0], "duration_ms", duration.Milliseconds())
	return stdout.String(), nil
}
