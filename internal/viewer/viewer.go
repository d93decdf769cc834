// Package viewer opens PDFs in an external viewer program.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/a3tai/fill-pdf-form/internal/logging"
)

// DefaultCommand is the viewer used when none is configured.
const DefaultCommand = "evince"

// Viewer runs a viewer command and waits for it to exit.
type Viewer struct {
	command string
	logger  *zap.Logger
}

// New returns a viewer that runs command with the PDF path as its only argument.
func New(command string, logger *zap.Logger) *Viewer {
	if command == "" {
		command = DefaultCommand
	}
	return &Viewer{command: command, logger: logging.OrNop(logger).Named("viewer")}
}

// View opens path and blocks until the viewer exits. The viewer's exit
// status is not treated as an error; failing to start it is.
func (v *Viewer) View(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, v.command, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		v.logger.Debug("viewer exited", zap.String("command", v.command), zap.Int("status", exitErr.ExitCode()))
		return nil
	default:
		return fmt.Errorf("failed to start viewer %s: %w", v.command, err)
	}
}
