package pdftk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/fill-pdf-form/internal/logging"
)

// ToolError reports an external tool that ran but exited with a non-zero status.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// CommandRunner runs an external program to completion and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates a runner that logs each invocation at debug level.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	return &ExecRunner{logger: logging.OrNop(logger)}
}

// Run executes name with args. A non-zero exit is reported as *ToolError
// carrying the captured stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.logger.Debug("running command", zap.String("tool", name), zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ToolError{
				Tool:     name,
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}

	return stdout.Bytes(), nil
}
