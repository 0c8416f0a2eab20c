package verbump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Result is the outcome of one external command.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// Detail returns the most useful diagnostic text of a failed command.
func (r Result) Detail() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner executes external commands synchronously.
type Runner interface {
	// Run executes name with args in dir. A command that ran and exited
	// non-zero is reported through Result, not through the error. The error
	// is reserved for commands that could not be run at all.
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env is appended to the inherited environment.
	Env []string
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "name", name, "args", args, "dir", dir)

	err := cmd.Run()
	res := Result{
		Success: err == nil,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("run %s: %w", name, err)
	}

	slog.Debug("command finished", "name", name, "exit_code", res.ExitCode)

	return res, nil
}
