package verbump

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultRegistryCommand is the npm-compatible CLI used for the registry.
const DefaultRegistryCommand = "npm"

// Registry talks to a package registry through its CLI.
type Registry struct {
	Runner Runner
	// Dir is where the CLI runs, normally the directory of the manifest.
	Dir string
	// Command is the registry CLI, e.g. "npm" or "pnpm". Empty means
	// DefaultRegistryCommand.
	Command string
	// PublishArgs are appended to the publish invocation.
	PublishArgs []string
}

func (r *Registry) command() string {
	if r.Command == "" {
		return DefaultRegistryCommand
	}
	return r.Command
}

// User returns the logged-in registry user, or "" when there is none.
func (r *Registry) User(ctx context.Context) string {
	res, err := r.Runner.Run(ctx, r.Dir, r.command(), "whoami")
	if err != nil {
		slog.Debug("registry whoami failed", "command", r.command(), "error", err)
		return ""
	}
	if !res.Success {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// IsAuthenticated reports whether the registry has stored credentials.
func (r *Registry) IsAuthenticated(ctx context.Context) bool {
	return r.User(ctx) != ""
}

// Publish runs the registry's publish command. Failures are logged and
// reported as false.
func (r *Registry) Publish(ctx context.Context) bool {
	args := append([]string{"publish"}, r.PublishArgs...)
	res, err := r.Runner.Run(ctx, r.Dir, r.command(), args...)
	if err != nil {
		slog.Warn("publish failed", "command", r.command(), "error", err)
		return false
	}
	if !res.Success {
		slog.Warn("publish failed", "command", r.command(), "exit_code", res.ExitCode, "detail", res.Detail())
		return false
	}
	return true
}
