package verbump

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultRemote is pushed to when no remote is configured.
const DefaultRemote = "origin"

// Git drives the git binary in a working directory.
type Git struct {
	Runner Runner
	// Dir is the working tree. Empty means the current directory.
	Dir string
	// Remote is the push target. Empty means DefaultRemote.
	Remote string
}

func (g *Git) run(ctx context.Context, args ...string) (Result, error) {
	res, err := g.Runner.Run(ctx, g.Dir, "git", args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, fmt.Errorf("%w: %w", ErrGitUnavailable, err)
	}
	return res, nil
}

// mustRun runs a git subcommand and turns a non-zero exit into an error.
func (g *Git) mustRun(ctx context.Context, args ...string) (Result, error) {
	res, err := g.run(ctx, args...)
	if err != nil {
		return res, err
	}
	if !res.Success {
		return res, fmt.Errorf("git %s failed: exit status %d, detail: %s", args[0], res.ExitCode, res.Detail())
	}
	return res, nil
}

// Check verifies that git is installed and Dir is inside a work tree.
func (g *Git) Check(ctx context.Context) error {
	res, err := g.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("not a git repository: %s", res.Detail())
	}
	return nil
}

// HasUncommittedChanges reports whether git status shows any staged,
// unstaged or untracked entries.
func (g *Git) HasUncommittedChanges(ctx context.Context) (bool, error) {
	res, err := g.mustRun(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to check git status: %w", err)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// CommitMessage builds the conventional-commit message for a release.
func CommitMessage(v Version, kind BumpKind) string {
	switch kind {
	case Major:
		return fmt.Sprintf("chore: release %s\n\nBREAKING CHANGE: major release %s", v.Tag(), v.Tag())
	case Minor:
		return "feat: release " + v.Tag()
	default:
		return "fix: release " + v.Tag()
	}
}

// CommitAndTag stages files, commits them with the release message and
// creates the lightweight tag vX.Y.Z. Nothing is undone when a later step
// fails.
func (g *Git) CommitAndTag(ctx context.Context, v Version, kind BumpKind, files []string) error {
	if len(files) == 0 {
		return errors.New("nothing to commit: no files given")
	}

	if _, err := g.mustRun(ctx, append([]string{"add", "--"}, files...)...); err != nil {
		return err
	}
	if _, err := g.mustRun(ctx, "commit", "-m", CommitMessage(v, kind)); err != nil {
		return err
	}
	if _, err := g.mustRun(ctx, "tag", v.Tag()); err != nil {
		return err
	}
	return nil
}

func (g *Git) remote() string {
	if g.Remote == "" {
		return DefaultRemote
	}
	return g.Remote
}

// Push pushes the current branch and then all tags.
func (g *Git) Push(ctx context.Context) error {
	remote := g.remote()
	if _, err := g.mustRun(ctx, "push", remote, "HEAD"); err != nil {
		return err
	}
	if _, err := g.mustRun(ctx, "push", remote, "--tags"); err != nil {
		return err
	}
	return nil
}

// TagExists reports whether tag is already defined.
func (g *Git) TagExists(ctx context.Context, tag string) (bool, error) {
	res, err := g.run(ctx, "rev-parse", "-q", "--verify", "refs/tags/"+tag)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}
