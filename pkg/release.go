package verbump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/bcomnes/verbump/pkg/prompt"
)

// PostCommitPolicy decides what happens after the release commit and tag.
type PostCommitPolicy string

const (
	// PolicyMenu offers publish and push, push only, or skip.
	PolicyMenu PostCommitPolicy = "menu"
	// PolicyConfirm asks a single "push now?" question.
	PolicyConfirm PostCommitPolicy = "confirm"
	// PolicySkip stops after commit and tag.
	PolicySkip PostCommitPolicy = "skip"
)

// ParsePostCommitPolicy validates a policy name.
func ParsePostCommitPolicy(s string) (PostCommitPolicy, error) {
	switch p := PostCommitPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyMenu, PolicyConfirm, PolicySkip:
		return p, nil
	}
	return "", fmt.Errorf("unknown post-commit policy %q", s)
}

// StepStatus is the outcome of one release step.
type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// Summary describes a finished (or simulated) release.
type Summary struct {
	OldVersion   Version
	NewVersion   Version
	Kind         BumpKind
	UpdatedFiles []string
	Commit       StepStatus
	Push         StepStatus
	Publish      StepStatus
	DryRun       bool
	// Warnings collects the non-fatal problems met along the way.
	Warnings error
}

// Tag is the tag created for the new version.
func (s Summary) Tag() string {
	return s.NewVersion.Tag()
}

// Prompter asks the operator questions.
type Prompter interface {
	Select(ctx context.Context, title string, options []prompt.Option, def int) (int, error)
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}

// Output receives status lines for the operator.
type Output interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Spin signals a slow step; the returned func ends it.
	Spin(message string) func()
}

// Options are the inputs of one release.
type Options struct {
	Manifest string
	// Kind skips the selection menu when set.
	Kind BumpKind
	// DefaultKind is preselected in the menu. Empty means Patch.
	DefaultKind BumpKind
	Policy      PostCommitPolicy
	// Files are staged with the manifest.
	Files []string
	// BumpFiles get their main version replaced too.
	BumpFiles []string
	// GoModule rewrites go.mod and self-imports on a v2+ major bump of a Go
	// manifest.
	GoModule bool
	DryRun   bool
}

// Release runs the interactive release flow.
type Release struct {
	Git      *Git
	Registry *Registry
	Prompt   Prompter
	Out      Output
}

// Post-commit menu entries, in display order.
const (
	actionPublishAndPush = iota
	actionPushOnly
	actionSkip
)

var postCommitOptions = []prompt.Option{
	actionPublishAndPush: {Key: "publish", Label: "Publish and push"},
	actionPushOnly:       {Key: "push", Label: "Push only"},
	actionSkip:           {Key: "skip", Label: "Skip"},
}

// Run performs the release: precondition checks, version selection, manifest
// update, commit and tag, then the post-commit policy. Every check that can
// stop the release runs before the manifest is touched.
func (r *Release) Run(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{
		Commit:  StepSkipped,
		Push:    StepSkipped,
		Publish: StepSkipped,
		DryRun:  opts.DryRun,
	}
	var warnings *multierror.Error

	if !ManifestExists(opts.Manifest) {
		return summary, fmt.Errorf("%w: %s", ErrManifestMissing, opts.Manifest)
	}

	if err := r.Git.Check(ctx); err != nil {
		return summary, err
	}

	if opts.Policy == PolicyMenu {
		user := r.Registry.User(ctx)
		if user == "" {
			return summary, fmt.Errorf("%w: run `%s login` first", ErrNotAuthenticated, r.Registry.command())
		}
		r.Out.Success("Logged in to the registry as %s", user)
	}

	dirty, err := r.Git.HasUncommittedChanges(ctx)
	if err != nil {
		return summary, err
	}
	if dirty {
		r.Out.Warn("The working directory has uncommitted changes.")
		proceed, err := r.Prompt.Confirm(ctx, "Continue anyway?", false)
		if err != nil && !errors.Is(err, prompt.ErrCancelled) {
			return summary, err
		}
		if !proceed {
			return summary, ErrDeclined
		}
	}

	current := ReadVersion(opts.Manifest)
	summary.OldVersion = current
	r.Out.Info("Current version: %s", current)

	kind, err := r.chooseKind(ctx, current, opts)
	if err != nil {
		return summary, err
	}
	next := current.Next(kind)
	summary.Kind = kind
	summary.NewVersion = next

	exists, err := r.Git.TagExists(ctx, next.Tag())
	if err != nil {
		return summary, err
	}
	if exists {
		return summary, fmt.Errorf("tag %s already exists", next.Tag())
	}

	if opts.DryRun {
		summary.UpdatedFiles = r.plannedFiles(opts, next, kind)
		r.Out.Info("Dry run: would release %s (%s)", next.Tag(), kind)
		return summary, nil
	}

	if err := WriteVersion(opts.Manifest, next); err != nil {
		return summary, err
	}
	r.Out.Success("Updated %s to %s", opts.Manifest, next)
	updated := []string{opts.Manifest}

	for _, bf := range opts.BumpFiles {
		ok, err := BumpVersionInFile(bf, next)
		switch {
		case err != nil:
			warnings = multierror.Append(warnings, fmt.Errorf("bump %s: %w", bf, err))
			r.Out.Warn("Could not bump %s: %v", bf, err)
		case !ok:
			warnings = multierror.Append(warnings, fmt.Errorf("bump %s: no version found", bf))
			r.Out.Warn("No version found in %s", bf)
		default:
			updated = append(updated, bf)
		}
	}

	if opts.GoModule && kind == Major && isGoManifest(opts.Manifest) {
		plan, needed, err := PlanGoModuleBump(opts.Manifest, next)
		if err != nil {
			return summary, err
		}
		if needed {
			changed, err := plan.Apply()
			updated = append(updated, changed...)
			if err != nil {
				summary.UpdatedFiles = updated
				return summary, err
			}
			r.Out.Success("Module path is now %s", plan.NewPath)
		}
	}
	summary.UpdatedFiles = updated

	stage := slices.Clone(updated)
	for _, f := range opts.Files {
		if !slices.Contains(stage, f) {
			stage = append(stage, f)
		}
	}
	if err := r.Git.CommitAndTag(ctx, next, kind, stage); err != nil {
		summary.Commit = StepFailed
		return summary, err
	}
	summary.Commit = StepDone
	r.Out.Success("Committed and tagged %s", next.Tag())

	publish, push, err := r.postCommitActions(ctx, opts.Policy)
	if err != nil {
		return summary, err
	}

	if publish {
		stop := r.Out.Spin("Publishing " + next.Tag())
		ok := r.Registry.Publish(ctx)
		stop()
		if ok {
			summary.Publish = StepDone
			r.Out.Success("Published %s", next.Tag())
		} else {
			summary.Publish = StepFailed
			warnings = multierror.Append(warnings, fmt.Errorf("publish %s failed", next.Tag()))
			r.Out.Warn("Publishing failed, continuing")
		}
	}

	if push {
		stop := r.Out.Spin("Pushing to " + r.Git.remote())
		err := r.Git.Push(ctx)
		stop()
		if err != nil {
			summary.Push = StepFailed
			return summary, err
		}
		summary.Push = StepDone
		r.Out.Success("Pushed commit and tags to %s", r.Git.remote())
	}

	summary.Warnings = warnings.ErrorOrNil()

	return summary, nil
}

func (r *Release) chooseKind(ctx context.Context, current Version, opts Options) (BumpKind, error) {
	if opts.Kind != "" {
		return opts.Kind, nil
	}

	candidates := Candidates(current)
	options := make([]prompt.Option, len(candidates))
	def := 0
	for i, c := range candidates {
		options[i] = prompt.Option{
			Key:   string(c.Kind),
			Label: fmt.Sprintf("%-5s  %s → %s", c.Kind, current, c.Version),
		}
		if c.Kind == opts.DefaultKind {
			def = i
		}
	}

	i, err := r.Prompt.Select(ctx, "Select the new version:", options, def)
	if errors.Is(err, prompt.ErrCancelled) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return candidates[i].Kind, nil
}

// postCommitActions asks what to do after commit and tag, as the policy
// dictates. A cancelled prompt means do nothing.
func (r *Release) postCommitActions(ctx context.Context, policy PostCommitPolicy) (publish, push bool, err error) {
	switch policy {
	case PolicyMenu:
		i, err := r.Prompt.Select(ctx, "What next?", postCommitOptions, actionPublishAndPush)
		if errors.Is(err, prompt.ErrCancelled) {
			i = actionSkip
		} else if err != nil {
			return false, false, err
		}
		slog.Debug("post-commit action", "action", postCommitOptions[i].Key)
		return i == actionPublishAndPush, i != actionSkip, nil

	case PolicyConfirm:
		ok, err := r.Prompt.Confirm(ctx, "Push now?", true)
		if err != nil && !errors.Is(err, prompt.ErrCancelled) {
			return false, false, err
		}
		return false, ok, nil
	}

	return false, false, nil
}

// plannedFiles lists what a real run would write, without writing.
func (r *Release) plannedFiles(opts Options, next Version, kind BumpKind) []string {
	files := []string{opts.Manifest}
	for _, bf := range opts.BumpFiles {
		if ManifestExists(bf) {
			files = append(files, bf)
		}
	}
	if opts.GoModule && kind == Major && isGoManifest(opts.Manifest) {
		if plan, needed, err := PlanGoModuleBump(opts.Manifest, next); err == nil && needed {
			files = append(files, filepath.Join(plan.Dir, "go.mod"))
			imports, err := plan.ImportFiles()
			if err != nil {
				r.Out.Warn("Could not scan imports: %v", err)
			}
			files = append(files, imports...)
		}
	}
	return files
}

func isGoManifest(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".go")
}
