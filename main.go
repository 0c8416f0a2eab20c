// Package main implements the verbump CLI: bump the version in a manifest,
// commit, tag, and optionally push and publish.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	verbump "github.com/bcomnes/verbump/pkg"
	"github.com/bcomnes/verbump/pkg/config"
	"github.com/bcomnes/verbump/pkg/console"
	"github.com/bcomnes/verbump/pkg/log"
	"github.com/bcomnes/verbump/pkg/prompt"
)

const longDesc = `Bumps the version in a manifest file (default: ./package.json), commits the change
with a conventional-commit message, and tags the commit with the version prefixed with "v".

Without a bump argument you are asked to choose between patch, minor and major.
After the commit, the post-commit policy decides what happens next:
  menu     choose between publish and push, push only, or skip
  confirm  answer a single "push now?" question
  skip     stop after commit and tag

Settings are read from .verbump.yaml when present; flags override them.`

const example = `  verbump
  verbump minor
  verbump --manifest pubspec.yaml --post-commit confirm
  verbump --manifest version.go --go-module major
  verbump --bump-file README.md --file CHANGELOG.md patch`

type rootArgs struct {
	configFile  string
	manifest    string
	postCommit  string
	defaultBump string
	remote      string
	registryCmd string
	publishArgs []string
	files       []string
	bumpFiles   []string
	goModule    bool
	dryRun      bool
	noColor     bool
	logLevel    string
	logFormat   string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	args := &rootArgs{}

	cmd := &cobra.Command{
		Use:           "verbump [flags] [major|minor|patch]",
		Short:         "Bump, commit, tag, push and publish a release",
		Long:          longDesc,
		Example:       example,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     []string{"major", "minor", "patch"},
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("verbump CLI version {{.Version}}\n")

	defaults := config.Default()
	f := cmd.Flags()
	f.StringVarP(&args.configFile, "config", "c", config.DefaultFile, "Path to the config file")
	f.StringVarP(&args.manifest, "manifest", "m", defaults.Manifest, "Manifest file holding the version (.json, .yaml, .yml or .go)")
	f.StringVar(&args.postCommit, "post-commit", defaults.PostCommit, "What to do after commit and tag: "+strings.Join(config.Policies, ", "))
	f.StringVar(&args.defaultBump, "default-bump", defaults.DefaultBump, "Bump kind preselected in the menu")
	f.StringVar(&args.remote, "remote", defaults.Remote, "Git remote to push to")
	f.StringVar(&args.registryCmd, "registry-command", defaults.Registry.Command, "npm-compatible CLI used to check login and publish")
	f.StringArrayVar(&args.publishArgs, "publish-arg", nil, "Extra argument for the publish command. May be repeated.")
	f.StringArrayVar(&args.files, "file", nil, "Additional file to stage and commit. May be repeated.")
	f.StringArrayVar(&args.bumpFiles, "bump-file", nil, "Additional file whose main version is replaced too. May be repeated.")
	f.BoolVar(&args.goModule, "go-module", false, "On a v2+ major bump of a .go manifest, rewrite go.mod and self-imports")
	f.BoolVar(&args.dryRun, "dry-run", false, "Show what would happen without modifying any files or the git repository")
	f.BoolVar(&args.noColor, "no-color", false, "Disable colored output")
	f.StringVar(&args.logLevel, "log-level", "warn", "Set the log level ("+strings.Join(log.Levels, ", ")+")")
	f.StringVar(&args.logFormat, "log-format", log.TextFormat, "Set the log format ("+strings.Join(log.Formats, ", ")+")")

	if err := cmd.MarkFlagFilename("manifest", "json", "yaml", "yml", "go"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagFilename("config", "yaml", "yml"); err != nil {
		panic(err)
	}

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		h, err := log.CreateHandlerWithStrings(cc.ErrOrStderr(), args.logLevel, args.logFormat)
		if err != nil {
			return fmt.Errorf("log handler failed: %w", err)
		}
		slog.SetDefault(slog.New(h))

		return nil
	}

	cmd.RunE = func(cc *cobra.Command, positional []string) error {
		cfg, err := args.resolve(cc)
		if err != nil {
			return err
		}

		opts, err := releaseOptions(cfg, args.dryRun, positional)
		if err != nil {
			return err
		}

		out := console.New(cc.OutOrStdout(), console.Options{NoColor: args.noColor})
		runner := verbump.ExecRunner{}

		rel := &verbump.Release{
			Git: &verbump.Git{Runner: runner, Remote: cfg.Remote},
			Registry: &verbump.Registry{
				Runner:      runner,
				Dir:         filepath.Dir(cfg.Manifest),
				Command:     cfg.Registry.Command,
				PublishArgs: cfg.Registry.PublishArgs,
			},
			Prompt: prompt.New(cc.InOrStdin(), cc.OutOrStdout()),
			Out:    out,
		}

		slog.Debug("starting release", "manifest", cfg.Manifest, "policy", cfg.PostCommit, "dry_run", args.dryRun)

		summary, err := rel.Run(cc.Context(), opts)
		if err != nil {
			return err
		}

		printSummary(out, summary)

		return nil
	}

	return cmd
}

// resolve loads the config file and applies explicitly set flags over it.
func (a *rootArgs) resolve(cc *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(a.configFile, cc.Flags().Changed("config"))
	if err != nil {
		return cfg, err
	}

	changed := cc.Flags().Changed
	if changed("manifest") {
		cfg.Manifest = a.manifest
	}
	if changed("post-commit") {
		cfg.PostCommit = a.postCommit
	}
	if changed("default-bump") {
		cfg.DefaultBump = a.defaultBump
	}
	if changed("remote") {
		cfg.Remote = a.remote
	}
	if changed("registry-command") {
		cfg.Registry.Command = a.registryCmd
	}
	if changed("publish-arg") {
		cfg.Registry.PublishArgs = a.publishArgs
	}
	if changed("go-module") {
		cfg.GoModule = a.goModule
	}
	cfg.Files = append(cfg.Files, a.files...)
	cfg.BumpFiles = append(cfg.BumpFiles, a.bumpFiles...)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func releaseOptions(cfg config.Config, dryRun bool, positional []string) (verbump.Options, error) {
	policy, err := verbump.ParsePostCommitPolicy(cfg.PostCommit)
	if err != nil {
		return verbump.Options{}, err
	}
	def, err := verbump.ParseBumpKind(cfg.DefaultBump)
	if err != nil {
		return verbump.Options{}, err
	}

	opts := verbump.Options{
		Manifest:    cfg.Manifest,
		DefaultKind: def,
		Policy:      policy,
		Files:       cfg.Files,
		BumpFiles:   cfg.BumpFiles,
		GoModule:    cfg.GoModule,
		DryRun:      dryRun,
	}
	if len(positional) == 1 {
		if opts.Kind, err = verbump.ParseBumpKind(positional[0]); err != nil {
			return opts, err
		}
	}

	return opts, nil
}

func printSummary(out *console.Printer, s verbump.Summary) {
	if s.DryRun {
		out.Info("Dry run complete, nothing was changed.")
	} else {
		out.Success("Release %s complete!", out.Accent(s.Tag()))
	}
	out.Field("Old", s.OldVersion.String())
	out.Field("New", s.NewVersion.String())
	out.Field("Bump", string(s.Kind))
	out.Field("Files", strings.Join(s.UpdatedFiles, ", "))
	if !s.DryRun {
		out.Steps([][2]string{
			{"commit", string(s.Commit)},
			{"publish", string(s.Publish)},
			{"push", string(s.Push)},
		})
	}
	if s.Warnings != nil {
		out.Warn("Finished with warnings: %v", s.Warnings)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		console.New(os.Stderr, console.Options{}).Error("Error: %v", err)
		return 1
	}

	return 0
}
