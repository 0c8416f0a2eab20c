package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs the CLI instead of the tests when GO_HELPER_PROCESS is set.
func TestMain(m *testing.M) {
	if os.Getenv("GO_HELPER_PROCESS") == "1" {
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// runCLI runs the CLI as a helper process in dir, feeding it stdin.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := exec.Command(os.Args[0], args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GO_HELPER_PROCESS=1")
	cmd.Stdin = strings.NewReader(stdin)
	out, err := cmd.CombinedOutput()

	return string(out), err
}

// executeRoot runs the root command in-process.
func executeRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	t.Parallel()

	out, err := executeRoot(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "verbump [flags] [major|minor|patch]")
	assert.Contains(t, out, "--post-commit")
}

func TestRootVersion(t *testing.T) {
	t.Parallel()

	out, err := executeRoot(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "verbump CLI version "+Version+"\n", out)
}

func TestRootArgumentErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args []string
		err  string
	}{
		"too many args": {
			args: []string{"major", "minor"},
			err:  "accepts at most 1 arg(s), received 2",
		},
		"unknown bump": {
			args: []string{"huge"},
			err:  "unknown bump argument: huge",
		},
		"bad policy": {
			args: []string{"--post-commit", "always"},
			err:  "invalid configuration",
		},
		"bad default bump": {
			args: []string{"--default-bump", "tiny"},
			err:  `default_bump "tiny" must be one of major, minor, patch`,
		},
		"bad log level": {
			args: []string{"--log-level", "loud"},
			err:  "log handler failed",
		},
		"missing explicit config": {
			args: []string{"--config", "does-not-exist.yaml"},
			err:  "failed to read config",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := executeRoot(t, "", tc.args...)
			require.ErrorContains(t, err, tc.err)
		})
	}
}

func TestResolveFlagsOverConfig(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "verbump.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("manifest: pubspec.yaml\npost_commit: confirm\nfiles: [CHANGELOG.md]\n"), 0o644))

	cmd := newRootCmd(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--post-commit", "skip", "--file", "NOTES.md", "--remote", "upstream"}))

	a := &rootArgs{}
	a.configFile, _ = cmd.Flags().GetString("config")
	a.postCommit, _ = cmd.Flags().GetString("post-commit")
	a.remote, _ = cmd.Flags().GetString("remote")
	a.files, _ = cmd.Flags().GetStringArray("file")

	cfg, err := a.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, "pubspec.yaml", cfg.Manifest)
	assert.Equal(t, "skip", cfg.PostCommit)
	assert.Equal(t, "upstream", cfg.Remote)
	assert.Equal(t, []string{"CHANGELOG.md", "NOTES.md"}, cfg.Files)

	opts, err := releaseOptions(cfg, true, []string{"major"})
	require.NoError(t, err)
	assert.True(t, opts.DryRun)
	assert.EqualValues(t, "major", opts.Kind)
	assert.EqualValues(t, "patch", opts.DefaultKind)
}

// newRepo creates a git repository holding a committed package.json at 1.2.3.
func newRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not available on system")
	}

	dir := t.TempDir()
	git := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	git("init")
	git("config", "user.email", "test@example.com")
	git("config", "user.name", "Test User")
	git("config", "commit.gpgsign", "false")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{\n  \"name\": \"app\",\n  \"version\": \"1.2.3\"\n}\n"), 0o644))
	git("add", ".")
	git("commit", "-m", "initial commit")

	return dir
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)

	return strings.TrimSpace(string(out))
}

func TestCLIPatchBump(t *testing.T) {
	dir := newRepo(t)

	out, err := runCLI(t, dir, "", "--post-commit", "skip", "--no-color", "patch")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Release v1.2.4 complete!")
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.2.4"`)
	assert.Equal(t, "fix: release v1.2.4", gitOutput(t, dir, "log", "-1", "--format=%s"))
	assert.True(t, slices.Contains(strings.Fields(gitOutput(t, dir, "tag")), "v1.2.4"))
}

func TestCLIMenuSelection(t *testing.T) {
	dir := newRepo(t)

	// Second entry of the menu is minor.
	out, err := runCLI(t, dir, "2\n", "--post-commit", "skip", "--no-color")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Select the new version:")
	assert.Equal(t, "feat: release v1.3.0", gitOutput(t, dir, "log", "-1", "--format=%s"))
}

func TestCLIDeclinesDirtyTree(t *testing.T) {
	dir := newRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("wip\n"), 0o644))

	out, err := runCLI(t, dir, "n\n", "--post-commit", "skip", "--no-color", "patch")
	require.Error(t, err)
	assert.Contains(t, out, "Continue anyway?")
	assert.Contains(t, out, "Error: aborted: working directory has uncommitted changes")

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.2.3"`)
}

func TestCLIDryRun(t *testing.T) {
	dir := newRepo(t)

	out, err := runCLI(t, dir, "", "--post-commit", "skip", "--dry-run", "--no-color", "major")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Dry run complete, nothing was changed.")
	assert.Empty(t, gitOutput(t, dir, "tag"))
}

func TestCLIMissingManifest(t *testing.T) {
	dir := newRepo(t)

	out, err := runCLI(t, dir, "", "--manifest", "nope.json", "--post-commit", "skip", "patch")
	require.Error(t, err)
	assert.Contains(t, out, "manifest file not found")
}
