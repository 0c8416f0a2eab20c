// Package config loads verbump settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = ".verbump.yaml"

// Post-commit policies.
const (
	PolicyMenu    = "menu"
	PolicyConfirm = "confirm"
	PolicySkip    = "skip"
)

// Policies lists the accepted post-commit policies.
var Policies = []string{PolicyMenu, PolicyConfirm, PolicySkip}

// Registry configures the package registry CLI.
type Registry struct {
	Command     string   `yaml:"command"`
	PublishArgs []string `yaml:"publish_args"`
}

// Config is the full set of settings.
type Config struct {
	// Manifest is the file holding the version.
	Manifest string `yaml:"manifest"`
	// PostCommit is what happens after commit and tag: menu, confirm or skip.
	PostCommit string `yaml:"post_commit"`
	// DefaultBump is preselected in the version menu.
	DefaultBump string `yaml:"default_bump"`
	// Remote is the git remote to push to.
	Remote   string   `yaml:"remote"`
	Registry Registry `yaml:"registry"`
	// Files are staged together with the manifest.
	Files []string `yaml:"files"`
	// BumpFiles get their main version string replaced as well.
	BumpFiles []string `yaml:"bump_files"`
	// GoModule rewrites go.mod and self-imports on v2+ major bumps.
	GoModule bool `yaml:"go_module"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Manifest:    "package.json",
		PostCommit:  PolicyMenu,
		DefaultBump: "patch",
		Remote:      "origin",
		Registry: Registry{
			Command: "npm",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error unless
// required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs *multierror.Error

	if strings.TrimSpace(c.Manifest) == "" {
		errs = multierror.Append(errs, errors.New("manifest must not be empty"))
	}
	if !slices.Contains(Policies, c.PostCommit) {
		errs = multierror.Append(errs, fmt.Errorf("post_commit %q must be one of %s", c.PostCommit, strings.Join(Policies, ", ")))
	}
	switch c.DefaultBump {
	case "major", "minor", "patch":
	default:
		errs = multierror.Append(errs, fmt.Errorf("default_bump %q must be one of major, minor, patch", c.DefaultBump))
	}
	if strings.TrimSpace(c.Remote) == "" {
		errs = multierror.Append(errs, errors.New("remote must not be empty"))
	}
	if c.PostCommit == PolicyMenu && strings.TrimSpace(c.Registry.Command) == "" {
		errs = multierror.Append(errs, errors.New("registry.command must not be empty when post_commit is menu"))
	}

	return errs.ErrorOrNil()
}
