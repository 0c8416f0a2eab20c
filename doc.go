// The verbump tool is a command-line interface that automates releases of a project
// whose version lives in a manifest file. It reads the version from the manifest
// (default "./package.json"), asks which component to bump, writes the new version back,
// stages the change, commits it with a conventional-commit message and tags the commit
// with the new version prefixed with "v". It can then push the commit and tags and
// publish the package to an npm-compatible registry.
//
// Command Usage:
//
//	verbump [flags] [major|minor|patch]
//
// Flags:
//
//	--manifest, -m:     Path to the manifest holding the version. JSON (package.json),
//	                    YAML (pubspec.yaml, Chart.yaml) and Go source (version.go) are supported.
//	--config, -c:       Path to the YAML config file. (Defaults to ".verbump.yaml")
//	--post-commit:      What happens after commit and tag: "menu" (publish and push, push only,
//	                    or skip), "confirm" (a single push question) or "skip".
//	--default-bump:     Bump kind preselected in the version menu.
//	--remote:           Git remote to push to. (Defaults to "origin")
//	--registry-command: npm-compatible CLI used for whoami and publish. (Defaults to "npm")
//	--publish-arg:      Extra argument for the publish command. May be repeated.
//	--file:             Additional file to stage together with the manifest. May be repeated.
//	--bump-file:        Additional file whose main version string is replaced too. May be repeated.
//	--go-module:        On a v2+ major bump of a Go manifest, rewrite go.mod and self-imports.
//	--dry-run:          Show what would happen without touching files or the repository.
//	--version:          Displays the version of the verbump CLI tool and exits.
//
// Examples:
//
//	# Choose the bump kind from a menu (e.g. 1.2.3 → 1.2.4, 1.3.0 or 2.0.0)
//	verbump
//
//	# Bump the minor version without the menu (e.g. 1.2.3 → 1.3.0)
//	verbump minor
//
//	# Bump a Flutter package and ask before pushing
//	verbump --manifest pubspec.yaml --post-commit confirm
//
//	# Bump a Go module to v2, updating go.mod and imports
//	verbump --manifest version.go --go-module --post-commit skip major
//
// The release commit message depends on the bump kind: "fix: release vX.Y.Z" for a patch,
// "feat: release vX.Y.Z" for a minor and "chore: release vX.Y.Z" with a BREAKING CHANGE
// footer for a major release.
//
// For the library API, see the documentation in the "pkg" package.
package main
