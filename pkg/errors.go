package verbump

import "errors"

var (
	ErrManifestMissing  = errors.New("manifest file not found")
	ErrNotAuthenticated = errors.New("not logged in to the package registry")
	ErrGitUnavailable   = errors.New("git is not available on the system")
	ErrCancelled        = errors.New("version selection cancelled")
	ErrDeclined         = errors.New("aborted: working directory has uncommitted changes")
)
