// Package verbump provides a library for releasing a new version of a project
// whose version lives in a manifest file.
//
// It provides functionalities for:
//   - Reading and writing the version field of JSON, YAML and Go source manifests,
//     keeping every other field intact.
//   - Computing the next major, minor or patch version.
//   - Integrating with Git to stage the manifest, commit with a conventional-commit
//     message, tag the commit "vX.Y.Z" and push the branch and tags.
//   - Checking the login of an npm-compatible registry and publishing to it.
//   - Running the whole interactive flow through [Release], with a configurable
//     post-commit policy.
//
// All external tools run through a [Runner], so the flow can be driven by a fake
// in tests.
//
// Usage Example:
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//
//	    verbump "github.com/bcomnes/verbump/pkg"
//	    "github.com/bcomnes/verbump/pkg/console"
//	    "github.com/bcomnes/verbump/pkg/prompt"
//	)
//
//	func main() {
//	    runner := verbump.ExecRunner{}
//	    rel := &verbump.Release{
//	        Git:      &verbump.Git{Runner: runner},
//	        Registry: &verbump.Registry{Runner: runner},
//	        Prompt:   prompt.New(os.Stdin, os.Stdout),
//	        Out:      console.New(os.Stdout, console.Options{}),
//	    }
//	    summary, err := rel.Run(context.Background(), verbump.Options{
//	        Manifest: "package.json",
//	        Policy:   verbump.PolicyConfirm,
//	    })
//	    if err != nil {
//	        log.Fatalf("release failed: %v", err)
//	    }
//	    log.Printf("released %s", summary.Tag())
//	}
package verbump
