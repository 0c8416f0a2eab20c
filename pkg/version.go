package verbump

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// BumpKind selects which version component increments.
type BumpKind string

const (
	Major BumpKind = "major"
	Minor BumpKind = "minor"
	Patch BumpKind = "patch"
)

// BumpKinds lists the bump kinds in menu order.
var BumpKinds = []BumpKind{Patch, Minor, Major}

// ParseBumpKind converts a bump name given on the command line or in the
// config file.
func ParseBumpKind(s string) (BumpKind, error) {
	switch k := BumpKind(strings.ToLower(strings.TrimSpace(s))); k {
	case Major, Minor, Patch:
		return k, nil
	}
	return "", fmt.Errorf("unknown bump argument: %s", s)
}

// Version is a major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "X.Y.Z" (with an optional "v" prefix). Anything that is
// not a full semantic version parses as 0.0.0. Prerelease and build suffixes
// are dropped.
func ParseVersion(s string) Version {
	v := strings.TrimSpace(s)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return Version{}
	}

	core := strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	// semver.IsValid accepts the "v1" and "v1.2" shorthands.
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}
}

// String formats the version without a "v" prefix.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tag is the git tag name for the version.
func (v Version) Tag() string {
	return "v" + v.String()
}

// Next returns the version after applying kind. An unknown kind leaves the
// version unchanged.
func (v Version) Next(kind BumpKind) Version {
	switch kind {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
	return v
}

// Candidate is a bump kind paired with the version it would produce.
type Candidate struct {
	Kind    BumpKind
	Version Version
}

// Candidates computes the next version for every bump kind, in menu order.
func Candidates(current Version) []Candidate {
	out := make([]Candidate, 0, len(BumpKinds))
	for _, k := range BumpKinds {
		out = append(out, Candidate{Kind: k, Version: current.Next(k)})
	}
	return out
}
