package verbump

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// versionPattern locates a version inside a line. Group 1 is the version
// itself, without any "v" prefix.
type versionPattern struct {
	name string
	re   *regexp.Regexp
}

const semverCore = `(\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?)`

// Ordered from most to least specific. A top-level field wins over a version
// mentioned in prose.
var versionPatterns = []versionPattern{
	{name: "JSON version field", re: regexp.MustCompile(`^\s{0,2}"version"\s*:\s*"v?` + semverCore + `"`)},
	{name: "TOML version field", re: regexp.MustCompile(`^\s*version\s*=\s*"v?` + semverCore + `"`)},
	{name: "VERSION assignment", re: regexp.MustCompile(`(?i)^\s*(?:export\s+)?VERSION\s*[:=]\s*["']?v?` + semverCore)},
	{name: "XML version tag", re: regexp.MustCompile(`<version>v?` + semverCore + `</version>`)},
	{name: "doc comment version", re: regexp.MustCompile(`@version\s+v?` + semverCore)},
	{name: "version text", re: regexp.MustCompile(`(?i)\bversion\s*[:=]?\s*["']?v?` + semverCore)},
}

// versionMatch is the byte range of a version inside a file.
type versionMatch struct {
	pattern string
	line    int
	start   int
	end     int
	version string
}

// findMainVersion returns the most likely primary version in content. In a
// TOML file only the [package] or [project] table, or the top level, counts.
func findMainVersion(content string) (versionMatch, bool) {
	lines := strings.SplitAfter(content, "\n")

	for _, p := range versionPatterns {
		offset := 0
		table := ""
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
				table = strings.Trim(trimmed, "[]")
			}

			loc := p.re.FindStringSubmatchIndex(line)
			if loc != nil && (p.name != "TOML version field" || table == "" || table == "package" || table == "project") {
				return versionMatch{
					pattern: p.name,
					line:    i + 1,
					start:   offset + loc[2],
					end:     offset + loc[3],
					version: line[loc[2]:loc[3]],
				}, true
			}
			offset += len(line)
		}
	}
	return versionMatch{}, false
}

// BumpVersionInFile replaces the main version found in path with version.
// It reports false when no version was found.
func BumpVersionInFile(path string, v Version) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading file %s: %w", path, err)
	}
	content := string(data)

	m, ok := findMainVersion(content)
	if !ok {
		return false, nil
	}

	out := content[:m.start] + v.String() + content[m.end:]

	fi, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(out), fi.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing file %s: %w", path, err)
	}
	return true, nil
}
