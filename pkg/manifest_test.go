package verbump

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// TestReadVersion covers every manifest format and the 0.0.0 fallbacks.
func TestReadVersion(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected string
	}{
		{"json", "package.json", `{"name": "app", "version": "1.2.3"}`, "1.2.3"},
		{"json without version", "package.json", `{"name": "app"}`, "0.0.0"},
		{"json numeric version", "package.json", `{"version": 1}`, "0.0.0"},
		{"json malformed version", "package.json", `{"version": "one.two"}`, "0.0.0"},
		{"invalid json", "package.json", `{"version": "1.2.3"`, "0.0.0"},
		{"json array", "package.json", `["1.2.3"]`, "0.0.0"},
		{"yaml", "pubspec.yaml", "name: app\nversion: 2.3.4\n", "2.3.4"},
		{"yml quoted", "Chart.yml", "version: \"0.4.0\"\n", "0.4.0"},
		{"invalid yaml", "pubspec.yaml", "version: [1.2.3\n", "0.0.0"},
		{"go", "version.go", "package main\n\nvar (\n\tVersion = \"3.0.1\"\n)\n", "3.0.1"},
		{"go without declaration", "version.go", "package main\n", "0.0.0"},
		{"go const with type", "version.go", "package main\n\nconst Version string = \"0.7.1\"\n", "0.7.1"},
		{"go after similar names", "version.go", "package main\n\n// AppVersion = \"0.9.0\" legacy\nvar GoVersion = \"1.22.0\"\nvar Version = \"1.2.3\"\n", "1.2.3"},
		{"json duplicate version", "package.json", `{"version": "1.2.3", "version": "4.5.6"}`, "4.5.6"},
		{"unknown extension is json", "manifest", `{"version": "5.6.7"}`, "5.6.7"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			writeFile(t, path, tc.content)
			if got := ReadVersion(path).String(); got != tc.expected {
				t.Errorf("ReadVersion = %q, expected %q", got, tc.expected)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if got := ReadVersion(filepath.Join(t.TempDir(), "package.json")).String(); got != "0.0.0" {
			t.Errorf("ReadVersion of missing file = %q, expected 0.0.0", got)
		}
	})
}

// TestWriteVersionJSON checks that key order and other values survive.
func TestWriteVersionJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	writeFile(t, path, `{
    "name": "my-app",
    "version": "1.2.3",
    "description": "a <b>bold</b> & tidy app",
    "scripts": {"test": "tap", "build": "tsc"},
    "files": ["dist", "lib"],
    "private": false,
    "count": 1.50
}`)

	if err := WriteVersion(path, Version{1, 3, 0}); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}

	expected := `{
  "name": "my-app",
  "version": "1.3.0",
  "description": "a <b>bold</b> & tidy app",
  "scripts": {
    "test": "tap",
    "build": "tsc"
  },
  "files": [
    "dist",
    "lib"
  ],
  "private": false,
  "count": 1.50
}
`
	if got := readFile(t, path); got != expected {
		t.Errorf("unexpected manifest after write:\n%s\nexpected:\n%s", got, expected)
	}
}

// TestWriteVersionJSONScenario is the minimal manifest round trip.
func TestWriteVersionJSONScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	writeFile(t, path, `{"version":"1.2.3"}`)

	if err := WriteVersion(path, ReadVersion(path).Next(Minor)); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}
	if got := readFile(t, path); got != "{\n  \"version\": \"1.3.0\"\n}\n" {
		t.Errorf("unexpected manifest: %q", got)
	}
}

func TestWriteVersionJSONAddsMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	writeFile(t, path, `{"name": "app"}`)

	if err := WriteVersion(path, Version{0, 0, 1}); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}
	expected := "{\n  \"name\": \"app\",\n  \"version\": \"0.0.1\"\n}\n"
	if got := readFile(t, path); got != expected {
		t.Errorf("unexpected manifest: %q, expected %q", got, expected)
	}
}

func TestWriteVersionJSONRejectsNonObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	writeFile(t, path, `["not", "an", "object"]`)

	if err := WriteVersion(path, Version{1, 0, 0}); err == nil {
		t.Error("WriteVersion on a JSON array did not return an error")
	}
	if got := readFile(t, path); got != `["not", "an", "object"]` {
		t.Errorf("manifest changed after failed write: %q", got)
	}
}

// TestWriteVersionYAML checks that comments and key order survive.
func TestWriteVersionYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pubspec.yaml")
	writeFile(t, path, `# app manifest
name: app
version: 1.2.3 # bumped by verbump
environment:
  sdk: ">=3.0.0 <4.0.0"
dependencies:
  - http
`)

	if err := WriteVersion(path, Version{2, 0, 0}); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}

	got := readFile(t, path)
	for _, want := range []string{"# app manifest", "version: 2.0.0 # bumped by verbump", `sdk: ">=3.0.0 <4.0.0"`, "- http"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in manifest, got:\n%s", want, got)
		}
	}
	if strings.Index(got, "name:") > strings.Index(got, "version:") || strings.Index(got, "version:") > strings.Index(got, "environment:") {
		t.Errorf("key order changed:\n%s", got)
	}
	if ReadVersion(path).String() != "2.0.0" {
		t.Errorf("ReadVersion after write = %q", ReadVersion(path))
	}
}

func TestWriteVersionYAMLAddsMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Chart.yaml")
	writeFile(t, path, "name: chart\n")

	if err := WriteVersion(path, Version{0, 1, 0}); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}
	if got := readFile(t, path); got != "name: chart\nversion: 0.1.0\n" {
		t.Errorf("unexpected manifest: %q", got)
	}
}

// TestWriteVersionGo checks that only the version literal changes.
func TestWriteVersionGo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.go")
	initial := `package cli

// Version is set at release time.
var (
	Version = "1.2.3"
	Commit  = "none"
)
`
	writeFile(t, path, initial)

	if err := WriteVersion(path, Version{1, 2, 4}); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}
	expected := strings.Replace(initial, `"1.2.3"`, `"1.2.4"`, 1)
	if got := readFile(t, path); got != expected {
		t.Errorf("unexpected version file:\n%s\nexpected:\n%s", got, expected)
	}
}

// TestWriteVersionGoSkipsSimilarNames leaves comments and other *Version
// identifiers alone.
func TestWriteVersionGoSkipsSimilarNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.go")
	initial := `package cli

// AppVersion = "0.9.0" legacy
const FooVersion = "0.1.0"

var Version = "1.2.3"
`
	writeFile(t, path, initial)

	if err := WriteVersion(path, ReadVersion(path).Next(Minor)); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}
	expected := strings.Replace(initial, `Version = "1.2.3"`, `Version = "1.3.0"`, 1)
	if got := readFile(t, path); got != expected {
		t.Errorf("unexpected version file:\n%s\nexpected:\n%s", got, expected)
	}
	if got := ReadVersion(path); got != (Version{1, 3, 0}) {
		t.Errorf("ReadVersion after write = %v, expected 1.3.0", got)
	}
}

func TestWriteVersionGoAppendsMissingDeclaration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.go")
	writeFile(t, path, "package cli\n\n// AppVersion = \"0.9.0\"\nconst Name = \"tool\"\n")

	if err := WriteVersion(path, Version{0, 0, 1}); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}
	expected := "package cli\n\n// AppVersion = \"0.9.0\"\nconst Name = \"tool\"\n\nvar Version = \"0.0.1\"\n"
	if got := readFile(t, path); got != expected {
		t.Errorf("unexpected version file:\n%s\nexpected:\n%s", got, expected)
	}
}

// TestWriteVersionJSONDuplicateKeys keeps reads and writes in agreement when
// a manifest repeats the version key.
func TestWriteVersionJSONDuplicateKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	writeFile(t, path, `{"version": "1.2.3", "name": "app", "version": "4.5.6"}`)

	next := ReadVersion(path).Next(Minor)
	if next != (Version{4, 6, 0}) {
		t.Fatalf("next = %v, expected 4.6.0", next)
	}
	if err := WriteVersion(path, next); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}
	if got := ReadVersion(path); got != next {
		t.Errorf("ReadVersion after write = %v, expected %v", got, next)
	}
	if got := readFile(t, path); strings.Contains(got, "1.2.3") || strings.Contains(got, "4.5.6") {
		t.Errorf("stale version left in manifest:\n%s", got)
	}
}

// TestWriteVersionGoCreates creates a missing version file using the package
// of its neighbours.
func TestWriteVersionGoCreates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package tool\n\nfunc main() {}\n")
	writeFile(t, filepath.Join(dir, "main_test.go"), "package tool_test\n")
	path := filepath.Join(dir, "version.go")

	if err := WriteVersion(path, Version{0, 1, 0}); err != nil {
		t.Fatalf("WriteVersion failed: %v", err)
	}
	got := readFile(t, path)
	if !strings.HasPrefix(got, "package tool\n") {
		t.Errorf("expected package tool, got:\n%s", got)
	}
	if !strings.Contains(got, `Version = "0.1.0"`) {
		t.Errorf("expected version declaration, got:\n%s", got)
	}
}

func TestWriteVersionMissingJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	if err := WriteVersion(path, Version{1, 0, 0}); err == nil {
		t.Error("WriteVersion on a missing JSON manifest did not return an error")
	}
	if ManifestExists(path) {
		t.Error("WriteVersion created a missing JSON manifest")
	}
}

func TestManifestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	if ManifestExists(path) {
		t.Error("ManifestExists reported a missing file")
	}
	writeFile(t, path, "{}")
	if !ManifestExists(path) {
		t.Error("ManifestExists did not report an existing file")
	}
	if ManifestExists(dir) {
		t.Error("ManifestExists reported a directory")
	}
}
