package verbump

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// versionKey is the manifest field holding the version.
const versionKey = "version"

// ManifestFormat reads and rewrites the version field of one kind of
// manifest file.
type ManifestFormat interface {
	// Name identifies the format in log output.
	Name() string
	// Version returns the raw version string and whether the field exists.
	Version(data []byte) (string, bool)
	// SetVersion returns data with the version field set to version. Every
	// other field is kept.
	SetVersion(data []byte, version string) ([]byte, error)
}

// FormatFor picks the manifest format from the file extension. Unknown
// extensions are treated as JSON, the format of package.json.
func FormatFor(path string) ManifestFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlManifest{}
	case ".go":
		return goManifest{path: path}
	default:
		return jsonManifest{}
	}
}

// ManifestExists reports whether path names a regular file.
func ManifestExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// ReadVersion returns the version stored in the manifest at path. A missing
// file, an unparseable file, a missing field or a malformed value all read as
// 0.0.0.
func ReadVersion(path string) Version {
	data, err := os.ReadFile(path)
	if err != nil {
		return Version{}
	}
	raw, ok := FormatFor(path).Version(data)
	if !ok {
		return Version{}
	}
	return ParseVersion(raw)
}

// WriteVersion stores v in the manifest at path, keeping every other field.
func WriteVersion(path string, v Version) error {
	format := FormatFor(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if g, ok := format.(goManifest); ok {
			return g.create(v.String())
		}
		return fmt.Errorf("%w: %s", ErrManifestMissing, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	out, err := format.SetVersion(data, v.String())
	if err != nil {
		return fmt.Errorf("failed to update %s manifest %q: %w", format.Name(), path, err)
	}

	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	return os.WriteFile(path, out, mode)
}

// jsonManifest handles package.json style files. The top-level object keeps
// its key order; values other than version are copied verbatim and
// re-indented with two spaces.
type jsonManifest struct{}

func (jsonManifest) Name() string { return "json" }

func (jsonManifest) Version(data []byte) (string, bool) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", false
	}
	s, ok := doc[versionKey].(string)
	return s, ok
}

type jsonField struct {
	key   string
	value json.RawMessage
}

func (jsonManifest) SetVersion(data []byte, version string) ([]byte, error) {
	fields, err := decodeJSONObject(data)
	if err != nil {
		return nil, err
	}

	encoded, err := marshalJSON(version)
	if err != nil {
		return nil, err
	}

	// Every duplicate is replaced, since readers take the last one.
	replaced := false
	for i := range fields {
		if fields[i].key == versionKey {
			fields[i].value = encoded
			replaced = true
		}
	}
	if !replaced {
		fields = append(fields, jsonField{key: versionKey, value: encoded})
	}

	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := marshalJSON(f.key)
		if err != nil {
			return nil, err
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(f.value)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// decodeJSONObject splits a top-level JSON object into its fields in
// document order.
func decodeJSONObject(data []byte) ([]jsonField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("manifest is not a JSON object")
	}

	var fields []jsonField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		fields = append(fields, jsonField{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// marshalJSON encodes v without escaping <, > and &, the way npm writes
// package.json.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// yamlManifest handles pubspec.yaml, Chart.yaml and similar files. Editing
// goes through the node tree so comments and key order survive.
type yamlManifest struct{}

func (yamlManifest) Name() string { return "yaml" }

func (yamlManifest) Version(data []byte) (string, bool) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", false
	}
	s, ok := doc[versionKey].(string)
	return s, ok
}

func (yamlManifest) SetVersion(data []byte, version string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("manifest is not a YAML mapping")
	}

	root := doc.Content[0]
	found := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == versionKey {
			value := root.Content[i+1]
			value.Kind = yaml.ScalarNode
			value.Tag = "!!str"
			value.Value = version
			found = true
			break
		}
	}
	if !found {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: versionKey},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: version},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// goManifest handles a Go source file declaring Version = "X.Y.Z".
type goManifest struct {
	path string
}

// goVersionRe matches a Version declaration at the start of a line, alone or
// inside a var/const block.
var goVersionRe = regexp.MustCompile(`(?m)^[ \t]*(?:(?:var|const)[ \t]+)?Version(?:[ \t]+string)?[ \t]*=[ \t]*"([^"]*)"`)

func (goManifest) Name() string { return "go" }

func (goManifest) Version(data []byte) (string, bool) {
	m := goVersionRe.FindSubmatch(data)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

func (g goManifest) SetVersion(data []byte, version string) ([]byte, error) {
	loc := goVersionRe.FindSubmatchIndex(data)
	if loc == nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return []byte(goVersionSource(g.packageName(), version)), nil
		}
		out := bytes.TrimRight(data, "\n")
		return fmt.Appendf(out, "\n\nvar Version = %q\n", version), nil
	}
	out := make([]byte, 0, len(data)+len(version))
	out = append(out, data[:loc[2]]...)
	out = append(out, version...)
	out = append(out, data[loc[3]:]...)
	return out, nil
}

func (g goManifest) create(version string) error {
	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	return os.WriteFile(g.path, []byte(goVersionSource(g.packageName(), version)), 0o644)
}

var packageClauseRe = regexp.MustCompile(`(?m)^package\s+(\w+)`)

// packageName returns the package of the manifest file, or of the other Go
// files in its directory, falling back to "version".
func (g goManifest) packageName() string {
	if data, err := os.ReadFile(g.path); err == nil {
		if m := packageClauseRe.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}

	entries, err := os.ReadDir(filepath.Dir(g.path))
	if err != nil {
		return "version"
	}
	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(filepath.Dir(g.path), name), nil, parser.PackageClauseOnly)
		if err == nil {
			return f.Name.Name
		}
	}
	return "version"
}

func goVersionSource(pkg, version string) string {
	return fmt.Sprintf(`package %s

var (
	Version = "%s"
)
`, pkg, version)
}
