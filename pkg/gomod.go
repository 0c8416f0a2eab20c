package verbump

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// locateGoModDir walks up from startDir to the directory holding go.mod.
func locateGoModDir(startDir string) (string, error) {
	d, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", fs.ErrNotExist
		}
		d = parent
	}
}

// modulePathFor returns modPath with its major version suffix set for v.
// v0 and v1 modules carry no suffix.
func modulePathFor(modPath string, v Version) string {
	base, _, ok := module.SplitPathVersion(modPath)
	if !ok {
		base = modPath
	}
	maj := semver.Major(v.Tag())
	if maj == "v0" || maj == "v1" {
		return base
	}
	return base + "/" + maj
}

// GoModuleBump describes the go.mod rewrite a major bump needs.
type GoModuleBump struct {
	Dir     string
	OldPath string
	NewPath string
}

// PlanGoModuleBump finds the go.mod above manifestPath and computes its new
// module path for v. It returns false when there is no go.mod or the path
// does not change.
func PlanGoModuleBump(manifestPath string, v Version) (GoModuleBump, bool, error) {
	dir, err := locateGoModDir(filepath.Dir(manifestPath))
	if errors.Is(err, fs.ErrNotExist) {
		return GoModuleBump{}, false, nil
	}
	if err != nil {
		return GoModuleBump{}, false, err
	}

	gomod := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return GoModuleBump{}, false, fmt.Errorf("reading go.mod: %w", err)
	}
	f, err := modfile.ParseLax(gomod, data, nil)
	if err != nil {
		return GoModuleBump{}, false, fmt.Errorf("parsing go.mod: %w", err)
	}
	if f.Module == nil {
		return GoModuleBump{}, false, errors.New("module directive not found in go.mod")
	}

	plan := GoModuleBump{
		Dir:     dir,
		OldPath: f.Module.Mod.Path,
		NewPath: modulePathFor(f.Module.Mod.Path, v),
	}
	return plan, plan.OldPath != plan.NewPath, nil
}

// Apply rewrites go.mod and every self-import below Dir. It returns the files
// it changed.
func (p GoModuleBump) Apply() ([]string, error) {
	gomod := filepath.Join(p.Dir, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return nil, fmt.Errorf("reading go.mod: %w", err)
	}
	f, err := modfile.Parse(gomod, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing go.mod: %w", err)
	}
	if err := f.AddModuleStmt(p.NewPath); err != nil {
		return nil, fmt.Errorf("setting module path: %w", err)
	}
	out, err := f.Format()
	if err != nil {
		return nil, fmt.Errorf("formatting go.mod: %w", err)
	}
	if err := os.WriteFile(gomod, out, 0o644); err != nil {
		return nil, fmt.Errorf("writing go.mod: %w", err)
	}

	changed := []string{gomod}
	imports, err := p.rewriteImports(true)
	if err != nil {
		return changed, err
	}
	return append(changed, imports...), nil
}

// ImportFiles lists the Go files whose self-imports Apply would rewrite,
// without changing them.
func (p GoModuleBump) ImportFiles() ([]string, error) {
	return p.rewriteImports(false)
}

func (p GoModuleBump) rewriteImports(write bool) ([]string, error) {
	var modified []string
	err := filepath.WalkDir(p.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != p.Dir && (d.Name() == "vendor" || strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		changed := false
		for _, imp := range file.Imports {
			ip, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			if ip == p.OldPath || strings.HasPrefix(ip, p.OldPath+"/") {
				imp.Path.Value = strconv.Quote(p.NewPath + strings.TrimPrefix(ip, p.OldPath))
				changed = true
			}
		}
		if !changed {
			return nil
		}
		if !write {
			modified = append(modified, path)
			return nil
		}

		var buf bytes.Buffer
		if err := format.Node(&buf, fset, file); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return err
		}
		modified = append(modified, path)
		return nil
	})
	return modified, err
}
