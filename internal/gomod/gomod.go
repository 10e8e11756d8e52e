// Package gomod locates the module enclosing a directory so generated code
// can be given its import path.
package gomod

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// ErrNoModule is returned when no go.mod encloses the directory
var ErrNoModule = errors.New("go.mod file not found")

// Module is a parsed go.mod and the directory holding it
type Module struct {
	Dir  string
	Path string
	Go   string
}

// Parse reads the module declaration from a go.mod file
func Parse(goModPath string) (*Module, error) {
	clean := filepath.Clean(goModPath)
	if filepath.Base(clean) != "go.mod" {
		return nil, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}
	content, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	f, err := modfile.ParseLax(clean, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if f.Module == nil {
		return nil, fmt.Errorf("no module declaration found in %s", clean)
	}
	if err := module.CheckImportPath(f.Module.Mod.Path); err != nil {
		return nil, err
	}

	m := &Module{Dir: filepath.Dir(clean), Path: f.Module.Mod.Path}
	if f.Go != nil {
		m.Go = f.Go.Version
	}
	return m, nil
}

// Find walks up from startDir to the nearest go.mod
func Find(startDir string) (*Module, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(dir, "go.mod")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return Parse(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoModule
		}
		dir = parent
	}
}

// ImportPath returns the import path of the package in dir
func (m *Module) ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(m.Dir, abs)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return m.Path, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside module %s", dir, m.Path)
	}
	path := m.Path + "/" + filepath.ToSlash(rel)
	if err := module.CheckImportPath(path); err != nil {
		return "", err
	}
	return path, nil
}
