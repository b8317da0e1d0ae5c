package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/toyz/autoimpl/internal/errors"
)

// ModuleInfo describes the module enclosing a directory
type ModuleInfo struct {
	Path      string // module path from the module directive
	Root      string // directory holding go.mod
	GoVersion string // go directive, empty when absent
}

// GoModParser provides utilities for parsing go.mod files
type GoModParser struct{}

// NewGoModParser creates a new go.mod parser
func NewGoModParser() *GoModParser {
	return &GoModParser{}
}

// Parse reads the go.mod file at goModPath
func (p *GoModParser) Parse(goModPath string) (*ModuleInfo, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return nil, errors.FileSystemError("parse", goModPath, "not a go.mod file")
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", cleanPath, err)
	}

	modFile, err := modfile.ParseLax(cleanPath, content, nil)
	if err != nil {
		return nil, errors.WrapParseError(cleanPath, err)
	}
	if modFile.Module == nil {
		return nil, errors.FileSystemError("parse", cleanPath, "no module declaration found")
	}

	info := &ModuleInfo{
		Path: modFile.Module.Mod.Path,
		Root: filepath.Dir(cleanPath),
	}
	if modFile.Go != nil {
		info.GoVersion = modFile.Go.Version
	}
	return info, nil
}

// FindGoModFile searches for go.mod starting from startDir and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	current, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", startDir, err)
	}

	for {
		candidate := filepath.Join(current, "go.mod")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", errors.FileSystemError("find", filepath.Join(startDir, "go.mod"),
		fmt.Sprintf("no go.mod in %s or any parent directory", startDir))
}

// ModuleFor resolves the module enclosing dir
func (p *GoModParser) ModuleFor(dir string) (*ModuleInfo, error) {
	goMod, err := p.FindGoModFile(dir)
	if err != nil {
		return nil, err
	}
	return p.Parse(goMod)
}
