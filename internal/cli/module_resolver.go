package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/autoimpl/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser()}
}

// Resolve finds the module enclosing dir
func (r *ModuleResolver) Resolve(dir string) (*utils.ModuleInfo, error) {
	info, err := r.gomod.ModuleFor(dir)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// BuildPackagePath builds the import path of a directory inside a module
func (r *ModuleResolver) BuildPackagePath(module *utils.ModuleInfo, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	relPath, err := filepath.Rel(module.Root, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}
	importPath := filepath.ToSlash(relPath)
	if importPath == ".." || strings.HasPrefix(importPath, "../") {
		return "", fmt.Errorf("%s is outside module %s", packageDir, module.Path)
	}

	if importPath == "." {
		return module.Path, nil
	}
	return module.Path + "/" + importPath, nil
}

// DisplayPath shortens path to be relative to the module root when it lies
// inside it
func (r *ModuleResolver) DisplayPath(module *utils.ModuleInfo, path string) string {
	if module == nil {
		return path
	}
	rel, err := filepath.Rel(module.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
