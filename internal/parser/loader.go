package parser

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/models"
)

// loadMode is what the parser needs from go/packages: syntax with comments
// plus full type information
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Package is one type-checked package handed to the parser
type Package struct {
	Path   string
	Name   string
	Dir    string
	Fset   *token.FileSet
	Files  []*ast.File
	Types  *types.Package
	Info   *types.Info
	Issues []models.Issue // load and type errors, reported as warnings
}

// LoadOptions selects the packages to load
type LoadOptions struct {
	Dir      string   // working directory for pattern resolution
	Patterns []string // go list patterns, defaults to ./...
	Tags     []string // build tags
}

// Loader loads packages with golang.org/x/tools/go/packages
type Loader struct{}

// NewLoader creates a package loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load loads and type-checks the packages matching opts. Type errors do not
// fail the load; they are attached to the package as issues so the rest of
// the symbol graph stays usable.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) ([]*Package, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     opts.Dir,
		Fset:    token.NewFileSet(),
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}

	loaded, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.WrapLoadError(patterns, err)
	}
	if len(loaded) == 0 {
		return nil, errors.WrapLoadError(patterns, fmt.Errorf("no packages matched"))
	}

	var out []*Package
	for _, pkg := range loaded {
		if pkg.Types == nil || pkg.TypesInfo == nil {
			continue
		}
		out = append(out, fromLoaded(cfg.Fset, pkg))
	}
	return out, nil
}

func fromLoaded(fset *token.FileSet, pkg *packages.Package) *Package {
	p := &Package{
		Path:  pkg.PkgPath,
		Name:  pkg.Name,
		Fset:  fset,
		Files: pkg.Syntax,
		Types: pkg.Types,
		Info:  pkg.TypesInfo,
	}
	if len(pkg.GoFiles) > 0 {
		p.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, loadErr := range pkg.Errors {
		p.Issues = append(p.Issues, models.Issue{
			Severity: models.SeverityWarning,
			Subject:  pkg.PkgPath,
			Message:  loadErr.Msg,
			Location: locationOf(loadErr.Pos),
		})
	}
	return p
}

// locationOf parses the file:line:col form go/packages reports errors with
func locationOf(pos string) errors.SourceLocation {
	if pos == "" || pos == "-" {
		return errors.SourceLocation{}
	}
	var loc errors.SourceLocation
	parts := strings.Split(pos, ":")
	loc.File = parts[0]
	if len(parts) > 1 {
		fmt.Sscanf(parts[1], "%d", &loc.Line)
	}
	if len(parts) > 2 {
		fmt.Sscanf(parts[2], "%d", &loc.Column)
	}
	return loc
}

// Dirs returns the distinct directories of the packages, in load order
func Dirs(pkgs []*Package) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, pkg := range pkgs {
		if pkg.Dir == "" || seen[pkg.Dir] {
			continue
		}
		seen[pkg.Dir] = true
		dirs = append(dirs, pkg.Dir)
	}
	return dirs
}
