package parser

import (
	"go/ast"
	"go/importer"
	goparser "go/parser"
	"go/token"
	"go/types"
	"sort"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/models"
)

// SourceChecker type-checks packages held in memory. Packages checked
// earlier are importable by later ones; everything else comes from the
// default importer.
type SourceChecker struct {
	fset     *token.FileSet
	checked  map[string]*types.Package
	fallback types.Importer
}

// NewSourceChecker creates an empty in-memory checker
func NewSourceChecker() *SourceChecker {
	return &SourceChecker{
		fset:     token.NewFileSet(),
		checked:  make(map[string]*types.Package),
		fallback: importer.Default(),
	}
}

// Import implements types.Importer
func (s *SourceChecker) Import(path string) (*types.Package, error) {
	if pkg, ok := s.checked[path]; ok {
		return pkg, nil
	}
	return s.fallback.Import(path)
}

// Check parses and type-checks one package from file name to source. Type
// errors are kept as issues, like the loader does.
func (s *SourceChecker) Check(pkgPath, dir string, files map[string]string) (*Package, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var syntax []*ast.File
	for _, name := range names {
		file, err := goparser.ParseFile(s.fset, name, files[name], goparser.ParseComments)
		if err != nil {
			return nil, errors.WrapParseError(name, err)
		}
		syntax = append(syntax, file)
	}

	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Scopes:     make(map[ast.Node]*types.Scope),
	}

	var issues []models.Issue
	conf := types.Config{
		Importer: s,
		Error: func(err error) {
			issue := models.Issue{Severity: models.SeverityWarning, Subject: pkgPath, Message: err.Error()}
			if typeErr, ok := err.(types.Error); ok {
				issue.Message = typeErr.Msg
				issue.Location = positionOf(typeErr.Fset, typeErr.Pos)
			}
			issues = append(issues, issue)
		},
	}
	checked, _ := conf.Check(pkgPath, s.fset, syntax, info)
	s.checked[pkgPath] = checked

	return &Package{
		Path:   pkgPath,
		Name:   checked.Name(),
		Dir:    dir,
		Fset:   s.fset,
		Files:  syntax,
		Types:  checked,
		Info:   info,
		Issues: issues,
	}, nil
}

// ParseSource type-checks a single-file package and collects its symbols
func (p *Parser) ParseSource(filename, source string) (*models.SymbolTable, error) {
	pkg, err := NewSourceChecker().Check("example.com/"+filenameStem(filename), ".", map[string]string{filename: source})
	if err != nil {
		return nil, err
	}
	return p.Collect([]*Package{pkg}), nil
}

func filenameStem(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

func positionOf(fset *token.FileSet, pos token.Pos) errors.SourceLocation {
	if fset == nil || !pos.IsValid() {
		return errors.SourceLocation{}
	}
	position := fset.Position(pos)
	return errors.SourceLocation{
		File:   position.Filename,
		Line:   position.Line,
		Column: position.Column,
	}
}
