package parser

import (
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/toyz/autoimpl/internal/annotations"
	"github.com/toyz/autoimpl/internal/logger"
	"github.com/toyz/autoimpl/internal/models"
	"github.com/toyz/autoimpl/internal/utils"
)

// Parser collects contracts, members and targets from type-checked packages
type Parser struct {
	annotations *annotations.Parser
	log         *zap.SugaredLogger
}

// NewParser creates a parser using the built-in annotation schemas
func NewParser() *Parser {
	return NewParserWithRegistry(annotations.DefaultRegistry())
}

// NewParserWithRegistry creates a parser validating annotations against registry
func NewParserWithRegistry(registry annotations.AnnotationRegistry) *Parser {
	return &Parser{
		annotations: annotations.NewParser(registry),
		log:         logger.ComponentLogger("parser"),
	}
}

// typeDecl is the syntax behind a named type of a loaded package
type typeDecl struct {
	pkg  *Package
	file *ast.File
	spec *ast.TypeSpec
	doc  *ast.CommentGroup
}

// collection is the state of one Collect call
type collection struct {
	p          *Parser
	b          *models.TableBuilder
	fset       *token.FileSet
	decls      map[*types.TypeName]*typeDecl
	fields     map[*types.Func]*ast.Field
	contracts  map[*types.TypeName]models.ContractID
	rejected   map[*types.TypeName]bool
	assertions map[*types.TypeName][]*types.TypeName
}

// Collect builds the symbol table for pkgs. It never fails: malformed
// annotations and unusable declarations become warnings on the table.
func (p *Parser) Collect(pkgs []*Package) *models.SymbolTable {
	c := &collection{
		p:          p,
		b:          models.NewTableBuilder(),
		decls:      make(map[*types.TypeName]*typeDecl),
		fields:     make(map[*types.Func]*ast.Field),
		contracts:  make(map[*types.TypeName]models.ContractID),
		rejected:   make(map[*types.TypeName]bool),
		assertions: make(map[*types.TypeName][]*types.TypeName),
	}

	for _, pkg := range pkgs {
		if c.fset == nil {
			c.fset = pkg.Fset
		}
		for _, issue := range pkg.Issues {
			c.b.AddIssue(issue)
		}
		c.index(pkg)
	}

	// contracts first so targets can reference any of them
	for _, pkg := range pkgs {
		c.eachTypeSpec(pkg, func(file *ast.File, spec *ast.TypeSpec, doc *ast.CommentGroup) {
			if _, ok := spec.Type.(*ast.InterfaceType); !ok {
				return
			}
			if obj := c.typeName(pkg, spec); obj != nil && c.hasAnnotation(doc, annotations.ContractAnnotation) {
				c.contractFor(obj)
			}
		})
	}

	for _, pkg := range pkgs {
		c.eachTypeSpec(pkg, func(file *ast.File, spec *ast.TypeSpec, doc *ast.CommentGroup) {
			structType, ok := spec.Type.(*ast.StructType)
			if !ok {
				return
			}
			c.collectTarget(pkg, file, spec, structType, doc)
		})
	}

	table := c.b.Build()
	p.log.Debugw("symbols collected",
		"contracts", table.NumContracts(),
		"targets", table.NumTargets(),
		"issues", len(table.Issues()),
	)
	return table
}

// index records the syntax of every type declaration, interface method and
// blank assertion of a package
func (c *collection) index(pkg *Package) {
	c.eachTypeSpec(pkg, func(file *ast.File, spec *ast.TypeSpec, doc *ast.CommentGroup) {
		obj := c.typeName(pkg, spec)
		if obj == nil {
			return
		}
		c.decls[obj] = &typeDecl{pkg: pkg, file: file, spec: spec, doc: doc}

		iface, ok := spec.Type.(*ast.InterfaceType)
		if !ok || iface.Methods == nil {
			return
		}
		for _, field := range iface.Methods.List {
			for _, name := range field.Names {
				if fn, ok := pkg.Info.Defs[name].(*types.Func); ok {
					c.fields[fn] = field
				}
			}
		}
	})

	for _, file := range pkg.Files {
		// assertions written by an earlier run are not declared in source
		if isGeneratedOutput(pkg, file) {
			continue
		}
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}
			for _, spec := range gen.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					c.indexAssertion(pkg, vs)
				}
			}
		}
	}
}

// indexAssertion records var _ C = (*T)(nil), var _ C = T{} and
// var _ C = &T{}
func (c *collection) indexAssertion(pkg *Package, vs *ast.ValueSpec) {
	if vs.Type == nil {
		return
	}
	for _, name := range vs.Names {
		if name.Name != "_" {
			return
		}
	}

	contract := interfaceName(pkg.Info.TypeOf(vs.Type))
	if contract == nil {
		return
	}
	for _, value := range vs.Values {
		implementer := namedOf(pkg.Info.TypeOf(value))
		if implementer == nil {
			continue
		}
		c.assertions[implementer] = appendUnique(c.assertions[implementer], contract)
	}
}

// isGeneratedOutput reports whether file is one this tool rendered
func isGeneratedOutput(pkg *Package, file *ast.File) bool {
	if pkg.Fset == nil {
		return false
	}
	return utils.IsGeneratedFileName(filepath.Base(pkg.Fset.Position(file.Package).Filename))
}

func (c *collection) eachTypeSpec(pkg *Package, fn func(file *ast.File, spec *ast.TypeSpec, doc *ast.CommentGroup)) {
	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := typeSpec.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				fn(file, typeSpec, doc)
			}
		}
	}
}

func (c *collection) typeName(pkg *Package, spec *ast.TypeSpec) *types.TypeName {
	obj, _ := pkg.Info.Defs[spec.Name].(*types.TypeName)
	return obj
}

// interfaceName returns the declared interface behind t, including the
// predeclared error interface
func interfaceName(t types.Type) *types.TypeName {
	if t == nil {
		return nil
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return nil
	}
	if _, ok := named.Underlying().(*types.Interface); !ok {
		return nil
	}
	return named.Obj()
}

// namedOf returns the named type of t or of the type t points to
func namedOf(t types.Type) *types.TypeName {
	if t == nil {
		return nil
	}
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		t = types.Unalias(ptr.Elem())
	}
	if named, ok := t.(*types.Named); ok {
		return named.Origin().Obj()
	}
	return nil
}

func appendUnique[T comparable](list []T, v T) []T {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// qualifiedName is the table key of a declared type
func qualifiedName(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}
