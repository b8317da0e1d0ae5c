package parser

import (
	"go/ast"
	"go/types"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/autoimpl/internal/annotations"
	"github.com/toyz/autoimpl/internal/generator"
	"github.com/toyz/autoimpl/internal/logger"
	"github.com/toyz/autoimpl/internal/models"
)

// collectTarget registers a struct carrying the target annotation
func (c *collection) collectTarget(pkg *Package, file *ast.File, spec *ast.TypeSpec, structType *ast.StructType, doc *ast.CommentGroup) {
	if !c.hasAnnotation(doc, annotations.TargetAnnotation) {
		return
	}
	obj := c.typeName(pkg, spec)
	if obj == nil {
		return
	}

	name := qualifiedName(obj)
	loc := positionOf(c.fset, spec.Name.Pos())

	parsed, valid := c.annotationsOf(name, doc)
	c.misplaced(name, "a struct", parsed, annotations.TargetAnnotation)
	annotation := find(parsed, annotations.TargetAnnotation)
	if !valid || annotation == nil {
		return
	}
	if spec.TypeParams != nil && spec.TypeParams.NumFields() > 0 {
		c.reporter().ReportUnsupportedType(name, "generic structs cannot be targets", loc)
		return
	}

	target := models.TargetType{
		Name:            name,
		Package:         pkg.Path,
		PackageName:     pkg.Name,
		TypeName:        obj.Name(),
		Dir:             pkg.Dir,
		Accessibility:   models.AccessibilityOf(obj.Name()),
		EmbedsExtension: embedsExtension(structType, generator.ExtensionTypeName(obj.Name())),
		Location:        loc,
	}

	for _, ref := range annotation.GetStringSlice(ParamContracts) {
		contractObj := c.lookupContract(pkg, file, ref)
		if contractObj == nil {
			c.reporter().ReportUnknownContract(name, ref, loc, c.contractsInScope(pkg))
			continue
		}
		id, ok := c.contractFor(contractObj)
		if !ok {
			continue
		}
		if !c.b.Contract(id).OptedIn {
			c.reporter().ReportNotOptedIn(name, qualifiedName(contractObj), loc)
			continue
		}
		target.Contracts = appendUnique(target.Contracts, id)
	}

	for _, asserted := range c.assertions[obj] {
		id, ok := c.contractFor(asserted)
		if !ok {
			continue
		}
		target.ExplicitContracts = appendUnique(target.ExplicitContracts, id)
		if c.b.Contract(id).OptedIn {
			target.Contracts = appendUnique(target.Contracts, id)
		}
	}

	extension := generator.ExtensionTypeName(obj.Name())
	switch {
	case len(target.Contracts) == 0:
		c.reporter().Warn(name, loc, name+" implements no autoimpl contract; nothing will be generated",
			"List contracts with -Contracts or assert them with var _ Contract = (*"+obj.Name()+")(nil)")
	case !target.EmbedsExtension:
		c.reporter().Warn(name, loc, name+" does not embed "+extension+"; generated members are not promoted and no assertions are written",
			"Add "+extension+" as an embedded field of "+obj.Name())
	}

	c.b.AddTarget(target)
	logger.ChildLogger(c.p.log, logger.FieldTarget, name).Debugw("target registered",
		"contracts", len(target.Contracts),
		"asserted", len(target.ExplicitContracts),
	)
}

// lookupContract resolves a -Contracts entry: Name, pkg.Name or
// import/path.Name
func (c *collection) lookupContract(pkg *Package, file *ast.File, ref string) *types.TypeName {
	dot := strings.LastIndex(ref, ".")
	if dot < 0 {
		return interfaceObject(pkg.Types.Scope().Lookup(ref))
	}
	qualifier, typeName := ref[:dot], ref[dot+1:]

	if qualifier == pkg.Name || qualifier == pkg.Path {
		return interfaceObject(pkg.Types.Scope().Lookup(typeName))
	}

	// local name as imported by the target's file
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imported := importedPackage(pkg.Types, path)
		if imported == nil {
			continue
		}
		local := imported.Name()
		if spec.Name != nil {
			local = spec.Name.Name
		}
		if local == qualifier || path == qualifier {
			return interfaceObject(imported.Scope().Lookup(typeName))
		}
	}

	// full import path of any dependency
	if imported := importedPackage(pkg.Types, qualifier); imported != nil {
		return interfaceObject(imported.Scope().Lookup(typeName))
	}
	for obj, decl := range c.decls {
		if decl.pkg.Path == qualifier && obj.Name() == typeName {
			return interfaceObject(obj)
		}
	}
	return nil
}

// contractsInScope lists the opted-in contracts a target in pkg can name
// without a qualifier
func (c *collection) contractsInScope(pkg *Package) []string {
	var names []string
	for obj, id := range c.contracts {
		if obj.Pkg() == pkg.Types && c.b.Contract(id).OptedIn {
			names = append(names, obj.Name())
		}
	}
	sort.Strings(names)
	return names
}

func importedPackage(pkg *types.Package, path string) *types.Package {
	for _, imported := range pkg.Imports() {
		if imported.Path() == path {
			return imported
		}
	}
	return nil
}

func interfaceObject(obj types.Object) *types.TypeName {
	typeName, ok := obj.(*types.TypeName)
	if !ok {
		return nil
	}
	if _, ok := typeName.Type().Underlying().(*types.Interface); !ok {
		return nil
	}
	return typeName
}

// embedsExtension reports whether the struct already embeds its generated
// extension, by value or by pointer
func embedsExtension(structType *ast.StructType, extension string) bool {
	if structType.Fields == nil {
		return false
	}
	for _, field := range structType.Fields.List {
		if len(field.Names) > 0 {
			continue
		}
		expr := field.Type
		if star, ok := expr.(*ast.StarExpr); ok {
			expr = star.X
		}
		if ident, ok := expr.(*ast.Ident); ok && ident.Name == extension {
			return true
		}
	}
	return false
}
