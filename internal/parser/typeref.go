package parser

import (
	"go/types"
	"strings"

	"github.com/toyz/autoimpl/internal/models"
)

// sqlPackage is where the Null* value wrappers live
const sqlPackage = "database/sql"

// typeRefOf converts a checked type into a package-independent TypeRef
func typeRefOf(t types.Type) models.TypeRef {
	if t == nil {
		return models.InvalidType()
	}

	w := &typeWalker{seenImport: make(map[string]bool), seenHidden: make(map[string]bool)}
	w.walk(t, 0)
	if w.invalid {
		return models.InvalidType()
	}

	_, isPointer := types.Unalias(t).(*types.Pointer)
	return models.TypeRef{
		Qualified:       types.TypeString(t, qualifyByPath),
		Pattern:         types.TypeString(t, qualifyByMark),
		Imports:         w.imports,
		Hidden:          w.hidden,
		Pointer:         isPointer,
		Nilable:         !isPointer && isNilable(t),
		NullableWrapper: isNullWrapper(t),
	}
}

func qualifyByPath(pkg *types.Package) string {
	return pkg.Path()
}

func qualifyByMark(pkg *types.Package) string {
	return models.QualifyPath(pkg.Path())
}

// isNilable reports whether nil is already a value of t
func isNilable(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Slice, *types.Map, *types.Chan, *types.Signature, *types.Interface:
		return true
	}
	return false
}

// isNullWrapper matches sql.NullString, sql.NullTime, sql.Null[T] and friends
func isNullWrapper(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == sqlPackage && strings.HasPrefix(obj.Name(), "Null")
}

// typeWalker collects the packages a type spelling depends on
type typeWalker struct {
	imports    []models.Import
	hidden     []string
	seenImport map[string]bool
	seenHidden map[string]bool
	invalid    bool
}

// maxTypeDepth bounds recursion through self-referential anonymous types
const maxTypeDepth = 64

func (w *typeWalker) walk(t types.Type, depth int) {
	if depth > maxTypeDepth || w.invalid {
		return
	}
	depth++

	switch t := t.(type) {
	case *types.Basic:
		if t.Kind() == types.Invalid {
			w.invalid = true
		}
	case *types.Alias:
		w.object(t.Obj())
		if args := t.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				w.walk(args.At(i), depth)
			}
		}
	case *types.Named:
		w.object(t.Obj())
		if args := t.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				w.walk(args.At(i), depth)
			}
		}
	case *types.Pointer:
		w.walk(t.Elem(), depth)
	case *types.Slice:
		w.walk(t.Elem(), depth)
	case *types.Array:
		w.walk(t.Elem(), depth)
	case *types.Map:
		w.walk(t.Key(), depth)
		w.walk(t.Elem(), depth)
	case *types.Chan:
		w.walk(t.Elem(), depth)
	case *types.Signature:
		w.tuple(t.Params(), depth)
		w.tuple(t.Results(), depth)
	case *types.Tuple:
		w.tuple(t, depth)
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			field := t.Field(i)
			if !field.Exported() && field.Pkg() != nil {
				w.hide(field.Pkg().Path())
			}
			w.walk(field.Type(), depth)
		}
	case *types.Interface:
		for i := 0; i < t.NumExplicitMethods(); i++ {
			method := t.ExplicitMethod(i)
			if !method.Exported() && method.Pkg() != nil {
				w.hide(method.Pkg().Path())
			}
			w.walk(method.Type(), depth)
		}
		for i := 0; i < t.NumEmbeddeds(); i++ {
			w.walk(t.EmbeddedType(i), depth)
		}
	case *types.TypeParam:
		// a type parameter cannot be spelled outside its declaration
		w.invalid = true
	}
}

func (w *typeWalker) tuple(tuple *types.Tuple, depth int) {
	if tuple == nil {
		return
	}
	for i := 0; i < tuple.Len(); i++ {
		w.walk(tuple.At(i).Type(), depth)
	}
}

func (w *typeWalker) object(obj *types.TypeName) {
	pkg := obj.Pkg()
	if pkg == nil {
		return
	}
	if !obj.Exported() {
		w.hide(pkg.Path())
	}
	if !w.seenImport[pkg.Path()] {
		w.seenImport[pkg.Path()] = true
		w.imports = append(w.imports, models.Import{Path: pkg.Path(), Name: pkg.Name()})
	}
}

func (w *typeWalker) hide(path string) {
	if !w.seenHidden[path] {
		w.seenHidden[path] = true
		w.hidden = append(w.hidden, path)
	}
}
