package models

import "strings"

// qualifierMark delimits a package path inside TypeRef.Pattern
const qualifierMark = "\x00"

// Import is a package referenced by generated code
type Import struct {
	Path  string `yaml:"path"`            // import path
	Name  string `yaml:"name"`            // declared package name
	Alias string `yaml:"alias,omitempty"` // local name when it differs from Name
}

// LocalName returns the identifier the package is referred to by
func (i Import) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Name
}

// TypeRef is a resolved member type, independent of the package it is
// eventually written into
type TypeRef struct {
	Qualified       string   // fully qualified spelling, empty when unresolvable
	Pattern         string   // spelling with package paths wrapped in qualifierMark
	Imports         []Import // packages named by the type
	Hidden          []string // packages whose unexported names the type references
	Pointer         bool     // the type is already a pointer
	Nilable         bool     // slice, map, chan, func or interface: nil is already a value
	NullableWrapper bool     // database/sql Null* style value wrapper
	Invalid         bool     // the type checker could not resolve the type
}

// Resolvable reports whether the type can be written out at all
func (t TypeRef) Resolvable() bool {
	return !t.Invalid && t.Qualified != ""
}

// VisibleFrom reports whether the type can be named from pkgPath
func (t TypeRef) VisibleFrom(pkgPath string) bool {
	for _, hidden := range t.Hidden {
		if hidden != pkgPath {
			return false
		}
	}
	return true
}

// CarriesNull reports whether the type can already represent "no value"
// without being wrapped in a pointer
func (t TypeRef) CarriesNull() bool {
	return t.Pointer || t.Nilable || t.NullableWrapper
}

// Display renders the type as written in a file whose package qualifiers are
// chosen by qualify. An empty qualifier drops the package prefix.
func (t TypeRef) Display(qualify func(path string) string) string {
	if !strings.Contains(t.Pattern, qualifierMark) {
		return t.Pattern
	}

	var b strings.Builder
	rest := t.Pattern
	for {
		start := strings.Index(rest, qualifierMark)
		if start < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		rest = rest[start+len(qualifierMark):]

		end := strings.Index(rest, qualifierMark)
		if end < 0 {
			b.WriteString(rest)
			break
		}
		path := rest[:end]
		rest = strings.TrimPrefix(rest[end+len(qualifierMark):], ".")

		if name := qualify(path); name != "" {
			b.WriteString(name)
			b.WriteByte('.')
		}
	}
	return b.String()
}

// QualifyPath wraps a package path the way Pattern expects it
func QualifyPath(path string) string {
	return qualifierMark + path + qualifierMark
}

// BasicType returns a TypeRef for a predeclared type such as int or string
func BasicType(name string) TypeRef {
	return TypeRef{Qualified: name, Pattern: name}
}

// NamedType returns a TypeRef for a named type declared in another package
func NamedType(pkgPath, pkgName, typeName string) TypeRef {
	ref := TypeRef{
		Qualified: pkgPath + "." + typeName,
		Pattern:   QualifyPath(pkgPath) + "." + typeName,
		Imports:   []Import{{Path: pkgPath, Name: pkgName}},
	}
	if !isExported(typeName) {
		ref.Hidden = []string{pkgPath}
	}
	return ref
}

// PointerTo returns the pointer form of t
func PointerTo(t TypeRef) TypeRef {
	ptr := t
	ptr.Qualified = "*" + t.Qualified
	ptr.Pattern = "*" + t.Pattern
	ptr.Pointer = true
	ptr.NullableWrapper = false
	ptr.Nilable = false
	return ptr
}

// InvalidType returns a TypeRef the type checker could not resolve
func InvalidType() TypeRef {
	return TypeRef{Invalid: true}
}
