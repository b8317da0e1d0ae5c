package generator

import (
	"sort"
	"strconv"

	"github.com/toyz/autoimpl/internal/models"
)

// ImportSet assigns local package names for one generated file. Names are
// handed out in first-use order so the same descriptor always gets the same
// aliases.
type ImportSet struct {
	pkgPath string
	byPath  map[string]models.Import
	taken   map[string]string // local name -> path
}

// NewImportSet creates an import set for a file in pkgPath
func NewImportSet(pkgPath string) *ImportSet {
	return &ImportSet{
		pkgPath: pkgPath,
		byPath:  make(map[string]models.Import),
		taken:   make(map[string]string),
	}
}

// Add registers an import and returns it with its local name settled. The
// file's own package is never imported.
func (s *ImportSet) Add(imp models.Import) models.Import {
	if imp.Path == s.pkgPath || imp.Path == "" {
		return models.Import{}
	}
	if existing, ok := s.byPath[imp.Path]; ok {
		return existing
	}

	imp.Alias = ""
	local := imp.Name
	for n := 2; ; n++ {
		if path, used := s.taken[local]; !used || path == imp.Path {
			break
		}
		local = imp.Name + strconv.Itoa(n)
	}
	if local != imp.Name {
		imp.Alias = local
	}

	s.taken[local] = imp.Path
	s.byPath[imp.Path] = imp
	return imp
}

// AddAll registers every import and returns the settled ones
func (s *ImportSet) AddAll(imports []models.Import) []models.Import {
	var settled []models.Import
	for _, imp := range imports {
		if got := s.Add(imp); got.Path != "" {
			settled = append(settled, got)
		}
	}
	return settled
}

// Qualifier returns the local name for a package path, or "" for the file's
// own package
func (s *ImportSet) Qualifier(path string) string {
	if path == s.pkgPath {
		return ""
	}
	if imp, ok := s.byPath[path]; ok {
		return imp.LocalName()
	}
	return path
}

// Display registers the imports of t and renders it for this file
func (s *ImportSet) Display(t models.TypeRef) string {
	s.AddAll(t.Imports)
	return t.Display(s.Qualifier)
}

// Imports returns the registered imports sorted by path
func (s *ImportSet) Imports() []models.Import {
	out := make([]models.Import, 0, len(s.byPath))
	for _, imp := range s.byPath {
		out = append(out, imp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
