package templates

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/toyz/autoimpl/internal/models"
)

// ImportManager collects the imports of one generated file and renders the
// import block: standard library first, then everything else
type ImportManager struct {
	imports map[string]models.Import // path -> import
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		imports: make(map[string]models.Import),
	}
}

// AddImport adds an import; a path already present keeps its first local name
func (im *ImportManager) AddImport(imp models.Import) {
	if imp.Path == "" {
		return
	}
	if _, ok := im.imports[imp.Path]; !ok {
		im.imports[imp.Path] = imp
	}
}

// Len returns the number of imports collected
func (im *ImportManager) Len() int {
	return len(im.imports)
}

// GenerateImports renders the import section, or "" when there is nothing
// to import
func (im *ImportManager) GenerateImports() string {
	if len(im.imports) == 0 {
		return ""
	}

	var std, other []string
	for _, imp := range im.imports {
		line := importLine(imp)
		if isStandardLibraryPackage(imp.Path) {
			std = append(std, line)
		} else {
			other = append(other, line)
		}
	}
	sort.Slice(std, func(i, j int) bool { return importPath(std[i]) < importPath(std[j]) })
	sort.Slice(other, func(i, j int) bool { return importPath(other[i]) < importPath(other[j]) })

	if len(std)+len(other) == 1 {
		return fmt.Sprintf("import %s\n", append(std, other...)[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, line := range std {
		result.WriteString("\t" + line + "\n")
	}
	if len(std) > 0 && len(other) > 0 {
		result.WriteString("\n")
	}
	for _, line := range other {
		result.WriteString("\t" + line + "\n")
	}
	result.WriteString(")\n")

	return result.String()
}

// importLine names the package explicitly when its local name cannot be
// read off the path
func importLine(imp models.Import) string {
	local := imp.LocalName()
	if imp.Alias == "" && local == path.Base(imp.Path) {
		return fmt.Sprintf("%q", imp.Path)
	}
	return fmt.Sprintf("%s %q", local, imp.Path)
}

func importPath(line string) string {
	return line[strings.IndexByte(line, '"'):]
}

// isStandardLibraryPackage treats paths without a dot in their first
// element as standard library
func isStandardLibraryPackage(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
