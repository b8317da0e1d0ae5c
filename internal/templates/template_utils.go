package templates

import (
	"go/token"
	"path"
	"strconv"
	"strings"

	"github.com/toyz/autoimpl/internal/models"
	"github.com/toyz/autoimpl/internal/utils"
)

// TemplateUtils provides naming helpers for generated code
type TemplateUtils struct{}

// NewTemplateUtils creates a new template utilities instance
func NewTemplateUtils() *TemplateUtils {
	return &TemplateUtils{}
}

// FieldNames picks one backing field name per property. A name is the
// member name with its leading word lowered, or <name>Value when that would
// be a keyword or clash with a method of the extension.
func (tu *TemplateUtils) FieldNames(properties []models.MemberDescriptor) []string {
	taken := make(map[string]bool)
	for _, p := range properties {
		taken[p.Name] = true
		if p.SetterName != "" {
			taken[p.SetterName] = true
		}
	}

	names := make([]string, len(properties))
	for i, p := range properties {
		name := utils.LowerCamel(p.Name)
		if token.IsKeyword(name) || taken[name] || name == "_" {
			name += "Value"
		}
		base := name
		for n := 2; taken[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// ReceiverName returns a receiver identifier that no import in the file
// shadows
func (tu *TemplateUtils) ReceiverName(imports []models.Import) string {
	used := make(map[string]bool, len(imports))
	for _, imp := range imports {
		used[imp.LocalName()] = true
	}
	name := "impl"
	for n := 2; used[name]; n++ {
		name = "impl" + strconv.Itoa(n)
	}
	return name
}

// ConstructorName returns the constructor function for an extension type
func (tu *TemplateUtils) ConstructorName(extensionType string) string {
	return "new" + strings.ToUpper(extensionType[:1]) + extensionType[1:]
}

// DocReference shortens a qualified contract name for a doc comment: the
// bare type name inside its own package, pkgname.Type elsewhere
func (tu *TemplateUtils) DocReference(qualified, pkgPath string) string {
	if rest, ok := strings.CutPrefix(qualified, pkgPath+"."); ok && pkgPath != "" {
		return rest
	}
	dot := strings.LastIndex(qualified, ".")
	if dot < 0 {
		return qualified
	}
	return path.Base(qualified[:dot]) + qualified[dot:]
}

// Qualifier returns the package qualifier of a type spelled in a file, or
// "" when it has none
func (tu *TemplateUtils) Qualifier(display string) string {
	dot := strings.IndexByte(display, '.')
	if dot < 0 {
		return ""
	}
	return strings.TrimLeft(display[:dot], "*[]")
}

// DefaultTemplateUtils provides a global instance for convenience
var DefaultTemplateUtils = NewTemplateUtils()
