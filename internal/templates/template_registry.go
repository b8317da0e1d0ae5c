package templates

import (
	"sort"
	"text/template"

	"github.com/toyz/autoimpl/internal/errors"
)

// Template names
const (
	FileTemplate        = "file"
	AssertionsTemplate  = "assertions"
	ExtensionTemplate   = "extension"
	ConstructorTemplate = "constructor"
	AccessorsTemplate   = "accessors"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerExtensionTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names lists the registered templates, sorted
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse compiles every registered template into one set rooted at the file
// template
func (tr *TemplateRegistry) Parse() (*template.Template, error) {
	root := template.New(FileTemplate)
	for _, name := range tr.Names() {
		if _, err := root.New(name).Parse(tr.templates[name]); err != nil {
			return nil, errors.WrapTemplateError(name, "parse", err)
		}
	}
	return root, nil
}

// registerFileTemplates registers the file layout and the interface assertions
func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates[FileTemplate] = `{{.Header}}

package {{.Package}}
{{if .ImportBlock}}
{{.ImportBlock}}{{end}}
{{- if .Assertions}}
{{template "assertions" .}}{{end}}
{{template "extension" .}}
{{template "constructor" .}}
{{- range .Fields}}
{{template "accessors" .}}{{end}}`

	tr.templates[AssertionsTemplate] = `var (
{{range .Assertions}}	_ {{.}} = (*{{$.TypeName}})(nil)
{{end}})
`
}

// registerExtensionTemplates registers the extension struct, its constructor
// and the per-member accessors
func (tr *TemplateRegistry) registerExtensionTemplates() {
	tr.templates[ExtensionTemplate] = `// {{.Extension}} holds the members {{.TypeName}} receives from its contracts.
type {{.Extension}} struct {
{{range .Fields}}	{{.Field}} {{.FieldType}}
{{end}}}
`

	tr.templates[ConstructorTemplate] = `// {{.Constructor}} sets every required member of {{.Extension}}.
func {{.Constructor}}({{range $i, $f := .Required}}{{if $i}}, {{end}}{{$f.Field}} {{$f.FieldType}}{{end}}) {{.Extension}} {
{{- if .Required}}
	return {{.Extension}}{
{{range .Required}}		{{.Field}}: {{.Field}},
{{end}}	}
{{- else}}
	return {{.Extension}}{}
{{- end}}
}
`

	tr.templates[AccessorsTemplate] = `// {{.Name}} implements {{.DocSource}}.
{{range .Markers}}{{.}}
{{end}}func ({{.Receiver}} {{.Extension}}) {{.Name}}() {{.DeclaredType}} {
{{- if .Lifted}}
	if {{.Receiver}}.{{.Field}} == nil {
		var zero {{.DeclaredType}}
		return zero
	}
	return *{{.Receiver}}.{{.Field}}
{{- else}}
	return {{.Receiver}}.{{.Field}}
{{- end}}
}
{{if .Setter}}
// {{.Setter}} implements {{.DocSource}}.
func ({{.Receiver}} *{{.Extension}}) {{.Setter}}(v {{.DeclaredType}}) {
{{- if .Lifted}}
	{{.Receiver}}.{{.Field}} = &v
{{- else}}
	{{.Receiver}}.{{.Field}} = v
{{- end}}
}
{{end}}`
}

// DefaultTemplateRegistry is the registry the default renderer uses
var DefaultTemplateRegistry = NewTemplateRegistry()
