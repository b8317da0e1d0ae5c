package templates

import (
	"bytes"
	"text/template"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/models"
	"github.com/toyz/autoimpl/internal/utils"
)

// fileData is the root value the file template executes against
type fileData struct {
	Header      string
	Package     string
	ImportBlock string
	Assertions  []string
	TypeName    string
	Extension   string
	Constructor string
	Fields      []fieldData
	Required    []fieldData
}

// fieldData is one property as the accessor templates see it
type fieldData struct {
	Name         string
	Setter       string
	Field        string
	FieldType    string
	DeclaredType string
	Lifted       bool
	DocSource    string
	Markers      []string
	Receiver     string
	Extension    string
}

// Renderer turns descriptors into Go source files
type Renderer struct {
	tmpl  *template.Template
	utils *TemplateUtils
}

// NewRenderer compiles the templates of registry
func NewRenderer(registry *TemplateRegistry) (*Renderer, error) {
	if registry == nil {
		registry = DefaultTemplateRegistry
	}
	tmpl, err := registry.Parse()
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, utils: DefaultTemplateUtils}, nil
}

// FileName returns the name of the file a descriptor is rendered to
func FileName(desc *models.GeneratedTypeDescriptor) string {
	return utils.GeneratedFileName(desc.TypeName)
}

// Render produces the formatted Go source for one descriptor. Identical
// descriptors always render to identical bytes.
func (r *Renderer) Render(desc *models.GeneratedTypeDescriptor) ([]byte, error) {
	if desc == nil {
		return nil, errors.NewGenerationError("no descriptor to render").WithStage("render")
	}

	data := r.fileData(desc)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, FileTemplate, data); err != nil {
		return nil, errors.WrapTemplateError(FileTemplate, "execute", err)
	}

	name := FileName(desc)
	formatted, err := utils.FormatGoCode(name, buf.Bytes())
	if err != nil {
		return nil, errors.WrapGenerateError("file", name, err).WithStage("format")
	}
	return formatted, nil
}

// fileData lays the descriptor out for the templates. Only imports the
// emitted code refers to are kept.
func (r *Renderer) fileData(desc *models.GeneratedTypeDescriptor) fileData {
	receiver := r.utils.ReceiverName(desc.Imports)
	names := r.utils.FieldNames(desc.Properties)

	data := fileData{
		Header:      utils.GeneratedHeader,
		Package:     desc.PackageName,
		TypeName:    desc.TypeName,
		Extension:   desc.ExtensionType,
		Constructor: r.utils.ConstructorName(desc.ExtensionType),
	}

	used := make(map[string]bool)
	for i, p := range desc.Properties {
		field := fieldData{
			Name:         p.Name,
			Setter:       p.SetterName,
			Field:        names[i],
			FieldType:    p.FieldType,
			DeclaredType: p.DeclaredType,
			Lifted:       p.Lifted,
			DocSource:    r.utils.DocReference(p.DocSource, desc.Package),
			Receiver:     receiver,
			Extension:    desc.ExtensionType,
		}
		for _, marker := range p.Markers {
			field.Markers = append(field.Markers, marker.Raw)
		}
		for _, imp := range p.Imports {
			used[imp.Path] = true
		}

		data.Fields = append(data.Fields, field)
		if p.Required {
			data.Required = append(data.Required, field)
		}
	}

	// assertions only compile once the target embeds its extension
	if desc.Embedded {
		for _, base := range desc.BaseContracts {
			data.Assertions = append(data.Assertions, base.Display)
			if qualifier := r.utils.Qualifier(base.Display); qualifier != "" {
				for _, imp := range desc.Imports {
					if imp.LocalName() == qualifier {
						used[imp.Path] = true
					}
				}
			}
		}
	}

	imports := NewImportManager()
	for _, imp := range desc.Imports {
		if used[imp.Path] {
			imports.AddImport(imp)
		}
	}
	data.ImportBlock = imports.GenerateImports()

	return data
}
