package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/autoimpl/internal/generator"
	"github.com/toyz/autoimpl/internal/models"
	"github.com/toyz/autoimpl/internal/parser"
)

// squash collapses runs of blanks so comparisons ignore gofmt alignment
func squash(src string) []string {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return lines
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(nil)
	require.NoError(t, err)
	return r
}

func orderDescriptor() *models.GeneratedTypeDescriptor {
	audit := models.Import{Path: "example.com/shop/audit", Name: "audit"}
	timeImport := models.Import{Path: "time", Name: "time"}
	return &models.GeneratedTypeDescriptor{
		Key:           "example.com/shop/domain.Order.auto_impl",
		Target:        "example.com/shop/domain.Order",
		Package:       "example.com/shop/domain",
		PackageName:   "domain",
		TypeName:      "Order",
		ExtensionType: "autoImplOrder",
		Extension:     true,
		Embedded:      true,
		BaseContracts: []models.ContractRef{
			{Name: "example.com/shop/domain.Entity", Display: "Entity"},
			{Name: "example.com/shop/audit.Audited", Display: "audit.Audited"},
		},
		Imports: []models.Import{audit, timeImport},
		Properties: []models.MemberDescriptor{
			{
				Name:         "ID",
				FieldType:    "string",
				DeclaredType: "string",
				Required:     true,
				DocSource:    "example.com/shop/domain.Entity",
			},
			{
				Name:         "Note",
				SetterName:   "SetNote",
				HasSetter:    true,
				FieldType:    "*string",
				DeclaredType: "string",
				Lifted:       true,
				DocSource:    "example.com/shop/audit.Audited",
			},
			{
				Name:         "Placed",
				FieldType:    "time.Time",
				DeclaredType: "time.Time",
				Required:     true,
				DocSource:    "example.com/shop/audit.Audited",
				Imports:      []models.Import{timeImport},
			},
		},
	}
}

const orderGolden = `// Code generated by autoimpl. DO NOT EDIT.

package domain

import (
	"time"

	"example.com/shop/audit"
)

var (
	_ Entity        = (*Order)(nil)
	_ audit.Audited = (*Order)(nil)
)

// autoImplOrder holds the members Order receives from its contracts.
type autoImplOrder struct {
	id     string
	note   *string
	placed time.Time
}

// newAutoImplOrder sets every required member of autoImplOrder.
func newAutoImplOrder(id string, placed time.Time) autoImplOrder {
	return autoImplOrder{
		id:     id,
		placed: placed,
	}
}

// ID implements Entity.
func (impl autoImplOrder) ID() string {
	return impl.id
}

// Note implements audit.Audited.
func (impl autoImplOrder) Note() string {
	if impl.note == nil {
		var zero string
		return zero
	}
	return *impl.note
}

// SetNote implements audit.Audited.
func (impl *autoImplOrder) SetNote(v string) {
	impl.note = &v
}

// Placed implements audit.Audited.
func (impl autoImplOrder) Placed() time.Time {
	return impl.placed
}
`

func TestRender_Golden(t *testing.T) {
	out, err := newTestRenderer(t).Render(orderDescriptor())
	require.NoError(t, err)

	assert.Equal(t, squash(orderGolden), squash(string(out)))
	assert.True(t, strings.HasSuffix(string(out), "}\n"))
}

func TestRender_Deterministic(t *testing.T) {
	r := newTestRenderer(t)
	first, err := r.Render(orderDescriptor())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := newTestRenderer(t).Render(orderDescriptor())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRender_NotEmbeddedOmitsAssertionsAndTheirImports(t *testing.T) {
	desc := orderDescriptor()
	desc.Embedded = false

	out, err := newTestRenderer(t).Render(desc)
	require.NoError(t, err)
	src := string(out)

	assert.NotContains(t, src, "(*Order)(nil)")
	assert.NotContains(t, src, `"example.com/shop/audit"`, "audit is only needed by an assertion")
	assert.Contains(t, src, `import "time"`)
	assert.Contains(t, src, "// Note implements audit.Audited.", "doc references are text only")
}

func TestRender_Markers(t *testing.T) {
	desc := orderDescriptor()
	desc.Properties[0].Markers = []models.Marker{
		{Namespace: "nolint", Name: "revive", Raw: "//nolint:revive"},
	}

	out, err := newTestRenderer(t).Render(desc)
	require.NoError(t, err)
	src := string(out)

	marker := strings.Index(src, "//nolint:revive")
	getter := strings.Index(src, "func (impl autoImplOrder) ID() string")
	require.NotEqual(t, -1, marker)
	require.NotEqual(t, -1, getter)
	assert.Less(t, marker, getter)
	assert.Less(t, strings.Index(src, "// ID implements Entity."), getter)
}

func TestRender_EmptyExtension(t *testing.T) {
	desc := &models.GeneratedTypeDescriptor{
		Package:       "example.com/shop/domain",
		PackageName:   "domain",
		TypeName:      "Marker",
		ExtensionType: "autoImplMarker",
		Embedded:      true,
		BaseContracts: []models.ContractRef{{Name: "example.com/shop/domain.Tagged", Display: "Tagged"}},
		Properties:    []models.MemberDescriptor{},
	}

	out, err := newTestRenderer(t).Render(desc)
	require.NoError(t, err)
	src := string(out)

	assert.NotContains(t, src, "import")
	assert.Contains(t, src, "_ Tagged = (*Marker)(nil)")
	assert.Contains(t, src, "func newAutoImplMarker() autoImplMarker {\n\treturn autoImplMarker{}\n}")
}

func TestRender_NilDescriptor(t *testing.T) {
	_, err := newTestRenderer(t).Render(nil)
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "autogen_order_impl.go", FileName(orderDescriptor()))
	assert.Equal(t, "autogen_http_server_impl.go", FileName(&models.GeneratedTypeDescriptor{TypeName: "HTTPServer"}))
}

const shopSource = `package shop

import (
	"database/sql"
	"time"
)

//autoimpl::contract
type Entity interface {
	ID() string
	Type() string
	SetType(string)
}

//autoimpl::contract -Strict=false
type Audited interface {
	Entity
	// CreatedAt is set once.
	//json:created_at
	CreatedAt() time.Time
	DeletedAt() *time.Time
	//autoimpl::member -Nullable
	Reviewer() string
	SetReviewer(string)
	Memo() sql.NullString
	Touch() error
}

//autoimpl::target -Contracts=Audited
type Order struct {
	autoImplOrder
}

func (*Order) Touch() error { return nil }
`

// TestRender_GeneratedCodeTypeChecks runs the whole pipeline over real
// source and type-checks the package together with the generated file
func TestRender_GeneratedCodeTypeChecks(t *testing.T) {
	pkg, err := parser.NewSourceChecker().Check("example.com/shop", "/src/shop", map[string]string{"shop.go": shopSource})
	require.NoError(t, err)

	table := parser.NewParser().Collect([]*parser.Package{pkg})
	result, err := generator.NewGenerator(generator.Options{}).Generate(context.Background(), table)
	require.NoError(t, err)
	descs := result.Descriptors()
	require.Len(t, descs, 1)

	out, err := newTestRenderer(t).Render(descs[0])
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, "_ Audited = (*Order)(nil)")
	assert.Contains(t, src, "func newAutoImplOrder(id string, typeValue string) autoImplOrder {")
	assert.Contains(t, src, "//json:created_at")
	assert.Contains(t, src, "func (impl *autoImplOrder) SetReviewer(v string) {\n\timpl.reviewer = &v\n}")
	assert.NotContains(t, src, "Touch", "methods are left to the target")

	checked, err := parser.NewSourceChecker().Check("example.com/shop", "/src/shop", map[string]string{
		"shop.go":          shopSource,
		FileName(descs[0]): src,
	})
	require.NoError(t, err)
	var problems []string
	for _, issue := range checked.Issues {
		problems = append(problems, issue.Message)
	}
	assert.Empty(t, problems)
}
