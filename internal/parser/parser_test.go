package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/autoimpl/internal/generator"
	"github.com/toyz/autoimpl/internal/models"
)

type sourcePackage struct {
	path  string
	files map[string]string
}

func collectSources(t *testing.T, pkgs ...sourcePackage) *models.SymbolTable {
	t.Helper()
	checker := NewSourceChecker()
	var loaded []*Package
	for _, src := range pkgs {
		pkg, err := checker.Check(src.path, "/src/"+src.path, src.files)
		require.NoError(t, err)
		loaded = append(loaded, pkg)
	}
	return NewParser().Collect(loaded)
}

func contractNamed(t *testing.T, table *models.SymbolTable, name string) *models.ContractDeclaration {
	t.Helper()
	id, ok := table.LookupContract(name)
	require.True(t, ok, "contract %s not collected", name)
	return table.Contract(id)
}

func membersOf(table *models.SymbolTable, contract *models.ContractDeclaration) map[string]*models.MemberDeclaration {
	out := make(map[string]*models.MemberDeclaration)
	for _, id := range contract.Members {
		m := table.Member(id)
		out[m.Name] = m
	}
	return out
}

func memberNames(table *models.SymbolTable, contract *models.ContractDeclaration) []string {
	var names []string
	for _, id := range contract.Members {
		names = append(names, table.Member(id).Name)
	}
	return names
}

func targetNamed(t *testing.T, table *models.SymbolTable, name string) *models.TargetType {
	t.Helper()
	for _, id := range table.Targets() {
		if target := table.Target(id); target.Name == name {
			return target
		}
	}
	require.Failf(t, "target not collected", "%s", name)
	return nil
}

func issueMessages(table *models.SymbolTable) string {
	var lines []string
	for _, issue := range table.Issues() {
		lines = append(lines, issue.Message)
	}
	return strings.Join(lines, "\n")
}

const shopSource = `package shop

import (
	"database/sql"
	"time"
)

//autoimpl::contract
type Named interface {
	// Name is the display name.
	//json:name
	Name() string
	SetName(string)
}

// Audited tracks changes.
//
//autoimpl::contract -Strict=false
type Audited interface {
	Named
	UpdatedAt() *time.Time
	//autoimpl::member -Required
	Note() sql.NullString
	//autoimpl::exempt
	Checksum() string
	Touch(at time.Time) error
	//autoimpl::member -Nullable
	Revision() int
}

type Plain interface {
	Code() int
}

//autoimpl::target -Contracts=Audited
type Product struct {
	autoImplProduct
}

var _ Named = (*Product)(nil)
`

func TestCollect_Contracts(t *testing.T) {
	table := collectSources(t, sourcePackage{path: "example.com/shop", files: map[string]string{"shop.go": shopSource}})

	assert.Equal(t, 2, table.NumContracts(), "unreferenced interfaces are not collected")

	named := contractNamed(t, table, "example.com/shop.Named")
	assert.True(t, named.OptedIn)
	assert.True(t, named.Strict)
	assert.Equal(t, "shop", named.PkgName)
	assert.Equal(t, "example.com/shop", named.Package)
	assert.Equal(t, "Named", named.TypeName)
	assert.Equal(t, []string{"Name"}, memberNames(table, named), "setter folds into its accessor")

	name := membersOf(table, named)["Name"]
	assert.True(t, name.HasSetter)
	assert.Equal(t, "string", name.Type.Qualified)
	assert.Equal(t, models.NotNullable, name.Nullability)
	assert.Equal(t, models.MemberProperty, name.Kind)
	require.Len(t, name.Markers, 1)
	assert.Equal(t, "json", name.Markers[0].Namespace)
	assert.Equal(t, "name", name.Markers[0].Name)

	audited := contractNamed(t, table, "example.com/shop.Audited")
	assert.True(t, audited.OptedIn)
	assert.False(t, audited.Strict)
	require.Len(t, audited.Embeds, 1)
	assert.Equal(t, named.ID, audited.Embeds[0])
	assert.Equal(t, []string{"UpdatedAt", "Note", "Checksum", "Touch", "Revision"}, memberNames(table, audited))

	members := membersOf(table, audited)

	updated := members["UpdatedAt"]
	assert.True(t, updated.Type.Pointer)
	assert.Equal(t, "*time.Time", updated.Type.Qualified)
	assert.Equal(t, models.NullableAnnotated, updated.Nullability)
	assert.Nil(t, updated.RequiredOverride)

	note := members["Note"]
	assert.True(t, note.Type.NullableWrapper)
	assert.Equal(t, models.NullableAnnotated, note.Nullability)
	require.NotNil(t, note.RequiredOverride)
	assert.True(t, *note.RequiredOverride)

	assert.True(t, members["Checksum"].Exempt)

	touch := members["Touch"]
	assert.Equal(t, models.MemberMethod, touch.Kind)
	assert.Equal(t, "(at time.Time) error", touch.Signature)

	revision := members["Revision"]
	assert.Equal(t, models.NullableAnnotated, revision.Nullability)
	assert.Nil(t, revision.RequiredOverride)
}

func TestCollect_Targets(t *testing.T) {
	table := collectSources(t, sourcePackage{path: "example.com/shop", files: map[string]string{"shop.go": shopSource}})

	require.Equal(t, 1, table.NumTargets())
	product := targetNamed(t, table, "example.com/shop.Product")

	audited := contractNamed(t, table, "example.com/shop.Audited")
	named := contractNamed(t, table, "example.com/shop.Named")

	assert.Equal(t, []models.ContractID{audited.ID, named.ID}, product.Contracts)
	assert.Equal(t, []models.ContractID{named.ID}, product.ExplicitContracts)
	assert.True(t, product.EmbedsExtension)
	assert.Equal(t, "shop", product.PackageName)
	assert.Equal(t, "/src/example.com/shop", product.Dir)
	assert.Equal(t, models.Exported, product.Accessibility)
	assert.Equal(t, "shop.go", product.Location.File)

	assert.Contains(t, issueMessages(table), "autoImplProduct", "type errors surface as warnings")
}

func TestCollect_GeneratedAssertionsDoNotCount(t *testing.T) {
	source := `package shop

//autoimpl::contract
type Named interface {
	Name() string
}

//autoimpl::target -Contracts=Named
type Product struct {
	autoImplProduct
}
`
	generated := `// Code generated by autoimpl. DO NOT EDIT.

package shop

var (
	_ Named = (*Product)(nil)
)

type autoImplProduct struct {
	name string
}

func (impl autoImplProduct) Name() string {
	return impl.name
}
`
	table := collectSources(t, sourcePackage{path: "example.com/shop", files: map[string]string{
		"shop.go":                 source,
		"autogen_product_impl.go": generated,
	}})

	product := targetNamed(t, table, "example.com/shop.Product")
	assert.Empty(t, product.ExplicitContracts, "assertions in generated output are not hand-written")
	assert.Len(t, product.Contracts, 1)
	assert.Empty(t, issueMessages(table))
}

func TestCollect_CrossPackageContracts(t *testing.T) {
	domain := sourcePackage{path: "example.com/shop/domain", files: map[string]string{"entity.go": `package domain

//autoimpl::contract
type Entity interface {
	ID() string
}
`}}
	app := sourcePackage{path: "example.com/shop/app", files: map[string]string{"app.go": `package app

import (
	"fmt"

	dom "example.com/shop/domain"
)

var _ = dom.Entity(nil)

//autoimpl::contract
type Local interface {
	Total() int
}

//autoimpl::target -Contracts=dom.Entity
type Order struct{}

//autoimpl::target -Contracts=example.com/shop/domain.Entity,Local
type Invoice struct{}

func (Invoice) String() string { return "invoice" }

var _ fmt.Stringer = Invoice{}
`}}

	table := collectSources(t, domain, app)

	entity := contractNamed(t, table, "example.com/shop/domain.Entity")
	local := contractNamed(t, table, "example.com/shop/app.Local")
	stringer := contractNamed(t, table, "fmt.Stringer")
	assert.False(t, stringer.OptedIn)
	assert.Equal(t, "fmt", stringer.PkgName)

	order := targetNamed(t, table, "example.com/shop/app.Order")
	assert.Equal(t, []models.ContractID{entity.ID}, order.Contracts)
	assert.Empty(t, order.ExplicitContracts)

	invoice := targetNamed(t, table, "example.com/shop/app.Invoice")
	assert.Equal(t, []models.ContractID{entity.ID, local.ID}, invoice.Contracts)
	assert.Equal(t, []models.ContractID{stringer.ID}, invoice.ExplicitContracts)
	assert.False(t, invoice.EmbedsExtension)
}

func TestCollect_Warnings(t *testing.T) {
	table := collectSources(t, sourcePackage{path: "example.com/warn", files: map[string]string{"warn.go": `package warn

//autoimpl::contract -Strict=maybe
type Broken interface {
	A() int
}

//autoimpl::contract
type Box[T any] interface {
	Get() T
}

type NotOpted interface {
	B() int
}

//autoimpl::target -Contracts=Missing,NotOpted,Broken
type Thing struct{}

//autoimpl::target -Unknown
type Ignored struct{}

//autoimpl::exempt
type Misplaced interface {
	C() int
}

var _ Misplaced = (*Thing)(nil)
`}})

	messages := issueMessages(table)
	assert.Contains(t, messages, "Strict")
	assert.Contains(t, messages, "generic interfaces cannot be contracts")
	assert.Contains(t, messages, `contract "Missing" listed on example.com/warn.Thing was not found`)
	assert.Contains(t, messages, "example.com/warn.NotOpted is not an autoimpl contract")
	assert.Contains(t, messages, "example.com/warn.Broken is not an autoimpl contract")
	assert.Contains(t, messages, "implements no autoimpl contract")
	assert.Contains(t, messages, "Unknown")
	assert.Contains(t, messages, "is not valid on an interface")

	broken := contractNamed(t, table, "example.com/warn.Broken")
	assert.False(t, broken.OptedIn)
	_, found := table.LookupContract("example.com/warn.Box")
	assert.False(t, found)

	require.Equal(t, 1, table.NumTargets(), "a target with a malformed annotation is dropped")
	thing := targetNamed(t, table, "example.com/warn.Thing")
	assert.Empty(t, thing.Contracts)
	require.Len(t, thing.ExplicitContracts, 1)
}

func TestCollect_MalformedMemberAnnotationExemptsMember(t *testing.T) {
	table := collectSources(t, sourcePackage{path: "example.com/member", files: map[string]string{"m.go": `package member

//autoimpl::contract
type Sized interface {
	//autoimpl::member
	Size() int
	Label() string
}
`}})

	sized := contractNamed(t, table, "example.com/member.Sized")
	members := membersOf(table, sized)
	assert.True(t, members["Size"].Exempt)
	assert.False(t, members["Label"].Exempt)
	assert.Contains(t, issueMessages(table), "-Required or -Nullable")
}

func TestCollect_SetterFolding(t *testing.T) {
	table := collectSources(t, sourcePackage{path: "example.com/setters", files: map[string]string{"s.go": `package setters

//autoimpl::contract
type Counter interface {
	SetCount(int)
	Count() int
	step() int
	setStep(int)
	Limit() int
	SetLimit(int64)
	SetOrphan(string)
}
`}})

	counter := contractNamed(t, table, "example.com/setters.Counter")
	assert.Equal(t, []string{"Count", "step", "Limit", "SetLimit", "SetOrphan"}, memberNames(table, counter))

	members := membersOf(table, counter)
	assert.True(t, members["Count"].HasSetter)
	assert.True(t, members["step"].HasSetter)
	assert.Equal(t, models.Unexported, members["step"].Accessibility)
	assert.False(t, members["Limit"].HasSetter, "setter type must match the accessor")
	assert.Equal(t, models.MemberMethod, members["SetLimit"].Kind)
	assert.Equal(t, models.MemberMethod, members["SetOrphan"].Kind)
}

func TestCollect_EmbeddedError(t *testing.T) {
	table := collectSources(t, sourcePackage{path: "example.com/fail", files: map[string]string{"f.go": `package fail

//autoimpl::contract
type Failure interface {
	error
	Code() int
}
`}})

	failure := contractNamed(t, table, "example.com/fail.Failure")
	require.Len(t, failure.Embeds, 1)
	errContract := table.Contract(failure.Embeds[0])
	assert.Equal(t, "error", errContract.Name)
	assert.Empty(t, errContract.Package)
	assert.Equal(t, []string{"Error"}, memberNames(table, errContract))
}

func TestCollect_EmbeddedContractScenarioEndToEnd(t *testing.T) {
	table := collectSources(t, sourcePackage{path: "example.com/diamond", files: map[string]string{"d.go": `package diamond

type IA interface {
	A() int
}

type IB interface {
	B() int
}

//autoimpl::contract
type IAB interface {
	IA
	IB
}

//autoimpl::target
type IABImpl struct{}

var _ IAB = (*IABImpl)(nil)
`}})

	result, err := generator.NewGenerator(generator.Options{}).Generate(context.Background(), table)
	require.NoError(t, err)
	descs := result.Descriptors()
	require.Len(t, descs, 1)

	desc := descs[0]
	assert.Equal(t, "example.com/diamond.IABImpl.auto_impl", desc.Key)
	assert.Empty(t, desc.BaseContracts)
	require.Len(t, desc.Properties, 2)
	assert.Equal(t, "A", desc.Properties[0].Name)
	assert.Equal(t, "B", desc.Properties[1].Name)
	assert.True(t, desc.Properties[0].Required)
	assert.True(t, desc.Properties[1].Required)
}

func TestCollect_NullableFlagCannotClearPointers(t *testing.T) {
	table := collectSources(t, sourcePackage{path: "example.com/pets", files: map[string]string{"pets.go": `package pets

//autoimpl::contract
type Pet interface {
	//autoimpl::member -Nullable=false
	Owner() *string
	//autoimpl::member -Nullable
	Nickname() string
	Species() string
}

//autoimpl::target -Contracts=Pet
type Dog struct{}
`}})

	members := membersOf(table, contractNamed(t, table, "example.com/pets.Pet"))
	assert.Equal(t, models.NullableAnnotated, members["Owner"].Nullability)
	assert.Equal(t, models.NullableAnnotated, members["Nickname"].Nullability)
	assert.Equal(t, models.NotNullable, members["Species"].Nullability)
	assert.Contains(t, issueMessages(table), "-Nullable=false has no effect on *string")

	result, err := generator.NewGenerator(generator.Options{}).Generate(context.Background(), table)
	require.NoError(t, err)
	descs := result.Descriptors()
	require.Len(t, descs, 1)

	required := make(map[string]bool)
	for _, prop := range descs[0].Properties {
		required[prop.Name] = prop.Required
	}
	assert.Equal(t, map[string]bool{"Owner": false, "Nickname": false, "Species": true}, required)
}

func TestParseSource(t *testing.T) {
	table, err := NewParser().ParseSource("widgets.go", `package widgets

//autoimpl::contract
type Widget interface {
	Title() string
}

//autoimpl::target -Contracts=Widget
type button struct{}
`)
	require.NoError(t, err)
	require.Equal(t, 1, table.NumTargets())
	target := table.Target(table.Targets()[0])
	assert.Equal(t, "example.com/widgets.button", target.Name)
	assert.Equal(t, models.Unexported, target.Accessibility)
	assert.Len(t, target.Contracts, 1)

	_, err = NewParser().ParseSource("broken.go", "package")
	assert.Error(t, err)
}
