package generator

import (
	"github.com/toyz/autoimpl/internal/models"
)

const (
	domainPkg  = "example.com/shop/domain"
	domainName = "domain"
)

// tableFixture builds symbol tables for generator tests without going
// through the collector
type tableFixture struct {
	b *models.TableBuilder
}

type memberOption func(*models.MemberDeclaration)

func newTableFixture() *tableFixture {
	return &tableFixture{b: models.NewTableBuilder()}
}

// contract registers an opted-in contract in the domain package
func (f *tableFixture) contract(name string, strict bool, embeds ...models.ContractID) models.ContractID {
	return f.declare(domainPkg, domainName, name, true, strict, embeds...)
}

// plain registers a contract without the opt-in annotation
func (f *tableFixture) plain(name string, embeds ...models.ContractID) models.ContractID {
	return f.declare(domainPkg, domainName, name, false, true, embeds...)
}

func (f *tableFixture) declare(pkgPath, pkgName, name string, optedIn, strict bool, embeds ...models.ContractID) models.ContractID {
	id := f.b.AddContract(models.ContractDeclaration{
		Name:     pkgPath + "." + name,
		Package:  pkgPath,
		PkgName:  pkgName,
		TypeName: name,
		OptedIn:  optedIn,
		Strict:   strict,
	})
	for _, embedded := range embeds {
		f.b.Embed(id, embedded)
	}
	return id
}

func (f *tableFixture) member(contract models.ContractID, name string, typ models.TypeRef, opts ...memberOption) models.MemberID {
	m := models.MemberDeclaration{
		Name:        name,
		Type:        typ,
		Nullability: models.NotNullable,
		Kind:        models.MemberProperty,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return f.b.AddMember(contract, m)
}

// target registers a target in the domain package. asserted lists the
// contracts the source already asserts; known is the full directly known set.
func (f *tableFixture) target(name string, known []models.ContractID, asserted ...models.ContractID) models.TargetID {
	return f.b.AddTarget(models.TargetType{
		Name:              domainPkg + "." + name,
		Package:           domainPkg,
		PackageName:       domainName,
		TypeName:          name,
		Dir:               "/src/shop/domain",
		Accessibility:     models.AccessibilityOf(name),
		ExplicitContracts: asserted,
		Contracts:         known,
	})
}

func (f *tableFixture) build() *models.SymbolTable {
	return f.b.Build()
}

func exempt() memberOption {
	return func(m *models.MemberDeclaration) { m.Exempt = true }
}

func nullable() memberOption {
	return func(m *models.MemberDeclaration) { m.Nullability = models.NullableAnnotated }
}

func required(value bool) memberOption {
	return func(m *models.MemberDeclaration) { m.RequiredOverride = &value }
}

func withSetter() memberOption {
	return func(m *models.MemberDeclaration) { m.HasSetter = true }
}

func withMarkers(markers ...models.Marker) memberOption {
	return func(m *models.MemberDeclaration) { m.Markers = markers }
}

func asMethod(signature string) memberOption {
	return func(m *models.MemberDeclaration) {
		m.Kind = models.MemberMethod
		m.Signature = signature
	}
}

var (
	intType    = models.BasicType("int")
	stringType = models.BasicType("string")
	timeType   = models.NamedType("time", "time", "Time")
)

func propertyNames(props []models.MemberDescriptor) []string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Name)
	}
	return names
}

// pipeline runs every stage for one target the way the driver does
func pipeline(table *models.SymbolTable, id models.TargetID) (*models.GeneratedTypeDescriptor, bool) {
	target := table.Target(id)
	aggregated := Aggregate(table, target)
	resolved, skipped := Resolve(table, aggregated)
	imports := NewImportSet(target.Package)
	props, unusable := Synthesize(table, target, resolved, imports)
	return Assemble(table, target, aggregated, props, append(skipped, unusable...), imports)
}
