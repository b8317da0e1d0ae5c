package generator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/models"
)

func generate(t *testing.T, table *models.SymbolTable, opts Options) *Result {
	t.Helper()
	result, err := NewGenerator(opts).Generate(context.Background(), table)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator(Options{})
	opts := g.Options()
	assert.Equal(t, DefaultLanguage, opts.Language)
	assert.Positive(t, opts.Concurrency)
	assert.False(t, opts.FailOnConflict)
}

func TestGenerate_UnsupportedLanguage(t *testing.T) {
	f := newTableFixture()
	c := f.contract("Named", true)
	f.member(c, "Name", stringType)
	f.target("Product", []models.ContractID{c})
	table := f.build()

	for _, lang := range []string{"csharp", "Go", "typescript"} {
		t.Run(lang, func(t *testing.T) {
			result, err := NewGenerator(Options{Language: lang}).Generate(context.Background(), table)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.HasCode(err, errors.UnsupportedLanguageErrorCode))
			assert.True(t, errors.CodeOf(err).Fatal())

			var langErr *errors.UnsupportedLanguageError
			require.True(t, errors.As(err, &langErr))
			assert.Equal(t, lang, langErr.Language)
			assert.Equal(t, []string{"go"}, langErr.Supported)
		})
	}
}

// contract IA declares A, IB declares B, IAB embeds both and is the only
// opted-in contract; IABImpl asserts IAB
func TestGenerate_EmbeddedContractScenario(t *testing.T) {
	f := newTableFixture()
	ia := f.plain("IA")
	f.member(ia, "A", intType)
	ib := f.plain("IB")
	f.member(ib, "B", intType)
	iab := f.contract("IAB", true, ia, ib)
	f.target("IABImpl", []models.ContractID{iab}, iab)
	table := f.build()

	result := generate(t, table, Options{})
	descs := result.Descriptors()
	require.Len(t, descs, 1)

	desc := descs[0]
	assert.Empty(t, desc.BaseContracts)
	assert.Equal(t, []string{"A", "B"}, propertyNames(desc.Properties))
	for _, p := range desc.Properties {
		assert.True(t, p.Required, p.Name)
		assert.Equal(t, "int", p.DeclaredType)
	}
	assert.Equal(t, "autoImplIABImpl", desc.ExtensionType)
}

func TestGenerate_ExemptionScenario(t *testing.T) {
	f := newTableFixture()
	c := f.contract("Numbers", true)
	f.member(c, "AutoImplementedInt", intType)
	f.member(c, "ManuallyImplementedInt", intType, exempt())
	f.target("NumbersImpl", []models.ContractID{c}, c)
	table := f.build()

	result := generate(t, table, Options{})
	descs := result.Descriptors()
	require.Len(t, descs, 1)

	require.Len(t, descs[0].Properties, 1)
	assert.Equal(t, "AutoImplementedInt", descs[0].Properties[0].Name)
	assert.True(t, descs[0].Properties[0].Required)
}

func TestGenerate_ExemptionHoldsUnderEveryCombination(t *testing.T) {
	yes, no := true, false
	for _, strict := range []bool{true, false} {
		for _, isNullable := range []bool{true, false} {
			for _, override := range []*bool{nil, &yes, &no} {
				name := fmt.Sprintf("strict=%v/nullable=%v/override=%v", strict, isNullable, describeOverride(override))
				t.Run(name, func(t *testing.T) {
					f := newTableFixture()
					c := f.contract("Flags", strict)
					f.member(c, "Kept", intType)
					opts := []memberOption{exempt()}
					if isNullable {
						opts = append(opts, nullable())
					}
					if override != nil {
						opts = append(opts, required(*override))
					}
					f.member(c, "Manual", intType, opts...)
					f.target("FlagsImpl", []models.ContractID{c})
					table := f.build()

					for _, desc := range generate(t, table, Options{}).Descriptors() {
						_, found := desc.Property("Manual")
						assert.False(t, found)
						for _, s := range desc.Skipped {
							assert.NotEqual(t, "Manual", s.Member)
						}
					}
				})
			}
		}
	}
}

func describeOverride(v *bool) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprint(*v)
}

func TestGenerate_UnionOfMembers(t *testing.T) {
	f := newTableFixture()
	identity := f.plain("Identity")
	f.member(identity, "ID", stringType)
	f.member(identity, "Slug", stringType)
	pricing := f.plain("Pricing")
	f.member(pricing, "Price", intType)
	f.member(pricing, "Currency", stringType, exempt())
	stock := f.contract("Stock", false, identity)
	f.member(stock, "Quantity", intType)
	catalog := f.contract("Catalog", true, identity, pricing)
	f.member(catalog, "Title", stringType)
	f.target("Item", []models.ContractID{catalog, stock})
	table := f.build()

	descs := generate(t, table, Options{}).Descriptors()
	require.Len(t, descs, 1)

	assert.ElementsMatch(t,
		[]string{"ID", "Slug", "Price", "Title", "Quantity"},
		propertyNames(descs[0].Properties))
	assert.Equal(t, []string{"Title", "ID", "Slug", "Price", "Quantity"},
		propertyNames(descs[0].Properties), "traversal order")
}

func TestGenerate_DiamondProducesOneMember(t *testing.T) {
	f := newTableFixture()
	c := f.plain("C")
	f.member(c, "A", intType)
	d := f.contract("D", true, c)
	e := f.contract("E", true, c)
	f.target("T", []models.ContractID{d, e})
	table := f.build()

	descs := generate(t, table, Options{}).Descriptors()
	require.Len(t, descs, 1)
	assert.Equal(t, []string{"A"}, propertyNames(descs[0].Properties))
	assert.Len(t, descs[0].BaseContracts, 2)
}

func TestGenerate_Deterministic(t *testing.T) {
	build := func() *models.SymbolTable {
		f := newTableFixture()
		audit := f.declare("example.com/shop/audit", "audit", "Audited", true, true)
		f.member(audit, "Auditor", stringType)
		other := f.declare("example.com/billing/audit", "audit", "Stamp", true, true)
		f.member(other, "At", timeType, nullable())
		for i := 0; i < 8; i++ {
			c := f.contract(fmt.Sprintf("Part%d", i), i%2 == 0, audit)
			f.member(c, fmt.Sprintf("Field%d", i), intType)
			f.target(fmt.Sprintf("Impl%d", i), []models.ContractID{c, other})
		}
		return f.build()
	}

	fingerprints := func(opts Options) []string {
		var out []string
		for _, desc := range generate(t, build(), opts).Descriptors() {
			fp, err := desc.Fingerprint()
			require.NoError(t, err)
			out = append(out, fp)
		}
		return out
	}

	first := fingerprints(Options{Concurrency: 1})
	require.Len(t, first, 8)
	assert.Equal(t, first, fingerprints(Options{Concurrency: 4}))
	assert.Equal(t, first, fingerprints(Options{}))
}

func TestGenerate_ImportAliasesAreStable(t *testing.T) {
	f := newTableFixture()
	shop := f.declare("example.com/shop/audit", "audit", "Audited", true, true)
	f.member(shop, "Auditor", stringType)
	billing := f.declare("example.com/billing/audit", "audit", "Stamp", true, true)
	f.member(billing, "Stamped", stringType)
	f.target("Invoice", []models.ContractID{shop, billing})
	table := f.build()

	descs := generate(t, table, Options{}).Descriptors()
	require.Len(t, descs, 1)

	displays := []string{}
	for _, ref := range descs[0].BaseContracts {
		displays = append(displays, ref.Display)
	}
	assert.Equal(t, []string{"audit.Audited", "audit2.Stamp"}, displays)
	assert.Equal(t, []models.Import{
		{Path: "example.com/billing/audit", Name: "audit", Alias: "audit2"},
		{Path: "example.com/shop/audit", Name: "audit"},
	}, descs[0].Imports)
}

func TestGenerate_Conflicts(t *testing.T) {
	build := func() *models.SymbolTable {
		f := newTableFixture()
		sized := f.contract("Sized", true)
		f.member(sized, "Size", intType)
		labelled := f.contract("Labelled", true)
		f.member(labelled, "Size", stringType)
		f.member(labelled, "Label", stringType)
		f.target("Box", []models.ContractID{sized, labelled})

		clean := f.contract("Weighted", true)
		f.member(clean, "Weight", intType)
		f.target("Crate", []models.ContractID{clean})
		return f.build()
	}

	t.Run("reported as skip by default", func(t *testing.T) {
		result := generate(t, build(), Options{})
		require.NoError(t, result.Err())
		require.Len(t, result.Outcomes, 2)

		box := result.Outcomes[0]
		require.NotNil(t, box.Descriptor)
		assert.Equal(t, []string{"Size", "Label"}, propertyNames(box.Descriptor.Properties))
		size, _ := box.Descriptor.Property("Size")
		assert.Equal(t, "int", size.DeclaredType)
		require.Len(t, box.Skipped, 1)
		assert.Equal(t, models.SkipConflict, box.Skipped[0].Kind)
	})

	t.Run("fails the target when requested", func(t *testing.T) {
		result := generate(t, build(), Options{FailOnConflict: true})
		require.Len(t, result.Outcomes, 2)

		box := result.Outcomes[0]
		assert.Nil(t, box.Descriptor)
		require.Error(t, box.Err)
		var conflict *errors.ConflictError
		require.True(t, errors.As(box.Err, &conflict))
		assert.Equal(t, "Size", conflict.Member)
		assert.Equal(t, []string{domainPkg + ".Sized", domainPkg + ".Labelled"}, conflict.Contracts)
		assert.Equal(t, []string{"int", "string"}, conflict.Types)

		crate := result.Outcomes[1]
		assert.NoError(t, crate.Err)
		require.NotNil(t, crate.Descriptor, "sibling targets still generate")

		err := result.Err()
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ConflictErrorCode))
		assert.False(t, errors.CodeOf(err).Fatal())
		assert.Len(t, result.Descriptors(), 1)
	})
}

func TestGenerate_OutcomesFollowTargetOrder(t *testing.T) {
	f := newTableFixture()
	var names []string
	for i := 0; i < 20; i++ {
		c := f.contract(fmt.Sprintf("C%02d", i), true)
		f.member(c, "Value", intType)
		name := fmt.Sprintf("T%02d", i)
		names = append(names, domainPkg+"."+name)
		f.target(name, []models.ContractID{c}, c)
	}
	table := f.build()

	result := generate(t, table, Options{Concurrency: 3})
	require.Len(t, result.Outcomes, len(names))
	for i, o := range result.Outcomes {
		assert.Equal(t, names[i], o.Name)
		assert.Equal(t, models.TargetID(i), o.Target)
		assert.False(t, o.NoOp)
	}
}

func TestGenerate_CollidingOutputs(t *testing.T) {
	f := newTableFixture()
	named := f.contract("Named", true)
	f.member(named, "Name", stringType)
	coded := f.contract("Coded", true)
	f.member(coded, "Code", intType)
	f.target("Item", []models.ContractID{named})
	f.target("item", []models.ContractID{coded})
	f.target("Tag", []models.ContractID{named})
	table := f.build()

	result := generate(t, table, Options{})
	require.Len(t, result.Outcomes, 3)

	assert.NotNil(t, result.Outcomes[0].Descriptor)
	assert.NoError(t, result.Outcomes[0].Err)
	assert.NotNil(t, result.Outcomes[2].Descriptor)

	lost := result.Outcomes[1]
	assert.Nil(t, lost.Descriptor)
	require.Error(t, lost.Err)
	assert.Equal(t, errors.CollisionErrorCode, errors.CodeOf(lost.Err))
	assert.False(t, errors.CodeOf(lost.Err).Fatal())
	assert.Contains(t, lost.Err.Error(), "already produced for "+domainPkg+".Item")

	collision, ok := lost.Err.(*errors.CollisionError)
	require.True(t, ok)
	assert.Equal(t, domainPkg+".item", collision.Target)
	assert.Equal(t, domainPkg+".Item", collision.Other)
}

func TestGenerate_NoOpTargets(t *testing.T) {
	f := newTableFixture()
	c := f.contract("Manual", true)
	f.member(c, "Code", intType, exempt())
	f.target("ManualImpl", []models.ContractID{c}, c)
	table := f.build()

	result := generate(t, table, Options{})
	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].NoOp)
	assert.Nil(t, result.Outcomes[0].Descriptor)
	assert.Empty(t, result.Descriptors())
	assert.NoError(t, result.Err())
}

func TestGenerate_UnlistedContractIsReported(t *testing.T) {
	f := newTableFixture()
	hidden := f.declare("example.com/shop/audit", "audit", "tracked", true, true)
	f.member(hidden, "Trace", models.TypeRef{}, asMethod("() string"))
	f.target("Invoice", []models.ContractID{hidden})
	table := f.build()

	result := generate(t, table, Options{})
	require.Len(t, result.Outcomes, 1)
	outcome := result.Outcomes[0]
	assert.True(t, outcome.NoOp)

	var kinds []models.SkipKind
	for _, rec := range outcome.Skipped {
		kinds = append(kinds, rec.Kind)
	}
	assert.Contains(t, kinds, models.SkipUnlisted)
}

func TestGenerate_CancelledContext(t *testing.T) {
	f := newTableFixture()
	c := f.contract("Named", true)
	f.member(c, "Name", stringType)
	f.target("Product", []models.ContractID{c})
	table := f.build()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewGenerator(Options{}).Generate(ctx, table)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_EmptyTable(t *testing.T) {
	table := models.NewTableBuilder().Build()
	result := generate(t, table, Options{})
	assert.Empty(t, result.Outcomes)
	assert.NoError(t, result.Err())
}
