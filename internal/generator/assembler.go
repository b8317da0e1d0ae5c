package generator

import (
	"github.com/toyz/autoimpl/internal/models"
)

// ExtensionPrefix starts the name of every generated extension struct
const ExtensionPrefix = "autoImpl"

// ExtensionTypeName returns the extension struct name for a target type
func ExtensionTypeName(typeName string) string {
	if typeName == "" {
		return ExtensionPrefix
	}
	b := []byte(typeName)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return ExtensionPrefix + string(b)
}

// Assemble packages the synthesized properties and the generated base list
// into a descriptor. It reports false when the target needs nothing: no
// properties and every aggregated contract already asserted.
func Assemble(table *models.SymbolTable, target *models.TargetType, aggregated []AggregatedContract, properties []models.MemberDescriptor, skipped []models.SkipRecord, imports *ImportSet) (*models.GeneratedTypeDescriptor, bool) {
	base := baseList(table, target, aggregated, imports)
	if len(properties) == 0 && len(base) == 0 {
		return nil, false
	}

	desc := &models.GeneratedTypeDescriptor{
		Key:           models.DescriptorKey(target.Package, target.TypeName),
		Target:        target.Name,
		Package:       target.Package,
		PackageName:   target.PackageName,
		TypeName:      target.TypeName,
		Dir:           target.Dir,
		Accessibility: target.Accessibility,
		BaseContracts: base,
		Properties:    append([]models.MemberDescriptor(nil), properties...),
		Methods:       []models.MethodDescriptor{},
		Extension:     true,
		ExtensionType: ExtensionTypeName(target.TypeName),
		Embedded:      target.EmbedsExtension,
		Imports:       imports.Imports(),
		Skipped:       append([]models.SkipRecord(nil), skipped...),
	}
	if desc.BaseContracts == nil {
		desc.BaseContracts = []models.ContractRef{}
	}
	if desc.Properties == nil {
		desc.Properties = []models.MemberDescriptor{}
	}

	return desc, true
}

// Unlisted returns a skip record for every contract the generated base list
// needs but cannot name from the target package. Such a contract stays
// unasserted even when the target counts as needing nothing.
func Unlisted(table *models.SymbolTable, target *models.TargetType, aggregated []AggregatedContract) []models.SkipRecord {
	var skipped []models.SkipRecord
	for _, id := range missingContracts(table, aggregated) {
		contract := table.Contract(id)
		if nameable(contract, target) {
			continue
		}
		skipped = append(skipped, models.SkipRecord{
			Contract: contract.Name,
			Kind:     models.SkipUnlisted,
			Reason:   "unexported contract of another package; the target cannot be asserted to implement it",
		})
	}
	return skipped
}

// missingContracts returns the aggregated contracts the target does not
// already cover, minus those another missing contract embeds
func missingContracts(table *models.SymbolTable, aggregated []AggregatedContract) []models.ContractID {
	var candidates []models.ContractID
	for _, agg := range aggregated {
		if !agg.InBaseList {
			candidates = append(candidates, agg.ID)
		}
	}

	implied := make(map[models.ContractID]bool)
	for _, id := range candidates {
		for reached := range embedClosure(table, id) {
			implied[reached] = true
		}
	}

	var missing []models.ContractID
	for _, id := range candidates {
		if !implied[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// baseList returns the contracts the generated file must assert
func baseList(table *models.SymbolTable, target *models.TargetType, aggregated []AggregatedContract, imports *ImportSet) []models.ContractRef {
	var refs []models.ContractRef
	for _, id := range missingContracts(table, aggregated) {
		contract := table.Contract(id)
		display, ok := contractDisplay(contract, target, imports)
		if !ok {
			continue
		}
		refs = append(refs, models.ContractRef{
			Name:    contract.Name,
			Display: display,
		})
	}
	return refs
}

func nameable(contract *models.ContractDeclaration, target *models.TargetType) bool {
	return contract.Package == "" || contract.Package == target.Package ||
		models.AccessibilityOf(contract.TypeName) == models.Exported
}

// contractDisplay spells a contract as written in the target package
func contractDisplay(contract *models.ContractDeclaration, target *models.TargetType, imports *ImportSet) (string, bool) {
	if contract.Package == "" || contract.Package == target.Package {
		return contract.TypeName, true
	}
	if !nameable(contract, target) {
		return "", false
	}
	imp := imports.Add(models.Import{Path: contract.Package, Name: contract.PkgName})
	return imp.LocalName() + "." + contract.TypeName, true
}
