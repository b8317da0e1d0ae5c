package generator

import (
	"github.com/toyz/autoimpl/internal/annotations"
	"github.com/toyz/autoimpl/internal/models"
)

// Synthesize turns resolved members into property descriptors for a target.
// Members whose type cannot be written in the target package are skipped
// individually; the rest of the target is unaffected.
func Synthesize(table *models.SymbolTable, target *models.TargetType, resolved []ResolvedMember, imports *ImportSet) ([]models.MemberDescriptor, []models.SkipRecord) {
	properties := make([]models.MemberDescriptor, 0, len(resolved))
	var skipped []models.SkipRecord

	for _, r := range resolved {
		member := table.Member(r.Member)
		owner := table.Contract(r.Contract)

		if !member.Type.Resolvable() {
			skipped = append(skipped, skip(member, owner, models.SkipUnresolvable, "type could not be resolved"))
			continue
		}
		if member.Accessibility == models.Unexported && owner.Package != target.Package {
			skipped = append(skipped, skip(member, owner, models.SkipHidden, "unexported member of a contract in another package"))
			continue
		}
		if !member.Type.VisibleFrom(target.Package) {
			skipped = append(skipped, skip(member, owner, models.SkipHidden, "type is not visible from "+target.Package))
			continue
		}

		nullable := member.Nullability == models.NullableAnnotated
		lifted := nullable && !member.Type.CarriesNull()

		declared := imports.Display(member.Type)
		fieldType := declared
		qualified := member.Type.Qualified
		if lifted {
			fieldType = "*" + declared
			qualified = "*" + qualified
		}

		setter := ""
		if r.WithSetter {
			setter = member.SetterName()
		}

		properties = append(properties, models.MemberDescriptor{
			Name:          member.Name,
			SetterName:    setter,
			QualifiedType: qualified,
			FieldType:     fieldType,
			DeclaredType:  declared,
			Lifted:        lifted,
			Required:      mandatory(member, nullable, r.Strict),
			Accessibility: member.Accessibility,
			InheritDoc:    true,
			DocSource:     owner.Name,
			Markers:       carriedMarkers(member.Markers),
			HasSetter:     r.WithSetter,
			Imports:       settledImports(imports, member.Type.Imports),
		})
	}

	return properties, skipped
}

// mandatory applies override, then nullability, then contract strictness
func mandatory(member *models.MemberDeclaration, nullable, strict bool) bool {
	if member.RequiredOverride != nil {
		return *member.RequiredOverride
	}
	if nullable {
		return false
	}
	return strict
}

// carriedMarkers drops the autoimpl control namespace and copies the rest
func carriedMarkers(markers []models.Marker) []models.Marker {
	var out []models.Marker
	for _, marker := range markers {
		if annotations.IsInternal(marker) {
			continue
		}
		out = append(out, marker)
	}
	return out
}

func settledImports(imports *ImportSet, refs []models.Import) []models.Import {
	var out []models.Import
	for _, ref := range refs {
		if imp := imports.Add(ref); imp.Path != "" {
			out = append(out, imp)
		}
	}
	return out
}

func skip(member *models.MemberDeclaration, owner *models.ContractDeclaration, kind models.SkipKind, reason string) models.SkipRecord {
	return models.SkipRecord{
		Member:   member.Name,
		Contract: owner.Name,
		Kind:     kind,
		Reason:   reason,
	}
}
