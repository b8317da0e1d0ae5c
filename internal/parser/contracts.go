package parser

import (
	"go/ast"
	"go/types"
	"sort"
	"strings"

	"github.com/toyz/autoimpl/internal/annotations"
	"github.com/toyz/autoimpl/internal/logger"
	"github.com/toyz/autoimpl/internal/models"
)

// contractFor registers the interface obj and everything it embeds. It
// reports false for interfaces the generator cannot use.
func (c *collection) contractFor(obj *types.TypeName) (models.ContractID, bool) {
	if id, ok := c.contracts[obj]; ok {
		return id, true
	}
	if c.rejected[obj] {
		return 0, false
	}

	name := qualifiedName(obj)
	loc := positionOf(c.fset, obj.Pos())
	named, ok := types.Unalias(obj.Type()).(*types.Named)
	if !ok {
		c.rejected[obj] = true
		return 0, false
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		c.rejected[obj] = true
		return 0, false
	}
	if named.TypeParams().Len() > 0 {
		c.rejected[obj] = true
		c.reporter().ReportUnsupportedType(name, "generic interfaces cannot be contracts", loc)
		return 0, false
	}
	if !iface.IsMethodSet() {
		c.rejected[obj] = true
		c.reporter().ReportUnsupportedType(name, "constraint interfaces cannot be contracts", loc)
		return 0, false
	}

	decl := c.decls[obj]
	optedIn, strict := false, true
	if decl != nil {
		parsed, valid := c.annotationsOf(name, decl.doc)
		c.misplaced(name, "an interface", parsed, annotations.ContractAnnotation)
		if contract := find(parsed, annotations.ContractAnnotation); contract != nil && valid {
			optedIn = true
			strict = contract.GetBool(ParamStrict, true)
		}
	}

	contract := models.ContractDeclaration{
		Name:     name,
		TypeName: obj.Name(),
		OptedIn:  optedIn,
		Strict:   strict,
		Location: loc,
	}
	if pkg := obj.Pkg(); pkg != nil {
		contract.Package = pkg.Path()
		contract.PkgName = pkg.Name()
	}

	id := c.b.AddContract(contract)
	c.contracts[obj] = id

	log := logger.ChildLogger(c.p.log, logger.FieldContract, name)
	log.Debugw("contract registered", "opted_in", optedIn, "strict", strict)

	c.collectMembers(id, name, iface)

	for i := 0; i < iface.NumEmbeddeds(); i++ {
		embedded := types.Unalias(iface.EmbeddedType(i))
		embeddedObj := interfaceName(embedded)
		if embeddedObj == nil {
			c.reporter().ReportUnsupportedType(name, "embedded "+types.TypeString(embedded, qualifyByPath)+" is not a named interface", loc)
			continue
		}
		if n, ok := embedded.(*types.Named); ok && n.TypeArgs().Len() > 0 {
			c.reporter().ReportUnsupportedType(name, "embedded generic interface "+types.TypeString(embedded, qualifyByPath)+" is not supported", loc)
			continue
		}
		if embeddedID, ok := c.contractFor(embeddedObj); ok {
			c.b.Embed(id, embeddedID)
		}
	}

	return id, true
}

// accessorCandidate is an interface method before classification
type accessorCandidate struct {
	fn    *types.Func
	sig   *types.Signature
	field *ast.Field
}

// collectMembers adds the explicit methods of iface in source order,
// folding setters into their accessors
func (c *collection) collectMembers(contract models.ContractID, contractName string, iface *types.Interface) {
	methods := make([]accessorCandidate, 0, iface.NumExplicitMethods())
	byName := make(map[string]accessorCandidate)
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		fn := iface.ExplicitMethod(i)
		candidate := accessorCandidate{fn: fn, sig: fn.Type().(*types.Signature), field: c.fields[fn]}
		methods = append(methods, candidate)
		byName[fn.Name()] = candidate
	}
	sort.SliceStable(methods, func(i, j int) bool { return methods[i].fn.Pos() < methods[j].fn.Pos() })

	folded := make(map[string]bool)
	for _, m := range methods {
		if !isAccessor(m.sig) {
			continue
		}
		setter, ok := byName[models.SetterNameFor(m.fn.Name())]
		if ok && isSetterFor(setter.sig, m.sig.Results().At(0).Type()) {
			folded[setter.fn.Name()] = true
		}
	}

	for _, m := range methods {
		if folded[m.fn.Name()] {
			continue
		}
		member := c.member(contractName, m)
		if isAccessor(m.sig) {
			if setter, ok := byName[models.SetterNameFor(m.fn.Name())]; ok && folded[setter.fn.Name()] {
				member.HasSetter = true
			}
		}
		c.b.AddMember(contract, member)
	}
}

// member builds the declaration of one interface method
func (c *collection) member(contractName string, m accessorCandidate) models.MemberDeclaration {
	subject := contractName + "." + m.fn.Name()
	member := models.MemberDeclaration{
		Name:          m.fn.Name(),
		Accessibility: models.AccessibilityOf(m.fn.Name()),
		Location:      positionOf(c.fset, m.fn.Pos()),
	}

	var doc, trailing *ast.CommentGroup
	if m.field != nil {
		doc, trailing = m.field.Doc, m.field.Comment
	}
	member.Markers = annotations.ParseMarkers(commentLines(doc, trailing))

	parsed, valid := c.annotationsOf(subject, doc, trailing)
	c.misplaced(subject, "a contract member", parsed, annotations.MemberAnnotation, annotations.ExemptAnnotation)
	if !valid {
		// a member with a broken annotation is left to the author
		member.Exempt = true
	}
	if find(parsed, annotations.ExemptAnnotation) != nil {
		member.Exempt = true
	}

	if !isAccessor(m.sig) {
		member.Kind = models.MemberMethod
		member.Nullability = models.NullableUnknown
		member.Signature = strings.TrimPrefix(types.TypeString(m.sig, qualifyByPath), "func")
		return member
	}

	member.Kind = models.MemberProperty
	member.Type = typeRefOf(m.sig.Results().At(0).Type())

	var nullableFlag *bool
	if override := find(parsed, annotations.MemberAnnotation); override != nil {
		member.RequiredOverride = override.OptionalBool(ParamRequired)
		nullableFlag = override.OptionalBool(ParamNullable)
	}
	if nullableFlag != nil && !*nullableFlag && (member.Type.Pointer || member.Type.NullableWrapper) {
		c.warn(subject, member.Location, "-Nullable=false has no effect on %s; pointer results are always nullable", member.Type.Qualified)
	}
	member.Nullability = nullabilityOf(member.Type, nullableFlag)

	return member
}

// nullabilityOf treats pointers, sql null wrappers and members flagged
// -Nullable as annotated nullable. The flag can only add nullability.
func nullabilityOf(t models.TypeRef, flag *bool) models.Nullability {
	if t.Pointer || t.NullableWrapper || (flag != nil && *flag) {
		return models.NullableAnnotated
	}
	return models.NotNullable
}

// isAccessor matches func() T
func isAccessor(sig *types.Signature) bool {
	return sig.Params().Len() == 0 && sig.Results().Len() == 1 && !sig.Variadic()
}

// isSetterFor matches func(T) for the accessor result type
func isSetterFor(sig *types.Signature, result types.Type) bool {
	return sig.Params().Len() == 1 &&
		sig.Results().Len() == 0 &&
		!sig.Variadic() &&
		types.Identical(sig.Params().At(0).Type(), result)
}
