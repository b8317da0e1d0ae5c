package models

import (
	"go/token"

	"github.com/toyz/autoimpl/internal/errors"
)

// ContractID addresses a contract in a SymbolTable
type ContractID int

// MemberID addresses a member in a SymbolTable
type MemberID int

// TargetID addresses a target in a SymbolTable
type TargetID int

// Accessibility mirrors Go export status
type Accessibility int

const (
	Exported Accessibility = iota
	Unexported
)

// String returns the string representation of the accessibility
func (a Accessibility) String() string {
	if a == Unexported {
		return "unexported"
	}
	return "exported"
}

// MarshalYAML encodes the accessibility by name
func (a Accessibility) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// AccessibilityOf derives accessibility from an identifier
func AccessibilityOf(name string) Accessibility {
	if isExported(name) {
		return Exported
	}
	return Unexported
}

func isExported(name string) bool {
	return token.IsExported(name)
}

// Nullability is the nullable annotation state of a member type
type Nullability int

const (
	NullableUnknown Nullability = iota
	NotNullable
	NullableAnnotated
)

// String returns the string representation of the nullability
func (n Nullability) String() string {
	switch n {
	case NotNullable:
		return "not_nullable"
	case NullableAnnotated:
		return "annotated"
	default:
		return "unknown"
	}
}

// MemberKind separates accessors from other methods
type MemberKind int

const (
	MemberProperty MemberKind = iota
	MemberMethod
)

// String returns the string representation of the member kind
func (k MemberKind) String() string {
	if k == MemberMethod {
		return "method"
	}
	return "property"
}

// Marker is an opaque directive comment attached to a member
type Marker struct {
	Namespace string `yaml:"namespace"`      // text before the colon(s)
	Name      string `yaml:"name"`           // directive name
	Args      string `yaml:"args,omitempty"` // literal argument text
	Raw       string `yaml:"raw"`            // the full comment line
}

// ContractDeclaration is an interface type known to the generator
type ContractDeclaration struct {
	ID       ContractID
	Name     string       // qualified name, pkgpath.TypeName
	Package  string       // import path
	PkgName  string       // declared package name
	TypeName string       // unqualified type name
	Members  []MemberID   // declaration order
	Embeds   []ContractID // embedded contracts, declaration order
	OptedIn  bool         // carries //autoimpl::contract
	Strict   bool         // default mandatory-initialization for non-nullable members
	Location errors.SourceLocation
}

// MemberDeclaration is one method of a contract
type MemberDeclaration struct {
	ID               MemberID
	Contract         ContractID
	Name             string
	Type             TypeRef // accessor result type
	Nullability      Nullability
	Exempt           bool  // carries //autoimpl::exempt
	RequiredOverride *bool // set by //autoimpl::member -Required
	Markers          []Marker
	Accessibility    Accessibility
	HasSetter        bool       // the contract also declares the matching setter
	Kind             MemberKind // property or method
	Signature        string     // method members only
	Location         errors.SourceLocation
}

// SetterName returns the name of the setter that folds into this member
func (m *MemberDeclaration) SetterName() string {
	return SetterNameFor(m.Name)
}

// SetterNameFor returns the setter name for an accessor name
func SetterNameFor(name string) string {
	if name == "" {
		return ""
	}
	if isExported(name) {
		return "Set" + name
	}
	return "set" + upperFirst(name)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// TargetType is a struct opted into receiving generated members
type TargetType struct {
	ID                TargetID
	Name              string // qualified name, pkgpath.TypeName
	Package           string // import path
	PackageName       string // declared package name
	TypeName          string
	Dir               string // directory the generated file is written to
	Accessibility     Accessibility
	ExplicitContracts []ContractID // contracts asserted in source
	Contracts         []ContractID // directly known opted-in contracts
	EmbedsExtension   bool         // the struct already embeds its extension type
	Location          errors.SourceLocation
}

// Severity grades collection issues
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

// Issue is a non-fatal observation made while collecting symbols
type Issue struct {
	Severity Severity
	Message  string
	Subject  string // qualified name of the element the issue is about
	Location errors.SourceLocation
}

// SymbolTable is an immutable snapshot of the contracts, members and
// targets of one load. Everything is addressed by index; callers must treat
// the returned declarations as read-only.
type SymbolTable struct {
	contracts []ContractDeclaration
	members   []MemberDeclaration
	targets   []TargetType
	issues    []Issue
	byName    map[string]ContractID
}

// Contract returns the contract with the given id
func (t *SymbolTable) Contract(id ContractID) *ContractDeclaration {
	return &t.contracts[id]
}

// Member returns the member with the given id
func (t *SymbolTable) Member(id MemberID) *MemberDeclaration {
	return &t.members[id]
}

// Target returns the target with the given id
func (t *SymbolTable) Target(id TargetID) *TargetType {
	return &t.targets[id]
}

// LookupContract finds a contract by qualified name
func (t *SymbolTable) LookupContract(name string) (ContractID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// NumContracts returns the number of contracts in the table
func (t *SymbolTable) NumContracts() int { return len(t.contracts) }

// NumTargets returns the number of targets in the table
func (t *SymbolTable) NumTargets() int { return len(t.targets) }

// Targets returns the ids of every target in collection order
func (t *SymbolTable) Targets() []TargetID {
	ids := make([]TargetID, len(t.targets))
	for i := range t.targets {
		ids[i] = TargetID(i)
	}
	return ids
}

// Issues returns the non-fatal observations made during collection
func (t *SymbolTable) Issues() []Issue {
	return append([]Issue(nil), t.issues...)
}
