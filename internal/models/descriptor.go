package models

import (
	"crypto/sha256"
	"encoding/hex"

	"gopkg.in/yaml.v3"
)

// DescriptorSuffix terminates every descriptor key
const DescriptorSuffix = "auto_impl"

// DescriptorKey returns the key of the descriptor generated for a type
func DescriptorKey(pkgPath, typeName string) string {
	if pkgPath == "" {
		return typeName + "." + DescriptorSuffix
	}
	return pkgPath + "." + typeName + "." + DescriptorSuffix
}

// MemberDescriptor is one synthesized accessor
type MemberDescriptor struct {
	Name          string        `yaml:"name"`
	SetterName    string        `yaml:"setter,omitempty"`
	QualifiedType string        `yaml:"qualified_type"` // nullable suffix applied
	FieldType     string        `yaml:"field_type"`     // backing field type as written in the target package
	DeclaredType  string        `yaml:"declared_type"`  // accessor result type as written in the target package
	Lifted        bool          `yaml:"lifted"`         // FieldType is the pointer form of DeclaredType
	Required      bool          `yaml:"required"`
	Accessibility Accessibility `yaml:"accessibility"`
	InheritDoc    bool          `yaml:"inherit_doc"`
	DocSource     string        `yaml:"doc_source"` // qualified contract the member is documented on
	Markers       []Marker      `yaml:"markers,omitempty"`
	HasSetter     bool          `yaml:"has_setter"`
	Imports       []Import      `yaml:"imports,omitempty"`
}

// MethodDescriptor is reserved for synthesized non-accessor methods
type MethodDescriptor struct {
	Name      string `yaml:"name"`
	Signature string `yaml:"signature"`
}

// ContractRef is a contract written into the generated base list
type ContractRef struct {
	Name    string `yaml:"name"`    // qualified name
	Display string `yaml:"display"` // as written in the target package
}

// SkipKind classifies why a member, or a whole contract, was left out
type SkipKind int

const (
	SkipUnresolvable SkipKind = iota
	SkipMethod
	SkipConflict
	SkipHidden
	SkipUnlisted // a contract the generated file cannot name
)

// String returns the string representation of the skip kind
func (k SkipKind) String() string {
	switch k {
	case SkipMethod:
		return "method"
	case SkipConflict:
		return "conflict"
	case SkipHidden:
		return "hidden"
	case SkipUnlisted:
		return "unlisted"
	default:
		return "unresolvable"
	}
}

// MarshalYAML encodes the kind by name
func (k SkipKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// SkipRecord is a member that did not make it into a descriptor, or a
// contract left off the generated base list when Member is empty
type SkipRecord struct {
	Member   string   `yaml:"member,omitempty"`
	Contract string   `yaml:"contract"`
	Kind     SkipKind `yaml:"kind"`
	Reason   string   `yaml:"reason"`
	Shadowed string   `yaml:"shadowed_by,omitempty"` // conflicts: contract holding the winning declaration
	Types    []string `yaml:"types,omitempty"`       // conflicts: winning type first
}

// GeneratedTypeDescriptor is everything the renderer needs for one target
type GeneratedTypeDescriptor struct {
	Key           string             `yaml:"key"`
	Target        string             `yaml:"target"`
	Package       string             `yaml:"package"`
	PackageName   string             `yaml:"package_name"`
	TypeName      string             `yaml:"type_name"`
	Dir           string             `yaml:"-"`
	Accessibility Accessibility      `yaml:"accessibility"`
	BaseContracts []ContractRef      `yaml:"base_contracts"`
	Properties    []MemberDescriptor `yaml:"properties"`
	Methods       []MethodDescriptor `yaml:"methods"`
	Extension     bool               `yaml:"extension"`
	ExtensionType string             `yaml:"extension_type"`
	Embedded      bool               `yaml:"embedded"` // the target already embeds ExtensionType
	Imports       []Import           `yaml:"imports"`
	Skipped       []SkipRecord       `yaml:"skipped,omitempty"`
}

// RequiredProperties returns the properties a constructor must take, in order
func (d *GeneratedTypeDescriptor) RequiredProperties() []MemberDescriptor {
	var required []MemberDescriptor
	for _, p := range d.Properties {
		if p.Required {
			required = append(required, p)
		}
	}
	return required
}

// Property finds a property by name
func (d *GeneratedTypeDescriptor) Property(name string) (MemberDescriptor, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return MemberDescriptor{}, false
}

// Fingerprint returns a stable hash of the descriptor contents
func (d *GeneratedTypeDescriptor) Fingerprint() (string, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
