package annotations

import (
	"fmt"
	"strings"
)

// Built-in annotation schemas

// ContractAnnotationSchema defines the schema for //autoimpl::contract annotations
var ContractAnnotationSchema = AnnotationSchema{
	Type:        ContractAnnotation,
	Description: "Opts an interface into auto-implementation",
	Parameters: map[string]ParameterSpec{
		"Strict": {
			Type:         BoolType,
			Required:     false,
			DefaultValue: true,
			Description:  "Whether non-nullable members must be initialized by the constructor (default true)",
		},
	},
	Examples: []string{
		"//autoimpl::contract",
		"//autoimpl::contract -Strict=false",
	},
}

// TargetAnnotationSchema defines the schema for //autoimpl::target annotations
var TargetAnnotationSchema = AnnotationSchema{
	Type:        TargetAnnotation,
	Description: "Requests generated members for a struct",
	Parameters: map[string]ParameterSpec{
		"Contracts": {
			Type:        StringSliceType,
			Required:    false,
			Description: "Comma-separated opted-in contracts to implement: Name, pkg.Name or import/path.Name",
			Validator: func(v interface{}) error {
				for _, name := range v.([]string) {
					if strings.HasSuffix(name, ".") || strings.HasPrefix(name, ".") {
						return fmt.Errorf("malformed contract name '%s'", name)
					}
				}
				return nil
			},
		},
	},
	Examples: []string{
		"//autoimpl::target",
		"//autoimpl::target -Contracts=Named",
		"//autoimpl::target -Contracts=Named,shapes.Sized",
	},
}

// MemberAnnotationSchema defines the schema for //autoimpl::member annotations
var MemberAnnotationSchema = AnnotationSchema{
	Type:        MemberAnnotation,
	Description: "Overrides how a single contract member is generated",
	Parameters: map[string]ParameterSpec{
		"Required": {
			Type:         BoolType,
			Required:     false,
			DefaultValue: true,
			Description:  "Force the member to be (or not be) a constructor parameter",
		},
		"Nullable": {
			Type:         BoolType,
			Required:     false,
			DefaultValue: true,
			Description:  "Treat a value-typed member as nullable; the backing field becomes a pointer",
		},
	},
	Examples: []string{
		"//autoimpl::member -Required=false",
		"//autoimpl::member -Required",
		"//autoimpl::member -Nullable",
	},
}

// ExemptAnnotationSchema defines the schema for //autoimpl::exempt annotations
var ExemptAnnotationSchema = AnnotationSchema{
	Type:        ExemptAnnotation,
	Description: "Excludes a contract member from generation",
	Parameters:  map[string]ParameterSpec{},
	Examples: []string{
		"//autoimpl::exempt",
	},
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	schemas := []AnnotationSchema{
		ContractAnnotationSchema,
		TargetAnnotationSchema,
		MemberAnnotationSchema,
		ExemptAnnotationSchema,
	}

	for _, schema := range schemas {
		if err := registry.Register(schema.Type, schema); err != nil {
			return err
		}
	}

	return nil
}

// ValidateMemberParameters rejects member annotations that carry no option
func ValidateMemberParameters(annotation *ParsedAnnotation) error {
	if !annotation.HasParameter("Required") && !annotation.HasParameter("Nullable") {
		return fmt.Errorf("member annotation needs -Required or -Nullable")
	}
	return nil
}

func init() {
	MemberAnnotationSchema.Validators = []CustomValidator{
		ValidateMemberParameters,
	}
}
