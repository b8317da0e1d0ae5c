package annotations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/autoimpl/internal/errors"
)

// Namespace is the comment namespace owned by autoimpl
const Namespace = "autoimpl"

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	ContractAnnotation AnnotationType = iota
	TargetAnnotation
	MemberAnnotation
	ExemptAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case ContractAnnotation:
		return "contract"
	case TargetAnnotation:
		return "target"
	case MemberAnnotation:
		return "member"
	case ExemptAnnotation:
		return "exempt"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "contract":
		return ContractAnnotation, nil
	case "target":
		return TargetAnnotation, nil
	case "member":
		return MemberAnnotation, nil
	case "exempt":
		return ExemptAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation = errors.SourceLocation

// ParsedAnnotation represents a fully parsed annotation with type-safe parameters
type ParsedAnnotation struct {
	Type       AnnotationType         // Annotation type enum
	Parameters map[string]interface{} // Typed parameters
	Location   SourceLocation         // Source location
	Raw        string                 // Original annotation text
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetStringSlice returns a string slice parameter value with optional default
func (p *ParsedAnnotation) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := p.Parameters[paramName]; exists {
		if sliceValue, ok := value.([]string); ok {
			return sliceValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// OptionalBool returns a pointer to an explicitly given boolean parameter,
// or nil when the annotation does not carry it
func (p *ParsedAnnotation) OptionalBool(paramName string) *bool {
	value, exists := p.Parameters[paramName]
	if !exists {
		return nil
	}
	b, ok := value.(bool)
	if !ok {
		return nil
	}
	return &b
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType           // Parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Value of a bare -Flag
	Description  string                  // Parameter description
	Validator    func(interface{}) error // Custom validator function
}

// CustomValidator represents a custom validation function for annotations
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType           // Annotation type enum
	Description string                   // Human-readable description
	Parameters  map[string]ParameterSpec // Parameter specifications
	Validators  []CustomValidator        // Custom validation functions
	Examples    []string                 // Usage examples
}

// convertValues turns the raw option values into the parameter's type
func convertValues(spec ParameterSpec, values []string) (interface{}, error) {
	if len(values) == 0 {
		if spec.DefaultValue != nil {
			return spec.DefaultValue, nil
		}
		if spec.Type == BoolType {
			return true, nil
		}
		return nil, fmt.Errorf("a value is required")
	}

	switch spec.Type {
	case BoolType:
		if len(values) != 1 {
			return nil, fmt.Errorf("expected a single boolean, got %d values", len(values))
		}
		b, err := strconv.ParseBool(unquote(values[0]))
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", values[0])
		}
		return b, nil
	case StringSliceType:
		out := make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(unquote(v)); v != "" {
				out = append(out, v)
			}
		}
		return out, nil
	case StringType:
		if len(values) != 1 {
			return nil, fmt.Errorf("expected a single value, got %d values", len(values))
		}
		return unquote(values[0]), nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", spec.Type)
	}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
