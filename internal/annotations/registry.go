package annotations

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/toyz/autoimpl/internal/errors"
)

// AnnotationRegistry holds the schema each annotation kind is validated
// against
type AnnotationRegistry interface {
	Register(annotationType AnnotationType, schema AnnotationSchema) error
	GetSchema(annotationType AnnotationType) (AnnotationSchema, error)

	// ListTypes returns the registered kinds in declaration order
	ListTypes() []AnnotationType
}

type registry struct {
	mu      sync.RWMutex
	schemas map[AnnotationType]AnnotationSchema
}

// NewRegistry creates an empty registry
func NewRegistry() AnnotationRegistry {
	return &registry{schemas: make(map[AnnotationType]AnnotationSchema)}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry holding the built-in schemas
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(err)
		}
	})
	return defaultRegistry
}

// Register adds the schema of one annotation kind. A kind can be
// registered once.
func (r *registry) Register(annotationType AnnotationType, schema AnnotationSchema) error {
	if schema.Type != annotationType {
		return errors.NewRegistrationError(annotationType.String(),
			fmt.Sprintf("schema describes %s", schema.Type))
	}
	if err := checkSchema(schema); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[annotationType]; exists {
		return errors.NewRegistrationError(annotationType.String(), "already registered")
	}
	r.schemas[annotationType] = schema
	return nil
}

// GetSchema returns the schema of a registered kind
func (r *registry) GetSchema(annotationType AnnotationType) (AnnotationSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[annotationType]
	if !exists {
		return AnnotationSchema{}, errors.NewRegistrationError(annotationType.String(), "not registered")
	}
	return schema, nil
}

func (r *registry) ListTypes() []AnnotationType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]AnnotationType, 0, len(r.schemas))
	for kind := range r.schemas {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Spellings returns the registered kinds as they are written in comments
func Spellings(r AnnotationRegistry) string {
	var names []string
	for _, kind := range r.ListTypes() {
		names = append(names, "//"+Namespace+"::"+kind.String())
	}
	return strings.Join(names, ", ")
}

// checkSchema rejects parameters with no name, an unknown type or a default
// of the wrong type
func checkSchema(schema AnnotationSchema) error {
	names := make([]string, 0, len(schema.Parameters))
	for name := range schema.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		param := schema.Parameters[name]
		if name == "" {
			return errors.NewSchemaError(schema.Type.String(), "parameter without a name")
		}
		if param.DefaultValue == nil {
			if param.Type < StringType || param.Type > StringSliceType {
				return errors.NewSchemaError(schema.Type.String(), fmt.Sprintf("-%s has unknown type %d", name, param.Type))
			}
			continue
		}
		if !defaultMatches(param.Type, param.DefaultValue) {
			return errors.NewSchemaError(schema.Type.String(),
				fmt.Sprintf("default of -%s is %T, want %s", name, param.DefaultValue, param.Type))
		}
	}
	return nil
}

func defaultMatches(paramType ParameterType, value interface{}) bool {
	var ok bool
	switch paramType {
	case StringType:
		_, ok = value.(string)
	case BoolType:
		_, ok = value.(bool)
	case StringSliceType:
		_, ok = value.([]string)
	}
	return ok
}
