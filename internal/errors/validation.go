package errors

import "fmt"

// ValidationError represents a validation error with detailed context
type ValidationError struct {
	*BaseError
	Field    string      // field that failed validation
	Value    interface{} // the value that failed validation
	Expected string      // what was expected
	Actual   string      // what was provided
}

// NewValidationError creates a new validation error
func NewValidationError(field, expected, actual string) *ValidationError {
	message := fmt.Sprintf("validation failed for field '%s': expected %s, got %s", field, expected, actual)

	return &ValidationError{
		BaseError: New(ValidationErrorCode, message),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

// WithValue sets the value that failed validation
func (e *ValidationError) WithValue(value interface{}) *ValidationError {
	e.Value = value
	return e
}

// WithLocation adds location information to the error
func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithContext adds context data to the error
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	e.BaseError.WithContext(key, value)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SyntaxError represents an annotation parsing error
type SyntaxError struct {
	*BaseError
	Token    string // the token that caused the error
	Position int    // position in the input where error occurred
}

// NewSyntaxErrorWithToken creates a syntax error with token information
func NewSyntaxErrorWithToken(message, token string, position int) *SyntaxError {
	if token != "" {
		message = fmt.Sprintf("%s (near token '%s')", message, token)
	}

	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
		Position:  position,
	}
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *SyntaxError) WithSuggestion(suggestion string) *SyntaxError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SchemaError is raised when an annotation schema itself is invalid
type SchemaError struct {
	*BaseError
	Schema string
}

// NewSchemaError creates a schema error for the named schema
func NewSchemaError(schema, message string) *SchemaError {
	err := &SchemaError{
		BaseError: Newf(SchemaErrorCode, "schema %s: %s", schema, message),
		Schema:    schema,
	}
	err.WithContext("schema", schema)
	return err
}

// RegistrationError is raised when a schema cannot be added to or found in
// an annotation registry
type RegistrationError struct {
	*BaseError
	Annotation string
}

// NewRegistrationError creates a registration error for annotation
func NewRegistrationError(annotation, message string) *RegistrationError {
	err := &RegistrationError{
		BaseError:  Newf(RegistrationErrorCode, "annotation %s: %s", annotation, message),
		Annotation: annotation,
	}
	err.WithContext("annotation", annotation)
	return err
}
