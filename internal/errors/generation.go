package errors

import (
	"fmt"
	"strings"
)

// UnsupportedLanguageError is raised before any descriptor is produced when
// the configured output language is not one the generator can emit
type UnsupportedLanguageError struct {
	*BaseError
	Language  string
	Supported []string
}

// NewUnsupportedLanguageError creates the fatal language error
func NewUnsupportedLanguageError(language string, supported ...string) *UnsupportedLanguageError {
	err := &UnsupportedLanguageError{
		BaseError: Newf(UnsupportedLanguageErrorCode, "unsupported target language %q", language),
		Language:  language,
		Supported: supported,
	}
	err.WithContext("language", language)
	err.WithSuggestion(fmt.Sprintf("set language to one of: %s", strings.Join(supported, ", ")))
	return err
}

// ConflictError reports two contracts declaring the same member name with
// different types
type ConflictError struct {
	*BaseError
	Target    string
	Member    string
	Contracts []string
	Types     []string
}

// NewConflictError creates a conflict error for one member of a target
func NewConflictError(target, member string, contracts, types []string) *ConflictError {
	message := fmt.Sprintf("member %s of %s is declared with conflicting types %s",
		member, target, strings.Join(types, " and "))
	err := &ConflictError{
		BaseError: New(ConflictErrorCode, message),
		Target:    target,
		Member:    member,
		Contracts: contracts,
		Types:     types,
	}
	err.WithContext("target", target)
	err.WithContext("member", member)
	err.WithContext("contracts", strings.Join(contracts, ", "))
	err.WithSuggestion("mark one declaration with //autoimpl::exempt and implement the member by hand")
	return err
}

// CollisionError reports a target whose generated output would share a file
// or an extension type with another target of the same package
type CollisionError struct {
	*BaseError
	Target string
	Other  string
	Output string
}

// NewCollisionError creates the error for target losing output to other
func NewCollisionError(target, other, output string) *CollisionError {
	err := &CollisionError{
		BaseError: Newf(CollisionErrorCode, "%s would generate %s, already produced for %s", target, output, other),
		Target:    target,
		Other:     other,
		Output:    output,
	}
	err.WithContext("target", target)
	err.WithContext("other", other)
	err.WithSuggestion("rename one of the types so their names differ beyond the case of the first letter")
	return err
}

// GenerationError represents a failure while producing output for a target
type GenerationError struct {
	*BaseError
	GenerationType string // what was being generated
	TargetFile     string // file being produced
	Stage          string // pipeline stage
}

// NewGenerationError creates a new generation error
func NewGenerationError(message string) *GenerationError {
	return &GenerationError{
		BaseError: New(GenerationErrorCode, message),
	}
}

// WithStage records the pipeline stage that failed
func (e *GenerationError) WithStage(stage string) *GenerationError {
	e.Stage = stage
	e.BaseError.WithContext("stage", stage)
	return e
}
