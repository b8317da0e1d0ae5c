package errors

import (
	"fmt"
	"strings"
)

// Constructors for the failures each stage of a run can hit. Each one keeps
// the cause, so Underlying cause and stack traces survive reporting.

// WrapPatternError reports a package pattern that cannot be turned into a
// directory
func WrapPatternError(pattern string, cause error) *BaseError {
	return Wrap(LoadErrorCode, fmt.Sprintf("cannot resolve pattern %q", pattern), cause).
		WithContext("pattern", pattern)
}

// WrapLoadError reports go/packages failing to load the patterns
func WrapLoadError(patterns []string, cause error) *BaseError {
	return Wrap(LoadErrorCode, "cannot load "+strings.Join(patterns, " "), cause).
		WithContext("patterns", patterns).
		WithSuggestion("run 'go build' on the patterns to see the underlying compiler error")
}

// WrapParseError reports a source, go.mod or annotation that does not parse
func WrapParseError(item string, cause error) *SyntaxError {
	return &SyntaxError{
		BaseError: Wrap(SyntaxErrorCode, "cannot parse "+item, cause),
	}
}

// WrapGenerateError reports a descriptor of a target that could not be
// produced or encoded
func WrapGenerateError(generationType, item string, cause error) *GenerationError {
	return &GenerationError{
		BaseError:      Wrap(GenerationErrorCode, fmt.Sprintf("cannot generate %s for %s", generationType, item), cause),
		GenerationType: generationType,
		TargetFile:     item,
	}
}

// WrapTemplateError reports a template that failed to parse or execute
func WrapTemplateError(templateName, stage string, cause error) *GenerationError {
	err := &GenerationError{
		BaseError:      Wrap(TemplateErrorCode, fmt.Sprintf("template %s: %s failed", templateName, stage), cause),
		GenerationType: "template",
		TargetFile:     templateName,
	}
	return err.WithStage(stage)
}

// WrapFileSystemError reports an I/O failure on path
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	return FileSystemError(operation, path, "").wrapping(cause)
}

// FileSystemError reports a problem with path that has no underlying error
func FileSystemError(operation, path, reason string) *BaseError {
	message := fmt.Sprintf("cannot %s %s", operation, path)
	if reason != "" {
		message += ": " + reason
	}
	return New(FileSystemErrorCode, message).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError reports a configuration source or setting that
// could not be applied
func WrapConfigurationError(source, operation string, cause error) *BaseError {
	return ConfigurationError(source, "cannot "+operation).wrapping(cause).
		WithContext("operation", operation)
}

// ConfigurationError reports an invalid setting
func ConfigurationError(setting, reason string) *BaseError {
	return New(ConfigurationErrorCode, fmt.Sprintf("configuration %s: %s", setting, reason)).
		WithContext("setting", setting)
}

func (e *BaseError) wrapping(cause error) *BaseError {
	e.Cause = withStack(cause)
	return e
}
