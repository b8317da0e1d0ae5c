package logger

import "go.uber.org/zap"

// Standard field names for structured logging.
const (
	FieldRunID      = "run_id"
	FieldComponent  = "component"
	FieldTarget     = "target"
	FieldContract   = "contract"
	FieldMember     = "member"
	FieldPackage    = "package"
	FieldFile       = "file"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldError      = "error"
	FieldErrorCode  = "error_code"
	FieldReason     = "reason"
)

// ComponentLogger returns a named child of the global logger
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
